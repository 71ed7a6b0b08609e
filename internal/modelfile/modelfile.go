// Package modelfile renders and persists the parameter artifact the serving
// runtime consumes at load time.
package modelfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"modeltune/pkg/types"
)

// Sampling parameters are fixed; tuning only moves the resource-bound ones.
const (
	temperature   = "0.7"
	topP          = "0.9"
	repeatPenalty = "1.1"
	repeatLastN   = 64
)

// Writer persists one Modelfile per alias under Dir.
type Writer struct {
	Dir string
}

// NewWriter constructs a Writer rooted at dir.
func NewWriter(dir string) *Writer { return &Writer{Dir: dir} }

// Render produces the Modelfile content for a model source and config.
// The key set is fixed; numeric fields are decimal integers.
func Render(sourcePath string, cfg types.RuntimeConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "FROM %s\n", sourcePath)
	fmt.Fprintf(&b, "PARAMETER temperature %s\n", temperature)
	fmt.Fprintf(&b, "PARAMETER top_p %s\n", topP)
	fmt.Fprintf(&b, "PARAMETER repeat_penalty %s\n", repeatPenalty)
	fmt.Fprintf(&b, "PARAMETER repeat_last_n %d\n", repeatLastN)
	fmt.Fprintf(&b, "PARAMETER num_ctx %d\n", cfg.ContextLength)
	fmt.Fprintf(&b, "PARAMETER num_predict %d\n", cfg.PredictTokens)
	fmt.Fprintf(&b, "PARAMETER num_batch %d\n", cfg.BatchSize)
	fmt.Fprintf(&b, "PARAMETER num_thread %d\n", cfg.ThreadCount)
	return b.String()
}

// Write renders the artifact for alias and writes it to <Dir>/<alias>.Modelfile,
// creating Dir if needed. Returns the artifact path.
func (w *Writer) Write(alias, sourcePath string, cfg types.RuntimeConfig) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("modelfile dir: %w", err)
	}
	path := w.Path(alias)
	if err := os.WriteFile(path, []byte(Render(sourcePath, cfg)), 0o644); err != nil {
		return "", fmt.Errorf("write modelfile: %w", err)
	}
	return path, nil
}

// Path returns the artifact path for alias without writing anything.
func (w *Writer) Path(alias string) string {
	return filepath.Join(w.Dir, alias+".Modelfile")
}

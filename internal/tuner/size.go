package tuner

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// sizePattern matches a number immediately followed by b/B in a filename,
// e.g. "llama-7b", "mixtral-8.7B".
var sizePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)[bB]`)

// ParseSizeB extracts the model-size magnitude from a filename. The matched
// number is read with its decimal point removed ("7.5" -> 75, "7" -> 7),
// so the result is a loose magnitude used only for bucketing, not a real
// parameter count. Returns 0 when no pattern matches.
func ParseSizeB(path string) int {
	name := filepath.Base(path)
	m := sizePattern.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ".", ""))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

package tuner

import (
	"context"
	"errors"

	"modeltune/pkg/types"
)

// fakeRuntime implements ConfigWriter, RuntimeController, and Prober. A
// write stages a config; Create makes the staged config "live"; Probe asks
// the verdict func whether the live config fits. This mirrors a real
// runtime: the probe reflects whatever was loaded last, not what was merely
// written.
type fakeRuntime struct {
	verdict func(cfg types.RuntimeConfig) bool

	staged  types.RuntimeConfig
	live    types.RuntimeConfig
	history []types.RuntimeConfig

	writes  int
	creates int
	unloads int
	probes  int

	writeErr  error
	createErr error
}

func newFakeRuntime(verdict func(types.RuntimeConfig) bool) *fakeRuntime {
	return &fakeRuntime{verdict: verdict}
}

func (f *fakeRuntime) Write(alias, sourcePath string, cfg types.RuntimeConfig) (string, error) {
	f.writes++
	if f.writeErr != nil {
		return "", f.writeErr
	}
	f.staged = cfg
	return "/tmp/" + alias + ".Modelfile", nil
}

func (f *fakeRuntime) Create(ctx context.Context, alias, modelfilePath string) error {
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	f.live = f.staged
	f.history = append(f.history, f.live)
	return nil
}

func (f *fakeRuntime) Unload(ctx context.Context, alias string) error {
	f.unloads++
	return nil
}

func (f *fakeRuntime) Probe(ctx context.Context, alias string) error {
	f.probes++
	if f.verdict(f.live) {
		return nil
	}
	return errors.New("model failed to load: out of memory")
}

func alwaysFits(types.RuntimeConfig) bool { return true }
func neverFits(types.RuntimeConfig) bool  { return false }

// fitsWithin models an accelerator that tolerates configs up to the given
// context and batch limits.
func fitsWithin(maxCtx, maxBatch int) func(types.RuntimeConfig) bool {
	return func(cfg types.RuntimeConfig) bool {
		return cfg.ContextLength <= maxCtx && cfg.BatchSize <= maxBatch
	}
}

func newTestTuner(f *fakeRuntime) *Tuner {
	return New(Config{Writer: f, Runtime: f, Prober: f, Threads: 4})
}

package tuner

import (
	"context"
	"errors"
	"testing"

	"modeltune/pkg/types"
)

var (
	bigGPU  = types.AcceleratorProfile{DeviceName: "NVIDIA GeForce RTX 4090", MemoryMiB: 24564}
	noGPU   = types.AcceleratorProfile{}
	model7B = types.ModelDescriptor{SourcePath: "/models/llama-7b.Q4_K_M.gguf", SizeB: 7}
)

func TestTune_ConvergesToCaps(t *testing.T) {
	f := newFakeRuntime(alwaysFits)
	tr := newTestTuner(f)

	res, err := tr.Tune(context.Background(), "llama7b", model7B, bigGPU)
	if err != nil {
		t.Fatalf("tune: %v", err)
	}
	if res.Outcome != types.OutcomeTuned {
		t.Fatalf("expected tuned, got %s", res.Outcome)
	}
	if res.Config.ContextLength != 16384 || res.Config.BatchSize != 320 {
		t.Fatalf("expected caps config, got %+v", res.Config)
	}
	if res.Attempts != 1 {
		t.Fatalf("expected a single loading attempt, got %d", res.Attempts)
	}
	// Persisted artifact, live runtime state, and result must agree.
	if f.staged != res.Config || f.live != res.Config {
		t.Fatalf("state drift: staged=%+v live=%+v result=%+v", f.staged, f.live, res.Config)
	}
}

func TestTune_NoHeadroom(t *testing.T) {
	start := Defaults(bigGPU.MemoryMiB, model7B.SizeB, 4)
	f := newFakeRuntime(fitsWithin(start.ContextLength, start.BatchSize))
	tr := newTestTuner(f)

	res, err := tr.Tune(context.Background(), "llama7b", model7B, bigGPU)
	if err != nil {
		t.Fatalf("tune: %v", err)
	}
	if res.Outcome != types.OutcomeNoHeadroom {
		t.Fatalf("expected tuned_no_headroom, got %s", res.Outcome)
	}
	if res.Config != start {
		t.Fatalf("expected the initial config, got %+v", res.Config)
	}
}

func TestTune_Exhausted(t *testing.T) {
	f := newFakeRuntime(neverFits)
	tr := newTestTuner(f)

	res, err := tr.Tune(context.Background(), "llama70b", types.ModelDescriptor{SourcePath: "/models/llama-70b.gguf", SizeB: 70}, bigGPU)
	if !IsLadderExhausted(err) {
		t.Fatalf("expected ladder exhausted, got %v", err)
	}
	if res.Outcome != types.OutcomeExhausted {
		t.Fatalf("expected exhausted outcome, got %s", res.Outcome)
	}
	if res.Attempts != maxDownAttempts {
		t.Fatalf("expected %d attempts, got %d", maxDownAttempts, res.Attempts)
	}
	if f.unloads != 1 {
		t.Fatalf("expected the failed instance to be unloaded, got %d unloads", f.unloads)
	}
}

func TestTune_PartialHeadroom(t *testing.T) {
	// The accelerator tolerates more context than the defaults but less
	// than the cap, and no extra batch.
	f := newFakeRuntime(fitsWithin(10240, 256))
	tr := newTestTuner(f)

	res, err := tr.Tune(context.Background(), "llama7b", model7B, bigGPU)
	if err != nil {
		t.Fatalf("tune: %v", err)
	}
	if res.Outcome != types.OutcomeTuned {
		t.Fatalf("expected tuned, got %s", res.Outcome)
	}
	if res.Config.ContextLength != 10240 || res.Config.BatchSize != 256 {
		t.Fatalf("expected ctx=10240 batch=256, got %+v", res.Config)
	}
	if f.live != res.Config {
		t.Fatalf("live config %+v differs from result %+v", f.live, res.Config)
	}
}

func TestTune_UnknownAcceleratorUsesConservativeStart(t *testing.T) {
	f := newFakeRuntime(alwaysFits)
	tr := newTestTuner(f)

	res, err := tr.Tune(context.Background(), "mystery", types.ModelDescriptor{SourcePath: "/models/mystery.gguf"}, noGPU)
	if err != nil {
		t.Fatalf("tune: %v", err)
	}
	// First load uses the conservative table row; climb is capped at the
	// unknown-memory tier.
	if f.history[0].ContextLength != 3072 || f.history[0].BatchSize != 64 {
		t.Fatalf("expected conservative initial load, got %+v", f.history[0])
	}
	if res.Config.ContextLength != 12288 || res.Config.BatchSize != 256 {
		t.Fatalf("expected unknown-tier caps, got %+v", res.Config)
	}
}

func TestTune_ReloadFailureFunnelsIntoShrink(t *testing.T) {
	// Creates always fail, so the live config never changes from its zero
	// value and probes keep failing: the session must exhaust cleanly
	// rather than crash or hang.
	f := newFakeRuntime(neverFits)
	f.createErr = errors.New("runtime unreachable")
	tr := newTestTuner(f)

	_, err := tr.Tune(context.Background(), "m", model7B, bigGPU)
	if !IsLadderExhausted(err) {
		t.Fatalf("expected ladder exhausted, got %v", err)
	}
}

func TestTune_IndependentSessions(t *testing.T) {
	f := newFakeRuntime(alwaysFits)
	tr := newTestTuner(f)
	ctx := context.Background()

	first, err := tr.Tune(ctx, "a", model7B, bigGPU)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := tr.Tune(ctx, "b", model7B, bigGPU)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.Config != second.Config {
		t.Fatalf("sessions interfered: %+v vs %+v", first.Config, second.Config)
	}
}

package tuner

import (
	"runtime"
	"testing"
)

func TestDefaults_24GiB_7B(t *testing.T) {
	cfg := Defaults(24564, 7, 4)
	if cfg.ContextLength != 8192 || cfg.PredictTokens != 1536 || cfg.BatchSize != 256 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ThreadCount != 4 {
		t.Fatalf("expected thread override 4, got %d", cfg.ThreadCount)
	}
}

func TestDefaults_UnknownEverything(t *testing.T) {
	cfg := Defaults(0, 0, 2)
	if cfg.ContextLength != 3072 || cfg.PredictTokens != 512 || cfg.BatchSize != 64 {
		t.Fatalf("expected most conservative defaults, got %+v", cfg)
	}
}

func TestDefaults_ThreadFallback(t *testing.T) {
	cfg := Defaults(0, 0, 0)
	if cfg.ThreadCount != runtime.NumCPU() {
		t.Fatalf("expected %d threads, got %d", runtime.NumCPU(), cfg.ThreadCount)
	}
}

func TestDefaults_AllPositive(t *testing.T) {
	mems := []int{0, 4000, 8500, 12500, 16500, 24000, 49152}
	sizes := []int{0, 7, 75, 90, 130, 200, 320, 405}
	for _, mib := range mems {
		for _, sb := range sizes {
			cfg := Defaults(mib, sb, 0)
			if cfg.ContextLength <= 0 || cfg.PredictTokens <= 0 || cfg.BatchSize <= 0 || cfg.ThreadCount <= 0 {
				t.Fatalf("non-positive field for mib=%d size=%d: %+v", mib, sb, cfg)
			}
		}
	}
}

// Context length must never grow with model size within a memory tier.
func TestDefaults_ContextMonotonicInSize(t *testing.T) {
	mems := []int{0, 8500, 12500, 16500, 24000}
	sizes := []int{0, 7, 90, 200, 400}
	for _, mib := range mems {
		prev := 1 << 30
		for _, sb := range sizes {
			cfg := Defaults(mib, sb, 1)
			if cfg.ContextLength > prev {
				t.Fatalf("context grew with size at mib=%d size=%d: %d > %d", mib, sb, cfg.ContextLength, prev)
			}
			prev = cfg.ContextLength
		}
	}
}

func TestMemoryBucketRounding(t *testing.T) {
	cases := map[int]int{
		0:     0, // unknown
		7679:  0, // rounds to 7 GiB
		7680:  1, // rounds to 8 GiB
		11776: 2, // rounds to 12 GiB
		16384: 3,
		22016: 4,
		24564: 4,
	}
	for mib, want := range cases {
		if got := memoryBucket(mib); got != want {
			t.Fatalf("memoryBucket(%d) = %d, want %d", mib, got, want)
		}
	}
}

func TestCapsFor(t *testing.T) {
	cases := []struct {
		mib   int
		ctx   int
		batch int
	}{
		{0, 12288, 256}, // unknown memory gets mid-tier caps
		{24564, 16384, 320},
		{16384, 12288, 256},
		{12288, 8192, 192},
		{8192, 6144, 160},
		{4096, 6144, 160},
	}
	for _, c := range cases {
		caps := CapsFor(c.mib)
		if caps.Ctx != c.ctx || caps.Batch != c.batch {
			t.Fatalf("CapsFor(%d) = %+v, want ctx=%d batch=%d", c.mib, caps, c.ctx, c.batch)
		}
	}
}

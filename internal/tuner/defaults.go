package tuner

import (
	"runtime"

	"modeltune/pkg/types"
)

// Memory buckets index initialConfigs, coarsest first. Bucket boundaries are
// in GiB after rounding MiB with (mib+512)/1024. Unknown memory routes to
// the smallest bucket.
func memoryBucket(memoryMiB int) int {
	if memoryMiB <= 0 {
		return 0
	}
	gib := (memoryMiB + 512) / 1024
	switch {
	case gib >= 22:
		return 4
	case gib >= 16:
		return 3
	case gib >= 12:
		return 2
	case gib >= 8:
		return 1
	default:
		return 0
	}
}

// sizeBucket discretizes the parsed size magnitude. An unknown size (0)
// lands in the first tier.
func sizeBucket(sizeB int) int {
	switch {
	case sizeB > 320:
		return 3
	case sizeB > 140:
		return 2
	case sizeB > 80:
		return 1
	default:
		return 0
	}
}

// initialConfigs[memoryBucket][sizeBucket] -> {ctx, predict, batch}.
// Within each memory row, context length never grows with model size.
var initialConfigs = [5][4][3]int{
	{ // <8 GiB or unknown
		{3072, 512, 64}, {2048, 384, 64}, {2048, 256, 64}, {2048, 256, 64},
	},
	{ // 8-11 GiB
		{4096, 512, 128}, {2048, 384, 96}, {2048, 256, 64}, {2048, 256, 64},
	},
	{ // 12-15 GiB
		{4096, 768, 160}, {3072, 512, 128}, {2048, 384, 96}, {2048, 256, 64},
	},
	{ // 16-21 GiB
		{6144, 1024, 192}, {4096, 768, 160}, {3072, 512, 128}, {2048, 384, 64},
	},
	{ // >=22 GiB
		{8192, 1536, 256}, {6144, 1024, 192}, {4096, 768, 128}, {3072, 512, 96},
	},
}

// Defaults picks the initial runtime configuration for a model on a given
// accelerator. Pure lookup: unknown inputs select the most conservative
// row/column rather than failing. threads <= 0 uses the logical core count.
func Defaults(memoryMiB, sizeB, threads int) types.RuntimeConfig {
	row := initialConfigs[memoryBucket(memoryMiB)][sizeBucket(sizeB)]
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	return types.RuntimeConfig{
		ContextLength: row[0],
		PredictTokens: row[1],
		BatchSize:     row[2],
		ThreadCount:   threads,
	}
}

// Caps bound the upward climb for one accelerator memory tier.
type Caps struct {
	Ctx   int
	Batch int
}

// CapsFor returns the climb ceiling for the accelerator's memory tier.
// Unknown memory gets the mid-tier ceiling rather than the smallest: the
// downward ladder already protects against overshoot, and probing upward is
// the only way to learn the real limit.
func CapsFor(memoryMiB int) Caps {
	if memoryMiB <= 0 {
		return Caps{Ctx: 12288, Batch: 256}
	}
	gib := (memoryMiB + 512) / 1024
	switch {
	case gib >= 22:
		return Caps{Ctx: 16384, Batch: 320}
	case gib >= 16:
		return Caps{Ctx: 12288, Batch: 256}
	case gib >= 12:
		return Caps{Ctx: 8192, Batch: 192}
	default:
		return Caps{Ctx: 6144, Batch: 160}
	}
}

// Package gpu queries the accelerator inventory through nvidia-smi.
package gpu

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"modeltune/pkg/types"
)

// Detect queries nvidia-smi for installed devices and returns the one with
// the most memory. Any failure (missing binary, unparseable output, no
// devices) yields the zero profile; the caller treats that as "unknown" and
// falls back to conservative defaults.
func Detect(ctx context.Context) types.AcceleratorProfile {
	out, err := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu=name,memory.total", "--format=csv,noheader,nounits").Output()
	if err != nil {
		log.Debug().Err(err).Msg("nvidia-smi query failed; accelerator unknown")
		return types.AcceleratorProfile{}
	}
	return Parse(string(out))
}

// Parse reads nvidia-smi CSV lines ("<name>, <MiB>") and selects the entry
// with maximum memory. Malformed lines are skipped.
func Parse(out string) types.AcceleratorProfile {
	var best types.AcceleratorProfile
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		idx := strings.LastIndex(line, ",")
		if idx < 0 {
			continue
		}
		name := strings.TrimSpace(line[:idx])
		mib, err := strconv.Atoi(strings.TrimSpace(line[idx+1:]))
		if err != nil || mib <= 0 {
			continue
		}
		if mib > best.MemoryMiB {
			best = types.AcceleratorProfile{DeviceName: name, MemoryMiB: mib}
		}
	}
	return best
}

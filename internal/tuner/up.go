package tuner

import (
	"context"

	"github.com/rs/zerolog/log"

	"modeltune/pkg/types"
)

// Climb increments per accepted step.
const (
	batchStep = 32
	ctxStep   = 1024
)

// climb hill-climbs batch size then context length toward the tier caps,
// one increment at a time, reverting any step whose probe fails. A pass
// that accepts nothing is the fixed point. Returns true when at least one
// step was accepted; in that case the final configuration is written and
// reloaded once more so the persisted artifact matches the live state.
func (t *Tuner) climb(ctx context.Context, s *session, caps Caps) bool {
	for {
		changed := false
		if s.cfg.BatchSize < caps.Batch {
			next := s.cfg.BatchSize + batchStep
			if next > caps.Batch {
				next = caps.Batch
			}
			if t.tryStep(ctx, s, s.cfg.WithBatchSize(next), "batch") {
				changed = true
			}
		}
		if s.cfg.ContextLength < caps.Ctx {
			next := s.cfg.ContextLength + ctxStep
			if next > caps.Ctx {
				next = caps.Ctx
			}
			if t.tryStep(ctx, s, s.cfg.WithContextLength(next), "ctx") {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	if !s.improved {
		log.Info().Str("alias", s.alias).Msg("no safe headroom found")
		return false
	}
	// One more write+reload to pin the accepted configuration.
	t.apply(ctx, s, s.cfg)
	return true
}

// tryStep applies a candidate configuration and probes it. A candidate
// counts as accepted only when both the reload and the probe succeed; on
// either failure the previous configuration is re-applied (write + reload)
// so the runtime's live state matches the last accepted config before the
// climb continues.
func (t *Tuner) tryStep(ctx context.Context, s *session, cand types.RuntimeConfig, param string) bool {
	prev := s.cfg
	if !t.apply(ctx, s, cand) || !t.probe(ctx, s.alias) {
		climbStepsTotal.WithLabelValues(param, "reverted").Inc()
		log.Info().
			Str("alias", s.alias).
			Str("param", param).
			Int("ctx", prev.ContextLength).
			Int("batch", prev.BatchSize).
			Msg("climb step failed, reverting")
		t.apply(ctx, s, prev)
		return false
	}
	climbStepsTotal.WithLabelValues(param, "accepted").Inc()
	s.improved = true
	return true
}

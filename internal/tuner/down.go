package tuner

import (
	"context"

	"github.com/rs/zerolog/log"

	"modeltune/pkg/types"
)

// maxDownAttempts bounds the downward state machine: at most this many
// probes before the session is declared exhausted.
const maxDownAttempts = 6

// Shrink ladders, consulted strictly in order. Context shrinks first; batch
// only once context has bottomed out.
var (
	ctxRungs   = []int{12288, 8192, 6144, 4096, 3072, 2048}
	batchRungs = []int{192, 160, 128, 96, 64}
)

// nextRung returns the largest rung strictly below cur. Traversal is
// monotonic: a value at or below the lowest rung has nowhere to go.
func nextRung(rungs []int, cur int) (int, bool) {
	for _, r := range rungs {
		if r < cur {
			return r, true
		}
	}
	return 0, false
}

// shrink produces the next-smaller configuration, context first, batch once
// context is at its floor. ok is false when no smaller value exists.
func shrink(cfg types.RuntimeConfig) (next types.RuntimeConfig, param string, ok bool) {
	if cfg.ContextLength > ctxRungs[len(ctxRungs)-1] {
		if v, found := nextRung(ctxRungs, cfg.ContextLength); found {
			return cfg.WithContextLength(v), "ctx", true
		}
	}
	if cfg.BatchSize > batchRungs[len(batchRungs)-1] {
		if v, found := nextRung(batchRungs, cfg.BatchSize); found {
			return cfg.WithBatchSize(v), "batch", true
		}
	}
	return cfg, "", false
}

// descend probes the loaded model and walks the shrink ladder on failures
// until a probe succeeds, the ladder runs out, or the attempt bound is hit.
// Returns nil once the model is loaded and answering.
func (t *Tuner) descend(ctx context.Context, s *session) error {
	for attempt := 1; ; attempt++ {
		s.attempt = attempt
		if t.probe(ctx, s.alias) {
			return nil
		}
		if attempt >= maxDownAttempts {
			return ErrLadderExhausted(s.alias, s.cfg)
		}
		next, param, ok := shrink(s.cfg)
		if !ok {
			return ErrLadderExhausted(s.alias, s.cfg)
		}
		shrinkStepsTotal.WithLabelValues(param).Inc()
		log.Info().
			Str("alias", s.alias).
			Int("attempt", attempt).
			Int("ctx", next.ContextLength).
			Int("batch", next.BatchSize).
			Msg("shrinking after failed probe")
		t.apply(ctx, s, next)
	}
}

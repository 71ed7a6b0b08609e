package tuner

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"modeltune/pkg/types"
)

// ConfigWriter persists the runtime's parameter artifact for one alias.
// Write returns the artifact path so the runtime can be pointed at it.
type ConfigWriter interface {
	Write(alias, sourcePath string, cfg types.RuntimeConfig) (string, error)
}

// RuntimeController (re)creates and unloads named models in the serving
// runtime. Both operations are best-effort from the tuner's point of view:
// a failed reload makes the next probe fail, which is the signal that
// actually drives tuning.
type RuntimeController interface {
	Create(ctx context.Context, alias, modelfilePath string) error
	Unload(ctx context.Context, alias string) error
}

// Prober issues one bounded, minimal inference request against a loaded
// model. A nil error is the only success signal; timeouts and rejections
// are indistinguishable failures.
type Prober interface {
	Probe(ctx context.Context, alias string) error
}

// Config encapsulates the collaborators and tunables for Tuner construction.
type Config struct {
	Writer  ConfigWriter
	Runtime RuntimeController
	Prober  Prober
	// Threads overrides the thread count in generated configs; 0 uses the
	// detected logical core count.
	Threads int
}

// Tuner runs adaptive parameter tuning sessions. It holds no per-session
// state; concurrent calls for different aliases are safe as long as they do
// not share an accelerator, which callers must serialize themselves.
type Tuner struct {
	writer  ConfigWriter
	runtime RuntimeController
	prober  Prober
	threads int
}

// New constructs a Tuner from Config.
func New(cfg Config) *Tuner {
	return &Tuner{
		writer:  cfg.Writer,
		runtime: cfg.Runtime,
		prober:  cfg.Prober,
		threads: cfg.Threads,
	}
}

// Result is the outcome of one tuning session.
type Result struct {
	Alias    string
	Config   types.RuntimeConfig
	Outcome  types.Outcome
	Attempts int
}

// session is the working state threaded through one tuning run. It never
// outlives the Tune call that created it.
type session struct {
	alias     string
	modelPath string
	cfg       types.RuntimeConfig
	attempt   int
	improved  bool
}

// Tune registers modelPath under alias and converges on a configuration:
// table defaults, downward shrink on probe failures, then an upward climb
// toward the accelerator tier caps. The returned error is non-nil only when
// the shrink ladder is exhausted (IsLadderExhausted); the Result is valid
// either way.
func (t *Tuner) Tune(ctx context.Context, alias string, desc types.ModelDescriptor, prof types.AcceleratorProfile) (Result, error) {
	start := time.Now()
	s := &session{
		alias:     alias,
		modelPath: desc.SourcePath,
		cfg:       Defaults(prof.MemoryMiB, desc.SizeB, t.threads),
	}
	log.Info().
		Str("alias", alias).
		Str("model", desc.SourcePath).
		Int("size_b", desc.SizeB).
		Int("memory_mib", prof.MemoryMiB).
		Int("ctx", s.cfg.ContextLength).
		Int("batch", s.cfg.BatchSize).
		Msg("tuning session start")

	// Initial load with the table defaults.
	t.apply(ctx, s, s.cfg)

	if err := t.descend(ctx, s); err != nil {
		sessionsTotal.WithLabelValues(string(types.OutcomeExhausted)).Inc()
		sessionDuration.Observe(time.Since(start).Seconds())
		log.Warn().Str("alias", alias).Int("attempts", s.attempt).Err(err).Msg("tuning exhausted")
		// Stop the failed instance so it does not hold accelerator memory.
		if uerr := t.runtime.Unload(ctx, alias); uerr != nil {
			log.Debug().Str("alias", alias).Err(uerr).Msg("unload after exhaustion failed")
		}
		return Result{Alias: alias, Config: s.cfg, Outcome: types.OutcomeExhausted, Attempts: s.attempt}, err
	}

	outcome := types.OutcomeNoHeadroom
	if t.climb(ctx, s, CapsFor(prof.MemoryMiB)) {
		outcome = types.OutcomeTuned
	}
	sessionsTotal.WithLabelValues(string(outcome)).Inc()
	sessionDuration.Observe(time.Since(start).Seconds())
	log.Info().
		Str("alias", alias).
		Str("outcome", string(outcome)).
		Int("attempts", s.attempt).
		Int("ctx", s.cfg.ContextLength).
		Int("predict", s.cfg.PredictTokens).
		Int("batch", s.cfg.BatchSize).
		Msg("tuning session done")
	return Result{Alias: alias, Config: s.cfg, Outcome: outcome, Attempts: s.attempt}, nil
}

// apply writes the artifact and reloads the model, committing cfg as the
// session's current config once the artifact is written; the persisted
// artifact and the session config must move together. A false return means
// cfg is not live: probes keep answering for the previous load, so callers
// that need an acceptance signal must treat it like a failed probe.
func (t *Tuner) apply(ctx context.Context, s *session, cfg types.RuntimeConfig) bool {
	path, err := t.writer.Write(s.alias, s.modelPath, cfg)
	if err != nil {
		log.Error().Str("alias", s.alias).Err(err).Msg("write modelfile failed")
		return false
	}
	s.cfg = cfg
	if err := t.runtime.Create(ctx, s.alias, path); err != nil {
		log.Error().Str("alias", s.alias).Err(err).Msg("reload failed")
		return false
	}
	return true
}

// probe wraps the prober with metrics and returns plain success/failure.
func (t *Tuner) probe(ctx context.Context, alias string) bool {
	if err := t.prober.Probe(ctx, alias); err != nil {
		probesTotal.WithLabelValues("fail").Inc()
		log.Debug().Str("alias", alias).Err(err).Msg("probe failed")
		return false
	}
	probesTotal.WithLabelValues("ok").Inc()
	return true
}

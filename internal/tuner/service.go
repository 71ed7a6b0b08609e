package tuner

import (
	"context"
	"sync"

	"modeltune/internal/common/fsutil"
	"modeltune/pkg/types"
)

// Pinger checks that the serving runtime is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProfileFunc returns the accelerator profile to tune against.
type ProfileFunc func(ctx context.Context) types.AcceleratorProfile

// Service fronts the tuner for the HTTP API and CLI: it validates requests,
// detects the accelerator, serializes sessions (one accelerator, one probe
// oracle), and remembers the last completed session for status reporting.
type Service struct {
	base    Config
	pinger  Pinger
	profile ProfileFunc

	mu      sync.Mutex
	busy    bool
	current string
	last    *types.TuneResponse
	lastPro types.AcceleratorProfile
}

// NewService constructs a Service. pinger may be nil; profile must not be.
func NewService(base Config, pinger Pinger, profile ProfileFunc) *Service {
	return &Service{base: base, pinger: pinger, profile: profile}
}

// Tune runs one tuning session for the requested model file. A second call
// while one is running fails fast with ErrBusy. On an exhausted ladder the
// response is still returned alongside the error.
func (s *Service) Tune(ctx context.Context, req types.TuneRequest) (types.TuneResponse, error) {
	modelPath, err := fsutil.ResolveModelFile(req.ModelPath)
	if err != nil {
		return types.TuneResponse{}, err
	}
	alias := req.Alias
	if alias == "" {
		alias = fsutil.AliasFromPath(modelPath)
	}

	s.mu.Lock()
	if s.busy {
		cur := s.current
		s.mu.Unlock()
		return types.TuneResponse{}, ErrBusy(cur)
	}
	s.busy = true
	s.current = alias
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.busy = false
		s.current = ""
		s.mu.Unlock()
	}()

	prof := s.profile(ctx)
	desc := types.ModelDescriptor{SourcePath: modelPath, SizeB: ParseSizeB(modelPath)}

	cfg := s.base
	if req.Threads > 0 {
		cfg.Threads = req.Threads
	}
	res, err := New(cfg).Tune(ctx, alias, desc, prof)

	resp := types.TuneResponse{
		Alias:    res.Alias,
		Outcome:  res.Outcome,
		Config:   res.Config,
		Attempts: res.Attempts,
	}
	s.mu.Lock()
	s.last = &resp
	s.lastPro = prof
	s.mu.Unlock()
	return resp, err
}

// Status reports runtime reachability, the detected accelerator, and the
// last completed session.
func (s *Service) Status(ctx context.Context) types.StatusResponse {
	reachable := false
	if s.pinger != nil && s.pinger.Ping(ctx) == nil {
		reachable = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prof := s.lastPro
	if !prof.Known() {
		prof = s.profile(ctx)
		s.lastPro = prof
	}
	return types.StatusResponse{
		RuntimeReachable: reachable,
		Accelerator:      prof,
		LastSession:      s.last,
		Tuning:           s.busy,
	}
}

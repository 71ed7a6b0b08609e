// Package tuner converges on runtime load parameters for a registered model.
// It is structured into small files by concern:
//
//   - tuner.go: Tuner type, collaborator interfaces, Tune entry point, session.
//   - defaults.go: memory/size bucketing and the initial-config table; climb caps.
//   - size.go: model-size magnitude parsed from a filename.
//   - down.go: bounded shrink state machine driven by probe failures.
//   - up.go: headroom hill-climb toward the tier caps.
//   - errors.go: error types and helpers (IsLadderExhausted).
//   - metrics.go: Prometheus counters/histograms for probes, steps, sessions.
//
// The accelerator's memory is never inspected directly; probe outcomes are
// the only oracle. That assumption holds only while a single session runs
// against a given accelerator, so callers must serialize sessions.
package tuner

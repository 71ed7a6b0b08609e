package types

// AcceleratorProfile describes the accelerator selected for tuning.
// A zero MemoryMiB means the accelerator (or its memory size) could not be
// determined; callers fall back to conservative defaults.
type AcceleratorProfile struct {
	// Device name as reported by the driver.
	// example: NVIDIA GeForce RTX 4090
	DeviceName string `json:"device_name,omitempty" example:"NVIDIA GeForce RTX 4090"`
	// Total device memory in MiB. 0 = unknown.
	// example: 24564
	MemoryMiB int `json:"memory_mib,omitempty" example:"24564"`
}

// Known reports whether the profile carries usable memory information.
func (p AcceleratorProfile) Known() bool { return p.MemoryMiB > 0 }

// ModelDescriptor identifies the model file being registered.
type ModelDescriptor struct {
	// Absolute path to the model file on disk.
	// example: /home/user/models/llama-7b.Q4_K_M.gguf
	SourcePath string `json:"source_path" example:"/home/user/models/llama-7b.Q4_K_M.gguf"`
	// Parameter-count magnitude parsed from the filename, decimal point
	// stripped ("7b" -> 7, "7.5b" -> 75). 0 = unknown.
	// example: 7
	SizeB int `json:"size_b,omitempty" example:"7"`
}

// RuntimeConfig is one immutable set of runtime load parameters. Tuning
// produces new values; a config that has been probed is never mutated.
type RuntimeConfig struct {
	// Context window size in tokens.
	// example: 8192
	ContextLength int `json:"context_length" example:"8192"`
	// Maximum tokens to predict per request.
	// example: 1536
	PredictTokens int `json:"predict_tokens" example:"1536"`
	// Prompt-processing batch size.
	// example: 256
	BatchSize int `json:"batch_size" example:"256"`
	// CPU threads for the runtime. Defaults to the logical core count.
	// example: 16
	ThreadCount int `json:"thread_count" example:"16"`
}

// WithBatchSize returns a copy with BatchSize replaced.
func (c RuntimeConfig) WithBatchSize(n int) RuntimeConfig {
	c.BatchSize = n
	return c
}

// WithContextLength returns a copy with ContextLength replaced.
func (c RuntimeConfig) WithContextLength(n int) RuntimeConfig {
	c.ContextLength = n
	return c
}

// Outcome classifies how a tuning session ended.
type Outcome string

const (
	// OutcomeTuned: the model loaded and at least one upward step was accepted.
	OutcomeTuned Outcome = "tuned"
	// OutcomeNoHeadroom: the model loaded but no upward step survived a probe.
	OutcomeNoHeadroom Outcome = "tuned_no_headroom"
	// OutcomeExhausted: the shrink ladder ran out before the model loaded.
	OutcomeExhausted Outcome = "exhausted"
)

package types

// TuneRequest asks the server to register and tune one model file.
type TuneRequest struct {
	// Absolute path to a GGUF model file on the server's filesystem.
	// example: /home/user/models/llama-7b.Q4_K_M.gguf
	ModelPath string `json:"model_path" example:"/home/user/models/llama-7b.Q4_K_M.gguf"`
	// Alias to register the model under. Defaults to the filename stem.
	// example: llama7b
	Alias string `json:"alias,omitempty" example:"llama7b"`
	// Thread count override; 0 uses the detected core count.
	// example: 16
	Threads int `json:"threads,omitempty" example:"16"`
}

// TuneResponse reports the result of one tuning session.
type TuneResponse struct {
	// Alias the model was registered under.
	// example: llama7b
	Alias string `json:"alias" example:"llama7b"`
	// Session outcome (tuned, tuned_no_headroom, exhausted).
	// example: tuned
	Outcome Outcome `json:"outcome" example:"tuned"`
	// Final accepted configuration.
	Config RuntimeConfig `json:"config"`
	// Probe attempts spent on the downward ladder.
	// example: 1
	Attempts int `json:"attempts" example:"1"`
}

// StatusResponse summarizes the server and the most recent session.
type StatusResponse struct {
	// Whether the serving runtime answered the last reachability check.
	// example: true
	RuntimeReachable bool `json:"runtime_reachable" example:"true"`
	// Detected accelerator, if any.
	Accelerator AcceleratorProfile `json:"accelerator"`
	// Last completed session, if any.
	LastSession *TuneResponse `json:"last_session,omitempty"`
	// Whether a session is currently running.
	// example: false
	Tuning bool `json:"tuning" example:"false"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

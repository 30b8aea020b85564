package types

// GenerateRequest is the payload of POST /v1/generate.
type GenerateRequest struct {
	// Prompts in caller order. Each is a string or a list of {role, prompt} turns.
	Inputs []PromptItem `json:"inputs" swaggertype:"array,object"`
	// Advisory cap on generated length. Forwarded only when the server is configured with a max-out flag.
	// example: 512
	MaxOutLen int `json:"max_out_len,omitempty" example:"512"`
}

// GenerateResponse carries completions in the same order as GenerateRequest.Inputs.
type GenerateResponse struct {
	// Completions, outputs[i] answers inputs[i].
	Outputs []string `json:"outputs"`
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

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Tool executable the adapter shells out to.
	// example: /usr/local/bin/gpt-tool
	Tool string `json:"tool" example:"/usr/local/bin/gpt-tool"`
	// Model identifier passed to the tool.
	// example: gpt-4o
	Model string `json:"model" example:"gpt-4o"`
	// Worker-concurrency hint passed to the tool.
	// example: 8
	Workers int `json:"workers" example:"8"`
	// Directory holding session request/response files.
	// example: /tmp/gptbridge
	SessionDir string `json:"session_dir" example:"/tmp/gptbridge"`
	// Batches currently running.
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// Batches completed successfully since start.
	// example: 12
	Completed uint64 `json:"completed" example:"12"`
	// Batches that returned an error since start.
	// example: 1
	Failed uint64 `json:"failed" example:"1"`
	// Last error observed (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
}

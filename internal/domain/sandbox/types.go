package sandbox

import (
	"time"
)

// Config defines the budget applied to every run.
type Config struct {
	MemoryLimitMB     int64         // Heap ceiling per isolate in MB
	Timeout           time.Duration // Default total-run deadline (bootstrap + user code)
	MaxConcurrentRuns int           // Concurrent run slots; 0 means default
}

// DefaultConfig returns production-ready sandbox configuration.
func DefaultConfig() Config {
	return Config{
		MemoryLimitMB:     128,
		Timeout:           5 * time.Second,
		MaxConcurrentRuns: 8,
	}
}

// Result is the only channel through which a sandboxed run is observed.
// At most one of FinalAnswer/Error is meaningful; both may be absent when the
// code terminates without answering and without throwing.
type Result struct {
	RunID       string        `json:"run_id"`
	FinalAnswer *string       `json:"final_answer,omitempty"`
	Error       string        `json:"error,omitempty"`
	ErrorKind   ErrorKind     `json:"error_kind,omitempty"`
	Stdout      []string      `json:"stdout"`
	Stderr      []string      `json:"stderr"`
	Duration    time.Duration `json:"duration"`
}

// OK reports whether the run finished without a classified failure.
func (r *Result) OK() bool {
	return r.ErrorKind == ""
}

func (r *Result) fail(err *RunError) {
	r.Error = err.Message
	r.ErrorKind = err.Kind
	r.FinalAnswer = nil
}

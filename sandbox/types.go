package sandbox

import (
	"context"
	"time"
)

// Status is the terminal state of one sandbox run.
type Status string

// Terminal run statuses.
const (
	StatusCompleted            Status = "completed"
	StatusFailed               Status = "failed"
	StatusTimedOut             Status = "timed_out"
	StatusAugmentationRequired Status = "augmentation_required"
)

// InvokeFunc performs one tool call on behalf of the sandboxed code.
type InvokeFunc func(ctx context.Context, args map[string]any) (any, error)

// Binding exposes one tool adapter to the sandboxed code under a function
// name. The sandbox can reach nothing beyond its bindings.
type Binding struct {
	// Name is the identifier the function is installed under.
	Name string

	// Provider and Tool identify the remote tool behind the binding.
	Provider string
	Tool     string

	// Invoke performs the call. Required.
	Invoke InvokeFunc
}

// Request describes one execution.
type Request struct {
	// Source is the JavaScript to run. The code may use await at the top
	// level and its final return value becomes the run's value.
	Source string `json:"source"`

	// Timeout is the wall-clock budget. Zero means the engine's default.
	Timeout time.Duration `json:"timeout,omitempty"`

	// MaxToolCalls limits tool invocations for this run. Zero means the
	// engine's configured limit; the engine's limit also caps this value.
	MaxToolCalls int `json:"maxToolCalls,omitempty"`
}

// CallRecord captures one tool invocation made during a run.
type CallRecord struct {
	// Function is the binding name the code called.
	Function string `json:"function"`

	// Provider and Tool identify the remote tool.
	Provider string `json:"provider"`
	Tool     string `json:"tool"`

	// Args are the arguments the code passed.
	Args map[string]any `json:"args,omitempty"`

	// Error is the failure message if the call failed.
	Error string `json:"error,omitempty"`

	// DurationMs is the call's execution time in milliseconds.
	DurationMs int64 `json:"durationMs"`
}

// Result is the outcome of one run.
type Result struct {
	// RunID uniquely identifies this run.
	RunID string `json:"runId"`

	// Status is the terminal state.
	Status Status `json:"status"`

	// Value is the code's return value when Status is StatusCompleted.
	Value any `json:"value,omitempty"`

	// ErrorMessage describes the failure for non-completed statuses.
	ErrorMessage string `json:"errorMessage,omitempty"`

	// Output holds the captured console lines in emission order.
	Output []string `json:"output,omitempty"`

	// ToolCalls records every tool invocation in call order.
	ToolCalls []CallRecord `json:"toolCalls,omitempty"`

	// DurationMs is the total run time in milliseconds.
	DurationMs int64 `json:"durationMs"`
}

// Succeeded reports whether the run completed normally.
func (r Result) Succeeded() bool {
	return r.Status == StatusCompleted
}

package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
)

// runState accumulates the observable side effects of one run. Host
// functions execute on the interpreter goroutine, so no locking is needed.
type runState struct {
	ctx          context.Context
	maxToolCalls int
	callCount    int
	calls        []CallRecord
	output       []string
}

// installHost populates a fresh interpreter with the run's namespace: the
// tool bindings, a console, and a sleep primitive. Nothing else is exposed.
func installHost(vm *goja.Runtime, run *runState, bindings []Binding) {
	for _, b := range bindings {
		vm.Set(b.Name, bindingFunc(run, b))
	}
	vm.Set("console", map[string]any{
		"log":   run.println,
		"info":  run.println,
		"warn":  run.println,
		"error": run.println,
	})
	vm.Set("sleep", run.sleep)
}

// bindingFunc adapts one Binding into a function the code can call. A
// returned error becomes a thrown exception the code may catch.
func bindingFunc(run *runState, b Binding) func(args map[string]any) (any, error) {
	return func(args map[string]any) (any, error) {
		if run.maxToolCalls > 0 && run.callCount >= run.maxToolCalls {
			return nil, fmt.Errorf("%w: max tool calls (%d)", ErrLimitExceeded, run.maxToolCalls)
		}
		run.callCount++

		start := time.Now()
		value, err := b.Invoke(run.ctx, args)
		record := CallRecord{
			Function:   b.Name,
			Provider:   b.Provider,
			Tool:       b.Tool,
			Args:       args,
			DurationMs: time.Since(start).Milliseconds(),
		}
		if err != nil {
			record.Error = err.Error()
		}
		run.calls = append(run.calls, record)
		return value, err
	}
}

// println captures one console line. Scalars print as-is; structured values
// render as indented JSON so the agent can read real output shapes.
func (r *runState) println(args ...any) {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, stringify(a))
	}
	r.output = append(r.output, strings.Join(parts, " "))
}

// sleep pauses the code for the given number of milliseconds, waking early
// if the run's budget expires.
func (r *runState) sleep(ms int64) error {
	if ms <= 0 {
		return nil
	}
	select {
	case <-time.After(time.Duration(ms) * time.Millisecond):
		return nil
	case <-r.ctx.Done():
		return r.ctx.Err()
	}
}

func stringify(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any, []any:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		return fmt.Sprint(v)
	}
}

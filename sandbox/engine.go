package sandbox

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/google/uuid"
)

// DefaultTimeout bounds a run when neither the request nor the engine
// configuration sets a budget.
const DefaultTimeout = 30 * time.Second

const programName = "agent_code"

// Config holds the configuration for an execution engine.
type Config struct {
	// DefaultTimeout is the wall-clock budget applied when a request does
	// not set one. Zero means DefaultTimeout.
	DefaultTimeout time.Duration

	// MaxToolCalls caps tool invocations per run. Zero means unlimited.
	// A request's own limit is capped by this value.
	MaxToolCalls int

	// HasAugmentation reports whether recorded output knowledge exists for
	// a tool. It drives the exploration gate; nil disables the gate.
	HasAugmentation func(providerID, toolName string) bool

	// Logger is an optional logger for observability.
	Logger Logger
}

// Engine compiles and runs agent code. A single Engine may serve concurrent
// runs; every run gets a fresh interpreter.
type Engine struct {
	cfg Config
}

// NewEngine creates an Engine with the given configuration.
func NewEngine(cfg Config) *Engine {
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = DefaultTimeout
	}
	return &Engine{cfg: cfg}
}

// Execute runs one request against the given bindings.
//
// The returned error is non-nil for engine misuse (malformed bindings, a
// context that is already done) and for the two host-detected failure modes,
// compile errors (matching ErrCompile) and budget exhaustion (matching
// ErrTimeout). An uncaught error thrown by the agent's own code is not an
// error here: the run finishes with StatusFailed and the message in the
// Result. Callers that only branch on outcome can ignore the error and
// inspect Result.Status.
func (e *Engine) Execute(ctx context.Context, req Request, bindings []Binding) (Result, error) {
	if err := validateBindings(bindings); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = e.cfg.DefaultTimeout
	}
	maxCalls := req.MaxToolCalls
	if e.cfg.MaxToolCalls > 0 && (maxCalls == 0 || maxCalls > e.cfg.MaxToolCalls) {
		maxCalls = e.cfg.MaxToolCalls
	}

	res := Result{RunID: uuid.NewString()}
	start := time.Now()

	prog, err := goja.Compile(programName, wrapSource(req.Source), false)
	if err != nil {
		cerr := newCodeError(err)
		res.Status = StatusFailed
		res.ErrorMessage = cerr.Error()
		res.DurationMs = time.Since(start).Milliseconds()
		return res, cerr
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	run := &runState{ctx: runCtx, maxToolCalls: maxCalls}
	vm := goja.New()
	installHost(vm, run, bindings)

	timer := time.AfterFunc(timeout, func() { vm.Interrupt(ErrTimeout) })
	value, runErr := vm.RunProgram(prog)
	timer.Stop()

	res.Output = run.output
	res.ToolCalls = run.calls
	res.DurationMs = time.Since(start).Milliseconds()

	if e.cfg.Logger != nil {
		defer func() {
			e.cfg.Logger.Logf("run %s: %s, %d tool calls, %d output lines, %dms",
				res.RunID, res.Status, len(res.ToolCalls), len(res.Output), res.DurationMs)
		}()
	}

	if runErr != nil {
		return e.finishAborted(res, runErr, timeout)
	}

	promise, ok := value.Export().(*goja.Promise)
	if !ok {
		res.Status = StatusFailed
		res.ErrorMessage = "code did not produce a result"
		return res, nil
	}

	switch promise.State() {
	case goja.PromiseStateFulfilled:
		res.Status = StatusCompleted
		res.Value = promise.Result().Export()
	case goja.PromiseStateRejected:
		if runCtx.Err() == context.DeadlineExceeded {
			res.Status = StatusTimedOut
			res.ErrorMessage = fmt.Sprintf("execution timeout after %v", timeout)
			return res, fmt.Errorf("%w: after %v", ErrTimeout, timeout)
		}
		res.Status = StatusFailed
		res.ErrorMessage = promise.Result().String()
	default:
		// Nothing in the host can settle a promise after the run returns,
		// so a pending result means the code awaited something it never
		// resolved.
		res.Status = StatusFailed
		res.ErrorMessage = "code never settled its result"
	}

	if res.Status == StatusCompleted {
		res = e.applyExplorationGate(req.Source, res)
	}
	return res, nil
}

// finishAborted classifies an error returned by the interpreter itself.
func (e *Engine) finishAborted(res Result, runErr error, timeout time.Duration) (Result, error) {
	switch v := runErr.(type) {
	case *goja.InterruptedError:
		res.Status = StatusTimedOut
		res.ErrorMessage = fmt.Sprintf("execution timeout after %v", timeout)
		return res, fmt.Errorf("%w: after %v", ErrTimeout, timeout)
	case *goja.Exception:
		res.Status = StatusFailed
		res.ErrorMessage = v.Value().String()
		return res, nil
	default:
		res.Status = StatusFailed
		res.ErrorMessage = runErr.Error()
		return res, nil
	}
}

// applyExplorationGate downgrades a completed exploratory run when any tool
// it touched has no recorded augmentation yet.
func (e *Engine) applyExplorationGate(source string, res Result) Result {
	if e.cfg.HasAugmentation == nil || !hasExploreDirective(source) {
		return res
	}
	missing := missingAugmentations(res.ToolCalls, e.cfg.HasAugmentation)
	if len(missing) == 0 {
		return res
	}
	res.Status = StatusAugmentationRequired
	res.ErrorMessage = "augmentation required for " + strings.Join(missing, ", ") +
		": record the observed output shape before re-running without the explore directive"
	return res
}

func missingAugmentations(calls []CallRecord, has func(string, string) bool) []string {
	seen := make(map[string]bool)
	var missing []string
	for _, c := range calls {
		key := c.Provider + ":" + c.Tool
		if seen[key] {
			continue
		}
		seen[key] = true
		if !has(c.Provider, c.Tool) {
			missing = append(missing, key)
		}
	}
	return missing
}

func validateBindings(bindings []Binding) error {
	seen := make(map[string]bool, len(bindings))
	for _, b := range bindings {
		if b.Name == "" {
			return fmt.Errorf("%w: binding with empty name", ErrConfiguration)
		}
		if b.Invoke == nil {
			return fmt.Errorf("%w: binding %q has no invoke function", ErrConfiguration, b.Name)
		}
		if seen[b.Name] {
			return fmt.Errorf("%w: duplicate binding name %q", ErrConfiguration, b.Name)
		}
		seen[b.Name] = true
	}
	return nil
}

// wrapSource turns the submitted source into an async IIFE so the code can
// use top-level await and return its final value.
func wrapSource(src string) string {
	return "(async () => {\n" + src + "\n})()"
}

var compilePos = regexp.MustCompile(`Line (\d+):(\d+)`)

// newCodeError extracts a source position from a compiler diagnostic.
// The async wrapper adds one line above the submitted source, so reported
// lines are shifted back by one.
func newCodeError(err error) *CodeError {
	ce := &CodeError{Message: err.Error(), Err: err}
	if m := compilePos.FindStringSubmatch(err.Error()); m != nil {
		line, _ := strconv.Atoi(m[1])
		col, _ := strconv.Atoi(m[2])
		if line > 1 {
			ce.Line = line - 1
			ce.Column = col
		}
	}
	return ce
}

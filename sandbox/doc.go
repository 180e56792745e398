// Package sandbox executes agent-written JavaScript with access to exactly
// the tool bindings injected into it.
//
// The sandbox is an embedded interpreter with no ambient capabilities: no
// filesystem, no environment, no network. Every externally observable effect
// of a run goes through an injected [Binding]. The host provides a small
// console facility for captured output and a synchronous sleep primitive.
//
// # Run Lifecycle
//
// A run moves through compile and execute phases and ends in one of four
// terminal statuses:
//
//   - [StatusCompleted]: the code returned normally; the value is in
//     [Result].Value.
//   - [StatusFailed]: the source failed to compile, or the code threw an
//     uncaught error; the message is in [Result].ErrorMessage.
//   - [StatusTimedOut]: the wall-clock budget was exhausted; the interpreter
//     was interrupted and discarded.
//   - [StatusAugmentationRequired]: the source carried the exploration
//     directive and called a tool with no recorded output knowledge; the
//     captured output is preserved so the caller can write that knowledge
//     down before retrying.
//
// A fresh interpreter is created per run and never reused, so a timed-out or
// failed run cannot leak state into the next one.
//
// # Exploration
//
// Source whose first statements include the directive "use explore" opts
// into exploration mode. An exploratory run that touches a tool without any
// recorded augmentation finishes as [StatusAugmentationRequired] instead of
// [StatusCompleted]. This is a control-flow policy: it trades one failed
// round-trip for durable documentation of the tool's real output shape.
//
// Contract:
// - Concurrency: an Engine is safe for concurrent use; each run gets its own interpreter.
// - Context: Execute honors cancellation; an expired context aborts in-flight tool calls.
// - Errors: compile failures match ErrCompile; budget exhaustion matches ErrTimeout;
//   uncaught errors thrown by the agent's own code are data, reported in the Result.
// - Ownership: the Request and Bindings are read-only; the returned Result is caller-owned.
package sandbox

// Package signature turns a tool catalog into a statically-typed calling
// surface description: one deterministic, collision-free function name per
// tool, a structural parameter and return type rendered from the tool's
// JSON Schema, and documentation text that folds in the tool's own
// description plus every augmentation recorded for it.
//
// Function naming is shared with the call proxy builder via [Names], so the
// name an agent reads in a generated signature is exactly the name bound in
// its sandbox namespace.
//
// Schema constructs with no structural equivalent (unconstrained recursion
// past the depth bound, unresolvable references) degrade the affected tool
// to an untyped passthrough signature instead of failing the whole pass.
package signature

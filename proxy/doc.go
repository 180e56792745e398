// Package proxy materializes call adapters for a selected subset of the
// tool catalog.
//
// An adapter is a closure over one tool descriptor and its provider's
// connection settings. It holds no live connection: every invocation
// validates the argument against the tool's input schema, opens a fresh
// connection, issues the call under the provider's timeout, retries
// immediately (no backoff) up to the provider's configured retry count on
// transport failures, and closes the connection before returning, success
// or not.
//
// Only explicitly selected tools are built, which bounds the namespace a
// sandbox run can reach: the executed code can never touch an undiscovered
// or unselected tool.
//
// Application-level tool errors (the provider ran the tool and reported a
// failure) are returned as ordinary values; only transport and protocol
// failures become *InvocationError.
package proxy

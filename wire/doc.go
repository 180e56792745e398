// Package wire implements the outbound transport boundary between the core
// pipeline and remote tool providers.
//
// Every provider, regardless of transport, is reached through the same
// [Connection] shape: list the provider's tools, call one tool, close. The
// protocol on the wire is JSON-RPC 2.0 with MCP-shaped methods (initialize,
// tools/list, tools/call). Three transports are provided:
//
//   - http: one POST request/response per JSON-RPC message
//   - stdio: a spawned subprocess exchanging newline-delimited messages on
//     its stdin/stdout
//   - socket: newline-delimited messages over a TCP connection
//
// Connections are short-lived: the discovery service and every call adapter
// open a fresh connection, use it, and close it before returning. Nothing in
// this package pools or reuses connections.
//
// [Dial] selects the transport from a provider descriptor and performs the
// initialize handshake. Transport and protocol failures are reported as
// *[TransportError]; application-level tool errors are not errors here, they
// travel in [Result].IsError.
package wire

// Package provider holds validated connection descriptors for remote tool
// providers and the in-memory registry that owns them for the process
// lifetime.
//
// A provider is an independent remote process or service exposing a set of
// callable tools over one of three transports: request/response HTTP, a
// spawned subprocess speaking a line-oriented protocol, or a persistent
// socket. The registry performs no network activity; it only validates and
// stores descriptors. Connections are opened later, per discovery pass or
// per tool call, by the wire package.
//
// Descriptors are typically loaded from a YAML file via [Load] or [Parse],
// which expand ${VAR} and ${VAR:-default} environment references in
// connection fields before validation.
package provider

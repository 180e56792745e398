// Package catalog builds the normalized in-memory tool catalog from every
// registered provider.
//
// Discovery opens one short-lived connection per provider, concurrently,
// enumerates the provider's tools, and closes the connection. Tool names are
// namespaced by provider ID, so identical names on different providers never
// collide. A provider that cannot be reached is recorded as a per-provider
// failure and discovery continues; only a pass in which every provider is
// unreachable fails outright.
//
// The catalog is a cache with no durability guarantee. It is rebuilt on
// demand and handed out read-only; no tool descriptor outlives the pass
// that produced it.
package catalog

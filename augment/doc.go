// Package augment is the append-only knowledge base of tool output notes.
//
// After an exploratory run, the agent records what a tool's output actually
// looks like: a shape description plus a worked parsing example, keyed by
// (provider, tool). Entries are immutable once written and never deleted;
// a correction is a newer entry that supersedes older ones in generated
// documentation, not a mutation of history.
//
// Two stores are provided. MemoryStore keeps entries in process. FileStore
// persists one human-readable YAML document stream per provider and reloads
// it on open, which is how augmentations survive to enrich the next
// discovery cycle's generated signatures.
package augment

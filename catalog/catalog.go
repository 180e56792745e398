package catalog

import (
	"fmt"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Key addresses one tool within the catalog.
type Key struct {
	Provider string `json:"provider"`
	Tool     string `json:"tool"`
}

// String renders the key as provider:tool.
func (k Key) String() string {
	return k.Provider + ":" + k.Tool
}

// Tool is one discovered tool. It embeds the MCP SDK tool model (name,
// description, input/output schemas, annotations) and records the owning
// provider.
type Tool struct {
	mcp.Tool

	// Provider is the ID of the provider that serves this tool.
	Provider string
}

// Key returns the catalog key for this tool.
func (t Tool) Key() Key {
	return Key{Provider: t.Provider, Tool: t.Name}
}

// ProviderError records one provider that failed during a discovery pass.
type ProviderError struct {
	// Provider is the unreachable provider's ID.
	Provider string

	// Err is the underlying transport or protocol failure.
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("catalog: provider %q unavailable: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Catalog is the result of one discovery pass: every reachable provider's
// tools plus per-provider failure annotations. It is read-only once built.
type Catalog struct {
	tools    map[Key]Tool
	failures []ProviderError
}

// New assembles a catalog from already-discovered tools. A tool with an
// empty provider or name is skipped; duplicate keys keep the last entry.
// Discover is the usual way to obtain a catalog; New exists for callers
// that source tools elsewhere.
func New(tools []Tool, failures []ProviderError) *Catalog {
	cat := &Catalog{
		tools:    make(map[Key]Tool, len(tools)),
		failures: append([]ProviderError(nil), failures...),
	}
	for _, t := range tools {
		if t.Provider == "" || t.Name == "" {
			continue
		}
		cat.tools[t.Key()] = t
	}
	return cat
}

// Lookup returns the tool stored under key.
func (c *Catalog) Lookup(key Key) (Tool, bool) {
	t, ok := c.tools[key]
	return t, ok
}

// Keys returns every catalog key sorted by provider then tool name.
func (c *Catalog) Keys() []Key {
	out := make([]Key, 0, len(c.tools))
	for k := range c.tools {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].Tool < out[j].Tool
	})
	return out
}

// Len returns the number of tools in the catalog.
func (c *Catalog) Len() int {
	return len(c.tools)
}

// Failures returns the providers that could not be reached in this pass,
// sorted by provider ID.
func (c *Catalog) Failures() []ProviderError {
	out := append([]ProviderError(nil), c.failures...)
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out
}

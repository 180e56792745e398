package signature

import (
	"fmt"
	"strings"

	"github.com/jonwraymond/codebridge/catalog"
)

// FunctionName derives the base function name for one tool:
// sanitize(toolName) + "_" + sanitize(providerID). The result is a valid
// identifier but is not yet collision-checked; use Names for a whole
// catalog.
func FunctionName(key catalog.Key) string {
	return sanitizeIdent(key.Tool) + "_" + sanitizeIdent(key.Provider)
}

// Names assigns a unique function name to every tool in the catalog.
// Derivation is deterministic: keys are visited in the catalog's sorted
// order and a colliding base name gets a _2, _3, ... suffix by visit order.
// Two runs over catalogs with the same keys produce the same mapping.
func Names(cat *catalog.Catalog) map[catalog.Key]string {
	out := make(map[catalog.Key]string, cat.Len())
	used := make(map[string]bool, cat.Len())

	for _, key := range cat.Keys() {
		base := FunctionName(key)
		name := base
		// A suffixed name can itself collide with another key's base
		// (for example read_file_srv_2 from provider srv_2), so every
		// candidate is checked against all names assigned so far.
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[name] = true
		out[key] = name
	}
	return out
}

// sanitizeIdent replaces every character that cannot appear in an
// identifier with an underscore and prefixes a leading digit.
func sanitizeIdent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

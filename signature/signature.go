package signature

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jonwraymond/codebridge/augment"
	"github.com/jonwraymond/codebridge/catalog"
)

// returnOpaque is the return type used when a tool declares no output
// schema: the response shape is only knowable from augmentations.
const returnOpaque = "unknown"

// Signature is the generated typed surface for one tool.
type Signature struct {
	// FunctionName is the unique, deterministic name the tool is bound
	// under in the sandbox namespace.
	FunctionName string `json:"functionName"`

	// Key identifies the underlying tool.
	Key catalog.Key `json:"key"`

	// ParameterType is the structural type text of the tool's argument.
	ParameterType string `json:"parameterType"`

	// ReturnType is the structural type text of the tool's result, or
	// "unknown" when the tool declares no output schema.
	ReturnType string `json:"returnType"`

	// Untyped is true when schema translation failed and the signature
	// degraded to an untyped passthrough.
	Untyped bool `json:"untyped,omitempty"`

	// Doc is the human-readable documentation: provider heading, tool
	// description, then every augmentation recorded for the tool.
	Doc string `json:"doc"`
}

// Render formats the signature as a single declaration line, the form in
// which tools are presented to the agent.
func (s Signature) Render() string {
	return fmt.Sprintf("async function %s(params: %s): Promise<%s>", s.FunctionName, s.ParameterType, s.ReturnType)
}

// Generate produces signatures for every tool in the catalog, merging in
// augmentation notes from the store. Translation failures never abort the
// pass; the affected tool degrades to an untyped passthrough.
func Generate(cat *catalog.Catalog, store augment.Store) (map[string]Signature, error) {
	names := Names(cat)
	displayTitle := cases.Title(language.English)

	out := make(map[string]Signature, cat.Len())
	for _, key := range cat.Keys() {
		tool, _ := cat.Lookup(key)

		sig := Signature{
			FunctionName: names[key],
			Key:          key,
		}

		paramType, perr := renderType(tool.InputSchema, 0)
		returnType := returnOpaque
		var rerr error
		if tool.OutputSchema != nil {
			returnType, rerr = renderType(tool.OutputSchema, 0)
		}
		if perr != nil || rerr != nil {
			sig.ParameterType = untyped
			sig.ReturnType = untyped
			sig.Untyped = true
		} else {
			sig.ParameterType = paramType
			sig.ReturnType = returnType
		}

		entries, err := storeEntries(store, key)
		if err != nil {
			return nil, err
		}
		sig.Doc = renderDoc(displayTitle, tool, sig, entries)

		out[sig.FunctionName] = sig
	}
	return out, nil
}

func storeEntries(store augment.Store, key catalog.Key) ([]augment.Entry, error) {
	if store == nil {
		return nil, nil
	}
	entries, err := store.List(key.Provider, key.Tool)
	if err != nil {
		return nil, fmt.Errorf("signature: reading augmentations for %s: %w", key, err)
	}
	return entries, nil
}

func renderDoc(displayTitle cases.Caser, tool catalog.Tool, sig Signature, entries []augment.Entry) string {
	var b strings.Builder

	heading := strings.ReplaceAll(tool.Provider, "-", " ")
	heading = strings.ReplaceAll(heading, "_", " ")
	fmt.Fprintf(&b, "%s: %s\n", displayTitle.String(heading), tool.Name)

	if desc := strings.TrimSpace(tool.Description); desc != "" {
		b.WriteString(desc)
		b.WriteString("\n")
	}
	if sig.Untyped {
		b.WriteString("Schema could not be translated; parameters and result are untyped passthrough.\n")
	}

	if len(entries) > 0 {
		b.WriteString("\nObserved output (from exploration):\n")
		for _, e := range entries {
			fmt.Fprintf(&b, "- [%s] %s\n", e.CreatedAt.UTC().Format("2006-01-02"), e.OutputShape)
			if example := strings.TrimSpace(e.ParsingExample); example != "" {
				for _, line := range strings.Split(example, "\n") {
					b.WriteString("    ")
					b.WriteString(line)
					b.WriteString("\n")
				}
			}
		}
	}
	return b.String()
}

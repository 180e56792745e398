package signature

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrTranslation indicates a JSON Schema construct with no structural
// equivalent. The affected tool keeps its catalog entry but degrades to an
// untyped passthrough signature.
var ErrTranslation = errors.New("signature: schema translation error")

// maxTypeDepth bounds schema recursion during type rendering. Schemas
// nesting deeper than this (including self-referencing ones) have no
// finite structural rendering.
const maxTypeDepth = 8

// untyped is the passthrough type text used when translation fails.
const untyped = "any"

// renderType renders a JSON Schema (decoded as a generic map) as structural
// type text in a TypeScript-like notation, the notation agent code is
// written against.
func renderType(schema any, depth int) (string, error) {
	if depth > maxTypeDepth {
		return "", fmt.Errorf("%w: nesting exceeds depth %d", ErrTranslation, maxTypeDepth)
	}

	switch s := schema.(type) {
	case nil:
		return untyped, nil
	case bool:
		// JSON Schema allows boolean schemas: true accepts anything,
		// false accepts nothing.
		if s {
			return untyped, nil
		}
		return "never", nil
	case map[string]any:
		return renderSchemaMap(s, depth)
	default:
		return "", fmt.Errorf("%w: schema is %T, not an object", ErrTranslation, schema)
	}
}

func renderSchemaMap(s map[string]any, depth int) (string, error) {
	if len(s) == 0 {
		return untyped, nil
	}
	if _, ok := s["$ref"]; ok {
		return "", fmt.Errorf("%w: $ref is not supported", ErrTranslation)
	}

	if c, ok := s["const"]; ok {
		return literal(c), nil
	}
	if enum, ok := s["enum"].([]any); ok && len(enum) > 0 {
		parts := make([]string, len(enum))
		for i, v := range enum {
			parts[i] = literal(v)
		}
		return strings.Join(parts, " | "), nil
	}

	for _, combinator := range []string{"oneOf", "anyOf"} {
		if variants, ok := s[combinator].([]any); ok && len(variants) > 0 {
			return renderVariants(variants, " | ", depth)
		}
	}
	if parts, ok := s["allOf"].([]any); ok && len(parts) > 0 {
		return renderVariants(parts, " & ", depth)
	}

	switch typ := s["type"].(type) {
	case string:
		return renderTyped(typ, s, depth)
	case []any:
		parts := make([]string, 0, len(typ))
		for _, t := range typ {
			name, ok := t.(string)
			if !ok {
				return "", fmt.Errorf("%w: non-string entry in type array", ErrTranslation)
			}
			rendered, err := renderTyped(name, s, depth)
			if err != nil {
				return "", err
			}
			parts = append(parts, rendered)
		}
		return strings.Join(parts, " | "), nil
	case nil:
		// No type keyword: an object-shaped schema if properties are
		// declared, otherwise unconstrained.
		if _, ok := s["properties"]; ok {
			return renderTyped("object", s, depth)
		}
		return untyped, nil
	default:
		return "", fmt.Errorf("%w: unsupported type keyword %v", ErrTranslation, s["type"])
	}
}

func renderTyped(typ string, s map[string]any, depth int) (string, error) {
	switch typ {
	case "string":
		return "string", nil
	case "number", "integer":
		return "number", nil
	case "boolean":
		return "boolean", nil
	case "null":
		return "null", nil
	case "array":
		items, ok := s["items"]
		if !ok {
			return untyped + "[]", nil
		}
		inner, err := renderType(items, depth+1)
		if err != nil {
			return "", err
		}
		if strings.ContainsAny(inner, " |&") {
			inner = "(" + inner + ")"
		}
		return inner + "[]", nil
	case "object":
		return renderObject(s, depth)
	default:
		return "", fmt.Errorf("%w: unknown type %q", ErrTranslation, typ)
	}
}

func renderObject(s map[string]any, depth int) (string, error) {
	props, _ := s["properties"].(map[string]any)
	if len(props) == 0 {
		if ap, ok := s["additionalProperties"]; ok {
			inner, err := renderType(ap, depth+1)
			if err != nil {
				return "", err
			}
			return "Record<string, " + inner + ">", nil
		}
		return "object", nil
	}

	required := make(map[string]bool)
	if req, ok := s["required"].([]any); ok {
		for _, r := range req {
			if name, ok := r.(string); ok {
				required[name] = true
			}
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]string, 0, len(names))
	for _, name := range names {
		inner, err := renderType(props[name], depth+1)
		if err != nil {
			return "", err
		}
		marker := "?"
		if required[name] {
			marker = ""
		}
		fields = append(fields, fmt.Sprintf("%s%s: %s", name, marker, inner))
	}
	return "{" + strings.Join(fields, ", ") + "}", nil
}

func renderVariants(variants []any, sep string, depth int) (string, error) {
	parts := make([]string, 0, len(variants))
	for _, v := range variants {
		inner, err := renderType(v, depth+1)
		if err != nil {
			return "", err
		}
		parts = append(parts, inner)
	}
	return strings.Join(parts, sep), nil
}

func literal(v any) string {
	switch val := v.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	case nil:
		return "null"
	default:
		return fmt.Sprint(val)
	}
}

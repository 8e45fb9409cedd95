package gemini

import (
	"sort"
	"strings"

	"google.golang.org/genai"
)

// toSchema converts a JSON-schema style map (type, items, properties,
// required, description, enum, propertyOrdering) into a genai.Schema. Unknown keys are ignored.
func toSchema(m map[string]any) *genai.Schema {
	if m == nil {
		return nil
	}
	s := &genai.Schema{}
	if t, ok := m["type"].(string); ok {
		s.Type = schemaType(t)
	}
	if d, ok := m["description"].(string); ok {
		s.Description = d
	}
	if items, ok := m["items"].(map[string]any); ok {
		s.Items = toSchema(items)
	}
	if props, ok := m["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		keys := make([]string, 0, len(props))
		for k, v := range props {
			sub, ok := v.(map[string]any)
			if !ok {
				continue
			}
			s.Properties[k] = toSchema(sub)
			keys = append(keys, k)
		}
		sort.Strings(keys)
		s.PropertyOrdering = keys
		if order := stringList(m["propertyOrdering"]); len(order) > 0 {
			s.PropertyOrdering = order
		}
	}
	s.Required = stringList(m["required"])
	s.Enum = stringList(m["enum"])
	return s
}

func schemaType(t string) genai.Type {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

func stringList(v any) []string {
	switch vv := v.(type) {
	case []string:
		return append([]string(nil), vv...)
	case []any:
		out := make([]string, 0, len(vv))
		for _, x := range vv {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

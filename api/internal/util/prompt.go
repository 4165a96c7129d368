package util

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// LoadPromptFile returns the trimmed contents of path, or fallback when path is empty.
func LoadPromptFile(path, fallback string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return fallback, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("prompt %q: %w", path, err)
	}
	if s := strings.TrimSpace(string(b)); s != "" {
		return s, nil
	}
	return fallback, nil
}

// StrictSchema parses a JSON Schema and makes it acceptable for OpenAI strict mode.
func StrictSchema(raw string) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("bad schema: %w", err)
	}
	FixJSONSchemaStrict(m)
	return m, nil
}

// Приводим схему к «строгому» виду для OpenAI: если есть properties, добавляем type=object,
// additionalProperties=false и required со всеми полями.
func FixJSONSchemaStrict(node any) {
	switch n := node.(type) {
	case map[string]any:
		if props, ok := n["properties"].(map[string]any); ok {
			if _, hasType := n["type"]; !hasType {
				n["type"] = "object"
			}
			n["additionalProperties"] = false
			req := make([]any, 0, len(props))
			for k := range props {
				req = append(req, k)
			}
			n["required"] = req
			for _, v := range props {
				FixJSONSchemaStrict(v)
			}
		}
		if items, ok := n["items"]; ok {
			switch it := items.(type) {
			case map[string]any:
				FixJSONSchemaStrict(it)
			case []any:
				for _, el := range it {
					FixJSONSchemaStrict(el)
				}
			}
		}
		for _, k := range []string{"oneOf", "anyOf", "allOf"} {
			if arr, ok := n[k].([]any); ok {
				for _, el := range arr {
					FixJSONSchemaStrict(el)
				}
			}
		}
	case []any:
		for _, v := range n {
			FixJSONSchemaStrict(v)
		}
	}
}

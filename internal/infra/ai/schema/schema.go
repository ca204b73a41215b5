// Package schema describes structural output shapes and validates decoded
// JSON against them. Shapes are go-openai jsonschema definitions so the same
// value can be sent to a backend and checked with jsonschema.Validate when
// it comes back.
package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// Object builds an object shape. Properties not listed in required are optional.
func Object(props map[string]jsonschema.Definition, required ...string) jsonschema.Definition {
	return jsonschema.Definition{
		Type:                 jsonschema.Object,
		Properties:           props,
		Required:             required,
		AdditionalProperties: false,
	}
}

func String(description string) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.String, Description: description}
}

func ArrayOf(item jsonschema.Definition, description string) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.Array, Items: &item, Description: description}
}

// ValidationError points at the first place data diverges from the shape.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// Check validates data, as produced by encoding/json into an any, against
// def. Acceptance is decided by jsonschema.Validate; optional fields that are
// null and keys the shape does not declare are pruned first. On rejection the
// first diverging path is reported.
func Check(def jsonschema.Definition, data any) error {
	data = prune(def, data)
	if jsonschema.Validate(def, data) {
		return nil
	}
	if err := locate(def, data, "$"); err != nil {
		return err
	}
	return &ValidationError{Path: "$", Reason: "does not match schema"}
}

// prune returns a copy of data without null optional fields and undeclared
// object keys.
func prune(def jsonschema.Definition, data any) any {
	switch def.Type {
	case jsonschema.Object:
		obj, ok := data.(map[string]any)
		if !ok {
			return data
		}
		out := make(map[string]any, len(obj))
		for name, v := range obj {
			prop, declared := def.Properties[name]
			if !declared || (v == nil && !contains(def.Required, name)) {
				continue
			}
			out[name] = prune(prop, v)
		}
		return out
	case jsonschema.Array:
		arr, ok := data.([]any)
		if !ok || def.Items == nil {
			return data
		}
		out := make([]any, len(arr))
		for i, item := range arr {
			out[i] = prune(*def.Items, item)
		}
		return out
	}
	return data
}

// locate finds the first path where data diverges from def. It only explains
// a rejection; it does not decide one.
func locate(def jsonschema.Definition, data any, path string) *ValidationError {
	if data == nil && def.Type != jsonschema.Null {
		return &ValidationError{Path: path, Reason: "is null, want " + string(def.Type)}
	}
	switch def.Type {
	case jsonschema.Object:
		obj, ok := data.(map[string]any)
		if !ok {
			return mismatch(path, def.Type, data)
		}
		names := make([]string, 0, len(def.Properties))
		for name := range def.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range def.Required {
			if _, present := obj[name]; !present {
				return &ValidationError{Path: path + "." + name, Reason: "required field is missing"}
			}
		}
		for _, name := range names {
			if v, present := obj[name]; present {
				if err := locate(def.Properties[name], v, path+"."+name); err != nil {
					return err
				}
			}
		}
	case jsonschema.Array:
		arr, ok := data.([]any)
		if !ok {
			return mismatch(path, def.Type, data)
		}
		if def.Items != nil {
			for i, item := range arr {
				if err := locate(*def.Items, item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
					return err
				}
			}
		}
	case jsonschema.String:
		s, ok := data.(string)
		if !ok {
			return mismatch(path, def.Type, data)
		}
		if len(def.Enum) > 0 && !contains(def.Enum, s) {
			return &ValidationError{Path: path, Reason: fmt.Sprintf("%q is not one of %s", s, strings.Join(def.Enum, ", "))}
		}
	case jsonschema.Number:
		if _, ok := data.(float64); !ok {
			return mismatch(path, def.Type, data)
		}
	case jsonschema.Integer:
		f, ok := data.(float64)
		if !ok || f != math.Trunc(f) {
			return mismatch(path, def.Type, data)
		}
	case jsonschema.Boolean:
		if _, ok := data.(bool); !ok {
			return mismatch(path, def.Type, data)
		}
	}
	return nil
}

// Decode parses raw JSON, checks it against def and only then unmarshals it
// into v. Nothing is written to v when validation fails.
func Decode(def jsonschema.Definition, raw []byte, v any) error {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return &ValidationError{Path: "$", Reason: "invalid JSON: " + err.Error()}
	}
	if err := Check(def, data); err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// Value checks an arbitrary Go value by round-tripping it through JSON.
func Value(def jsonschema.Definition, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("unmarshal value: %w", err)
	}
	return Check(def, data)
}

func mismatch(path string, want jsonschema.DataType, got any) *ValidationError {
	return &ValidationError{Path: path, Reason: fmt.Sprintf("is %s, want %s", kindOf(got), want)}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

package schema

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
)

// ValidationError represents a validation error
type ValidationError struct {
	Message string
	Path    []string
}

// Error returns the error message
func (e *ValidationError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("%s at %s", e.Message, strings.Join(e.Path, "."))
	}
	return e.Message
}

func prefix(err error, segment string) error {
	if valErr, ok := err.(*ValidationError); ok {
		valErr.Path = append([]string{segment}, valErr.Path...)
	}
	return err
}

// Schema defines validation rules
type Schema interface {
	// Validate validates a value against the schema
	Validate(value any) (any, error)
}

// StringSchema validates strings
type StringSchema struct {
	MinLength int
	MaxLength int
	Pattern   string
	pattern   *regexp.Regexp
}

// Validate validates a string
func (s *StringSchema) Validate(value any) (any, error) {
	str, ok := value.(string)
	if !ok {
		return nil, &ValidationError{
			Message: fmt.Sprintf("value %v is not a string", value),
		}
	}

	if s.MinLength > 0 && len(str) < s.MinLength {
		return nil, &ValidationError{
			Message: fmt.Sprintf("string length %d is less than minimum length %d", len(str), s.MinLength),
		}
	}

	if s.MaxLength > 0 && len(str) > s.MaxLength {
		return nil, &ValidationError{
			Message: fmt.Sprintf("string length %d is greater than maximum length %d", len(str), s.MaxLength),
		}
	}

	if s.Pattern != "" {
		if s.pattern == nil {
			re, err := regexp.Compile(s.Pattern)
			if err != nil {
				return nil, &ValidationError{
					Message: fmt.Sprintf("invalid pattern %q: %v", s.Pattern, err),
				}
			}
			s.pattern = re
		}
		if !s.pattern.MatchString(str) {
			return nil, &ValidationError{
				Message: fmt.Sprintf("string %q does not match pattern %s", str, s.Pattern),
			}
		}
	}

	return str, nil
}

// ArraySchema validates arrays
type ArraySchema struct {
	ItemSchema Schema
	MinItems   int
	MaxItems   int
}

// Validate validates an array
func (s *ArraySchema) Validate(value any) (any, error) {
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Slice && val.Kind() != reflect.Array {
		return nil, &ValidationError{
			Message: "value is not an array",
		}
	}

	length := val.Len()

	if s.MinItems > 0 && length < s.MinItems {
		return nil, &ValidationError{
			Message: fmt.Sprintf("array length %d is less than minimum length %d", length, s.MinItems),
		}
	}

	if s.MaxItems > 0 && length > s.MaxItems {
		return nil, &ValidationError{
			Message: fmt.Sprintf("array length %d is greater than maximum length %d", length, s.MaxItems),
		}
	}

	if s.ItemSchema == nil {
		return value, nil
	}

	result := make([]any, 0, length)
	for i := 0; i < length; i++ {
		validatedItem, err := s.ItemSchema.Validate(val.Index(i).Interface())
		if err != nil {
			return nil, prefix(err, fmt.Sprintf("[%d]", i))
		}
		result = append(result, validatedItem)
	}
	return result, nil
}

// ObjectSchema validates string-keyed maps
type ObjectSchema struct {
	Properties map[string]Schema
	Required   []string
	// Strict rejects keys that are not listed in Properties.
	Strict bool
}

// Validate validates an object
func (s *ObjectSchema) Validate(value any) (any, error) {
	obj, err := stringMap(value)
	if err != nil {
		return nil, err
	}

	for _, req := range s.Required {
		if v, ok := obj[req]; !ok || v == nil {
			return nil, &ValidationError{
				Message: fmt.Sprintf("required property %s is missing", req),
			}
		}
	}

	result := make(map[string]any, len(obj))
	for _, key := range sortedKeys(obj) {
		prop := obj[key]
		schema, known := s.Properties[key]
		if !known {
			if s.Strict {
				return nil, &ValidationError{
					Message: fmt.Sprintf("unknown property %s", key),
				}
			}
			result[key] = prop
			continue
		}
		if prop == nil {
			continue
		}
		validatedProp, err := schema.Validate(prop)
		if err != nil {
			return nil, prefix(err, key)
		}
		result[key] = validatedProp
	}

	return result, nil
}

// MapSchema validates string-keyed maps whose values share one schema
type MapSchema struct {
	ValueSchema Schema
	KeySchema   Schema
}

// Validate validates a map
func (s *MapSchema) Validate(value any) (any, error) {
	obj, err := stringMap(value)
	if err != nil {
		return nil, err
	}

	result := make(map[string]any, len(obj))
	for _, key := range sortedKeys(obj) {
		if s.KeySchema != nil {
			if _, err := s.KeySchema.Validate(key); err != nil {
				return nil, prefix(err, key)
			}
		}
		v := obj[key]
		if s.ValueSchema != nil {
			v, err = s.ValueSchema.Validate(v)
			if err != nil {
				return nil, prefix(err, key)
			}
		}
		result[key] = v
	}
	return result, nil
}

// stringMap accepts map[string]any as well as the map[any]any some decoders
// produce.
func stringMap(value any) (map[string]any, error) {
	switch m := value.(type) {
	case map[string]any:
		return m, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, &ValidationError{
					Message: fmt.Sprintf("key %v is not a string", k),
				}
			}
			out[ks] = v
		}
		return out, nil
	}
	return nil, &ValidationError{
		Message: "value is not an object",
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String creates a new string schema
func String() *StringSchema {
	return &StringSchema{}
}

// Pattern creates a string schema matching re
func Pattern(re string) *StringSchema {
	return &StringSchema{Pattern: re}
}

// Array creates a new array schema
func Array(itemSchema Schema) *ArraySchema {
	return &ArraySchema{
		ItemSchema: itemSchema,
	}
}

// Object creates a new object schema
func Object(properties map[string]Schema, required ...string) *ObjectSchema {
	return &ObjectSchema{
		Properties: properties,
		Required:   required,
	}
}

// Map creates a new map schema
func Map(valueSchema Schema) *MapSchema {
	return &MapSchema{
		ValueSchema: valueSchema,
	}
}

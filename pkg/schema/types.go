package schema

import (
	"fmt"
	"strings"
)

// FieldType enumerates the kinds of values a tracker field can hold.
type FieldType string

const (
	FieldTypeString        FieldType = "string"
	FieldTypeArray         FieldType = "array"
	FieldTypeObject        FieldType = "object"
	FieldTypeForEachObject FieldType = "forEachObject"
	FieldTypeArrayObject   FieldType = "arrayObject"
)

// IsNesting reports whether fields of this type carry child fields.
func (t FieldType) IsNesting() bool {
	switch t {
	case FieldTypeObject, FieldTypeForEachObject, FieldTypeArrayObject:
		return true
	}
	return false
}

// ParseFieldType converts a raw string into a member of the closed enum.
func ParseFieldType(raw string) (FieldType, error) {
	switch FieldType(strings.TrimSpace(raw)) {
	case FieldTypeString:
		return FieldTypeString, nil
	case FieldTypeArray:
		return FieldTypeArray, nil
	case FieldTypeObject:
		return FieldTypeObject, nil
	case FieldTypeForEachObject:
		return FieldTypeForEachObject, nil
	case FieldTypeArrayObject:
		return FieldTypeArrayObject, nil
	}
	return "", fmt.Errorf("schema: unknown field type %q", raw)
}

// Record is the serialized form of a field: the shape handed to preset
// storage, prompt building, and output merging. NestedFields is always
// present on nesting types, possibly empty, so consumers can recurse without
// nil checks.
type Record struct {
	Name          string            `json:"name" yaml:"name"`
	Type          FieldType         `json:"type" yaml:"type"`
	Dynamic       bool              `json:"isDynamic" yaml:"isDynamic"`
	Prompt        string            `json:"prompt" yaml:"prompt"`
	DefaultValue  string            `json:"defaultValue" yaml:"defaultValue"`
	ExampleValues []string          `json:"exampleValues" yaml:"exampleValues"`
	NestedFields  map[string]Record `json:"nestedFields" yaml:"nestedFields"`
}

// Field is a snapshot of a live tree node. Children lists child ids in
// insertion order; the snapshot is a copy and never aliases tree state.
type Field struct {
	ID            string
	ParentID      string
	Name          string
	Type          FieldType
	Dynamic       bool
	Prompt        string
	DefaultValue  string
	ExampleValues []string
	Children      []string
}

// Init carries optional attributes for Create. The zero value produces a
// dynamic string field with an empty name. ID is only set on the load path;
// Dynamic is a pointer so callers can distinguish "unset" from false.
type Init struct {
	ID            string
	Name          string
	Type          FieldType
	Dynamic       *bool
	Prompt        string
	DefaultValue  string
	ExampleValues []string
}

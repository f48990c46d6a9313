// Package jsonschema exports a tracker snapshot as a JSON Schema describing
// the object a generation backend must return. Backends with structured
// output support can enforce the tracker shape instead of relying on prompt
// discipline alone.
package jsonschema

import (
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	json "github.com/goccy/go-json"

	"github.com/goliatone/go-trackgen/pkg/schema"
)

// ErrEmptySchema reports an export with no fields.
var ErrEmptySchema = errors.New("jsonschema: no fields to export")

// ForFields builds the response schema for a serialized tracker snapshot.
// Dynamic fields become required properties; static fields are omitted
// entirely since their values never come from the backend.
func ForFields(fields map[string]schema.Record) (*openapi3.Schema, error) {
	if len(fields) == 0 {
		return nil, ErrEmptySchema
	}
	root, err := objectSchema(fields)
	if err != nil {
		return nil, err
	}
	root.Description = "Tracker state for the current scene."
	return root, nil
}

// Encode renders the response schema as indented JSON.
func Encode(fields map[string]schema.Record) ([]byte, error) {
	root, err := ForFields(fields)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("jsonschema: encode: %w", err)
	}
	return data, nil
}

func objectSchema(fields map[string]schema.Record) (*openapi3.Schema, error) {
	object := openapi3.NewObjectSchema()
	object.Properties = openapi3.Schemas{}
	for _, id := range schema.SortedIDs(fields) {
		record := fields[id]
		if !record.Dynamic {
			continue
		}
		property, err := fieldSchema(record)
		if err != nil {
			return nil, fmt.Errorf("jsonschema: field %q: %w", id, err)
		}
		object.Properties[record.Name] = openapi3.NewSchemaRef("", property)
		object.Required = append(object.Required, record.Name)
	}
	return object, nil
}

func fieldSchema(record schema.Record) (*openapi3.Schema, error) {
	var (
		out *openapi3.Schema
		err error
	)
	switch record.Type {
	case schema.FieldTypeString:
		out = openapi3.NewStringSchema()
	case schema.FieldTypeArray:
		out = openapi3.NewArraySchema()
		out.Items = openapi3.NewSchemaRef("", openapi3.NewStringSchema())
	case schema.FieldTypeObject:
		out, err = objectSchema(record.NestedFields)
	case schema.FieldTypeArrayObject:
		var entry *openapi3.Schema
		entry, err = objectSchema(record.NestedFields)
		if err == nil {
			out = openapi3.NewArraySchema()
			out.Items = openapi3.NewSchemaRef("", entry)
		}
	case schema.FieldTypeForEachObject:
		var entry *openapi3.Schema
		entry, err = objectSchema(record.NestedFields)
		if err == nil {
			out = openapi3.NewObjectSchema()
			out.AdditionalProperties = openapi3.AdditionalProperties{
				Schema: openapi3.NewSchemaRef("", entry),
			}
		}
	default:
		return nil, fmt.Errorf("unknown field type %q", record.Type)
	}
	if err != nil {
		return nil, err
	}
	if prompt := record.Prompt; prompt != "" {
		out.Description = prompt
	}
	return out, nil
}

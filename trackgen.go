// Package trackgen builds structured state trackers for chat applications: a
// schema tree describing the fields to track, prompt construction for a
// generation backend, and merging of backend output into tracker records.
// The root package re-exports the schema model and offers one-call helpers;
// the pkg subpackages hold the full surface.
package trackgen

import (
	"github.com/goliatone/go-trackgen/pkg/jsonschema"
	"github.com/goliatone/go-trackgen/pkg/merge"
	"github.com/goliatone/go-trackgen/pkg/preset"
	"github.com/goliatone/go-trackgen/pkg/prompt"
	"github.com/goliatone/go-trackgen/pkg/schema"
)

// FieldType re-exports the schema field type enumeration.
type FieldType = schema.FieldType

const (
	FieldTypeString        = schema.FieldTypeString
	FieldTypeArray         = schema.FieldTypeArray
	FieldTypeObject        = schema.FieldTypeObject
	FieldTypeForEachObject = schema.FieldTypeForEachObject
	FieldTypeArrayObject   = schema.FieldTypeArrayObject
)

type Field = schema.Field
type Record = schema.Record
type Init = schema.Init
type Tree = schema.Tree
type Preset = preset.Preset
type Message = prompt.Message

// NewTree returns an empty schema tree.
func NewTree() *Tree {
	return schema.NewTree()
}

// BuildPrompt renders the generation prompt for a serialized snapshot using
// the builtin template.
func BuildPrompt(fields map[string]Record, messages []Message) (string, error) {
	builder, err := prompt.NewBuilder()
	if err != nil {
		return "", err
	}
	return builder.Build(prompt.Request{Fields: fields, Messages: messages})
}

// ApplyOutput merges raw backend output onto a tracker record shaped by the
// snapshot.
func ApplyOutput(fields map[string]Record, raw string) (string, error) {
	return merge.Apply(fields, raw)
}

// ResponseSchema exports the JSON Schema a structured-output backend should
// enforce for the snapshot.
func ResponseSchema(fields map[string]Record) ([]byte, error) {
	return jsonschema.Encode(fields)
}

// LoadPreset reads a preset file, picking the codec from the extension.
func LoadPreset(path string) (Preset, error) {
	return preset.Load(path)
}

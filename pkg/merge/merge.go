// Package merge applies generation-backend output onto a tracker record. The
// serialized schema snapshot decides the shape: unknown keys are dropped,
// missing dynamic fields fall back to their default value, static fields
// always come from the schema, and nesting types recurse. The result is a
// JSON document keyed by field name, in sibling order.
package merge

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/goliatone/go-trackgen/pkg/schema"
)

// ErrNoObject reports output with no parseable JSON object in it.
var ErrNoObject = errors.New("merge: no JSON object in output")

// ExtractObject pulls the JSON object out of loose model output. Backends
// often wrap the object in prose or code fences; everything outside the
// outermost braces is discarded.
func ExtractObject(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return "", ErrNoObject
	}
	candidate := raw[start : end+1]
	if !gjson.Valid(candidate) {
		return "", fmt.Errorf("%w: malformed candidate", ErrNoObject)
	}
	return candidate, nil
}

// Apply extracts the JSON object from raw backend output and merges it onto
// a fresh tracker record shaped by the snapshot.
func Apply(fields map[string]schema.Record, raw string) (string, error) {
	object, err := ExtractObject(raw)
	if err != nil {
		return "", err
	}
	return applyObject(fields, gjson.Parse(object))
}

// Defaults renders the tracker record produced when the backend returns
// nothing usable: every dynamic field at its default, statics included.
func Defaults(fields map[string]schema.Record) (string, error) {
	return applyObject(fields, gjson.Result{})
}

func applyObject(fields map[string]schema.Record, src gjson.Result) (string, error) {
	doc := "{}"
	for _, id := range schema.SortedIDs(fields) {
		record := fields[id]
		value, err := applyValue(record, src.Get(escapePath(record.Name)))
		if err != nil {
			return "", err
		}
		doc, err = sjson.SetRaw(doc, escapePath(record.Name), value)
		if err != nil {
			return "", fmt.Errorf("merge: set %q: %w", record.Name, err)
		}
	}
	return doc, nil
}

func applyValue(record schema.Record, src gjson.Result) (string, error) {
	if !record.Dynamic {
		return staticValue(record)
	}

	switch record.Type {
	case schema.FieldTypeArray:
		return applyArray(record, src)
	case schema.FieldTypeObject:
		return applyObject(record.NestedFields, src)
	case schema.FieldTypeArrayObject:
		return applyObjectList(record, src)
	case schema.FieldTypeForEachObject:
		return applyPerEntry(record, src)
	default:
		if src.Exists() && !src.IsObject() && !src.IsArray() {
			return marshalString(src.String())
		}
		return marshalString(record.DefaultValue)
	}
}

// staticValue renders a non-dynamic field from the schema alone, keeping the
// shape the response skeleton promises: nesting types recurse with every
// descendant at its schema value. forEachObject stays an empty object since
// the backend names its entries.
func staticValue(record schema.Record) (string, error) {
	switch record.Type {
	case schema.FieldTypeArray:
		if record.DefaultValue == "" {
			return "[]", nil
		}
		raw, err := json.Marshal([]string{record.DefaultValue})
		if err != nil {
			return "", fmt.Errorf("merge: encode array: %w", err)
		}
		return string(raw), nil
	case schema.FieldTypeObject:
		return applyObject(record.NestedFields, gjson.Result{})
	case schema.FieldTypeArrayObject:
		obj, err := applyObject(record.NestedFields, gjson.Result{})
		if err != nil {
			return "", err
		}
		return "[" + obj + "]", nil
	case schema.FieldTypeForEachObject:
		return "{}", nil
	default:
		return marshalString(record.DefaultValue)
	}
}

func applyArray(record schema.Record, src gjson.Result) (string, error) {
	var values []string
	switch {
	case src.IsArray():
		for _, item := range src.Array() {
			values = append(values, item.String())
		}
	case src.Exists() && !src.IsObject():
		values = []string{src.String()}
	case record.DefaultValue != "":
		values = []string{record.DefaultValue}
	}
	if len(values) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("merge: encode array: %w", err)
	}
	return string(raw), nil
}

func applyObjectList(record schema.Record, src gjson.Result) (string, error) {
	if !src.IsArray() {
		return "[]", nil
	}
	parts := make([]string, 0, len(src.Array()))
	for _, item := range src.Array() {
		merged, err := applyObject(record.NestedFields, item)
		if err != nil {
			return "", err
		}
		parts = append(parts, merged)
	}
	return "[" + strings.Join(parts, ",") + "]", nil
}

// applyPerEntry handles forEachObject: the backend decides the entry keys,
// the schema decides each entry's shape.
func applyPerEntry(record schema.Record, src gjson.Result) (string, error) {
	if !src.IsObject() {
		return "{}", nil
	}
	doc := "{}"
	var walkErr error
	src.ForEach(func(key, value gjson.Result) bool {
		merged, err := applyObject(record.NestedFields, value)
		if err != nil {
			walkErr = err
			return false
		}
		doc, err = sjson.SetRaw(doc, escapePath(key.String()), merged)
		if err != nil {
			walkErr = fmt.Errorf("merge: set entry %q: %w", key.String(), err)
			return false
		}
		return true
	})
	if walkErr != nil {
		return "", walkErr
	}
	return doc, nil
}

func marshalString(value string) (string, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("merge: encode value: %w", err)
	}
	return string(raw), nil
}

var pathEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
)

func escapePath(key string) string {
	return pathEscaper.Replace(key)
}

package prompt

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-trackgen/pkg/schema"
)

const defaultTemplateName = "tracker_prompt"

// entryKey is the placeholder key shown for forEachObject fields: the
// backend replaces it with one key per tracked entry.
const entryKey = "<entry name>"

// ErrNoFields reports a Build request with an empty schema snapshot.
var ErrNoFields = errors.New("prompt: no fields to track")

// Message is one chat message included as generation context. Text may
// contain host-application markup; it is sanitized before rendering.
type Message struct {
	Role string
	Text string
}

// Request carries everything needed to build one generation prompt: the
// serialized schema snapshot and the recent chat window.
type Request struct {
	Fields   map[string]schema.Record
	Messages []Message
}

// Option configures a Builder.
type Option func(*Builder)

// WithEngine substitutes a custom template engine.
func WithEngine(engine *Engine) Option {
	return func(b *Builder) { b.engine = engine }
}

// WithTemplateName selects a template other than the builtin one.
func WithTemplateName(name string) Option {
	return func(b *Builder) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			b.template = trimmed
		}
	}
}

// Builder turns schema snapshots into generation prompts.
type Builder struct {
	engine   *Engine
	template string
}

// NewBuilder constructs a Builder, creating the embedded-template engine
// unless one is supplied.
func NewBuilder(options ...Option) (*Builder, error) {
	b := &Builder{template: defaultTemplateName}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	if b.engine == nil {
		engine, err := NewEngine()
		if err != nil {
			return nil, err
		}
		b.engine = engine
	}
	return b, nil
}

// Build renders the full generation prompt: per-field instructions, one
// example tracker per example round, the sanitized recent messages, and the
// response skeleton the backend is asked to fill in.
func (b *Builder) Build(req Request) (string, error) {
	if len(req.Fields) == 0 {
		return "", ErrNoFields
	}

	skeleton, err := ResponseSkeleton(req.Fields)
	if err != nil {
		return "", err
	}
	examples, err := exampleBlocks(req.Fields)
	if err != nil {
		return "", err
	}

	return b.engine.Render(b.template, map[string]any{
		"instructions": FieldInstructions(req.Fields),
		"examples":     examples,
		"messages":     renderMessages(req.Messages),
		"skeleton":     skeleton,
	})
}

// FieldInstructions produces the indented instruction list describing every
// field at every depth, in sibling order.
func FieldInstructions(fields map[string]schema.Record) string {
	var sb strings.Builder
	writeInstructions(&sb, fields, 0)
	return strings.TrimRight(sb.String(), "\n")
}

func writeInstructions(sb *strings.Builder, fields map[string]schema.Record, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, id := range schema.SortedIDs(fields) {
		record := fields[id]
		fmt.Fprintf(sb, "%s- %q (%s", indent, record.Name, describeType(record.Type))
		if !record.Dynamic {
			fmt.Fprintf(sb, ", static: always output %q", record.DefaultValue)
		}
		sb.WriteString(")")
		if p := strings.TrimSpace(record.Prompt); p != "" {
			sb.WriteString(": " + p)
		}
		if record.Dynamic && record.DefaultValue != "" {
			fmt.Fprintf(sb, " Use %q when the chat gives no answer.", record.DefaultValue)
		}
		sb.WriteString("\n")
		if record.Type.IsNesting() {
			writeInstructions(sb, record.NestedFields, depth+1)
		}
	}
}

func describeType(t schema.FieldType) string {
	switch t {
	case schema.FieldTypeArray:
		return "list of text values"
	case schema.FieldTypeObject:
		return "object"
	case schema.FieldTypeForEachObject:
		return "one object per tracked entry"
	case schema.FieldTypeArrayObject:
		return "list of objects"
	default:
		return "text"
	}
}

// ResponseSkeleton renders the JSON object the backend is asked to return,
// with default values filled in for every leaf.
func ResponseSkeleton(fields map[string]schema.Record) (string, error) {
	return encodeObject(fields, func(record schema.Record) string {
		return record.DefaultValue
	})
}

// exampleRounds reports the example-slot count of the snapshot. Lengths are
// uniform across fields, so the first record settles it.
func exampleRounds(fields map[string]schema.Record) int {
	for _, record := range fields {
		return len(record.ExampleValues)
	}
	return 0
}

func exampleBlocks(fields map[string]schema.Record) ([]string, error) {
	rounds := exampleRounds(fields)
	blocks := make([]string, 0, rounds)
	for i := 0; i < rounds; i++ {
		round := i
		block, err := encodeObject(fields, func(record schema.Record) string {
			if round < len(record.ExampleValues) {
				return record.ExampleValues[round]
			}
			return ""
		})
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// encodeObject writes the snapshot as a JSON object in sibling order, using
// leaf to choose the value for non-nesting fields. A hand-rolled writer
// keeps field order; marshaling a Go map would sort keys alphabetically.
func encodeObject(fields map[string]schema.Record, leaf func(schema.Record) string) (string, error) {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for _, id := range schema.SortedIDs(fields) {
		record := fields[id]
		raw, err := encodeValue(record, leaf)
		if err != nil {
			return "", err
		}
		if !first {
			sb.WriteByte(',')
		}
		key, err := json.Marshal(record.Name)
		if err != nil {
			return "", fmt.Errorf("prompt: encode key %q: %w", record.Name, err)
		}
		sb.Write(key)
		sb.WriteByte(':')
		sb.WriteString(raw)
		first = false
	}
	sb.WriteByte('}')
	return sb.String(), nil
}

func encodeValue(record schema.Record, leaf func(schema.Record) string) (string, error) {
	switch record.Type {
	case schema.FieldTypeArray:
		value := leaf(record)
		if value == "" {
			return "[]", nil
		}
		raw, err := json.Marshal([]string{value})
		if err != nil {
			return "", fmt.Errorf("prompt: encode array value: %w", err)
		}
		return string(raw), nil
	case schema.FieldTypeObject:
		return encodeObject(record.NestedFields, leaf)
	case schema.FieldTypeArrayObject:
		obj, err := encodeObject(record.NestedFields, leaf)
		if err != nil {
			return "", err
		}
		return "[" + obj + "]", nil
	case schema.FieldTypeForEachObject:
		obj, err := encodeObject(record.NestedFields, leaf)
		if err != nil {
			return "", err
		}
		key, err := json.Marshal(entryKey)
		if err != nil {
			return "", err
		}
		return "{" + string(key) + ":" + obj + "}", nil
	default:
		raw, err := json.Marshal(leaf(record))
		if err != nil {
			return "", fmt.Errorf("prompt: encode value: %w", err)
		}
		return string(raw), nil
	}
}

func renderMessages(messages []Message) string {
	var sb strings.Builder
	for _, message := range messages {
		text := sanitizeMessageText(message.Text)
		if text == "" {
			continue
		}
		role := strings.TrimSpace(message.Role)
		if role == "" {
			role = "unknown"
		}
		fmt.Fprintf(&sb, "%s: %s\n", role, text)
	}
	return strings.TrimRight(sb.String(), "\n")
}

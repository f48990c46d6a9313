// Package preset bundles a tracker schema snapshot with user-facing
// metadata so whole tracker definitions can be shared as files. JSON and
// YAML are supported; the format is picked from the file extension on the
// load/save helpers.
package preset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-trackgen/pkg/schema"
)

// ErrUnknownFormat reports a file extension that is neither JSON nor YAML.
var ErrUnknownFormat = errors.New("preset: unknown file format")

// Preset is a shareable tracker definition.
type Preset struct {
	Name        string                   `json:"name" yaml:"name"`
	Description string                   `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      map[string]schema.Record `json:"fields" yaml:"fields"`
}

// Validate checks preset metadata before a save or after a load. The field
// records themselves are validated by schema.Tree.Deserialize; this covers
// the envelope.
func (p Preset) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 128)),
		validation.Field(&p.Description, validation.Length(0, 2048)),
		validation.Field(&p.Fields, validation.Required),
	)
}

// FromTree snapshots a live tree into a named preset.
func FromTree(name, description string, tree *schema.Tree) Preset {
	return Preset{
		Name:        name,
		Description: description,
		Fields:      tree.Serialize(),
	}
}

// Tree rebuilds a live tree from the preset's snapshot.
func (p Preset) Tree() (*schema.Tree, error) {
	tree := schema.NewTree()
	if err := tree.Deserialize(p.Fields); err != nil {
		return nil, fmt.Errorf("preset %q: %w", p.Name, err)
	}
	return tree, nil
}

// EncodeJSON renders the preset as indented JSON.
func (p Preset) EncodeJSON() ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("preset: validate: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("preset: encode json: %w", err)
	}
	return data, nil
}

// EncodeYAML renders the preset as YAML.
func (p Preset) EncodeYAML() ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("preset: validate: %w", err)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("preset: encode yaml: %w", err)
	}
	return data, nil
}

// DecodeJSON parses and validates a JSON preset.
func DecodeJSON(data []byte) (Preset, error) {
	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("preset: decode json: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Preset{}, fmt.Errorf("preset: validate: %w", err)
	}
	return p, nil
}

// DecodeYAML parses and validates a YAML preset.
func DecodeYAML(data []byte) (Preset, error) {
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("preset: decode yaml: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Preset{}, fmt.Errorf("preset: validate: %w", err)
	}
	return p, nil
}

// Load reads a preset file, picking the codec from the extension.
func Load(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("preset: read %s: %w", path, err)
	}
	switch normalizedExt(path) {
	case ".json":
		return DecodeJSON(data)
	case ".yaml", ".yml":
		return DecodeYAML(data)
	}
	return Preset{}, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Save writes a preset file, picking the codec from the extension.
func Save(path string, p Preset) error {
	var (
		data []byte
		err  error
	)
	switch normalizedExt(path) {
	case ".json":
		data, err = p.EncodeJSON()
	case ".yaml", ".yml":
		data, err = p.EncodeYAML()
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("preset: write %s: %w", path, err)
	}
	return nil
}

func normalizedExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

package preset_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-trackgen/pkg/preset"
	"github.com/goliatone/go-trackgen/pkg/schema"
)

func samplePreset(t *testing.T) preset.Preset {
	t.Helper()

	tree := schema.NewTree()
	scene, err := tree.Create("", schema.Init{Name: "Scene", Type: schema.FieldTypeObject})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := tree.Create(scene.ID, schema.Init{Name: "Location", DefaultValue: "unknown"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	tree.AddExampleRound()

	return preset.FromTree("Scene tracker", "Tracks location per scene.", tree)
}

func TestPreset_JSONRoundTrip(t *testing.T) {
	original := samplePreset(t)

	data, err := original.EncodeJSON()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	restored, err := preset.DecodeJSON(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(original, restored); diff != "" {
		t.Fatalf("json round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPreset_YAMLRoundTrip(t *testing.T) {
	original := samplePreset(t)

	data, err := original.EncodeYAML()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	restored, err := preset.DecodeYAML(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(original, restored); diff != "" {
		t.Fatalf("yaml round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPreset_ValidateRejectsEmpty(t *testing.T) {
	bad := preset.Preset{Description: "no name, no fields"}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected validation failure")
	}
	if _, err := preset.DecodeJSON([]byte(`{"description":"x"}`)); err == nil {
		t.Fatal("expected decode of invalid preset to fail")
	}
}

func TestPreset_SaveLoad(t *testing.T) {
	original := samplePreset(t)
	dir := t.TempDir()

	for _, name := range []string{"tracker.json", "tracker.yaml"} {
		path := filepath.Join(dir, name)
		if err := preset.Save(path, original); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
		loaded, err := preset.Load(path)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if diff := cmp.Diff(original, loaded); diff != "" {
			t.Fatalf("%s round trip mismatch (-want +got):\n%s", name, diff)
		}
	}

	if err := preset.Save(filepath.Join(dir, "tracker.toml"), original); !errors.Is(err, preset.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestPreset_TreeRebuild(t *testing.T) {
	original := samplePreset(t)

	tree, err := original.Tree()
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	if diff := cmp.Diff(original.Fields, tree.Serialize()); diff != "" {
		t.Fatalf("rebuilt tree mismatch (-want +got):\n%s", diff)
	}
	if tree.Rounds() != 1 {
		t.Fatalf("round counter lost on rebuild: %d", tree.Rounds())
	}

	broken := preset.Preset{
		Name:   "broken",
		Fields: map[string]schema.Record{"field-0": {Name: "x", Type: schema.FieldType("blob")}},
	}
	if _, err := broken.Tree(); err == nil {
		t.Fatal("expected rebuild of malformed snapshot to fail")
	}
}

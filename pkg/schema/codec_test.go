package schema_test

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-trackgen/pkg/schema"
)

func buildSampleTree(t *testing.T) *schema.Tree {
	t.Helper()

	tree := schema.NewTree()
	mood, err := tree.Create("", schema.Init{Name: "Mood", Prompt: "Current emotional state."})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	characters, err := tree.Create("", schema.Init{Name: "Characters", Type: schema.FieldTypeForEachObject})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := tree.Create(characters.ID, schema.Init{Name: "Outfit", Type: schema.FieldTypeObject}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := tree.Create(characters.ID, schema.Init{Name: "StateOfDress"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	tree.AddExampleRound()
	tree.SetExampleValue(mood.ID, 0, "anxious")
	tree.SetDefaultValue(mood.ID, "neutral")
	return tree
}

func TestCodec_RoundTrip(t *testing.T) {
	tree := buildSampleTree(t)
	stored := tree.Serialize()

	restored := schema.NewTree()
	if err := restored.Deserialize(stored); err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	if diff := cmp.Diff(stored, restored.Serialize()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	if restored.Rounds() != tree.Rounds() {
		t.Fatalf("round counter lost: want %d, got %d", tree.Rounds(), restored.Rounds())
	}
	if diff := cmp.Diff(tree.Roots(), restored.Roots()); diff != "" {
		t.Fatalf("root order lost (-want +got):\n%s", diff)
	}
}

func TestCodec_SerializeIsIndependentSnapshot(t *testing.T) {
	tree := buildSampleTree(t)
	stored := tree.Serialize()
	want := stored["field-0"].Name

	if _, err := tree.Rename("field-0", "Renamed"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	tree.AddExampleRound()

	if stored["field-0"].Name != want {
		t.Fatalf("live mutation leaked into snapshot: %q", stored["field-0"].Name)
	}
	if len(stored["field-0"].ExampleValues) != 1 {
		t.Fatalf("live round change leaked into snapshot: %d slots", len(stored["field-0"].ExampleValues))
	}
}

func TestCodec_DeserializeNormalizesExampleLengths(t *testing.T) {
	stored := map[string]schema.Record{
		"field-0": {
			Name:          "Mood",
			Type:          schema.FieldTypeString,
			Dynamic:       true,
			ExampleValues: []string{"calm", "angry", "tired"},
		},
		"field-1": {
			Name:    "Scene",
			Type:    schema.FieldTypeObject,
			Dynamic: true,
			NestedFields: map[string]schema.Record{
				"field-2": {Name: "Location", Type: schema.FieldTypeString, Dynamic: true},
			},
		},
	}

	tree := schema.NewTree()
	if err := tree.Deserialize(stored); err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	assertUniformRounds(t, tree, 3)
	nested, _ := tree.Field("field-2")
	if diff := cmp.Diff([]string{"", "", ""}, nested.ExampleValues); diff != "" {
		t.Fatalf("nested field not padded (-want +got):\n%s", diff)
	}
}

func TestCodec_LoadAdvancesIDCounter(t *testing.T) {
	stored := map[string]schema.Record{
		"field-7": {Name: "Mood", Type: schema.FieldTypeString, Dynamic: true},
	}

	tree := schema.NewTree()
	if err := tree.Deserialize(stored); err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	field, err := tree.Create("", schema.Init{Name: "Fresh"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if field.ID != "field-8" {
		t.Fatalf("expected post-load id field-8, got %q", field.ID)
	}
}

func TestCodec_DeserializeFailureLeavesPriorState(t *testing.T) {
	tree := buildSampleTree(t)
	before := tree.Serialize()

	bad := map[string]schema.Record{
		"field-0": {Name: "Mood", Type: schema.FieldType("map"), Dynamic: true},
	}
	if err := tree.Deserialize(bad); err == nil {
		t.Fatal("expected deserialize failure for unknown type")
	}
	if diff := cmp.Diff(before, tree.Serialize()); diff != "" {
		t.Fatalf("failed deserialize mutated tree (-want +got):\n%s", diff)
	}

	quoted := map[string]schema.Record{
		"field-0": {Name: `Mo"od`, Type: schema.FieldTypeString, Dynamic: true},
	}
	if err := tree.Deserialize(quoted); err == nil {
		t.Fatal("expected deserialize failure for quoted name")
	}
	if diff := cmp.Diff(before, tree.Serialize()); diff != "" {
		t.Fatalf("failed deserialize mutated tree (-want +got):\n%s", diff)
	}
}

func TestCodec_JSONRoundTrip(t *testing.T) {
	tree := buildSampleTree(t)

	payload, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	restored := schema.NewTree()
	if err := json.Unmarshal(payload, restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(tree.Serialize(), restored.Serialize()); diff != "" {
		t.Fatalf("JSON round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCodec_UnmarshalMalformedPayload(t *testing.T) {
	tree := buildSampleTree(t)
	before := tree.Serialize()

	if err := tree.UnmarshalJSON([]byte(`{"field-0": []}`)); err == nil {
		t.Fatal("expected decode failure for non-mapping record")
	}
	if diff := cmp.Diff(before, tree.Serialize()); diff != "" {
		t.Fatalf("failed decode mutated tree (-want +got):\n%s", diff)
	}
}

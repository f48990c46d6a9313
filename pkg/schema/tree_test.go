package schema_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-trackgen/pkg/schema"
)

func boolPtr(v bool) *bool { return &v }

func TestTree_CreateDefaults(t *testing.T) {
	tree := schema.NewTree()

	field, err := tree.Create("", schema.Init{Name: "Mood"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if field.ID != "field-0" {
		t.Fatalf("expected first id field-0, got %q", field.ID)
	}
	if field.Type != schema.FieldTypeString {
		t.Fatalf("expected string default type, got %q", field.Type)
	}
	if !field.Dynamic {
		t.Fatal("expected new fields to default to dynamic")
	}
	if len(field.ExampleValues) != 0 {
		t.Fatalf("expected no example slots on a fresh tree, got %d", len(field.ExampleValues))
	}

	second, err := tree.Create("", schema.Init{Name: "Location"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.ID != "field-1" {
		t.Fatalf("expected sequential id field-1, got %q", second.ID)
	}
	if got := tree.Roots(); !cmp.Equal(got, []string{"field-0", "field-1"}) {
		t.Fatalf("root order mismatch: %v", got)
	}
}

func TestTree_CreateUnderMissingParent(t *testing.T) {
	tree := schema.NewTree()
	if _, err := tree.Create("field-99", schema.Init{Name: "orphan"}); !errors.Is(err, schema.ErrFieldNotFound) {
		t.Fatalf("expected ErrFieldNotFound, got %v", err)
	}
	if tree.Len() != 0 {
		t.Fatalf("failed create must not insert, tree has %d fields", tree.Len())
	}
}

func TestTree_CreatePadsToCurrentRounds(t *testing.T) {
	tree := schema.NewTree()
	tree.AddExampleRound()
	tree.AddExampleRound()

	field, err := tree.Create("", schema.Init{Name: "Mood"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(field.ExampleValues) != 2 {
		t.Fatalf("expected late-created field padded to 2 slots, got %d", len(field.ExampleValues))
	}
}

func TestTree_RemoveDiscardsSubtree(t *testing.T) {
	tree := schema.NewTree()
	parent, _ := tree.Create("", schema.Init{Name: "Inventory", Type: schema.FieldTypeObject})
	child, _ := tree.Create(parent.ID, schema.Init{Name: "Weapons", Type: schema.FieldTypeObject})
	grandchild, _ := tree.Create(child.ID, schema.Init{Name: "Primary"})
	sibling, _ := tree.Create("", schema.Init{Name: "Mood"})

	if err := tree.Remove(parent.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	for _, id := range []string{parent.ID, child.ID, grandchild.ID} {
		if _, ok := tree.Field(id); ok {
			t.Fatalf("field %q still reachable after subtree removal", id)
		}
	}
	if _, ok := tree.Field(sibling.ID); !ok {
		t.Fatal("sibling removed alongside subtree")
	}
	if got := tree.Roots(); !cmp.Equal(got, []string{sibling.ID}) {
		t.Fatalf("root list mismatch after removal: %v", got)
	}
}

func TestTree_RemoveMissingIDReports(t *testing.T) {
	tree := schema.NewTree()
	tree.Create("", schema.Init{Name: "Mood"})

	if err := tree.Remove("field-42"); !errors.Is(err, schema.ErrFieldNotFound) {
		t.Fatalf("expected ErrFieldNotFound, got %v", err)
	}
	if tree.Len() != 1 {
		t.Fatalf("tree mutated by failed remove, has %d fields", tree.Len())
	}
}

func TestTree_RenameRejectsDoubleQuote(t *testing.T) {
	tree := schema.NewTree()
	field, _ := tree.Create("", schema.Init{Name: "Mood"})

	result, err := tree.Rename(field.ID, `a"b`)
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if result.Valid {
		t.Fatal("expected quoted name to be rejected")
	}
	if len(result.Issues) != 1 || result.Issues[0].FieldID != field.ID {
		t.Fatalf("unexpected issues: %+v", result.Issues)
	}
	if got, _ := tree.Field(field.ID); got.Name != "Mood" {
		t.Fatalf("rejected rename changed name to %q", got.Name)
	}

	result, err = tree.Rename(field.ID, "Current Mood")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if !result.Valid {
		t.Fatalf("valid rename rejected: %+v", result.Issues)
	}
	serialized := tree.Serialize()
	if serialized[field.ID].Name != "Current Mood" {
		t.Fatalf("rename not reflected in serialize: %q", serialized[field.ID].Name)
	}
}

func TestTree_SetTypeRejectsUnknown(t *testing.T) {
	tree := schema.NewTree()
	field, _ := tree.Create("", schema.Init{Name: "Mood"})

	if err := tree.SetType(field.ID, schema.FieldType("map")); err == nil {
		t.Fatal("expected unknown type to be rejected")
	}
	if err := tree.SetType(field.ID, schema.FieldTypeForEachObject); err != nil {
		t.Fatalf("set type: %v", err)
	}
	got, _ := tree.Field(field.ID)
	if !got.Type.IsNesting() {
		t.Fatalf("forEachObject should be a nesting type, got %q", got.Type)
	}
}

func TestTree_Mutators(t *testing.T) {
	tree := schema.NewTree()
	field, _ := tree.Create("", schema.Init{Name: "Mood"})

	if err := tree.SetDynamic(field.ID, false); err != nil {
		t.Fatalf("set dynamic: %v", err)
	}
	if err := tree.SetPrompt(field.ID, "Track the character's mood."); err != nil {
		t.Fatalf("set prompt: %v", err)
	}
	if err := tree.SetDefaultValue(field.ID, "neutral"); err != nil {
		t.Fatalf("set default: %v", err)
	}

	got, _ := tree.Field(field.ID)
	want := schema.Field{
		ID:           field.ID,
		Name:         "Mood",
		Type:         schema.FieldTypeString,
		Dynamic:      false,
		Prompt:       "Track the character's mood.",
		DefaultValue: "neutral",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("field mismatch (-want +got):\n%s", diff)
	}

	for _, err := range []error{
		tree.SetDynamic("nope", true),
		tree.SetPrompt("nope", "x"),
		tree.SetDefaultValue("nope", "x"),
	} {
		if !errors.Is(err, schema.ErrFieldNotFound) {
			t.Fatalf("expected ErrFieldNotFound, got %v", err)
		}
	}
}

func TestTree_SnapshotDoesNotAliasTree(t *testing.T) {
	tree := schema.NewTree()
	tree.AddExampleRound()
	field, _ := tree.Create("", schema.Init{Name: "Mood"})

	snap, _ := tree.Field(field.ID)
	snap.ExampleValues[0] = "tampered"

	got, _ := tree.Field(field.ID)
	if got.ExampleValues[0] != "" {
		t.Fatalf("snapshot mutation leaked into tree: %q", got.ExampleValues[0])
	}
}

func TestTree_WalkOrder(t *testing.T) {
	tree := schema.NewTree()
	a, _ := tree.Create("", schema.Init{Name: "A", Type: schema.FieldTypeObject})
	tree.Create(a.ID, schema.Init{Name: "A1"})
	tree.Create("", schema.Init{Name: "B"})

	var names []string
	var depths []int
	tree.Walk(func(f schema.Field, depth int) bool {
		names = append(names, f.Name)
		depths = append(depths, depth)
		return true
	})

	if diff := cmp.Diff([]string{"A", "A1", "B"}, names); diff != "" {
		t.Fatalf("walk order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 0}, depths); diff != "" {
		t.Fatalf("walk depth mismatch (-want +got):\n%s", diff)
	}
}

func TestTree_CreateStaticViaInit(t *testing.T) {
	tree := schema.NewTree()
	field, err := tree.Create("", schema.Init{Name: "Scene", Dynamic: boolPtr(false)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if field.Dynamic {
		t.Fatal("explicit Dynamic=false ignored")
	}
}

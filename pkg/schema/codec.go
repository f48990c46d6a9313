package schema

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Serialize produces a deep, storage-ready snapshot of the whole tree as a
// nested id-to-record mapping. The snapshot shares no memory with the live
// tree; later mutations never show up in it.
func (t *Tree) Serialize() map[string]Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.serializeIDs(t.roots)
}

func (t *Tree) serializeIDs(ids []string) map[string]Record {
	out := make(map[string]Record, len(ids))
	for _, id := range ids {
		n, ok := t.nodes[id]
		if !ok {
			continue
		}
		out[id] = Record{
			Name:          n.name,
			Type:          n.ftype,
			Dynamic:       n.dynamic,
			Prompt:        n.prompt,
			DefaultValue:  n.defaultValue,
			ExampleValues: append([]string(nil), n.exampleValues...),
			NestedFields:  t.serializeIDs(n.children),
		}
	}
	return out
}

// Deserialize replaces the tree contents with the stored mapping. The load
// runs in two passes: first the maximum ExampleValues length anywhere in the
// stored tree becomes the new round counter, then every field is rebuilt
// with its examples padded to that count. The rebuild targets a scratch tree
// and only replaces the live state once the whole input has been accepted,
// so a malformed record can never leave a half-built model behind.
func (t *Tree) Deserialize(stored map[string]Record) error {
	scratch := NewTree()
	scratch.rounds = maxRounds(stored)
	if err := scratch.load("", stored); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.nodes = scratch.nodes
	t.roots = scratch.roots
	t.nextID = scratch.nextID
	t.rounds = scratch.rounds
	return nil
}

func (t *Tree) load(parentID string, records map[string]Record) error {
	for _, id := range SortedIDs(records) {
		record := records[id]
		ftype, err := ParseFieldType(string(record.Type))
		if err != nil {
			return fmt.Errorf("schema: field %q: %w", id, err)
		}
		if issue := checkName(id, record.Name); issue != nil {
			return fmt.Errorf("schema: field %q: %s", id, issue.Message)
		}
		dynamic := record.Dynamic
		examples := append([]string(nil), record.ExampleValues...)
		for len(examples) < t.rounds {
			examples = append(examples, "")
		}
		if _, err := t.create(parentID, Init{
			ID:            id,
			Name:          record.Name,
			Type:          ftype,
			Dynamic:       &dynamic,
			Prompt:        record.Prompt,
			DefaultValue:  record.DefaultValue,
			ExampleValues: examples,
		}); err != nil {
			return err
		}
		if err := t.load(id, record.NestedFields); err != nil {
			return err
		}
	}
	return nil
}

func maxRounds(records map[string]Record) int {
	max := 0
	for _, record := range records {
		if n := len(record.ExampleValues); n > max {
			max = n
		}
		if n := maxRounds(record.NestedFields); n > max {
			max = n
		}
	}
	return max
}

// MarshalJSON encodes the serialized snapshot.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Serialize())
}

// UnmarshalJSON decodes a stored mapping and loads it via Deserialize. A
// decode or validation failure leaves the tree in its prior state.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var stored map[string]Record
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("schema: decode stored tree: %w", err)
	}
	return t.Deserialize(stored)
}

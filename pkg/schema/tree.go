package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

const idPrefix = "field-"

// node is the arena entry backing a single field. The tree owns every node;
// snapshots handed out through the public API are copies.
type node struct {
	id            string
	parent        string // "" for top-level fields
	children      []string
	name          string
	ftype         FieldType
	dynamic       bool
	prompt        string
	defaultValue  string
	exampleValues []string
}

// Tree is the live schema model: an ordered forest of named fields keyed by
// id. All mutation goes through Tree methods; the example-round counter is
// owned here and every field's ExampleValues length matches it at all times.
//
// The model is single-owner by design. The mutex only guards against callers
// that share a tree across goroutines anyway.
type Tree struct {
	mu     sync.Mutex
	nodes  map[string]*node
	roots  []string
	nextID int
	rounds int
}

// NewTree returns an empty tree with zero example rounds.
func NewTree() *Tree {
	return &Tree{nodes: make(map[string]*node)}
}

// Create inserts a new field under parentID, or at the top level when
// parentID is empty. Attributes default per Init; a fresh sequential id is
// allocated unless init carries one (the load path), in which case the id
// counter advances past any numeric suffix so later allocations cannot
// collide. ExampleValues is padded or truncated to the current round count.
func (t *Tree) Create(parentID string, init Init) (Field, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.create(parentID, init)
}

func (t *Tree) create(parentID string, init Init) (Field, error) {
	if parentID != "" {
		if _, ok := t.nodes[parentID]; !ok {
			return Field{}, fmt.Errorf("%w: parent %q", ErrFieldNotFound, parentID)
		}
	}

	id := strings.TrimSpace(init.ID)
	if id == "" {
		id = idPrefix + strconv.Itoa(t.nextID)
		t.nextID++
	} else {
		t.advanceCounter(id)
	}

	ftype := init.Type
	if ftype == "" {
		ftype = FieldTypeString
	}
	dynamic := true
	if init.Dynamic != nil {
		dynamic = *init.Dynamic
	}

	examples := append([]string(nil), init.ExampleValues...)
	if len(examples) > t.rounds {
		examples = examples[:t.rounds]
	}
	for len(examples) < t.rounds {
		examples = append(examples, "")
	}

	n := &node{
		id:            id,
		parent:        parentID,
		name:          init.Name,
		ftype:         ftype,
		dynamic:       dynamic,
		prompt:        init.Prompt,
		defaultValue:  init.DefaultValue,
		exampleValues: examples,
	}
	t.nodes[id] = n
	if parentID == "" {
		t.roots = append(t.roots, id)
	} else {
		parent := t.nodes[parentID]
		parent.children = append(parent.children, id)
	}
	return t.snapshot(n), nil
}

// advanceCounter bumps the id sequence past any numeric suffix in a loaded
// id, so deserializing "field-7" makes the next allocation "field-8".
func (t *Tree) advanceCounter(id string) {
	digits := id
	if idx := strings.LastIndexByte(id, '-'); idx >= 0 {
		digits = id[idx+1:]
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return
	}
	if n >= t.nextID {
		t.nextID = n + 1
	}
}

// Remove deletes the field and its whole subtree. A missing id is reported
// as ErrFieldNotFound rather than silently ignored, so callers can surface
// stale-id bugs; the tree is unchanged in that case. Confirmation prompts
// belong to the UI boundary, not here.
func (t *Tree) Remove(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	t.discard(n)
	if n.parent == "" {
		t.roots = removeID(t.roots, id)
	} else if parent, ok := t.nodes[n.parent]; ok {
		parent.children = removeID(parent.children, id)
	}
	return nil
}

func (t *Tree) discard(n *node) {
	for _, childID := range n.children {
		if child, ok := t.nodes[childID]; ok {
			t.discard(child)
		}
	}
	delete(t.nodes, n.id)
}

// Rename validates and applies a new name. A name containing a double quote
// is rejected: the result carries the issue, the field keeps its old name,
// and no error is returned since bad input is not a caller bug.
func (t *Tree) Rename(id, newName string) (ValidationResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[id]
	if !ok {
		return ValidationResult{}, fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	if issue := checkName(id, newName); issue != nil {
		return ValidationResult{Issues: []Issue{*issue}}, nil
	}
	n.name = newName
	return ValidationResult{Valid: true}, nil
}

// SetType updates the field type. The caller is responsible for re-deriving
// any "can hold nested fields" affordance from Type.IsNesting afterwards;
// the tree does not cache that predicate. Existing nested fields survive a
// change to a leaf type so switching back loses nothing.
func (t *Tree) SetType(id string, ftype FieldType) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := ParseFieldType(string(ftype)); err != nil {
		return err
	}
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	n.ftype = ftype
	return nil
}

// SetDynamic toggles per-generation regeneration for the field.
func (t *Tree) SetDynamic(id string, dynamic bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	n.dynamic = dynamic
	return nil
}

// SetPrompt replaces the generation instruction attached to the field.
func (t *Tree) SetPrompt(id, prompt string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	n.prompt = prompt
	return nil
}

// SetDefaultValue replaces the fallback value used when generation omits
// the field.
func (t *Tree) SetDefaultValue(id, value string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	n.defaultValue = value
	return nil
}

// Field returns a snapshot of the node with the given id.
func (t *Tree) Field(id string) (Field, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[id]
	if !ok {
		return Field{}, false
	}
	return t.snapshot(n), true
}

// Roots returns the ordered ids of the top-level fields.
func (t *Tree) Roots() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.roots...)
}

// Len reports the number of fields at every depth.
func (t *Tree) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.nodes)
}

// Walk visits every field depth-first in sibling order, parents before
// children. Returning false from fn stops the walk.
func (t *Tree) Walk(fn func(f Field, depth int) bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var visit func(ids []string, depth int) bool
	visit = func(ids []string, depth int) bool {
		for _, id := range ids {
			n, ok := t.nodes[id]
			if !ok {
				continue
			}
			if !fn(t.snapshot(n), depth) {
				return false
			}
			if !visit(n.children, depth+1) {
				return false
			}
		}
		return true
	}
	visit(t.roots, 0)
}

func (t *Tree) snapshot(n *node) Field {
	return Field{
		ID:            n.id,
		ParentID:      n.parent,
		Name:          n.name,
		Type:          n.ftype,
		Dynamic:       n.dynamic,
		Prompt:        n.prompt,
		DefaultValue:  n.defaultValue,
		ExampleValues: append([]string(nil), n.exampleValues...),
		Children:      append([]string(nil), n.children...),
	}
}

func removeID(ids []string, id string) []string {
	for i, candidate := range ids {
		if candidate == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// SortedIDs orders sibling ids by their numeric suffix so serialized maps,
// which carry no order of their own, walk deterministically. Ids without a
// numeric suffix sort after the numbered ones, lexically. Deserialize and
// every snapshot consumer (prompt building, merging, schema export) iterate
// in this order.
func SortedIDs(records map[string]Record) []string {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ni, iOK := idSequence(ids[i])
		nj, jOK := idSequence(ids[j])
		switch {
		case iOK && jOK:
			if ni != nj {
				return ni < nj
			}
			return ids[i] < ids[j]
		case iOK:
			return true
		case jOK:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
	return ids
}

func idSequence(id string) (int, bool) {
	digits := id
	if idx := strings.LastIndexByte(id, '-'); idx >= 0 {
		digits = id[idx+1:]
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

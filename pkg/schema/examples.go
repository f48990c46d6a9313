package schema

// Rounds reports the global example-round count. Every field's
// ExampleValues has exactly this length, at every depth.
func (t *Tree) Rounds() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rounds
}

// AddExampleRound appends one empty slot to every field's ExampleValues and
// bumps the round counter. The walk and the counter update happen under one
// lock acquisition so no observer can see a half-applied round.
func (t *Tree) AddExampleRound() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rounds++
	for _, n := range t.nodes {
		n.exampleValues = append(n.exampleValues, "")
	}
}

// RemoveExampleRound drops the last slot from every field's ExampleValues.
// With zero rounds it clamps: nothing changes and ErrNoExampleRounds is
// returned so the caller can flag the attempt.
func (t *Tree) RemoveExampleRound() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rounds == 0 {
		return ErrNoExampleRounds
	}
	t.rounds--
	for _, n := range t.nodes {
		if len(n.exampleValues) > 0 {
			n.exampleValues = n.exampleValues[:len(n.exampleValues)-1]
		}
	}
	return nil
}

// SetExampleValue writes value into the given round slot of one field. An
// index outside [0, rounds) is a caller bug and reported as ErrExampleIndex
// without touching the tree.
func (t *Tree) SetExampleValue(id string, index int, value string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[id]
	if !ok {
		return ErrFieldNotFound
	}
	if index < 0 || index >= len(n.exampleValues) {
		return ErrExampleIndex
	}
	n.exampleValues[index] = value
	return nil
}

package schema

import "errors"

var (
	// ErrFieldNotFound reports an operation against an id that is not in the
	// tree. Mutators treat this as a contract violation and leave the tree
	// untouched.
	ErrFieldNotFound = errors.New("schema: field not found")

	// ErrExampleIndex reports a SetExampleValue index outside the current
	// example-round range.
	ErrExampleIndex = errors.New("schema: example index out of range")

	// ErrNoExampleRounds reports RemoveExampleRound on a tree with zero
	// rounds. The call is a clamped no-op.
	ErrNoExampleRounds = errors.New("schema: no example rounds to remove")
)

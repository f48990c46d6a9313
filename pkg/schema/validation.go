package schema

import "strings"

// Issue describes a single validation problem with optional field context.
type Issue struct {
	FieldID string `json:"fieldId,omitempty"`
	Message string `json:"message"`
}

// ValidationResult captures the outcome of a name or record validation.
// Invalid input is data, not an error: callers inspect Issues and leave the
// model untouched.
type ValidationResult struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// checkName returns an issue when the candidate name violates the naming
// constraint. Names end up inside double-quoted JSON keys in generation
// prompts, hence the quote ban.
func checkName(fieldID, name string) *Issue {
	if strings.ContainsRune(name, '"') {
		return &Issue{FieldID: fieldID, Message: `field name must not contain a double quote`}
	}
	return nil
}

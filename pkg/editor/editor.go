// Package editor drives interactive tracker-schema editing: a terminal
// prompt loop that mutates a schema.Tree through its public API. The
// destructive confirmation lives here, at the UI boundary; the tree itself
// removes unconditionally once asked.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-trackgen/pkg/schema"
)

const (
	actionAddField      = "Add field"
	actionAddNested     = "Add nested field"
	actionRename        = "Rename field"
	actionChangeType    = "Change type"
	actionEditPrompt    = "Edit generation prompt"
	actionEditDefault   = "Edit default value"
	actionToggleDynamic = "Toggle dynamic"
	actionRemoveField   = "Remove field"
	actionAddRound      = "Add example round"
	actionRemoveRound   = "Remove example round"
	actionEditExample   = "Edit example value"
	actionDone          = "Done"
)

var actions = []string{
	actionAddField,
	actionAddNested,
	actionRename,
	actionChangeType,
	actionEditPrompt,
	actionEditDefault,
	actionToggleDynamic,
	actionRemoveField,
	actionAddRound,
	actionRemoveRound,
	actionEditExample,
	actionDone,
}

var fieldTypeOptions = []schema.FieldType{
	schema.FieldTypeString,
	schema.FieldTypeArray,
	schema.FieldTypeObject,
	schema.FieldTypeForEachObject,
	schema.FieldTypeArrayObject,
}

// Editor runs the schema editing loop against a live tree.
type Editor struct {
	tree   *schema.Tree
	driver PromptDriver
}

// New constructs an Editor. A nil driver falls back to the survey-backed
// terminal driver.
func New(tree *schema.Tree, driver PromptDriver) *Editor {
	if driver == nil {
		driver = NewSurveyDriver()
	}
	return &Editor{tree: tree, driver: driver}
}

// Run loops until the user picks Done or interrupts. An interrupt is a
// normal exit, not an error; the tree keeps whatever edits were applied.
func (e *Editor) Run(ctx context.Context) error {
	for {
		idx, err := e.driver.Select(ctx, SelectConfig{
			Message:  fmt.Sprintf("Tracker schema (%d fields, %d example rounds)", e.tree.Len(), e.tree.Rounds()),
			Options:  actions,
			PageSize: len(actions),
		})
		if err != nil {
			if errors.Is(err, ErrAborted) {
				return nil
			}
			return err
		}
		if idx < 0 || actions[idx] == actionDone {
			return nil
		}
		if err := e.dispatch(ctx, actions[idx]); err != nil {
			if errors.Is(err, ErrAborted) {
				return nil
			}
			return err
		}
	}
}

func (e *Editor) dispatch(ctx context.Context, action string) error {
	switch action {
	case actionAddField:
		return e.addField(ctx, false)
	case actionAddNested:
		return e.addField(ctx, true)
	case actionRename:
		return e.renameField(ctx)
	case actionChangeType:
		return e.changeType(ctx)
	case actionEditPrompt:
		return e.editPrompt(ctx)
	case actionEditDefault:
		return e.editDefault(ctx)
	case actionToggleDynamic:
		return e.toggleDynamic(ctx)
	case actionRemoveField:
		return e.removeField(ctx)
	case actionAddRound:
		e.tree.AddExampleRound()
		return e.driver.Info(ctx, fmt.Sprintf("Example rounds: %d", e.tree.Rounds()))
	case actionRemoveRound:
		if err := e.tree.RemoveExampleRound(); err != nil {
			if errors.Is(err, schema.ErrNoExampleRounds) {
				return e.driver.Info(ctx, "No example rounds to remove.")
			}
			return err
		}
		return e.driver.Info(ctx, fmt.Sprintf("Example rounds: %d", e.tree.Rounds()))
	case actionEditExample:
		return e.editExample(ctx)
	}
	return nil
}

func nameValidator(value string) error {
	if strings.ContainsRune(value, '"') {
		return errors.New("field names cannot contain a double quote")
	}
	return nil
}

func (e *Editor) addField(ctx context.Context, nested bool) error {
	parentID := ""
	if nested {
		parent, ok, err := e.pickField(ctx, "Nest under which field?", func(f schema.Field) bool {
			return f.Type.IsNesting()
		})
		if err != nil || !ok {
			return err
		}
		parentID = parent.ID
	}

	name, err := e.driver.Input(ctx, InputConfig{
		Message:   "Field name",
		Validator: nameValidator,
	})
	if err != nil {
		return err
	}

	typeIdx, err := e.selectType(ctx, 0)
	if err != nil {
		return err
	}

	field, err := e.tree.Create(parentID, schema.Init{
		Name: name,
		Type: fieldTypeOptions[typeIdx],
	})
	if err != nil {
		return err
	}
	return e.driver.Info(ctx, fmt.Sprintf("Added %q (%s)", field.Name, field.ID))
}

func (e *Editor) renameField(ctx context.Context) error {
	field, ok, err := e.pickField(ctx, "Rename which field?", nil)
	if err != nil || !ok {
		return err
	}
	name, err := e.driver.Input(ctx, InputConfig{
		Message:   "New name",
		Default:   field.Name,
		Validator: nameValidator,
	})
	if err != nil {
		return err
	}
	result, err := e.tree.Rename(field.ID, name)
	if err != nil {
		return err
	}
	if !result.Valid {
		// The input validator already rejects bad names; this covers drivers
		// that skip validation.
		for _, issue := range result.Issues {
			if err := e.driver.Info(ctx, "Rename rejected: "+issue.Message); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Editor) changeType(ctx context.Context) error {
	field, ok, err := e.pickField(ctx, "Change type of which field?", nil)
	if err != nil || !ok {
		return err
	}
	current := 0
	for i, t := range fieldTypeOptions {
		if t == field.Type {
			current = i
		}
	}
	typeIdx, err := e.selectType(ctx, current)
	if err != nil {
		return err
	}
	return e.tree.SetType(field.ID, fieldTypeOptions[typeIdx])
}

func (e *Editor) editPrompt(ctx context.Context) error {
	field, ok, err := e.pickField(ctx, "Edit prompt of which field?", nil)
	if err != nil || !ok {
		return err
	}
	text, err := e.driver.TextArea(ctx, TextAreaConfig{
		Message: fmt.Sprintf("Generation prompt for %q", field.Name),
		Default: field.Prompt,
	})
	if err != nil {
		return err
	}
	return e.tree.SetPrompt(field.ID, text)
}

func (e *Editor) editDefault(ctx context.Context) error {
	field, ok, err := e.pickField(ctx, "Edit default of which field?", nil)
	if err != nil || !ok {
		return err
	}
	value, err := e.driver.Input(ctx, InputConfig{
		Message: fmt.Sprintf("Default value for %q", field.Name),
		Default: field.DefaultValue,
	})
	if err != nil {
		return err
	}
	return e.tree.SetDefaultValue(field.ID, value)
}

func (e *Editor) toggleDynamic(ctx context.Context) error {
	field, ok, err := e.pickField(ctx, "Toggle dynamic on which field?", nil)
	if err != nil || !ok {
		return err
	}
	if err := e.tree.SetDynamic(field.ID, !field.Dynamic); err != nil {
		return err
	}
	state := "static"
	if !field.Dynamic {
		state = "dynamic"
	}
	return e.driver.Info(ctx, fmt.Sprintf("%q is now %s", field.Name, state))
}

func (e *Editor) removeField(ctx context.Context) error {
	field, ok, err := e.pickField(ctx, "Remove which field?", nil)
	if err != nil || !ok {
		return err
	}
	confirmed, err := e.driver.Confirm(ctx, ConfirmConfig{
		Message: fmt.Sprintf("Remove %q and all its nested fields?", field.Name),
	})
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}
	return e.tree.Remove(field.ID)
}

func (e *Editor) editExample(ctx context.Context) error {
	rounds := e.tree.Rounds()
	if rounds == 0 {
		return e.driver.Info(ctx, "Add an example round first.")
	}
	field, ok, err := e.pickField(ctx, "Edit example of which field?", nil)
	if err != nil || !ok {
		return err
	}
	labels := make([]string, rounds)
	for i := range labels {
		labels[i] = fmt.Sprintf("Round %d", i+1)
	}
	round, err := e.driver.Select(ctx, SelectConfig{Message: "Which round?", Options: labels})
	if err != nil {
		return err
	}
	if round < 0 || round >= rounds {
		return nil
	}
	current := ""
	if round < len(field.ExampleValues) {
		current = field.ExampleValues[round]
	}
	value, err := e.driver.Input(ctx, InputConfig{
		Message: fmt.Sprintf("Example value for %q, round %d", field.Name, round+1),
		Default: current,
	})
	if err != nil {
		return err
	}
	return e.tree.SetExampleValue(field.ID, round, value)
}

// pickField lists matching fields depth-indented and returns the chosen
// snapshot. ok is false when the tree has no matching fields.
func (e *Editor) pickField(ctx context.Context, message string, filter func(schema.Field) bool) (schema.Field, bool, error) {
	var (
		fields []schema.Field
		labels []string
	)
	e.tree.Walk(func(f schema.Field, depth int) bool {
		if filter != nil && !filter(f) {
			return true
		}
		fields = append(fields, f)
		name := f.Name
		if name == "" {
			name = "(unnamed)"
		}
		labels = append(labels, fmt.Sprintf("%s%s (%s)", strings.Repeat("  ", depth), name, f.ID))
		return true
	})
	if len(fields) == 0 {
		if err := e.driver.Info(ctx, "No matching fields."); err != nil {
			return schema.Field{}, false, err
		}
		return schema.Field{}, false, nil
	}

	idx, err := e.driver.Select(ctx, SelectConfig{
		Message:  message,
		Options:  labels,
		PageSize: 12,
	})
	if err != nil {
		return schema.Field{}, false, err
	}
	if idx < 0 || idx >= len(fields) {
		return schema.Field{}, false, nil
	}
	return fields[idx], true, nil
}

func (e *Editor) selectType(ctx context.Context, defaultIndex int) (int, error) {
	options := make([]string, len(fieldTypeOptions))
	for i, t := range fieldTypeOptions {
		options[i] = string(t)
	}
	idx, err := e.driver.Select(ctx, SelectConfig{
		Message:      "Field type",
		Options:      options,
		DefaultIndex: defaultIndex,
	})
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx >= len(fieldTypeOptions) {
		return 0, errors.New("editor: no type selected")
	}
	return idx, nil
}

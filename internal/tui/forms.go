package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldCheckbox
	fieldSelect
	fieldMultiCheck
	fieldChoice
)

// formField is one editable row in an entity form. Text fields keep their
// raw string until submit; parsing happens in the form's submit function so
// invalid input survives a failed validation.
type formField struct {
	kind  fieldKind
	key   string
	label string

	value  string
	cursor int

	checked bool

	options  []string
	selected int

	checks []bool

	// choice rows carry a second text half for the label
	labelValue  string
	labelCursor int
	labelFocus  bool

	readonly bool
}

func textField(key, label, value string) *formField {
	return &formField{kind: fieldText, key: key, label: label, value: value, cursor: len(value)}
}

func checkboxField(key, label string, checked bool) *formField {
	return &formField{kind: fieldCheckbox, key: key, label: label, checked: checked}
}

func selectField(key, label string, options []string, selected int) *formField {
	return &formField{kind: fieldSelect, key: key, label: label, options: options, selected: selected}
}

func multiCheckField(key, label string, options []string, picked map[string]bool) *formField {
	checks := make([]bool, len(options))
	for i, opt := range options {
		checks[i] = picked[opt]
	}
	return &formField{kind: fieldMultiCheck, key: key, label: label, options: options, checks: checks}
}

func choiceField(raw, label string) *formField {
	return &formField{
		kind:        fieldChoice,
		key:         "choice",
		label:       "Choice",
		value:       raw,
		cursor:      len(raw),
		labelValue:  label,
		labelCursor: len(label),
	}
}

// entityForm is an open editor modal. submit validates and, on success,
// returns the mutation command; on failure it returns a notification
// command and the form stays open with all input intact.
type entityForm struct {
	title   string
	fields  []*formField
	focus   int
	choices bool
	submit  func(f *entityForm) tea.Cmd
}

func (f *entityForm) focused() *formField {
	if f.focus < 0 || f.focus >= len(f.fields) {
		return nil
	}
	return f.fields[f.focus]
}

func (f *entityForm) field(key string) *formField {
	for _, fld := range f.fields {
		if fld.key == key {
			return fld
		}
	}
	return nil
}

func (f *entityForm) choiceFields() []*formField {
	var out []*formField
	for _, fld := range f.fields {
		if fld.kind == fieldChoice {
			out = append(out, fld)
		}
	}
	return out
}

func (f *entityForm) moveFocus(delta int) {
	if len(f.fields) == 0 {
		return
	}
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
}

func (f *entityForm) addChoiceRow() {
	fld := choiceField("", "")
	f.fields = append(f.fields, fld)
	f.focus = len(f.fields) - 1
}

func (f *entityForm) removeFocusedChoiceRow() {
	fld := f.focused()
	if fld == nil || fld.kind != fieldChoice {
		return
	}
	f.fields = append(f.fields[:f.focus], f.fields[f.focus+1:]...)
	if f.focus >= len(f.fields) {
		f.focus = len(f.fields) - 1
	}
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) tea.Cmd {
	f := m.activeForm
	if f == nil {
		m.mode = ModeNormal
		return nil
	}

	switch msg.String() {
	case "esc":
		m.activeForm = nil
		m.mode = ModeNormal
		return m.setStatusMessage("Edit cancelled")

	case "enter":
		return f.submit(f)

	case "tab", "down":
		f.moveFocus(1)
		return nil

	case "shift+tab", "up":
		f.moveFocus(-1)
		return nil

	case "ctrl+n":
		if f.choices {
			f.addChoiceRow()
		}
		return nil

	case "ctrl+x":
		if f.choices {
			f.removeFocusedChoiceRow()
		}
		return nil
	}

	fld := f.focused()
	if fld == nil || fld.readonly {
		return nil
	}

	switch fld.kind {
	case fieldCheckbox:
		if msg.String() == " " {
			fld.checked = !fld.checked
		}

	case fieldSelect:
		if len(fld.options) == 0 {
			return nil
		}
		switch msg.String() {
		case "left":
			fld.selected = (fld.selected - 1 + len(fld.options)) % len(fld.options)
		case "right", " ":
			fld.selected = (fld.selected + 1) % len(fld.options)
		}

	case fieldMultiCheck:
		if len(fld.options) == 0 {
			return nil
		}
		switch msg.String() {
		case "left":
			fld.selected = (fld.selected - 1 + len(fld.options)) % len(fld.options)
		case "right":
			fld.selected = (fld.selected + 1) % len(fld.options)
		case " ":
			fld.checks[fld.selected] = !fld.checks[fld.selected]
		}

	case fieldChoice:
		// left/right cross between the value half and the label half when
		// the cursor reaches the boundary.
		if msg.String() == "left" && fld.labelFocus && fld.labelCursor == 0 {
			fld.labelFocus = false
			return nil
		}
		if msg.String() == "right" && !fld.labelFocus && fld.cursor == len(fld.value) {
			fld.labelFocus = true
			return nil
		}
		if fld.labelFocus {
			handleTextInputWithCursor(&fld.labelValue, &fld.labelCursor, msg)
		} else {
			handleTextInputWithCursor(&fld.value, &fld.cursor, msg)
		}

	default:
		handleTextInputWithCursor(&fld.value, &fld.cursor, msg)
	}
	return nil
}

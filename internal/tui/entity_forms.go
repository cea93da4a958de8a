package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/trailtech/dbcstudio/internal/form"
	"github.com/trailtech/dbcstudio/internal/format"
	"github.com/trailtech/dbcstudio/internal/types"
	"github.com/trailtech/dbcstudio/internal/view"
)

var byteOrderOptions = []string{
	types.ByteOrderBigEndian,
	types.ByteOrderLittleEndian,
}

func byteOrderIndex(order string) int {
	for i, opt := range byteOrderOptions {
		if opt == order {
			return i
		}
	}
	return 0
}

// newMessageForm builds the create/edit modal for a message. A nil existing
// message means create.
func (m *Model) newMessageForm(existing *types.Message) *entityForm {
	db := m.store.Database()
	senders := make([]string, 0, len(db.Nodes)+1)
	senders = append(senders, "")
	for _, n := range db.Nodes {
		senders = append(senders, n.Name)
	}

	f := &entityForm{title: "Add Message"}
	if existing == nil {
		f.fields = []*formField{
			textField("id", "Frame ID", ""),
			textField("name", "Name", ""),
			textField("length", "Length (bytes)", "8"),
			selectField("sender", "Sender", senders, 0),
			checkboxField("extended", "Extended frame", false),
			textField("comment", "Comment", ""),
		}
	} else {
		f.title = "Edit Message " + format.HexID(existing.FrameID)
		senderIdx := 0
		for i, s := range senders {
			if s == existing.Sender() {
				senderIdx = i
			}
		}
		f.fields = []*formField{
			textField("id", "Frame ID", format.HexID(existing.FrameID)),
			textField("name", "Name", existing.Name),
			textField("length", "Length (bytes)", strconv.Itoa(existing.Length)),
			selectField("sender", "Sender", senders, senderIdx),
			checkboxField("extended", "Extended frame", existing.IsExtendedFrame),
			textField("comment", "Comment", existing.Comment),
		}
	}

	var originalID uint32
	isEdit := existing != nil
	if isEdit {
		originalID = existing.FrameID
	}

	f.submit = func(f *entityForm) tea.Cmd {
		upd, ferr := extractMessage(f)
		if ferr != nil {
			return m.setErrorMessage(ferr.Error())
		}
		if isEdit {
			return m.updateMessage(originalID, upd)
		}
		return m.createMessage(upd)
	}
	return f
}

func extractMessage(f *entityForm) (types.MessageUpdate, *form.FieldError) {
	var upd types.MessageUpdate

	id, ferr := form.FrameID("Frame ID", f.field("id").value)
	if ferr != nil {
		return upd, ferr
	}
	name, ferr := form.RequiredString("Name", f.field("name").value)
	if ferr != nil {
		return upd, ferr
	}
	length, ferr := form.Int("Length", f.field("length").value)
	if ferr != nil {
		return upd, ferr
	}
	if length < 1 {
		return upd, &form.FieldError{Field: "Length", Reason: "must be at least 1"}
	}

	sender := f.field("sender")
	upd = types.MessageUpdate{
		Name:            name,
		FrameID:         id,
		Length:          length,
		Sender:          sender.options[sender.selected],
		IsExtendedFrame: f.field("extended").checked,
		Comment:         strings.TrimSpace(f.field("comment").value),
	}
	return upd, nil
}

// newSignalForm builds the create/edit modal for a signal inside the given
// message. A nil existing signal means create.
func (m *Model) newSignalForm(frameID uint32, existing *types.Signal) *entityForm {
	db := m.store.Database()
	nodeNames := make([]string, 0, len(db.Nodes))
	for _, n := range db.Nodes {
		nodeNames = append(nodeNames, n.Name)
	}

	f := &entityForm{choices: true}
	if existing == nil {
		f.title = fmt.Sprintf("Add Signal to %s", format.HexID(frameID))
		f.fields = []*formField{
			textField("name", "Name", ""),
			textField("start_bit", "Start bit", ""),
			textField("length", "Length (bits)", "8"),
			selectField("byte_order", "Byte order", byteOrderOptions, 0),
			checkboxField("signed", "Signed", false),
			textField("factor", "Factor", "1"),
			textField("offset", "Offset", "0"),
			textField("minimum", "Minimum", "0"),
			textField("maximum", "Maximum", "0"),
			textField("unit", "Unit", ""),
			textField("comment", "Comment", ""),
			multiCheckField("receivers", "Receivers", nodeNames, nil),
		}
	} else {
		f.title = fmt.Sprintf("Edit Signal %s", existing.Name)
		picked := make(map[string]bool, len(existing.Receivers))
		for _, r := range existing.Receivers {
			picked[r] = true
		}
		f.fields = []*formField{
			textField("name", "Name", existing.Name),
			textField("start_bit", "Start bit", strconv.Itoa(existing.StartBit)),
			textField("length", "Length (bits)", strconv.Itoa(existing.Length)),
			selectField("byte_order", "Byte order", byteOrderOptions, byteOrderIndex(existing.ByteOrder)),
			checkboxField("signed", "Signed", existing.IsSigned),
			textField("factor", "Factor", view.FormatFloat(existing.Factor)),
			textField("offset", "Offset", view.FormatFloat(existing.Offset)),
			textField("minimum", "Minimum", view.FormatFloat(existing.Minimum)),
			textField("maximum", "Maximum", view.FormatFloat(existing.Maximum)),
			textField("unit", "Unit", existing.Unit),
			textField("comment", "Comment", existing.Comment),
			multiCheckField("receivers", "Receivers", nodeNames, picked),
		}
		for _, key := range sortedChoiceKeys(existing.Choices) {
			f.fields = append(f.fields, choiceField(key, existing.Choices[key]))
		}
	}

	var originalName string
	isEdit := existing != nil
	if isEdit {
		originalName = existing.Name
	}

	f.submit = func(f *entityForm) tea.Cmd {
		upd, ferr := extractSignal(f)
		if ferr != nil {
			return m.setErrorMessage(ferr.Error())
		}
		if isEdit {
			return m.updateSignal(frameID, originalName, upd)
		}
		return m.createSignal(frameID, upd)
	}
	return f
}

func extractSignal(f *entityForm) (types.SignalUpdate, *form.FieldError) {
	var upd types.SignalUpdate

	name, ferr := form.RequiredString("Name", f.field("name").value)
	if ferr != nil {
		return upd, ferr
	}
	startBit, ferr := form.Int("Start bit", f.field("start_bit").value)
	if ferr != nil {
		return upd, ferr
	}
	length, ferr := form.Int("Length", f.field("length").value)
	if ferr != nil {
		return upd, ferr
	}
	if length < 1 {
		return upd, &form.FieldError{Field: "Length", Reason: "must be at least 1"}
	}
	factor, ferr := form.Float("Factor", f.field("factor").value, 1)
	if ferr != nil {
		return upd, ferr
	}
	offset, ferr := form.Float("Offset", f.field("offset").value, 0)
	if ferr != nil {
		return upd, ferr
	}
	minimum, ferr := form.Float("Minimum", f.field("minimum").value, 0)
	if ferr != nil {
		return upd, ferr
	}
	maximum, ferr := form.Float("Maximum", f.field("maximum").value, 0)
	if ferr != nil {
		return upd, ferr
	}

	order := f.field("byte_order")
	recv := f.field("receivers")
	receivers := []string{}
	for i, checked := range recv.checks {
		if checked {
			receivers = append(receivers, recv.options[i])
		}
	}

	// A choice row counts only when its value half is filled in and its
	// label is non-empty; blank rows are dropped, and a fully empty set is
	// submitted as absent.
	var choices map[string]string
	for _, row := range f.choiceFields() {
		raw := strings.TrimSpace(row.value)
		label := strings.TrimSpace(row.labelValue)
		if raw == "" || label == "" {
			continue
		}
		if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
			return upd, &form.FieldError{Field: "Choice value " + raw, Reason: "must be an integer"}
		}
		if choices == nil {
			choices = make(map[string]string)
		}
		choices[raw] = label
	}

	upd = types.SignalUpdate{
		Name:      name,
		StartBit:  startBit,
		Length:    length,
		ByteOrder: order.options[order.selected],
		IsSigned:  f.field("signed").checked,
		Factor:    factor,
		Offset:    offset,
		Minimum:   minimum,
		Maximum:   maximum,
		Unit:      strings.TrimSpace(f.field("unit").value),
		Comment:   strings.TrimSpace(f.field("comment").value),
		Receivers: receivers,
		Choices:   choices,
	}
	return upd, nil
}

// newNodeForm builds the create/edit modal for a node. The name is fixed
// once a node exists; edits only change the comment.
func (m *Model) newNodeForm(existing *types.Node) *entityForm {
	f := &entityForm{title: "Add Node"}
	if existing == nil {
		f.fields = []*formField{
			textField("name", "Name", ""),
			textField("comment", "Comment", ""),
		}
	} else {
		f.title = "Edit Node " + existing.Name
		nameField := textField("name", "Name", existing.Name)
		nameField.readonly = true
		f.fields = []*formField{
			nameField,
			textField("comment", "Comment", existing.Comment),
		}
		f.focus = 1
	}

	isEdit := existing != nil

	f.submit = func(f *entityForm) tea.Cmd {
		name, ferr := form.RequiredString("Name", f.field("name").value)
		if ferr != nil {
			return m.setErrorMessage(ferr.Error())
		}
		upd := types.NodeUpdate{
			Name:    name,
			Comment: strings.TrimSpace(f.field("comment").value),
		}
		if isEdit {
			return m.updateNode(name, upd)
		}
		return m.createNode(upd)
	}
	return f
}

// sortedChoiceKeys orders raw values numerically so 2 sorts before 10.
func sortedChoiceKeys(choices map[string]string) []string {
	keys := make([]string, 0, len(choices))
	for k := range choices {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, aerr := strconv.ParseInt(keys[i], 10, 64)
		b, berr := strconv.ParseInt(keys[j], 10, 64)
		if aerr == nil && berr == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})
	return keys
}

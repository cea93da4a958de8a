package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/trailtech/dbcstudio/internal/form"
	"github.com/trailtech/dbcstudio/internal/format"
)

var styleModal = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorBlue).
	Padding(1, 2)

// renderModal centers boxed content over the full terminal area.
func (m *Model) renderModal(title, content, footer string) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(content)
	if footer != "" {
		b.WriteString("\n\n")
		b.WriteString(styleSubtle.Render(footer))
	}

	box := styleModal.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) renderFormModal() string {
	f := m.activeForm
	if f == nil {
		return m.renderMain()
	}

	var b strings.Builder
	for i, fld := range f.fields {
		focused := i == f.focus
		b.WriteString(m.renderFormField(fld, focused))
		b.WriteString("\n")
	}

	footer := "enter: submit  tab/↑↓: fields  esc: cancel"
	if f.choices {
		footer += "  ctrl+n: add choice  ctrl+x: remove choice"
	}
	return m.renderModal(f.title, b.String(), footer)
}

func (m *Model) renderFormField(fld *formField, focused bool) string {
	label := fld.label + ": "
	if focused {
		label = styleSelected.Render(label)
	} else {
		label = styleSubtle.Render(label)
	}

	switch fld.kind {
	case fieldCheckbox:
		mark := "[ ]"
		if fld.checked {
			mark = "[x]"
		}
		hint := ""
		if focused {
			hint = styleSubtle.Render("  (space toggles)")
		}
		return label + mark + hint

	case fieldSelect:
		parts := make([]string, 0, len(fld.options))
		for i, opt := range fld.options {
			display := opt
			if display == "" {
				display = "(none)"
			}
			if i == fld.selected {
				display = styleSelected.Render("[" + display + "]")
			}
			parts = append(parts, display)
		}
		return label + strings.Join(parts, " ")

	case fieldMultiCheck:
		if len(fld.options) == 0 {
			return label + styleSubtle.Render("(no nodes defined)")
		}
		parts := make([]string, 0, len(fld.options))
		for i, opt := range fld.options {
			mark := "[ ] "
			if fld.checks[i] {
				mark = "[x] "
			}
			entry := mark + opt
			if focused && i == fld.selected {
				entry = styleSelected.Render(entry)
			}
			parts = append(parts, entry)
		}
		return label + strings.Join(parts, "  ")

	case fieldChoice:
		value := fld.value
		labelHalf := fld.labelValue
		if focused {
			if fld.labelFocus {
				labelHalf = addCursor(labelHalf, fld.labelCursor)
			} else {
				value = addCursor(value, fld.cursor)
			}
		}
		return label + value + styleSubtle.Render(" = ") + labelHalf

	default:
		if fld.readonly {
			return label + styleSubtle.Render(fld.value+"  (fixed)")
		}
		value := fld.value
		if focused {
			value = addCursor(fld.value, fld.cursor)
		}
		if fld.key == "id" {
			if id, ferr := form.FrameID(fld.label, fld.value); ferr == nil {
				value += styleSubtle.Render("  → " + format.HexID(id))
			}
		}
		return label + value
	}
}

func (m *Model) renderConfirmModal() string {
	if m.confirm == nil {
		return m.renderMain()
	}
	content := styleWarning.Render(m.confirm.prompt)
	return m.renderModal("Confirm", content, "[y]es  [n]o")
}

func (m *Model) renderUploadModal() string {
	content := "File path: " + addCursor(m.uploadInput, m.uploadCursor)
	return m.renderModal("Upload DBC File", content, "enter: upload  esc: cancel")
}

func (m *Model) renderJournalModal() string {
	return m.renderModal("Change Journal", m.journalView.View(), "↑↓: scroll  C: clear  esc: close")
}

func (m *Model) renderHelp() string {
	rows := []struct{ key, desc string }{
		{"tab", "switch between messages and nodes"},
		{"j/k, ↑/↓", "move cursor (into signal rows when expanded)"},
		{"enter, space", "expand/collapse message"},
		{"/", "filter messages"},
		{"a", "add message or node"},
		{"e", "edit selected message, signal or node"},
		{"d", "delete selected (with confirmation)"},
		{"s", "add signal to selected message"},
		{"y", "copy frame ID to clipboard"},
		{"ctrl+s", "save database to disk"},
		{"ctrl+r", "reload database from disk"},
		{"ctrl+d", "download a copy"},
		{"u", "upload a DBC file"},
		{"o", "export HTML report"},
		{"h", "show change journal"},
		{"q", "quit"},
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(styleSelected.Render(padRight(r.key, 14)))
		b.WriteString(r.desc)
		b.WriteString("\n")
	}
	return m.renderModal("Help", strings.TrimRight(b.String(), "\n"), "esc: close")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

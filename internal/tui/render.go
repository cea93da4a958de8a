package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/trailtech/dbcstudio/internal/types"
	"github.com/trailtech/dbcstudio/internal/view"
)

var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "82"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "226"}
	colorBlue   = lipgloss.AdaptiveColor{Light: "27", Dark: "39"}
	colorGray   = lipgloss.AdaptiveColor{Light: "245", Dark: "241"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "31", Dark: "51"}

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	styleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleTabActive = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue).
			Underline(true)

	styleChip = lipgloss.NewStyle().
			Foreground(colorCyan)
)

// visibleCards rebuilds the filtered card list from the current snapshot.
func (m *Model) visibleCards() []view.MessageCard {
	return view.BuildMessageCards(m.store.Database(), m.searchQuery, m.expanded)
}

func (m *Model) selectedCard() *view.MessageCard {
	cards := m.visibleCards()
	if m.msgIndex < 0 || m.msgIndex >= len(cards) {
		return nil
	}
	return &cards[m.msgIndex]
}

func (m *Model) selectedNode() *types.Node {
	nodes := m.store.Database().Nodes
	if m.nodeIndex < 0 || m.nodeIndex >= len(nodes) {
		return nil
	}
	return &nodes[m.nodeIndex]
}

func (m *Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.tab == TabMessages {
		b.WriteString(m.renderMessageList())
	} else {
		b.WriteString(m.renderNodeList())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m *Model) renderHeader() string {
	db := m.store.Database()
	title := styleTitle.Render("DBC Studio")
	filename := db.Filename
	if filename == "" {
		filename = "(no file)"
	}
	if m.store.Dirty() {
		filename += styleWarning.Render(" *")
	}

	msgTab := fmt.Sprintf("Messages (%d)", len(db.Messages))
	nodeTab := fmt.Sprintf("Nodes (%d)", len(db.Nodes))
	if m.tab == TabMessages {
		msgTab = styleTabActive.Render(msgTab)
		nodeTab = styleSubtle.Render(nodeTab)
	} else {
		msgTab = styleSubtle.Render(msgTab)
		nodeTab = styleTabActive.Render(nodeTab)
	}

	line := title + "  " + filename + "    " + msgTab + "  " + nodeTab

	if m.mode == ModeSearch {
		line += "\n" + styleSelected.Render("/") + m.searchQuery + "█"
	} else if m.searchQuery != "" {
		line += "\n" + styleSubtle.Render("filter: ") + m.searchQuery + styleSubtle.Render("  (esc clears)")
	}
	return line + "\n"
}

func (m *Model) renderMessageList() string {
	cards := m.visibleCards()
	if len(cards) == 0 {
		if m.searchQuery != "" {
			return styleSubtle.Render("  No messages match the filter") + "\n"
		}
		return styleSubtle.Render("  No messages. Press 'a' to add one.") + "\n"
	}

	var b strings.Builder
	for i := range cards {
		b.WriteString(m.renderMessageCard(&cards[i], i == m.msgIndex))
	}
	return b.String()
}

func (m *Model) renderMessageCard(card *view.MessageCard, selected bool) string {
	var b strings.Builder

	arrow := "▸"
	if card.Expanded {
		arrow = "▾"
	}
	cursor := "  "
	if selected && m.sigIndex < 0 {
		cursor = styleSelected.Render("> ")
	}

	header := fmt.Sprintf("%s%s %s  %s", cursor, arrow, styleTitle.Render(card.HexID), card.Name)
	meta := fmt.Sprintf("  %d bytes, %d signals, sender %s", card.Length, card.SignalCount, card.Sender)
	if card.Extended {
		meta += ", " + styleWarning.Render("extended")
	}
	b.WriteString(header)
	b.WriteString(styleSubtle.Render(meta))
	b.WriteString("\n")
	if card.Comment != "" {
		b.WriteString("    " + styleSubtle.Render(view.TruncateComment(card.Comment)) + "\n")
	}

	if !card.Expanded {
		return b.String()
	}

	if len(card.Signals) == 0 {
		b.WriteString(styleSubtle.Render("      no signals") + "\n")
		return b.String()
	}
	for i := range card.Signals {
		b.WriteString(m.renderSignalRow(&card.Signals[i], selected && i == m.sigIndex))
	}
	return b.String()
}

func (m *Model) renderSignalRow(row *view.SignalRow, selected bool) string {
	cursor := "      "
	name := row.Name
	if selected {
		cursor = "    " + styleSelected.Render("> ")
		name = styleSelected.Render(name)
	}

	offset := view.FormatFloat(row.Offset)
	if !strings.HasPrefix(offset, "-") {
		offset = "+" + offset
	}
	line := fmt.Sprintf("%s%s  bit %d+%d %s  x%s %s  [%s] %s",
		cursor, name,
		row.StartBit, row.Length, row.Order,
		view.FormatFloat(row.Factor), offset,
		row.Range, row.Unit)
	out := strings.TrimRight(line, " ") + "\n"

	if row.Comment != "" {
		out += "        " + styleSubtle.Render(row.Comment) + "\n"
	}
	if len(row.Choices) > 0 {
		chips := make([]string, 0, len(row.Choices))
		for _, c := range row.Choices {
			chips = append(chips, styleChip.Render(c.Raw+"="+c.Label))
		}
		out += "        " + strings.Join(chips, " ") + "\n"
	}
	return out
}

func (m *Model) renderNodeList() string {
	cards := view.BuildNodeCards(m.store.Database())
	if len(cards) == 0 {
		return styleSubtle.Render("  No nodes. Press 'a' to add one.") + "\n"
	}

	var b strings.Builder
	for i, card := range cards {
		cursor := "  "
		name := card.Name
		if i == m.nodeIndex {
			cursor = styleSelected.Render("> ")
			name = styleSelected.Render(name)
		}
		b.WriteString(cursor + name)
		if card.Comment != "" {
			b.WriteString("  " + styleSubtle.Render(view.TruncateComment(card.Comment)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderStatusBar() string {
	if m.errorMsg != "" {
		return styleError.Render("✗ " + m.errorMsg)
	}
	if m.statusMsg != "" {
		return styleSuccess.Render("✓ " + m.statusMsg)
	}
	return styleSubtle.Render("a:add  e:edit  d:delete  s:signal  /:search  ctrl+s:save  ?:help  q:quit")
}

// Package report renders the database view model to a standalone HTML
// document. All user-supplied text goes through format.EscapeContent or
// format.EscapeAttr before it reaches the output.
package report

import (
	"fmt"
	"strings"

	"github.com/trailtech/dbcstudio/internal/format"
	"github.com/trailtech/dbcstudio/internal/types"
	"github.com/trailtech/dbcstudio/internal/view"
)

// Render produces the full HTML report for a database snapshot.
func Render(db *types.Database) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", format.EscapeContent(db.Filename))
	b.WriteString(styleBlock)
	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", format.EscapeContent(db.Filename))

	b.WriteString("<h2>Messages</h2>\n")
	cards := view.BuildMessageCards(db, "", nil)
	if len(cards) == 0 {
		b.WriteString("<p class=\"empty\">No messages defined</p>\n")
	}
	for _, card := range cards {
		writeMessageCard(&b, card)
	}

	b.WriteString("<h2>Nodes</h2>\n")
	nodes := view.BuildNodeCards(db)
	if len(nodes) == 0 {
		b.WriteString("<p class=\"empty\">No nodes defined</p>\n")
	}
	for _, node := range nodes {
		writeNodeCard(&b, node)
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func writeMessageCard(b *strings.Builder, card view.MessageCard) {
	fmt.Fprintf(b, "<div class=\"message\" id=\"msg-%d\">\n", card.FrameID)
	fmt.Fprintf(b, "<h3><span class=\"id\">%s</span> %s</h3>\n",
		card.HexID, format.EscapeContent(card.Name))
	fmt.Fprintf(b, "<p class=\"meta\">%d bytes, %d signal%s, sender %s</p>\n",
		card.Length, card.SignalCount, plural(card.SignalCount),
		format.EscapeContent(card.Sender))
	if card.Comment != "" {
		fmt.Fprintf(b, "<p class=\"comment\">%s</p>\n", format.EscapeContent(card.Comment))
	}

	if len(card.Signals) == 0 {
		b.WriteString("<p class=\"empty\">No signals defined</p>\n</div>\n")
		return
	}

	b.WriteString("<table>\n<tr><th>Signal</th><th>Bit</th><th>Len</th><th>Order</th>" +
		"<th>Factor</th><th>Offset</th><th>Range</th><th>Unit</th><th>Description</th></tr>\n")
	for _, row := range card.Signals {
		writeSignalRow(b, row)
	}
	b.WriteString("</table>\n</div>\n")
}

func writeSignalRow(b *strings.Builder, row view.SignalRow) {
	b.WriteString("<tr>")
	fmt.Fprintf(b, "<td>%s%s</td>", format.EscapeContent(row.Name), choiceChips(row.Choices))
	fmt.Fprintf(b, "<td>%d</td><td>%d</td><td>%s</td>", row.StartBit, row.Length, row.Order)
	fmt.Fprintf(b, "<td>%s</td><td>%s</td><td>%s</td>",
		view.FormatFloat(row.Factor), view.FormatFloat(row.Offset), row.Range)
	fmt.Fprintf(b, "<td>%s</td>", format.EscapeContent(row.Unit))
	fmt.Fprintf(b, "<td title=\"%s\">%s</td>",
		format.EscapeAttr(row.FullComment), format.EscapeContent(row.Comment))
	b.WriteString("</tr>\n")
}

func choiceChips(choices []view.Choice) string {
	if len(choices) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<div class=\"choices\">")
	for _, c := range choices {
		fmt.Fprintf(&b, "<span>%s=%s</span> ",
			format.EscapeContent(c.Raw), format.EscapeContent(c.Label))
	}
	b.WriteString("</div>")
	return b.String()
}

func writeNodeCard(b *strings.Builder, node view.NodeCard) {
	b.WriteString("<div class=\"node\">\n")
	fmt.Fprintf(b, "<h3>%s</h3>\n", format.EscapeContent(node.Name))
	if node.Comment != "" {
		fmt.Fprintf(b, "<p class=\"comment\">%s</p>\n", format.EscapeContent(node.Comment))
	}
	b.WriteString("</div>\n")
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

const styleBlock = `<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
table { border-collapse: collapse; margin: 0.5rem 0 1.5rem; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; font-size: 0.9rem; }
.id { font-family: monospace; color: #0366d6; }
.meta, .empty { color: #666; font-size: 0.85rem; }
.comment { font-style: italic; }
.choices span { background: #eef; border-radius: 3px; padding: 0 0.3rem; margin-right: 0.3rem; font-size: 0.8rem; }
</style>
`

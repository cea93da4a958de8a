// Package view builds display-agnostic view models from a database
// snapshot. Builders are pure: (snapshot, filter, expansion set) in,
// structured cards out. The terminal presenter and the HTML report render
// the same model, so all list/filter/truncation logic is testable without a
// display surface.
package view

import (
	"sort"
	"strconv"
	"strings"

	"github.com/trailtech/dbcstudio/internal/format"
	"github.com/trailtech/dbcstudio/internal/types"
)

// CommentLimit is the rune count past which inline signal comments are
// truncated; the full text stays on the row for detail surfaces.
const CommentLimit = 60

// MessageCard is one collapsible message entry.
type MessageCard struct {
	FrameID     uint32
	HexID       string
	Name        string
	Length      int
	SignalCount int
	Sender      string
	Comment     string
	Extended    bool
	Expanded    bool
	Signals     []SignalRow
}

// SignalRow is one row of a message's signal table.
type SignalRow struct {
	Name        string
	StartBit    int
	Length      int
	Order       string // "BE" or "LE"
	Factor      float64
	Offset      float64
	Range       string // "min..max"
	Unit        string
	Comment     string // truncated for inline display
	FullComment string
	Choices     []Choice
}

// Choice is one raw-value/label pair of an enum-like signal, rendered as a
// "raw=label" chip.
type Choice struct {
	Raw   string
	Label string
}

// NodeCard is one node entry.
type NodeCard struct {
	Name    string
	Comment string
}

// MatchesFilter reports whether a message survives the list filter: the
// query is empty, or is a case-insensitive substring of the message name,
// its hex-formatted id, its decimal id, or its first sender's name.
func MatchesFilter(m *types.Message, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(m.Name), q) {
		return true
	}
	if strings.Contains(strings.ToLower(format.HexID(m.FrameID)), q) {
		return true
	}
	if strings.Contains(strconv.FormatUint(uint64(m.FrameID), 10), q) {
		return true
	}
	return strings.Contains(strings.ToLower(m.Sender()), q)
}

// BuildMessageCards maps the snapshot's messages through the filter into
// cards. Expansion state is presentational only and supplied by the caller.
func BuildMessageCards(db *types.Database, query string, expanded map[uint32]bool) []MessageCard {
	cards := make([]MessageCard, 0, len(db.Messages))
	for i := range db.Messages {
		m := &db.Messages[i]
		if !MatchesFilter(m, query) {
			continue
		}
		cards = append(cards, buildMessageCard(m, expanded[m.FrameID]))
	}
	return cards
}

func buildMessageCard(m *types.Message, expanded bool) MessageCard {
	sender := m.Sender()
	if sender == "" {
		sender = "Unknown"
	}

	card := MessageCard{
		FrameID:     m.FrameID,
		HexID:       format.HexID(m.FrameID),
		Name:        m.Name,
		Length:      m.Length,
		SignalCount: len(m.Signals),
		Sender:      sender,
		Comment:     m.Comment,
		Extended:    m.IsExtendedFrame,
		Expanded:    expanded,
		Signals:     make([]SignalRow, 0, len(m.Signals)),
	}
	for i := range m.Signals {
		card.Signals = append(card.Signals, buildSignalRow(&m.Signals[i]))
	}
	return card
}

func buildSignalRow(s *types.Signal) SignalRow {
	order := "LE"
	if s.ByteOrder == types.ByteOrderBigEndian {
		order = "BE"
	}

	return SignalRow{
		Name:        s.Name,
		StartBit:    s.StartBit,
		Length:      s.Length,
		Order:       order,
		Factor:      s.Factor,
		Offset:      s.Offset,
		Range:       FormatFloat(s.Minimum) + ".." + FormatFloat(s.Maximum),
		Unit:        s.Unit,
		Comment:     TruncateComment(s.Comment),
		FullComment: s.Comment,
		Choices:     buildChoices(s.Choices),
	}
}

func buildChoices(choices map[string]string) []Choice {
	if len(choices) == 0 {
		return nil
	}
	out := make([]Choice, 0, len(choices))
	for raw, label := range choices {
		out = append(out, Choice{Raw: raw, Label: label})
	}
	// Numeric keys sort by value so chips read 0=Off, 1=On, ...
	sort.Slice(out, func(i, j int) bool {
		a, errA := strconv.Atoi(out[i].Raw)
		b, errB := strconv.Atoi(out[j].Raw)
		if errA == nil && errB == nil {
			return a < b
		}
		return out[i].Raw < out[j].Raw
	})
	return out
}

// BuildNodeCards maps the snapshot's nodes into cards.
func BuildNodeCards(db *types.Database) []NodeCard {
	cards := make([]NodeCard, 0, len(db.Nodes))
	for _, n := range db.Nodes {
		cards = append(cards, NodeCard{Name: n.Name, Comment: n.Comment})
	}
	return cards
}

// TruncateComment shortens a comment to CommentLimit runes with an ellipsis
// for inline table display.
func TruncateComment(s string) string {
	runes := []rune(s)
	if len(runes) <= CommentLimit {
		return s
	}
	return string(runes[:CommentLimit]) + "..."
}

// FormatFloat renders scaling and range values the way the forms accept
// them back: no exponent for typical factors, no trailing zeros.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

package format

import (
	"fmt"
	"strings"
)

// HexID renders a CAN frame id as "0x" followed by uppercase hex digits,
// zero-padded to at least 3 digits (0x006, 0x7FF, 0x1000).
func HexID(id uint32) string {
	return fmt.Sprintf("0x%03X", id)
}

var contentEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&#39;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeContent makes arbitrary text safe for insertion into HTML element
// text content. Every user-supplied string must pass through here (or
// EscapeAttr) before it reaches rendered HTML output; skipping it is a
// stored-injection defect, not a display bug.
func EscapeContent(s string) string {
	if s == "" {
		return ""
	}
	return contentEscaper.Replace(s)
}

// EscapeAttr makes arbitrary text safe for insertion into a quoted HTML
// attribute value.
func EscapeAttr(s string) string {
	if s == "" {
		return ""
	}
	return attrEscaper.Replace(s)
}

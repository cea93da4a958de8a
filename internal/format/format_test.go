package format

import (
	"strings"
	"testing"
)

func TestHexID(t *testing.T) {
	cases := []struct {
		id   uint32
		want string
	}{
		{0, "0x000"},
		{6, "0x006"},
		{255, "0x0FF"},
		{500, "0x1F4"},
		{2047, "0x7FF"},
		{4096, "0x1000"},
		{0x1FFFFFFF, "0x1FFFFFFF"},
	}

	for _, c := range cases {
		got := HexID(c.id)
		if got != c.want {
			t.Errorf("HexID(%d) = %s, want %s", c.id, got, c.want)
		}
	}
}

func TestEscapeContent(t *testing.T) {
	got := EscapeContent(`<script>alert("x&y")</script>`)
	want := "&lt;script&gt;alert(&quot;x&amp;y&quot;)&lt;/script&gt;"
	if got != want {
		t.Errorf("EscapeContent = %s, want %s", got, want)
	}

	if EscapeContent("") != "" {
		t.Error("EscapeContent of empty string should be empty")
	}

	if EscapeContent("plain text") != "plain text" {
		t.Error("EscapeContent should not alter plain text")
	}
}

func TestEscapeAttr(t *testing.T) {
	got := EscapeAttr(`" onmouseover='alert(1)'`)
	if strings.ContainsAny(got, `"'<>`) {
		t.Errorf("EscapeAttr left breakout characters in %q", got)
	}
	if !strings.Contains(got, "&quot;") || !strings.Contains(got, "&#39;") {
		t.Errorf("EscapeAttr did not encode quotes: %q", got)
	}
}

// Escaped content must not contain any character that could open a tag or
// terminate a quoted attribute, for any hostile input.
func TestEscapeNeutralizesAllDangerousRunes(t *testing.T) {
	hostile := `&<>"'` + "corp & sons <b>\"quoted\" 'single'"
	for _, fn := range []func(string) string{EscapeContent, EscapeAttr} {
		out := fn(hostile)
		if strings.ContainsAny(out, `<>"'`) {
			t.Errorf("escaped output still contains dangerous runes: %q", out)
		}
	}
}

// Unescaping the escaped form must yield the original string, so the
// effective displayed text is unchanged by escaping.
func TestEscapeRoundTrip(t *testing.T) {
	unescape := strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&amp;", "&",
	)

	inputs := []string{
		`a < b && c > d`,
		`"double" and 'single'`,
		`&amp; already escaped`,
		`<td onclick="x">`,
	}
	for _, in := range inputs {
		if got := unescape.Replace(EscapeContent(in)); got != in {
			t.Errorf("content round trip: got %q, want %q", got, in)
		}
		if got := unescape.Replace(EscapeAttr(in)); got != in {
			t.Errorf("attr round trip: got %q, want %q", got, in)
		}
	}
}

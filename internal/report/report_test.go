package report

import (
	"strings"
	"testing"

	"github.com/trailtech/dbcstudio/internal/types"
)

func TestRenderBasics(t *testing.T) {
	db := &types.Database{
		Filename: "TrailCurrent.dbc",
		Nodes:    []types.Node{{Name: "ECU1", Comment: "Engine controller"}},
		Messages: []types.Message{{
			FrameID: 500,
			Name:    "EngineData",
			Length:  8,
			Senders: []string{"ECU1"},
			Signals: []types.Signal{{
				Name:      "RPM",
				Length:    16,
				ByteOrder: types.ByteOrderLittleEndian,
				Factor:    0.25,
				Maximum:   8000,
				Unit:      "rpm",
			}},
		}},
	}

	html := Render(db)

	for _, want := range []string{
		"TrailCurrent.dbc",
		"0x1F4",
		"EngineData",
		"8 bytes, 1 signal, sender ECU1",
		"<td>0.25</td>",
		"<td>0..8000</td>",
		"<td>LE</td>",
		"ECU1",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestRenderEscapesHostileNames(t *testing.T) {
	db := &types.Database{
		Filename: `<script>alert("f")</script>`,
		Nodes:    []types.Node{{Name: `<img src=x>`, Comment: `"quoted" & 'single'`}},
		Messages: []types.Message{{
			FrameID: 1,
			Name:    `<b onmouseover="x">Evil</b>`,
			Signals: []types.Signal{{
				Name:    "Sig",
				Comment: `breakout" attempt`,
				Choices: map[string]string{"0": `<i>label</i>`},
			}},
		}},
	}

	html := Render(db)

	for _, hostile := range []string{
		"<script>",
		"<img",
		`<b onmouseover`,
		"<i>label</i>",
		`title="breakout" attempt"`,
	} {
		if strings.Contains(html, hostile) {
			t.Errorf("report contains unescaped markup %q", hostile)
		}
	}

	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("expected escaped script tag in output")
	}
	if !strings.Contains(html, `title="breakout&quot; attempt"`) {
		t.Error("expected attribute-escaped comment title")
	}
}

func TestRenderEmptyDatabase(t *testing.T) {
	html := Render(&types.Database{Filename: "empty.dbc"})
	if !strings.Contains(html, "No messages defined") {
		t.Error("expected empty-state text for messages")
	}
	if !strings.Contains(html, "No nodes defined") {
		t.Error("expected empty-state text for nodes")
	}
}

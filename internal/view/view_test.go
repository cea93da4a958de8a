package view

import (
	"strings"
	"testing"

	"github.com/trailtech/dbcstudio/internal/types"
)

func testDatabase() *types.Database {
	return &types.Database{
		Filename: "TrailCurrent.dbc",
		Nodes: []types.Node{
			{Name: "ECU1", Comment: "Engine controller"},
			{Name: "GpsModule"},
		},
		Messages: []types.Message{
			{
				FrameID: 500,
				Name:    "EngineData",
				Length:  8,
				Senders: []string{"ECU1"},
				Signals: []types.Signal{
					{
						Name:      "RPM",
						StartBit:  0,
						Length:    16,
						ByteOrder: types.ByteOrderLittleEndian,
						Factor:    0.25,
						Offset:    0,
						Minimum:   0,
						Maximum:   8000,
						Unit:      "rpm",
						Receivers: []string{"GpsModule"},
					},
					{
						Name:      "Mode",
						StartBit:  16,
						Length:    8,
						ByteOrder: types.ByteOrderBigEndian,
						Factor:    1,
						Choices:   map[string]string{"0": "Off", "3": "Bulk_Charging", "10": "Float"},
					},
				},
			},
			{
				FrameID: 6,
				Name:    "GpsDateTime",
				Length:  8,
				Senders: []string{"GpsModule"},
			},
		},
	}
}

func TestMatchesFilter(t *testing.T) {
	db := testDatabase()
	engine := &db.Messages[0]
	gps := &db.Messages[1]

	cases := []struct {
		msg   *types.Message
		query string
		want  bool
	}{
		{engine, "", true},
		{engine, "enginedata", true},
		{engine, "ENGINE", true},
		{engine, "0x1f4", true},
		{engine, "1F4", true},
		{engine, "500", true},
		{engine, "ecu1", true},
		{engine, "gps", false},
		{gps, "0x006", true},
		{gps, "6", true},
		{gps, "gpsmodule", true},
		{gps, "zzz", false},
	}

	for _, c := range cases {
		if got := MatchesFilter(c.msg, c.query); got != c.want {
			t.Errorf("MatchesFilter(%s, %q) = %v, want %v", c.msg.Name, c.query, got, c.want)
		}
	}
}

func TestBuildMessageCards(t *testing.T) {
	db := testDatabase()
	cards := BuildMessageCards(db, "", map[uint32]bool{500: true})

	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}

	engine := cards[0]
	if engine.HexID != "0x1F4" {
		t.Errorf("expected hex id 0x1F4, got %s", engine.HexID)
	}
	if engine.Sender != "ECU1" || engine.SignalCount != 2 || !engine.Expanded {
		t.Errorf("unexpected card header: %+v", engine)
	}

	rpm := engine.Signals[0]
	if rpm.Order != "LE" {
		t.Errorf("expected LE for little_endian, got %s", rpm.Order)
	}
	if rpm.Range != "0..8000" {
		t.Errorf("expected range 0..8000, got %s", rpm.Range)
	}
	if rpm.Factor != 0.25 {
		t.Errorf("expected factor 0.25, got %v", rpm.Factor)
	}

	mode := engine.Signals[1]
	if mode.Order != "BE" {
		t.Errorf("expected BE for big_endian, got %s", mode.Order)
	}
	if len(mode.Choices) != 3 {
		t.Fatalf("expected 3 choices, got %d", len(mode.Choices))
	}
	// Numeric ordering: 0, 3, 10 (not lexicographic 0, 10, 3).
	if mode.Choices[0].Raw != "0" || mode.Choices[1].Raw != "3" || mode.Choices[2].Raw != "10" {
		t.Errorf("choices not sorted numerically: %+v", mode.Choices)
	}
	if mode.Choices[1].Label != "Bulk_Charging" {
		t.Errorf("unexpected choice label: %+v", mode.Choices[1])
	}

	gps := cards[1]
	if gps.Expanded {
		t.Error("gps card should be collapsed")
	}
	if gps.HexID != "0x006" {
		t.Errorf("expected hex id 0x006, got %s", gps.HexID)
	}
}

func TestBuildMessageCardsFiltered(t *testing.T) {
	db := testDatabase()

	cards := BuildMessageCards(db, "engine", nil)
	if len(cards) != 1 || cards[0].Name != "EngineData" {
		t.Fatalf("expected only EngineData, got %+v", cards)
	}

	cards = BuildMessageCards(db, "no-such-message", nil)
	if len(cards) != 0 {
		t.Fatalf("expected no cards, got %d", len(cards))
	}
}

func TestSenderFallback(t *testing.T) {
	db := &types.Database{Messages: []types.Message{{FrameID: 1, Name: "Orphan"}}}
	cards := BuildMessageCards(db, "", nil)
	if cards[0].Sender != "Unknown" {
		t.Errorf("expected Unknown sender, got %s", cards[0].Sender)
	}
}

func TestTruncateComment(t *testing.T) {
	short := "short comment"
	if TruncateComment(short) != short {
		t.Error("short comment should not be truncated")
	}

	long := strings.Repeat("x", 75)
	got := TruncateComment(long)
	if got != strings.Repeat("x", 60)+"..." {
		t.Errorf("unexpected truncation: %q", got)
	}

	// Truncation must operate on runes, not bytes.
	unicode := strings.Repeat("é", 61)
	got = TruncateComment(unicode)
	if got != strings.Repeat("é", 60)+"..." {
		t.Errorf("unicode truncation broken: %q", got)
	}
}

func TestSignalRowKeepsFullComment(t *testing.T) {
	long := strings.Repeat("y", 80)
	db := &types.Database{Messages: []types.Message{{
		FrameID: 2,
		Name:    "M",
		Signals: []types.Signal{{Name: "S", Comment: long, ByteOrder: types.ByteOrderBigEndian}},
	}}}

	row := BuildMessageCards(db, "", nil)[0].Signals[0]
	if row.FullComment != long {
		t.Error("full comment must be preserved on the row")
	}
	if len(row.Comment) >= len(long) {
		t.Error("inline comment should be truncated")
	}
}

func TestBuildNodeCards(t *testing.T) {
	cards := BuildNodeCards(testDatabase())
	if len(cards) != 2 {
		t.Fatalf("expected 2 node cards, got %d", len(cards))
	}
	if cards[0].Name != "ECU1" || cards[0].Comment != "Engine controller" {
		t.Errorf("unexpected node card: %+v", cards[0])
	}
}

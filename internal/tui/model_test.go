package tui

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/trailtech/dbcstudio/internal/api"
	"github.com/trailtech/dbcstudio/internal/config"
	"github.com/trailtech/dbcstudio/internal/mock"
	"github.com/trailtech/dbcstudio/internal/store"
	"github.com/trailtech/dbcstudio/internal/types"
)

func testModel(t *testing.T, seed types.Database) (*Model, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(mock.NewServer(&seed).Handler())
	t.Cleanup(srv.Close)

	st := store.New()
	st.Replace(&seed)
	m := NewModel(api.NewClient(srv.URL), st, nil, &config.Settings{ServerURL: srv.URL})
	m.width = 120
	m.height = 40
	return m, srv
}

func seedDatabase() types.Database {
	return types.Database{
		Filename: "vehicle.dbc",
		Nodes: []types.Node{
			{Name: "ECU", Comment: "engine controller"},
			{Name: "Dash"},
		},
		Messages: []types.Message{
			{
				FrameID: 500,
				Name:    "EngineStatus",
				Length:  8,
				Senders: []string{"ECU"},
				Signals: []types.Signal{
					{
						Name:      "EngineSpeed",
						StartBit:  0,
						Length:    16,
						ByteOrder: types.ByteOrderLittleEndian,
						Factor:    0.25,
						Maximum:   16383.75,
						Unit:      "rpm",
						Receivers: []string{"Dash"},
					},
				},
			},
			{FrameID: 256, Name: "Heartbeat", Length: 1, Senders: []string{"Dash"}},
		},
	}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestFormValidationBlocksRequest(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	st := store.New()
	db := seedDatabase()
	st.Replace(&db)
	m := NewModel(api.NewClient(srv.URL), st, nil, &config.Settings{ServerURL: srv.URL})

	f := m.newMessageForm(nil)
	f.field("id").value = "0x123"
	// name left empty
	f.submit(f)
	if requests != 0 {
		t.Fatalf("invalid form must not reach the server, saw %d requests", requests)
	}
	if !strings.Contains(m.fullErrorMsg, "Name is required") {
		t.Errorf("error message = %q, want field-level reason", m.fullErrorMsg)
	}
}

func TestExtractMessageParsesHexFrameID(t *testing.T) {
	st := store.New()
	db := seedDatabase()
	st.Replace(&db)
	m := NewModel(nil, st, nil, &config.Settings{})

	f := m.newMessageForm(nil)
	f.field("id").value = "0x1F4"
	f.field("name").value = "  Coolant  "
	f.field("length").value = "4"
	f.field("sender").selected = 1 // ECU
	f.field("extended").checked = true
	f.field("comment").value = "temp frame"

	upd, ferr := extractMessage(f)
	if ferr != nil {
		t.Fatalf("extract: %v", ferr)
	}
	if upd.FrameID != 500 {
		t.Errorf("FrameID = %d, want 500", upd.FrameID)
	}
	if upd.Name != "Coolant" {
		t.Errorf("Name = %q, want trimmed", upd.Name)
	}
	if upd.Sender != "ECU" || !upd.IsExtendedFrame || upd.Length != 4 {
		t.Errorf("unexpected update: %+v", upd)
	}
}

func TestExtractSignalChoices(t *testing.T) {
	st := store.New()
	db := seedDatabase()
	st.Replace(&db)
	m := NewModel(nil, st, nil, &config.Settings{})

	f := m.newSignalForm(500, nil)
	f.field("name").value = "GearPosition"
	f.field("start_bit").value = "16"
	f.field("length").value = "3"
	f.fields = append(f.fields,
		choiceField("0", "Park"),
		choiceField("1", ""),  // blank label, dropped
		choiceField("", "??"), // blank value, dropped
		choiceField("2", "Drive"),
	)

	upd, ferr := extractSignal(f)
	if ferr != nil {
		t.Fatalf("extract: %v", ferr)
	}
	want := map[string]string{"0": "Park", "2": "Drive"}
	if len(upd.Choices) != len(want) {
		t.Fatalf("Choices = %v, want %v", upd.Choices, want)
	}
	for k, v := range want {
		if upd.Choices[k] != v {
			t.Errorf("Choices[%q] = %q, want %q", k, upd.Choices[k], v)
		}
	}

	// defaults applied for empty scaling fields
	if upd.Factor != 1 || upd.Offset != 0 {
		t.Errorf("Factor/Offset = %v/%v, want defaults 1/0", upd.Factor, upd.Offset)
	}
}

func TestExtractSignalEmptyChoicesAbsent(t *testing.T) {
	st := store.New()
	db := seedDatabase()
	st.Replace(&db)
	m := NewModel(nil, st, nil, &config.Settings{})

	f := m.newSignalForm(500, nil)
	f.field("name").value = "Raw"
	f.field("start_bit").value = "0"
	f.field("length").value = "8"

	upd, ferr := extractSignal(f)
	if ferr != nil {
		t.Fatalf("extract: %v", ferr)
	}
	if upd.Choices != nil {
		t.Errorf("Choices = %v, want nil so the field is omitted", upd.Choices)
	}
}

func TestExtractSignalRejectsNonIntegerChoice(t *testing.T) {
	st := store.New()
	db := seedDatabase()
	st.Replace(&db)
	m := NewModel(nil, st, nil, &config.Settings{})

	f := m.newSignalForm(500, nil)
	f.field("name").value = "Mode"
	f.field("start_bit").value = "0"
	f.field("length").value = "2"
	f.fields = append(f.fields, choiceField("abc", "Auto"))

	if _, ferr := extractSignal(f); ferr == nil {
		t.Fatal("expected non-integer choice value to fail")
	}
}

func TestMutationRoundTrip(t *testing.T) {
	m, _ := testModel(t, seedDatabase())

	f := m.newMessageForm(nil)
	f.field("id").value = "0x300"
	f.field("name").value = "BrakeStatus"
	f.field("length").value = "2"
	cmd := f.submit(f)
	if cmd == nil {
		t.Fatal("expected a mutation command")
	}

	msg := cmd()
	done, ok := msg.(mutationDoneMsg)
	if !ok {
		t.Fatalf("got %T: %v", msg, msg)
	}
	m.Update(done)

	if !m.store.Dirty() {
		t.Error("store must be dirty after a successful mutation")
	}
	if m.store.Database().MessageByFrameID(0x300) == nil {
		t.Error("snapshot missing the created message")
	}
	if !m.expanded[0x300] {
		t.Error("originating card should be re-expanded after refresh")
	}
	if m.activeForm != nil || m.mode != ModeNormal {
		t.Error("form should close after a successful mutation")
	}
}

func TestServerErrorKeepsFormOpen(t *testing.T) {
	m, _ := testModel(t, seedDatabase())

	m.openForm(m.newMessageForm(nil))
	f := m.activeForm
	f.field("id").value = "500" // duplicate of EngineStatus
	f.field("name").value = "Clash"
	f.field("length").value = "8"

	msg := f.submit(f)()
	m.Update(msg)

	if m.mode != ModeForm || m.activeForm == nil {
		t.Error("form should stay open when the server rejects the request")
	}
	if !strings.Contains(m.fullErrorMsg, "already exists") {
		t.Errorf("error message = %q, want the server's reason", m.fullErrorMsg)
	}
	if m.store.Dirty() {
		t.Error("failed mutation must not dirty the store")
	}
}

func TestConfirmCancelDiscardsCommit(t *testing.T) {
	m, _ := testModel(t, seedDatabase())

	fired := false
	m.openConfirm("Delete?", func() tea.Msg { fired = true; return nil }, "Delete cancelled")
	if m.mode != ModeConfirm {
		t.Fatal("expected confirm mode")
	}

	m.handleKeyPress(key("n"))
	if m.mode != ModeNormal || m.confirm != nil {
		t.Error("cancel should close the confirmation")
	}
	if fired {
		t.Error("commit must not run on cancel")
	}
	if m.fullStatusMsg != "Delete cancelled" {
		t.Errorf("status = %q", m.fullStatusMsg)
	}

	// a fresh confirmation commits on yes
	m.openConfirm("Delete?", func() tea.Msg { fired = true; return nil }, "")
	cmd := m.handleKeyPress(key("y"))
	if cmd == nil {
		t.Fatal("yes should return the commit command")
	}
	cmd()
	if !fired {
		t.Error("commit should run on yes")
	}
}

func TestDirtyReloadRequiresConfirmation(t *testing.T) {
	m, _ := testModel(t, seedDatabase())

	cmd := m.handleKeyPress(tea.KeyMsg{Type: tea.KeyCtrlR})
	if m.mode == ModeConfirm {
		t.Fatal("clean store should reload without confirmation")
	}
	if cmd == nil {
		t.Fatal("expected reload command")
	}

	m.mode = ModeNormal
	m.store.MarkDirty()
	m.handleKeyPress(tea.KeyMsg{Type: tea.KeyCtrlR})
	if m.mode != ModeConfirm {
		t.Error("dirty store must confirm before reloading")
	}
}

func TestCursorDescendsIntoExpandedSignals(t *testing.T) {
	m, _ := testModel(t, seedDatabase())

	m.handleKeyPress(tea.KeyMsg{Type: tea.KeyEnter}) // expand EngineStatus
	if !m.expanded[500] {
		t.Fatal("expected first card expanded")
	}

	m.handleKeyPress(key("j"))
	if m.msgIndex != 0 || m.sigIndex != 0 {
		t.Fatalf("cursor = (%d,%d), want signal row 0", m.msgIndex, m.sigIndex)
	}

	m.handleKeyPress(key("j"))
	if m.msgIndex != 1 || m.sigIndex != -1 {
		t.Fatalf("cursor = (%d,%d), want next card header", m.msgIndex, m.sigIndex)
	}

	m.handleKeyPress(key("k"))
	if m.msgIndex != 0 || m.sigIndex != 0 {
		t.Fatalf("cursor = (%d,%d), want back on last signal", m.msgIndex, m.sigIndex)
	}
}

func TestSearchFilterNarrowsList(t *testing.T) {
	m, _ := testModel(t, seedDatabase())

	m.handleKeyPress(key("/"))
	if m.mode != ModeSearch {
		t.Fatal("expected search mode")
	}
	for _, r := range "heart" {
		m.handleKeyPress(key(string(r)))
	}
	m.handleKeyPress(tea.KeyMsg{Type: tea.KeyEnter})

	cards := m.visibleCards()
	if len(cards) != 1 || cards[0].Name != "Heartbeat" {
		t.Fatalf("filtered cards = %v", cards)
	}

	m.handleKeyPress(tea.KeyMsg{Type: tea.KeyEsc})
	if m.searchQuery != "" {
		t.Error("esc should clear the filter")
	}
	if len(m.visibleCards()) != 2 {
		t.Error("full list should return after clearing")
	}
}

func TestTextInputCursorEditing(t *testing.T) {
	input := "hello"
	cursor := 5

	handleTextInputWithCursor(&input, &cursor, tea.KeyMsg{Type: tea.KeyBackspace})
	if input != "hell" || cursor != 4 {
		t.Fatalf("after backspace: %q cursor %d", input, cursor)
	}

	handleTextInputWithCursor(&input, &cursor, tea.KeyMsg{Type: tea.KeyHome})
	handleTextInputWithCursor(&input, &cursor, key("x"))
	if input != "xhell" || cursor != 1 {
		t.Fatalf("after insert at home: %q cursor %d", input, cursor)
	}

	handleTextInputWithCursor(&input, &cursor, tea.KeyMsg{Type: tea.KeyCtrlK})
	if input != "x" {
		t.Fatalf("after ctrl+k: %q", input)
	}
}

func TestReceiverFieldWithNoNodes(t *testing.T) {
	db := types.Database{
		Filename: "empty.dbc",
		Messages: []types.Message{{FrameID: 500, Name: "EngineStatus", Length: 8}},
	}
	m, _ := testModel(t, db)

	m.openForm(m.newSignalForm(500, nil))
	f := m.activeForm
	for i, fld := range f.fields {
		if fld.key == "receivers" {
			f.focus = i
		}
	}

	// no nodes exist, so arrowing and toggling must be a no-op, not a crash
	m.handleKeyPress(tea.KeyMsg{Type: tea.KeyRight})
	m.handleKeyPress(tea.KeyMsg{Type: tea.KeyLeft})
	m.handleKeyPress(tea.KeyMsg{Type: tea.KeySpace})

	f.field("name").value = "EngineSpeed"
	f.field("start_bit").value = "0"
	upd, ferr := extractSignal(f)
	if ferr != nil {
		t.Fatalf("extract: %v", ferr)
	}
	if len(upd.Receivers) != 0 {
		t.Errorf("Receivers = %v, want empty", upd.Receivers)
	}
}

func TestUploadRefreshFailureStillMarksDirty(t *testing.T) {
	m, _ := testModel(t, seedDatabase())

	before := len(m.store.Database().Messages)
	m.Update(uploadDoneMsg{message: "ok", refreshErr: errors.New("connection refused")})

	if !m.store.Dirty() {
		t.Error("dirty must set when the upload succeeded but the refresh did not")
	}
	if !strings.Contains(m.fullErrorMsg, "connection refused") {
		t.Errorf("error message = %q, want the fetch failure", m.fullErrorMsg)
	}
	if len(m.store.Database().Messages) != before {
		t.Error("snapshot must stay untouched without a fresh fetch")
	}
}

func TestReexpandCoversFrameIDZero(t *testing.T) {
	db := seedDatabase()
	db.Messages = append(db.Messages, types.Message{FrameID: 0, Name: "NetworkMgmt", Length: 8})
	m, _ := testModel(t, db)

	m.Update(mutationDoneMsg{
		entity:     "signal",
		op:         "create",
		target:     "Counter",
		status:     "Created signal Counter",
		reexpand:   true,
		reexpandID: 0,
		db:         &db,
	})

	if !m.expanded[0] {
		t.Error("card for frame ID 0 should re-expand after its mutation")
	}
}

func TestSaveClearsDirty(t *testing.T) {
	m, _ := testModel(t, seedDatabase())

	m.store.MarkDirty()
	m.Update(saveDoneMsg{message: "File saved successfully"})

	if m.store.Dirty() {
		t.Error("save must clear the dirty flag")
	}
	if m.fullStatusMsg != "File saved successfully" {
		t.Errorf("status = %q, want the server message", m.fullStatusMsg)
	}
}

func TestNodeFormNameImmutableOnEdit(t *testing.T) {
	m, _ := testModel(t, seedDatabase())

	node := &m.store.Database().Nodes[0]
	f := m.newNodeForm(node)
	if !f.field("name").readonly {
		t.Error("node name must be read-only when editing")
	}
	if f.field("name").value != "ECU" {
		t.Errorf("name prefill = %q", f.field("name").value)
	}
}

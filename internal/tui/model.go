package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/trailtech/dbcstudio/internal/api"
	"github.com/trailtech/dbcstudio/internal/config"
	"github.com/trailtech/dbcstudio/internal/journal"
	"github.com/trailtech/dbcstudio/internal/store"
	"github.com/trailtech/dbcstudio/internal/types"
)

// Mode represents the current TUI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeForm
	ModeConfirm
	ModeUploadPath
	ModeJournal
	ModeHelp
)

// Tab selects which entity list the main view shows.
type Tab int

const (
	TabMessages Tab = iota
	TabNodes
)

// confirmState is a pending destructive action. The commit continuation is
// owned by this value: replacing or discarding the state discards the
// commit, so a stale confirmation can never fire later.
type confirmState struct {
	prompt       string
	commit       tea.Cmd
	cancelStatus string
}

// Model is the editor state machine. It owns the store, the API client and
// the modal state explicitly; there are no package-level globals, so
// multiple instances can coexist in tests.
type Model struct {
	client   *api.Client
	store    *store.Store
	journal  *journal.Manager
	settings *config.Settings

	mode Mode
	tab  Tab

	// Message list cursor: msgIndex selects a card, sigIndex selects a
	// signal row inside an expanded card (-1 = the card header).
	msgIndex  int
	sigIndex  int
	nodeIndex int

	searchQuery string

	// Expansion state is purely presentational, keyed by frame id, and
	// survives the wholesale snapshot refresh after each mutation.
	expanded map[uint32]bool

	activeForm *entityForm
	confirm    *confirmState

	uploadInput  string
	uploadCursor int

	journalEntries []journal.Entry
	journalView    viewport.Model

	width  int
	height int

	statusMsg     string
	errorMsg      string
	fullStatusMsg string
	fullErrorMsg  string
}

// NewModel builds the editor model. The journal manager may be nil (CLI
// subcommands and tests without a journal).
func NewModel(client *api.Client, st *store.Store, jm *journal.Manager, settings *config.Settings) *Model {
	if settings == nil {
		settings = &config.Settings{ServerURL: client.BaseURL()}
	}
	return &Model{
		client:   client,
		store:    st,
		journal:  jm,
		settings: settings,
		sigIndex: -1,
		expanded: make(map[uint32]bool),
	}
}

// Init fetches the initial database snapshot.
func (m *Model) Init() tea.Cmd {
	return m.loadDatabase()
}

// Cleanup closes the journal database.
func (m *Model) Cleanup() {
	if m.journal != nil {
		_ = m.journal.Close()
	}
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case databaseLoadedMsg:
		if msg.err != nil {
			return m, m.setErrorMessage("Failed to load database: " + msg.err.Error())
		}
		m.store.Replace(msg.db)
		m.clampCursors()
		cmd = m.setStatusMessage("Loaded " + m.store.Database().Filename)

	case mutationDoneMsg:
		cmd = m.applyMutation(msg)

	case saveDoneMsg:
		m.store.ClearDirty()
		m.recordJournal("database", "save", m.store.Database().Filename, "")
		cmd = m.setStatusMessage(msg.message)

	case reloadDoneMsg:
		if msg.err != nil {
			return m, m.setErrorMessage("Reload failed: " + msg.err.Error())
		}
		m.store.Replace(msg.db)
		m.clampCursors()
		m.recordJournal("database", "reload", m.store.Database().Filename, "")
		cmd = m.setStatusMessage("Reloaded from disk")

	case uploadDoneMsg:
		if msg.err != nil {
			return m, m.setErrorMessage("Upload failed: " + msg.err.Error())
		}
		if msg.refreshErr != nil {
			// The server already swapped its database in; the local snapshot
			// is stale but the mutation happened, so the dirty flag must set.
			m.store.MarkDirty()
			return m, m.setErrorMessage(msg.refreshErr.Error())
		}
		if msg.db != nil {
			m.store.Replace(msg.db)
		}
		m.store.MarkDirty()
		m.tab = TabMessages
		m.clampCursors()
		m.recordJournal("database", "upload", m.store.Database().Filename, msg.message)
		cmd = m.setStatusMessage(msg.message)

	case downloadDoneMsg:
		if msg.err != nil {
			return m, m.setErrorMessage("Download failed: " + msg.err.Error())
		}
		cmd = m.setStatusMessage("Downloaded to " + msg.path)

	case reportWrittenMsg:
		if msg.err != nil {
			return m, m.setErrorMessage("Report failed: " + msg.err.Error())
		}
		cmd = m.setStatusMessage("Report written to " + msg.path)

	case journalLoadedMsg:
		if msg.err != nil {
			return m, m.setErrorMessage("Failed to load journal: " + msg.err.Error())
		}
		m.journalEntries = msg.entries
		m.mode = ModeJournal
		m.updateJournalView()

	case clearStatusMsg:
		m.statusMsg = ""
		m.fullStatusMsg = ""

	case clearErrorMsg:
		m.errorMsg = ""
		m.fullErrorMsg = ""

	case errorMsg:
		cmd = m.setErrorMessage(string(msg))
	}

	return m, cmd
}

// applyMutation installs the post-mutation snapshot and finishes the modal
// workflow: journal, dirty flag, re-expansion of the originating card.
func (m *Model) applyMutation(msg mutationDoneMsg) tea.Cmd {
	if msg.refreshErr != nil {
		// The mutation itself succeeded, so the server has drifted ahead of
		// the stale snapshot; surface the fetch failure and keep any open
		// modal so the operator can retry.
		m.store.MarkDirty()
		return m.setErrorMessage(msg.refreshErr.Error())
	}

	m.store.Replace(msg.db)
	m.store.MarkDirty()
	m.activeForm = nil
	if m.mode == ModeForm {
		m.mode = ModeNormal
	}
	if msg.reexpand {
		m.expanded[msg.reexpandID] = true
	}
	m.clampCursors()
	m.recordJournal(msg.entity, msg.op, msg.target, msg.detail)
	return m.setStatusMessage(msg.status)
}

func (m *Model) recordJournal(entity, op, target, detail string) {
	if m.journal == nil {
		return
	}
	// Journaling is observability only; a failed insert never blocks the
	// editing workflow.
	_ = m.journal.Record(entity, op, target, detail)
}

// clampCursors keeps list cursors valid after the snapshot was replaced.
func (m *Model) clampCursors() {
	cards := m.visibleCards()
	if m.msgIndex >= len(cards) {
		m.msgIndex = len(cards) - 1
	}
	if m.msgIndex < 0 {
		m.msgIndex = 0
	}
	m.clampSignalCursor()

	nodes := m.store.Database().Nodes
	if m.nodeIndex >= len(nodes) {
		m.nodeIndex = len(nodes) - 1
	}
	if m.nodeIndex < 0 {
		m.nodeIndex = 0
	}
}

func (m *Model) clampSignalCursor() {
	card := m.selectedCard()
	if card == nil || !card.Expanded || m.sigIndex >= len(card.Signals) {
		m.sigIndex = -1
	}
}

// Custom message types
type databaseLoadedMsg struct {
	db  *types.Database
	err error
}

type mutationDoneMsg struct {
	entity string
	op     string
	target string
	detail string
	status string
	// reexpand re-opens the card with reexpandID after the refresh so the
	// editing context survives the full re-render.
	reexpand   bool
	reexpandID uint32
	db         *types.Database
	refreshErr error
}

type saveDoneMsg struct {
	message string
}

type reloadDoneMsg struct {
	db  *types.Database
	err error
}

type uploadDoneMsg struct {
	message string
	db      *types.Database
	err     error
	// refreshErr means the upload itself succeeded but the follow-up fetch
	// did not; the server state has already been replaced.
	refreshErr error
}

type downloadDoneMsg struct {
	path string
	err  error
}

type reportWrittenMsg struct {
	path string
	err  error
}

type journalLoadedMsg struct {
	entries []journal.Entry
	err     error
}

type clearStatusMsg struct{}
type clearErrorMsg struct{}

type errorMsg string

// Helper methods for setting transient messages with optional timeout
func (m *Model) setStatusMessage(msg string) tea.Cmd {
	m.fullStatusMsg = msg
	m.statusMsg = truncateMessage(msg)
	return m.scheduleClear(func() tea.Msg { return clearStatusMsg{} })
}

func (m *Model) setErrorMessage(msg string) tea.Cmd {
	m.fullErrorMsg = msg
	m.errorMsg = truncateMessage(msg)
	return m.scheduleClear(func() tea.Msg { return clearErrorMsg{} })
}

func (m *Model) scheduleClear(mk func() tea.Msg) tea.Cmd {
	if m.settings == nil || m.settings.MessageTimeoutSec <= 0 {
		return nil
	}
	timeout := time.Duration(m.settings.MessageTimeoutSec) * time.Second
	return tea.Tick(timeout, func(time.Time) tea.Msg {
		return mk()
	})
}

func truncateMessage(msg string) string {
	if len(msg) > 100 {
		return msg[:97] + "..."
	}
	return msg
}

// View renders the TUI
func (m *Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.mode {
	case ModeForm:
		return m.renderFormModal()
	case ModeConfirm:
		return m.renderConfirmModal()
	case ModeUploadPath:
		return m.renderUploadModal()
	case ModeJournal:
		return m.renderJournalModal()
	case ModeHelp:
		return m.renderHelp()
	default:
		return m.renderMain()
	}
}

// openConfirm replaces any pending confirmation outright; the previous
// commit continuation is discarded with it.
func (m *Model) openConfirm(prompt string, commit tea.Cmd, cancelStatus string) {
	m.confirm = &confirmState{prompt: prompt, commit: commit, cancelStatus: cancelStatus}
	m.mode = ModeConfirm
}

// openForm replaces any active modal with the given editor form.
func (m *Model) openForm(f *entityForm) {
	m.activeForm = f
	m.confirm = nil
	m.mode = ModeForm
}

func (m *Model) updateJournalView() {
	var b strings.Builder
	if len(m.journalEntries) == 0 {
		b.WriteString(styleSubtle.Render("No recorded changes"))
	}
	for _, e := range m.journalEntries {
		b.WriteString(styleSubtle.Render(e.Timestamp))
		b.WriteString("  ")
		b.WriteString(styleTitle.Render(e.Entity + " " + e.Op))
		b.WriteString("  ")
		b.WriteString(e.Target)
		if e.Detail != "" {
			b.WriteString("  " + styleSubtle.Render(e.Detail))
		}
		b.WriteString("\n")
	}

	width := m.width - 16
	height := m.height - 10
	if width < 20 {
		width = 20
	}
	if height < 5 {
		height = 5
	}
	m.journalView = viewport.New(width, height)
	m.journalView.SetContent(b.String())
}

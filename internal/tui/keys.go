package tui

import (
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// handleKeyPress routes key events by mode
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	switch m.mode {
	case ModeSearch:
		return m.handleSearchKeys(msg)
	case ModeForm:
		return m.handleFormKeys(msg)
	case ModeConfirm:
		return m.handleConfirmKeys(msg)
	case ModeUploadPath:
		return m.handleUploadPathKeys(msg)
	case ModeJournal:
		return m.handleJournalKeys(msg)
	case ModeHelp:
		return m.handleHelpKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

func (m *Model) handleNormalKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		m.Cleanup()
		return tea.Quit

	case "q":
		if m.store.Dirty() {
			m.openConfirm("Quit with unsaved changes?", func() tea.Msg {
				m.Cleanup()
				return tea.Quit()
			}, "Quit cancelled")
			return nil
		}
		m.Cleanup()
		return tea.Quit

	case "tab":
		if m.tab == TabMessages {
			m.tab = TabNodes
		} else {
			m.tab = TabMessages
		}
		m.sigIndex = -1

	case "/":
		m.mode = ModeSearch

	case "esc":
		if m.searchQuery != "" {
			m.searchQuery = ""
			m.msgIndex = 0
			m.sigIndex = -1
			m.nodeIndex = 0
		}

	case "up", "k":
		m.moveCursorUp()

	case "down", "j":
		m.moveCursorDown()

	case "enter", " ":
		if m.tab == TabMessages {
			m.toggleExpand()
		}

	case "a":
		if m.tab == TabMessages {
			m.openForm(m.newMessageForm(nil))
		} else {
			m.openForm(m.newNodeForm(nil))
		}

	case "e":
		return m.editSelected()

	case "d":
		return m.deleteSelected()

	case "s":
		if m.tab == TabMessages {
			if card := m.selectedCard(); card != nil {
				m.openForm(m.newSignalForm(card.FrameID, nil))
			}
		}

	case "y":
		if m.tab == TabMessages {
			if card := m.selectedCard(); card != nil {
				text := card.HexID
				if m.sigIndex >= 0 && m.sigIndex < len(card.Signals) {
					text = card.Signals[m.sigIndex].Name
				}
				if err := clipboard.WriteAll(text); err != nil {
					return m.setErrorMessage("Clipboard unavailable: " + err.Error())
				}
				return m.setStatusMessage("Copied " + text)
			}
		}

	case "ctrl+s":
		return m.saveDatabase()

	case "ctrl+r":
		if m.store.Dirty() {
			m.openConfirm("Discard unsaved changes and reload from disk?", m.reloadDatabase(), "Reload cancelled")
			return nil
		}
		return m.reloadDatabase()

	case "ctrl+d":
		return m.downloadDatabase()

	case "u":
		m.uploadInput = ""
		m.uploadCursor = 0
		m.mode = ModeUploadPath

	case "o":
		return m.exportReport()

	case "h":
		return m.loadJournal()

	case "?":
		m.mode = ModeHelp
	}

	return nil
}

func (m *Model) moveCursorUp() {
	if m.tab == TabNodes {
		if m.nodeIndex > 0 {
			m.nodeIndex--
		}
		return
	}

	card := m.selectedCard()
	if card != nil && card.Expanded && m.sigIndex >= 0 {
		m.sigIndex--
		return
	}
	if m.msgIndex > 0 {
		m.msgIndex--
		m.sigIndex = -1
		if prev := m.selectedCard(); prev != nil && prev.Expanded && len(prev.Signals) > 0 {
			m.sigIndex = len(prev.Signals) - 1
		}
	}
}

func (m *Model) moveCursorDown() {
	if m.tab == TabNodes {
		if m.nodeIndex < len(m.store.Database().Nodes)-1 {
			m.nodeIndex++
		}
		return
	}

	card := m.selectedCard()
	if card != nil && card.Expanded && m.sigIndex < len(card.Signals)-1 {
		m.sigIndex++
		return
	}
	if m.msgIndex < len(m.visibleCards())-1 {
		m.msgIndex++
		m.sigIndex = -1
	}
}

func (m *Model) toggleExpand() {
	card := m.selectedCard()
	if card == nil {
		return
	}
	m.expanded[card.FrameID] = !m.expanded[card.FrameID]
	m.sigIndex = -1
}

// editSelected opens the editor for whatever the cursor points at: a signal
// row when one is selected, otherwise the message card or node.
func (m *Model) editSelected() tea.Cmd {
	if m.tab == TabNodes {
		node := m.selectedNode()
		if node == nil {
			return nil
		}
		m.openForm(m.newNodeForm(node))
		return nil
	}

	card := m.selectedCard()
	if card == nil {
		return nil
	}
	msg := m.store.Database().MessageByFrameID(card.FrameID)
	if msg == nil {
		return nil
	}
	if m.sigIndex >= 0 && m.sigIndex < len(msg.Signals) {
		m.openForm(m.newSignalForm(card.FrameID, &msg.Signals[m.sigIndex]))
		return nil
	}
	m.openForm(m.newMessageForm(msg))
	return nil
}

func (m *Model) deleteSelected() tea.Cmd {
	if m.tab == TabNodes {
		node := m.selectedNode()
		if node == nil {
			return nil
		}
		name := node.Name
		m.openConfirm(
			fmt.Sprintf("Delete node %q? Deleting a node will not remove it from existing message senders/receivers.", name),
			m.deleteNode(name),
			"Delete cancelled",
		)
		return nil
	}

	card := m.selectedCard()
	if card == nil {
		return nil
	}
	if m.sigIndex >= 0 && m.sigIndex < len(card.Signals) {
		sigName := card.Signals[m.sigIndex].Name
		m.openConfirm(
			fmt.Sprintf("Delete signal %q from %s?", sigName, card.Name),
			m.deleteSignal(card.FrameID, sigName),
			"Delete cancelled",
		)
		return nil
	}
	m.openConfirm(
		fmt.Sprintf("Delete message %s (%s)? This will also remove all its signals.", card.Name, card.HexID),
		m.deleteMessage(card.FrameID),
		"Delete cancelled",
	)
	return nil
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "esc":
		m.mode = ModeNormal
		m.msgIndex = 0
		m.sigIndex = -1
		m.nodeIndex = 0
		return nil
	case "backspace":
		if len(m.searchQuery) > 0 {
			m.searchQuery = m.searchQuery[:len(m.searchQuery)-1]
		}
		return nil
	default:
		if msg.Type == tea.KeyRunes {
			m.searchQuery += string(msg.Runes)
		}
		return nil
	}
}

// handleConfirmKeys resolves the pending confirmation. The commit command
// runs only on an explicit yes; any other resolution discards it.
func (m *Model) handleConfirmKeys(msg tea.KeyMsg) tea.Cmd {
	pending := m.confirm
	if pending == nil {
		m.mode = ModeNormal
		return nil
	}

	switch msg.String() {
	case "y", "Y", "enter":
		m.confirm = nil
		m.mode = ModeNormal
		return pending.commit
	case "n", "N", "esc", "q":
		m.confirm = nil
		m.mode = ModeNormal
		if pending.cancelStatus != "" {
			return m.setStatusMessage(pending.cancelStatus)
		}
		return nil
	}
	return nil
}

func (m *Model) handleUploadPathKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		return nil
	case "enter":
		path := m.uploadInput
		if path == "" {
			return m.setErrorMessage("File path is required")
		}
		m.mode = ModeNormal
		return m.uploadDatabase(path)
	default:
		handleTextInputWithCursor(&m.uploadInput, &m.uploadCursor, msg)
		return nil
	}
}

func (m *Model) handleJournalKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q", "h":
		m.mode = ModeNormal
		return nil
	case "C":
		if m.journal != nil {
			jm := m.journal
			m.openConfirm("Clear the change journal?", func() tea.Msg {
				if err := jm.Clear(); err != nil {
					return errorMsg("Failed to clear journal: " + err.Error())
				}
				return journalLoadedMsg{}
			}, "")
		}
		return nil
	default:
		var cmd tea.Cmd
		m.journalView, cmd = m.journalView.Update(msg)
		return cmd
	}
}

func (m *Model) handleHelpKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q", "?":
		m.mode = ModeNormal
	}
	return nil
}

// handleTextInputWithCursor handles common text input operations with cursor
// support. Returns true when the key was consumed.
func handleTextInputWithCursor(input *string, cursorPos *int, msg tea.KeyMsg) bool {
	if *cursorPos > len(*input) {
		*cursorPos = len(*input)
	}

	switch msg.String() {
	case "backspace":
		if *cursorPos > 0 {
			*input = (*input)[:*cursorPos-1] + (*input)[*cursorPos:]
			*cursorPos--
		}
		return true
	case "delete":
		if *cursorPos < len(*input) {
			*input = (*input)[:*cursorPos] + (*input)[*cursorPos+1:]
		}
		return true
	case "left":
		if *cursorPos > 0 {
			*cursorPos--
		}
		return true
	case "right":
		if *cursorPos < len(*input) {
			*cursorPos++
		}
		return true
	case "home", "ctrl+a":
		*cursorPos = 0
		return true
	case "end", "ctrl+e":
		*cursorPos = len(*input)
		return true
	case "ctrl+u":
		*input = (*input)[*cursorPos:]
		*cursorPos = 0
		return true
	case "ctrl+k":
		*input = (*input)[:*cursorPos]
		return true
	case "ctrl+v":
		if paste, err := clipboard.ReadAll(); err == nil && paste != "" {
			*input = (*input)[:*cursorPos] + paste + (*input)[*cursorPos:]
			*cursorPos += len(paste)
		}
		return true
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			text := string(msg.Runes)
			if msg.Type == tea.KeySpace {
				text = " "
			}
			*input = (*input)[:*cursorPos] + text + (*input)[*cursorPos:]
			*cursorPos += len(text)
			return true
		}
	}
	return false
}

// addCursor renders the input with a block cursor at the given position.
func addCursor(input string, cursorPos int) string {
	if cursorPos > len(input) {
		cursorPos = len(input)
	}
	if cursorPos < 0 {
		cursorPos = 0
	}
	if cursorPos == len(input) {
		return input + "█"
	}
	return input[:cursorPos] + "█" + input[cursorPos+1:]
}

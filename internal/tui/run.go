package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/trailtech/dbcstudio/internal/api"
	"github.com/trailtech/dbcstudio/internal/config"
	"github.com/trailtech/dbcstudio/internal/journal"
	"github.com/trailtech/dbcstudio/internal/store"
)

// Run wires the client, store and journal together and runs the editor
// until the user quits. serverURL overrides the settings file when not
// empty.
func Run(serverURL string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if serverURL != "" {
		settings.ServerURL = serverURL
	}

	jm, err := journal.NewManager(config.JournalPath)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}

	model := NewModel(api.NewClient(settings.ServerURL), store.New(), jm, settings)
	defer model.Cleanup()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/trailtech/dbcstudio/internal/config"
	"github.com/trailtech/dbcstudio/internal/format"
	"github.com/trailtech/dbcstudio/internal/report"
	"github.com/trailtech/dbcstudio/internal/types"
)

// downloadsDir falls back to a relative directory when the config layer was
// never initialized, as in tests.
func downloadsDir() string {
	if config.DownloadsDir != "" {
		return config.DownloadsDir
	}
	return "downloads"
}

func (m *Model) loadDatabase() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		db, err := client.FetchDatabase(context.Background())
		return databaseLoadedMsg{db: db, err: err}
	}
}

// mutate runs the write call, then fetches a fresh snapshot so the local
// state is always the server's view rather than a locally patched copy.
func (m *Model) mutate(done mutationDoneMsg, call func(ctx context.Context) error) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx := context.Background()
		if err := call(ctx); err != nil {
			return errorMsg(err.Error())
		}
		db, err := client.FetchDatabase(ctx)
		if err != nil {
			done.refreshErr = err
			return done
		}
		done.db = db
		return done
	}
}

func (m *Model) createMessage(upd types.MessageUpdate) tea.Cmd {
	return m.mutate(mutationDoneMsg{
		entity:     "message",
		op:         "create",
		target:     format.HexID(upd.FrameID),
		detail:     upd.Name,
		status:     fmt.Sprintf("Created message %s", upd.Name),
		reexpand:   true,
		reexpandID: upd.FrameID,
	}, func(ctx context.Context) error {
		return m.client.CreateMessage(ctx, upd)
	})
}

func (m *Model) updateMessage(frameID uint32, upd types.MessageUpdate) tea.Cmd {
	return m.mutate(mutationDoneMsg{
		entity:     "message",
		op:         "update",
		target:     format.HexID(frameID),
		detail:     upd.Name,
		status:     fmt.Sprintf("Updated message %s", upd.Name),
		reexpand:   true,
		reexpandID: upd.FrameID,
	}, func(ctx context.Context) error {
		return m.client.UpdateMessage(ctx, frameID, upd)
	})
}

func (m *Model) deleteMessage(frameID uint32) tea.Cmd {
	return m.mutate(mutationDoneMsg{
		entity: "message",
		op:     "delete",
		target: format.HexID(frameID),
		status: fmt.Sprintf("Deleted message %s", format.HexID(frameID)),
	}, func(ctx context.Context) error {
		return m.client.DeleteMessage(ctx, frameID)
	})
}

func (m *Model) createSignal(frameID uint32, upd types.SignalUpdate) tea.Cmd {
	return m.mutate(mutationDoneMsg{
		entity:     "signal",
		op:         "create",
		target:     upd.Name,
		detail:     "in " + format.HexID(frameID),
		status:     fmt.Sprintf("Created signal %s", upd.Name),
		reexpand:   true,
		reexpandID: frameID,
	}, func(ctx context.Context) error {
		return m.client.CreateSignal(ctx, frameID, upd)
	})
}

func (m *Model) updateSignal(frameID uint32, name string, upd types.SignalUpdate) tea.Cmd {
	return m.mutate(mutationDoneMsg{
		entity:     "signal",
		op:         "update",
		target:     name,
		detail:     "in " + format.HexID(frameID),
		status:     fmt.Sprintf("Updated signal %s", upd.Name),
		reexpand:   true,
		reexpandID: frameID,
	}, func(ctx context.Context) error {
		return m.client.UpdateSignal(ctx, frameID, name, upd)
	})
}

func (m *Model) deleteSignal(frameID uint32, name string) tea.Cmd {
	return m.mutate(mutationDoneMsg{
		entity:     "signal",
		op:         "delete",
		target:     name,
		detail:     "in " + format.HexID(frameID),
		status:     fmt.Sprintf("Deleted signal %s", name),
		reexpand:   true,
		reexpandID: frameID,
	}, func(ctx context.Context) error {
		return m.client.DeleteSignal(ctx, frameID, name)
	})
}

func (m *Model) createNode(upd types.NodeUpdate) tea.Cmd {
	return m.mutate(mutationDoneMsg{
		entity: "node",
		op:     "create",
		target: upd.Name,
		status: fmt.Sprintf("Created node %s", upd.Name),
	}, func(ctx context.Context) error {
		return m.client.CreateNode(ctx, upd)
	})
}

func (m *Model) updateNode(name string, upd types.NodeUpdate) tea.Cmd {
	return m.mutate(mutationDoneMsg{
		entity: "node",
		op:     "update",
		target: name,
		status: fmt.Sprintf("Updated node %s", name),
	}, func(ctx context.Context) error {
		return m.client.UpdateNode(ctx, name, upd)
	})
}

func (m *Model) deleteNode(name string) tea.Cmd {
	return m.mutate(mutationDoneMsg{
		entity: "node",
		op:     "delete",
		target: name,
		status: fmt.Sprintf("Deleted node %s", name),
	}, func(ctx context.Context) error {
		return m.client.DeleteNode(ctx, name)
	})
}

// saveDatabase persists the server's working copy to disk. The snapshot is
// already current, so no refetch happens here; only the dirty flag clears.
func (m *Model) saveDatabase() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		message, err := client.Save(context.Background())
		if err != nil {
			return errorMsg("Save failed: " + err.Error())
		}
		return saveDoneMsg{message: message}
	}
}

func (m *Model) reloadDatabase() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx := context.Background()
		if err := client.Reload(ctx); err != nil {
			return reloadDoneMsg{err: err}
		}
		db, err := client.FetchDatabase(ctx)
		return reloadDoneMsg{db: db, err: err}
	}
}

func (m *Model) downloadDatabase() tea.Cmd {
	client := m.client
	filename := m.store.Database().Filename
	if filename == "" {
		filename = "database.dbc"
	}
	return func() tea.Msg {
		dir := downloadsDir()
		if err := os.MkdirAll(dir, 0755); err != nil {
			return downloadDoneMsg{err: err}
		}
		dest := filepath.Join(dir, filename)
		if err := client.Download(context.Background(), dest); err != nil {
			return downloadDoneMsg{err: err}
		}
		return downloadDoneMsg{path: dest}
	}
}

func (m *Model) uploadDatabase(path string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx := context.Background()
		message, err := client.Upload(ctx, path)
		if err != nil {
			return uploadDoneMsg{err: err}
		}
		db, err := client.FetchDatabase(ctx)
		if err != nil {
			return uploadDoneMsg{message: message, refreshErr: err}
		}
		return uploadDoneMsg{message: message, db: db}
	}
}

func (m *Model) exportReport() tea.Cmd {
	db := m.store.Database()
	path := m.settings.ReportPath
	if path == "" {
		path = filepath.Join(downloadsDir(), "dbc-report.html")
	}
	return func() tea.Msg {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return reportWrittenMsg{err: err}
		}
		html := report.Render(db)
		if err := os.WriteFile(path, []byte(html), 0644); err != nil {
			return reportWrittenMsg{err: err}
		}
		return reportWrittenMsg{path: path}
	}
}

func (m *Model) loadJournal() tea.Cmd {
	if m.journal == nil {
		return m.setStatusMessage("Journal not available")
	}
	jm := m.journal
	return func() tea.Msg {
		entries, err := jm.Load(200)
		return journalLoadedMsg{entries: entries, err: err}
	}
}

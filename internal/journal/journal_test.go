package journal

import (
	"path/filepath"
	"testing"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestRecordAndLoad(t *testing.T) {
	m := newTestManager(t)

	if err := m.Record("node", "create", "ECU1", "Engine controller"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := m.Record("message", "create", "0x1F4", "EngineData"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := m.Record("signal", "delete", "0x1F4/RPM", ""); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := m.Load(0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	// Newest first.
	if entries[0].Entity != "signal" || entries[0].Op != "delete" {
		t.Errorf("unexpected newest entry: %+v", entries[0])
	}
	if entries[2].Target != "ECU1" || entries[2].Detail != "Engine controller" {
		t.Errorf("unexpected oldest entry: %+v", entries[2])
	}
}

func TestLoadLimit(t *testing.T) {
	m := newTestManager(t)
	for i := 0; i < 10; i++ {
		if err := m.Record("node", "update", "ECU1", ""); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	entries, err := m.Load(5)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("expected 5 entries, got %d", len(entries))
	}
}

func TestClear(t *testing.T) {
	m := newTestManager(t)
	if err := m.Record("database", "save", "TrailCurrent.dbc", ""); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := m.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	entries, err := m.Load(0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty journal, got %d entries", len(entries))
	}
}

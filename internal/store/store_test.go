package store

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/trailtech/dbcstudio/internal/api"
	"github.com/trailtech/dbcstudio/internal/mock"
	"github.com/trailtech/dbcstudio/internal/types"
)

func TestDirtyLifecycle(t *testing.T) {
	seed := &types.Database{
		Filename: "f.dbc",
		Messages: []types.Message{{FrameID: 500, Name: "EngineData"}},
	}
	ts := httptest.NewServer(mock.NewServer(seed).Handler())
	defer ts.Close()
	client := api.NewClient(ts.URL)

	s := New()
	if s.Dirty() {
		t.Error("fresh store must not be dirty")
	}

	if err := s.Refresh(context.Background(), client); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if s.Dirty() {
		t.Error("dirty must be false immediately after refresh")
	}
	if s.Database().Filename != "f.dbc" {
		t.Errorf("snapshot not installed: %+v", s.Database())
	}

	// A mutation marks dirty after the follow-up refresh installs the new
	// snapshot; only an explicit save clears it.
	if err := s.Refresh(context.Background(), client); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	s.MarkDirty()
	if !s.Dirty() {
		t.Error("MarkDirty must set the flag")
	}

	s.ClearDirty()
	if s.Dirty() {
		t.Error("ClearDirty must clear the flag")
	}
}

func TestReplaceIsWholesale(t *testing.T) {
	s := New()
	s.Replace(&types.Database{
		Filename: "a.dbc",
		Messages: []types.Message{{FrameID: 1, Name: "Old"}},
	})
	s.MarkDirty()

	s.Replace(&types.Database{Filename: "b.dbc"})
	if s.Dirty() {
		t.Error("Replace must clear dirty")
	}
	if len(s.Database().Messages) != 0 || s.Database().Filename != "b.dbc" {
		t.Errorf("snapshot was not replaced wholesale: %+v", s.Database())
	}
}

package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file should exist after creating store")
	}
	if s.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", s.Path(), dbPath)
	}
}

func TestNewStore_RunsMigrations(t *testing.T) {
	s := newTestStore(t)

	for _, table := range []string{"training_runs", "collection_sessions"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q should exist after migrations: %v", table, err)
		}
	}
}

func TestNewStore_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := s.Runs().Create(&TrainingRun{Status: RunSucceeded, StartedAt: time.Now(), FinishedAt: time.Now()}); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	s.Close()

	s, err = New(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s.Close()

	runs, err := s.Runs().List(0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run after reopen, got %d", len(runs))
	}
}

func TestStore_Close(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("close should not return error: %v", err)
	}
	if _, err := s.DB().Exec("SELECT 1"); err == nil {
		t.Error("DB operations should fail after close")
	}
}

func TestRunRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Runs()

	if _, err := repo.Latest(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Latest on empty store: expected ErrNotFound, got %v", err)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := []*TrainingRun{
		{
			Status: RunSucceeded, DatasetPath: "hand_landmarks.csv", ArtifactPath: "hand_model.mpk",
			Samples: 20, Classes: []string{"fist", "palm"}, Accuracy: 0.75,
			StartedAt: base, FinishedAt: base.Add(time.Second),
		},
		{
			Status: RunSucceeded, DatasetPath: "hand_landmarks.csv", ArtifactPath: "hand_model.mpk",
			Samples: 40, Classes: []string{"fist", "palm", "peace, sign"}, Accuracy: 1,
			StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour + time.Second),
		},
		{
			Status: RunFailed, DatasetPath: "hand_landmarks.csv", ArtifactPath: "hand_model.mpk",
			Error: "dataset is empty", StartedAt: base.Add(2 * time.Hour), FinishedAt: base.Add(2 * time.Hour),
		},
	}
	for _, r := range runs {
		if err := repo.Create(r); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		if r.ID == "" {
			t.Error("Create should assign an ID")
		}
	}

	all, err := repo.List(0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
	if all[0].Status != RunFailed || all[0].Error != "dataset is empty" {
		t.Errorf("newest run = %+v, want the failed one", all[0])
	}

	limited, err := repo.List(2)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("List(2) returned %d runs", len(limited))
	}

	latest, err := repo.Latest()
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest.ID != runs[1].ID {
		t.Errorf("Latest = %s, want %s", latest.ID, runs[1].ID)
	}
	if len(latest.Classes) != 3 || latest.Classes[2] != "peace, sign" {
		t.Errorf("Classes = %v", latest.Classes)
	}
	if latest.Samples != 40 || latest.Accuracy != 1 {
		t.Errorf("Samples/Accuracy = %d/%v", latest.Samples, latest.Accuracy)
	}
	if !latest.StartedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("StartedAt = %v", latest.StartedAt)
	}
}

func TestSessionRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions := []*CollectionSession{
		{Label: "fist", Target: 10, Saved: 10, DatasetPath: "d.csv", StartedAt: base, EndedAt: base.Add(time.Minute)},
		{Label: "palm", Target: 10, Saved: 4, Dropped: 1, DatasetPath: "d.csv", StartedAt: base.Add(time.Hour), EndedAt: base.Add(time.Hour)},
		{Label: "fist", Target: 5, Saved: 5, DatasetPath: "d.csv", StartedAt: base.Add(2 * time.Hour), EndedAt: base.Add(2 * time.Hour)},
	}
	for _, cs := range sessions {
		if err := repo.Create(cs); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
	}

	all, err := repo.List("")
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(all))
	}
	if all[0].ID != sessions[2].ID {
		t.Errorf("sessions should be newest first")
	}

	fists, err := repo.List("fist")
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}
	if len(fists) != 2 {
		t.Errorf("expected 2 fist sessions, got %d", len(fists))
	}
	if all[1].Dropped != 1 || all[1].Saved != 4 {
		t.Errorf("palm session = %+v", all[1])
	}

	totals, err := repo.Totals()
	if err != nil {
		t.Fatalf("Totals failed: %v", err)
	}
	if totals["fist"] != 15 || totals["palm"] != 4 {
		t.Errorf("Totals = %v", totals)
	}
}

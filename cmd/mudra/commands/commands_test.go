package commands

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/dataset"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		datasetPath, artifactPath, logLevel = "", "", ""
		noHistory, configForce = false, false
	})
	err := execute(context.Background())
	return out.String(), err
}

func TestSubcommandsRegistered(t *testing.T) {
	want := map[string]bool{"collect": false, "train": false, "live": false, "history": false, "tray": false, "config": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestTrain_MissingDataset(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t,
		"--config", filepath.Join(dir, "config.yaml"),
		"--dataset", filepath.Join(dir, "none.csv"),
		"--model", filepath.Join(dir, "model.mpk"),
		"train")
	if !errors.Is(err, dataset.ErrData) {
		t.Fatalf("expected ErrData, got %v", err)
	}
}

func TestHistory_RecordsFailedRun(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")

	if _, err := run(t, "--config", cfgFile, "--dataset", filepath.Join(dir, "none.csv"), "train"); err == nil {
		t.Fatal("expected training to fail")
	}

	out, err := run(t, "--config", cfgFile, "history")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "Training runs") || !strings.Contains(out, "failed") {
		t.Errorf("unexpected history output:\n%s", out)
	}
}

func TestHistory_Disabled(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "--config", filepath.Join(dir, "config.yaml"), "--no-history", "history")
	if err == nil {
		t.Fatal("expected error when history is disabled")
	}
}

func TestPrintDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hand_landmarks.csv")
	features := make([]float64, 42)
	for _, label := range []string{"fist", "palm", "fist"} {
		if err := dataset.Append(path, label, features); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	var out bytes.Buffer
	if err := printDataset(&out, path); err != nil {
		t.Fatalf("printDataset() error = %v", err)
	}
	got := out.String()
	for _, want := range []string{"fist", "2", "palm", "1"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	out.Reset()
	if err := printDataset(&out, filepath.Join(t.TempDir(), "none.csv")); err != nil {
		t.Fatalf("missing dataset should not fail, got %v", err)
	}
	if !strings.Contains(out.String(), "does not exist") {
		t.Errorf("expected missing-file note, got:\n%s", out.String())
	}
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "mudra", "config.yaml")
	data := filepath.Join(dir, "gestures.csv")

	out, err := run(t, "--config", cfgFile, "--no-history", "--dataset", data, "config", "init")
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, "Wrote") {
		t.Errorf("unexpected output: %q", out)
	}

	loaded, err := config.Load(cfgFile)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	if loaded.DatasetPath != data {
		t.Errorf("dataset path = %q, want %q", loaded.DatasetPath, data)
	}

	if _, err := run(t, "--config", cfgFile, "--no-history", "config", "init"); err == nil {
		t.Error("expected init to refuse an existing file")
	}
	if _, err := run(t, "--config", cfgFile, "--no-history", "config", "init", "--force"); err != nil {
		t.Errorf("init --force failed: %v", err)
	}

	out, err = run(t, "--config", cfgFile, "--no-history", "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, "dataset_path: "+data) {
		t.Errorf("show output missing dataset path:\n%s", out)
	}
}

func TestExecute_InterruptIsCleanExit(t *testing.T) {
	dir := t.TempDir()
	rootCmd.SetArgs([]string{"--config", filepath.Join(dir, "config.yaml"), "--no-history"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		noHistory = false
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := execute(ctx); err != nil {
		t.Errorf("execute() after interrupt = %v, want nil", err)
	}
}

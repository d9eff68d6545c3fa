// Package config loads the mudra configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/mudra/internal/detector"
)

const (
	// DefaultBaseDir is the directory under $HOME holding config and history.
	DefaultBaseDir = ".mudra"
	// DefaultConfigFile is the config filename inside DefaultBaseDir.
	DefaultConfigFile = "config.yaml"
)

// Config is the configuration for one run of the tool. It is built once
// and passed to each component constructor.
type Config struct {
	CameraID     int    `yaml:"camera_id"`
	CameraFPS    int    `yaml:"camera_fps"`
	Mirror       bool   `yaml:"mirror"`
	DatasetPath  string `yaml:"dataset_path"`
	ArtifactPath string `yaml:"artifact_path"`
	// HistoryDB is the SQLite file recording training runs and collection
	// sessions. Empty means history.db next to the config file.
	HistoryDB string `yaml:"history_db"`

	Detector detector.Config `yaml:"detector"`
	Collect  Collect         `yaml:"collect"`
	Train    Train           `yaml:"train"`
	Live     Live            `yaml:"live"`
	Speech   Speech          `yaml:"speech"`
	Log      Log             `yaml:"log"`
}

// Collect configures sample recording.
type Collect struct {
	Cooldown time.Duration `yaml:"cooldown"`
	SaveKey  string        `yaml:"save_key"`
	QuitKey  string        `yaml:"quit_key"`
}

// Train configures the model trainer.
type Train struct {
	Trees     int     `yaml:"trees"`
	MaxDepth  int     `yaml:"max_depth"` // 0 means unlimited
	TestRatio float64 `yaml:"test_ratio"`
	Seed      int64   `yaml:"seed"`
	Bootstrap bool    `yaml:"bootstrap"`
}

// Live configures the live classifier.
type Live struct {
	ConfidenceThreshold float64       `yaml:"confidence_threshold"`
	SpeakInterval       time.Duration `yaml:"speak_interval"`
	// AsyncSpeech hands utterances to a background worker instead of
	// blocking the frame loop.
	AsyncSpeech bool   `yaml:"async_speech"`
	QuitKey     string `yaml:"quit_key"`
}

// Speech configures the text-to-speech command.
type Speech struct {
	// Command is the TTS executable. Empty picks "say" or "espeak".
	Command string        `yaml:"command"`
	Rate    int           `yaml:"rate"`
	Timeout time.Duration `yaml:"timeout"`
	Disable bool          `yaml:"disable"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		CameraID:     0,
		CameraFPS:    30,
		Mirror:       true,
		DatasetPath:  "hand_landmarks.csv",
		ArtifactPath: "hand_model.mpk",
		Detector:     detector.DefaultConfig(),
		Collect: Collect{
			Cooldown: 500 * time.Millisecond,
			SaveKey:  "s",
			QuitKey:  "q",
		},
		Train: Train{
			Trees:     100,
			TestRatio: 0.2,
			Seed:      42,
			Bootstrap: true,
		},
		Live: Live{
			ConfidenceThreshold: 0.6,
			SpeakInterval:       1200 * time.Millisecond,
			AsyncSpeech:         true,
			QuitKey:             "q",
		},
		Speech: Speech{
			Rate:    150,
			Timeout: 10 * time.Second,
		},
		Log: Log{Level: "info"},
	}
}

// DefaultPath returns ~/.mudra/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DefaultBaseDir, DefaultConfigFile), nil
}

// Load reads the YAML file at path over Default. A missing file is not an
// error and yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.DatasetPath) == "":
		return errors.New("dataset_path is empty")
	case strings.TrimSpace(c.ArtifactPath) == "":
		return errors.New("artifact_path is empty")
	case c.CameraFPS < 0:
		return errors.New("camera_fps is negative")
	case c.Collect.Cooldown < 0:
		return errors.New("collect.cooldown is negative")
	case len(c.Collect.SaveKey) != 1 || len(c.Collect.QuitKey) != 1 || len(c.Live.QuitKey) != 1:
		return errors.New("keys must be single characters")
	case c.Train.Trees <= 0:
		return errors.New("train.trees must be positive")
	case c.Train.MaxDepth < 0:
		return errors.New("train.max_depth is negative")
	case c.Train.TestRatio <= 0 || c.Train.TestRatio >= 1:
		return errors.New("train.test_ratio must be in (0, 1)")
	case c.Live.ConfidenceThreshold < 0 || c.Live.ConfidenceThreshold > 1:
		return errors.New("live.confidence_threshold must be in [0, 1]")
	case c.Live.SpeakInterval < 0:
		return errors.New("live.speak_interval is negative")
	}
	return nil
}

// ExpandHome replaces a leading "~/" in path with the home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

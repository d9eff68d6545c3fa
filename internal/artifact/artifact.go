// Package artifact persists the output of one training run: the fitted
// forest together with the label encoder and feature scaler it was trained
// against. The three are written and read as a single msgpack document.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ayusman/mudra/internal/ml"
)

// Version is the bundle format written by Save.
const Version = 1

// ErrArtifact is wrapped by every Load failure: the file is missing,
// unreadable, from another format version or internally inconsistent.
var ErrArtifact = errors.New("model artifact unavailable")

// Bundle is a trained model with its encoder and scaler.
type Bundle struct {
	Model   *ml.RandomForest   `msgpack:"model"`
	Encoder *ml.LabelEncoder   `msgpack:"le"`
	Scaler  *ml.StandardScaler `msgpack:"scaler"`

	Version   int       `msgpack:"version"`
	TrainedAt time.Time `msgpack:"trained_at"`
}

// Classes returns the labels the bundle can predict.
func (b *Bundle) Classes() []string {
	if b.Encoder == nil {
		return nil
	}
	return b.Encoder.Classes
}

// Validate checks that the three parts belong together.
func (b *Bundle) Validate() error {
	switch {
	case b.Model == nil:
		return errors.New("missing model")
	case b.Encoder == nil:
		return errors.New("missing label encoder")
	case b.Scaler == nil:
		return errors.New("missing scaler")
	case len(b.Model.Trees) == 0:
		return errors.New("model has no trees")
	}
	if b.Scaler.Width() != b.Model.NumFeatures {
		return fmt.Errorf("scaler has %d features, model expects %d", b.Scaler.Width(), b.Model.NumFeatures)
	}
	if b.Encoder.Len() != b.Model.NumClasses {
		return fmt.Errorf("encoder has %d classes, model predicts %d", b.Encoder.Len(), b.Model.NumClasses)
	}
	return nil
}

// Save writes b to path atomically. The bundle is encoded in full, written
// to a temporary file next to path and renamed over it, so a failed save
// leaves any previous artifact untouched.
func Save(path string, b *Bundle) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	if b.Version == 0 {
		b.Version = Version
	}
	if b.TrainedAt.IsZero() {
		b.TrainedAt = time.Now().UTC()
	}

	data, err := msgpack.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("install artifact: %w", err)
	}
	return nil
}

// Load reads and validates the bundle at path.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifact, err)
	}

	var b Bundle
	if err := msgpack.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrArtifact, path, err)
	}
	if b.Version != Version {
		return nil, fmt.Errorf("%w: %s has format version %d, want %d", ErrArtifact, path, b.Version, Version)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArtifact, path, err)
	}
	return &b, nil
}

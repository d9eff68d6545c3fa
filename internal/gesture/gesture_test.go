package gesture

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/dataset"
	"github.com/ayusman/mudra/internal/detector"
)

// writeDataset appends n jittered samples of each pose to a new dataset
// file and returns its path.
func writeDataset(t *testing.T, n int, poses map[string]detector.HandLandmarks) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "hand_landmarks.csv")
	seed := int64(1)
	for _, label := range []string{"fist", "palm", "thumbs_up"} {
		pose, ok := poses[label]
		if !ok {
			continue
		}
		for i := 0; i < n; i++ {
			h := detector.Jitter(pose, seed, 0.01)
			seed++
			features, err := detector.Features(&h)
			if err != nil {
				t.Fatalf("Features failed: %v", err)
			}
			if err := dataset.Append(path, label, features); err != nil {
				t.Fatalf("Append failed: %v", err)
			}
		}
	}
	return path
}

func fistAndPalm() map[string]detector.HandLandmarks {
	return map[string]detector.HandLandmarks{
		"fist": detector.FistLandmarks(),
		"palm": detector.OpenPalmLandmarks(),
	}
}

// trainedClassifier trains a small forest on fist and palm samples.
func trainedClassifier(t *testing.T) *Classifier {
	t.Helper()

	path := writeDataset(t, 10, fistAndPalm())
	opts := DefaultTrainOptions()
	opts.Trees = 15
	res, err := NewTrainer(path, filepath.Join(t.TempDir(), "hand_model.mpk"), opts).Train()
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	c, err := NewClassifier(res.Bundle)
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}
	return c
}

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

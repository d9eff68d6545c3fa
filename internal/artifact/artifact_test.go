package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ayusman/mudra/internal/ml"
)

func trainedBundle(t *testing.T) *Bundle {
	t.Helper()

	X := [][]float64{
		{0.1, 0.2, 0.1}, {0.2, 0.1, 0.2}, {0.15, 0.15, 0.1},
		{0.9, 0.8, 0.9}, {0.8, 0.9, 0.8}, {0.85, 0.85, 0.9},
	}
	labels := []string{"fist", "fist", "fist", "palm", "palm", "palm"}

	enc, err := ml.NewLabelEncoder(labels)
	require.NoError(t, err)
	y, err := enc.EncodeAll(labels)
	require.NoError(t, err)

	scaler := &ml.StandardScaler{}
	require.NoError(t, scaler.Fit(X))
	scaled, err := scaler.Transform(X)
	require.NoError(t, err)

	rf := ml.NewRandomForest(ml.WithTrees(5))
	require.NoError(t, rf.Fit(scaled, y, enc.Len()))

	return &Bundle{Model: rf, Encoder: enc, Scaler: scaler}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.mpk")
	b := trainedBundle(t)

	require.NoError(t, Save(path, b))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Version, got.Version)
	assert.False(t, got.TrainedAt.IsZero())
	assert.Equal(t, []string{"fist", "palm"}, got.Classes())
	assert.Equal(t, b.Scaler.Mean, got.Scaler.Mean)

	probe, err := got.Scaler.TransformRow([]float64{0.88, 0.86, 0.87})
	require.NoError(t, err)
	want, err := b.Model.PredictProba(probe)
	require.NoError(t, err)
	have, err := got.Model.PredictProba(probe)
	require.NoError(t, err)
	assert.Equal(t, want, have)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestSave_OverwritesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.mpk")
	require.NoError(t, os.WriteFile(path, []byte("old artifact bytes"), 0644))

	require.NoError(t, Save(path, trainedBundle(t)))
	_, err := Load(path)
	require.NoError(t, err)
}

func TestSave_InvalidBundleLeavesFileAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.mpk")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0644))

	b := trainedBundle(t)
	b.Scaler = nil
	require.Error(t, Save(path, b))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	write := func(t *testing.T, name string, v any) string {
		t.Helper()
		data, err := msgpack.Marshal(v)
		require.NoError(t, err)
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, data, 0644))
		return p
	}

	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing", func(t *testing.T) string { return filepath.Join(dir, "nope.mpk") }},
		{"corrupt", func(t *testing.T) string {
			p := filepath.Join(dir, "corrupt.mpk")
			require.NoError(t, os.WriteFile(p, []byte{0xc1, 0x00, 0xff}, 0644))
			return p
		}},
		{"wrong version", func(t *testing.T) string {
			b := trainedBundle(t)
			b.Version = Version + 1
			return write(t, "version.mpk", b)
		}},
		{"width mismatch", func(t *testing.T) string {
			b := trainedBundle(t)
			b.Version = Version
			b.Scaler.Mean = b.Scaler.Mean[:2]
			b.Scaler.Std = b.Scaler.Std[:2]
			return write(t, "width.mpk", b)
		}},
		{"missing encoder", func(t *testing.T) string {
			b := trainedBundle(t)
			b.Version = Version
			b.Encoder = nil
			return write(t, "noenc.mpk", b)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			assert.ErrorIs(t, err, ErrArtifact)
		})
	}
}

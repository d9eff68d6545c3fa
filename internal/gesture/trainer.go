package gesture

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/artifact"
	"github.com/ayusman/mudra/internal/dataset"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/ml"
)

// TrainOptions configures the forest and the holdout split.
type TrainOptions struct {
	Trees     int
	MaxDepth  int
	TestRatio float64
	Seed      int64
	// Bootstrap resamples the training rows for each tree.
	Bootstrap bool
}

// DefaultTrainOptions returns 100 unlimited-depth bootstrapped trees, a
// 20% holdout and seed 42.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{Trees: 100, TestRatio: 0.2, Seed: 42, Bootstrap: true}
}

// Trainer fits a model on a dataset file and writes the artifact.
type Trainer struct {
	DatasetPath  string
	ArtifactPath string
	Options      TrainOptions
}

// NewTrainer creates a new Trainer.
func NewTrainer(datasetPath, artifactPath string, opts TrainOptions) *Trainer {
	return &Trainer{
		DatasetPath:  datasetPath,
		ArtifactPath: artifactPath,
		Options:      opts,
	}
}

// TrainResult summarizes a successful training run.
type TrainResult struct {
	Samples  int
	Train    int
	Test     int
	Features int
	Classes  []string
	Accuracy float64
	Report   ml.Report
	Bundle   *artifact.Bundle
}

// Train loads the dataset, fits encoder, scaler and forest, evaluates on
// the holdout split and saves the bundle. The artifact file is only
// touched once every earlier stage has succeeded.
func (t *Trainer) Train() (*TrainResult, error) {
	ds, err := dataset.Load(t.DatasetPath)
	if err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		return nil, fmt.Errorf("%w: %s has no samples, collect data first", dataset.ErrData, t.DatasetPath)
	}
	if ds.Len() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 samples, %s has %d", dataset.ErrData, t.DatasetPath, ds.Len())
	}

	X := ds.Matrix()
	width := len(X[0])
	if width < 1 {
		return nil, fmt.Errorf("%w: samples have no feature columns", dataset.ErrData)
	}

	labels := ds.Labels()
	enc, err := ml.NewLabelEncoder(labels)
	if err != nil {
		return nil, fmt.Errorf("encode labels: %w", err)
	}
	y, err := enc.EncodeAll(labels)
	if err != nil {
		return nil, fmt.Errorf("encode labels: %w", err)
	}
	if enc.Len() < 2 {
		logger.Log().Warn("dataset has a single label; the model will always predict it",
			zap.String("label", enc.Classes[0]))
	}

	trainIdx, testIdx, err := ml.TrainTestSplit(len(X), t.Options.TestRatio, t.Options.Seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dataset.ErrData, err)
	}

	scaler := &ml.StandardScaler{}
	if err := scaler.Fit(ml.Rows(X, trainIdx)); err != nil {
		return nil, fmt.Errorf("fit scaler: %w", err)
	}
	xTrain, err := scaler.Transform(ml.Rows(X, trainIdx))
	if err != nil {
		return nil, fmt.Errorf("scale training set: %w", err)
	}
	xTest, err := scaler.Transform(ml.Rows(X, testIdx))
	if err != nil {
		return nil, fmt.Errorf("scale holdout set: %w", err)
	}

	logger.Log().Info("training random forest",
		zap.Int("samples", len(X)),
		zap.Int("train", len(trainIdx)),
		zap.Int("holdout", len(testIdx)),
		zap.Strings("classes", enc.Classes),
		zap.Int("trees", t.Options.Trees))

	forest := ml.NewRandomForest(
		ml.WithTrees(t.Options.Trees),
		ml.WithMaxDepth(t.Options.MaxDepth),
		ml.WithSeed(t.Options.Seed),
		ml.WithBootstrap(t.Options.Bootstrap),
	)
	if err := forest.Fit(xTrain, ml.Ints(y, trainIdx), enc.Len()); err != nil {
		return nil, fmt.Errorf("fit model: %w", err)
	}

	yTest := ml.Ints(y, testIdx)
	pred, err := forest.PredictAll(xTest)
	if err != nil {
		return nil, fmt.Errorf("evaluate model: %w", err)
	}
	report := ml.ClassificationReport(yTest, pred, enc.Classes)

	bundle := &artifact.Bundle{
		Model:     forest,
		Encoder:   enc,
		Scaler:    scaler,
		Version:   artifact.Version,
		TrainedAt: time.Now().UTC(),
	}
	if err := artifact.Save(t.ArtifactPath, bundle); err != nil {
		return nil, err
	}

	return &TrainResult{
		Samples:  len(X),
		Train:    len(trainIdx),
		Test:     len(testIdx),
		Features: width,
		Classes:  append([]string(nil), enc.Classes...),
		Accuracy: report.Accuracy,
		Report:   report,
		Bundle:   bundle,
	}, nil
}

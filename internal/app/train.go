package app

import (
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/store"
)

// Train fits a model on the dataset and writes the artifact. The run is
// recorded in the history whether or not it succeeds.
func (a *App) Train() (*gesture.TrainResult, error) {
	opts := gesture.TrainOptions{
		Trees:     a.cfg.Train.Trees,
		MaxDepth:  a.cfg.Train.MaxDepth,
		TestRatio: a.cfg.Train.TestRatio,
		Seed:      a.cfg.Train.Seed,
		Bootstrap: a.cfg.Train.Bootstrap,
	}
	trainer := gesture.NewTrainer(a.cfg.DatasetPath, a.cfg.ArtifactPath, opts)

	started := a.now()
	res, err := trainer.Train()

	if a.store != nil {
		run := &store.TrainingRun{
			Status:       store.RunSucceeded,
			DatasetPath:  a.cfg.DatasetPath,
			ArtifactPath: a.cfg.ArtifactPath,
			StartedAt:    started,
			FinishedAt:   a.now(),
		}
		if err != nil {
			run.Status = store.RunFailed
			run.Error = err.Error()
		} else {
			run.Samples = res.Samples
			run.Classes = res.Classes
			run.Accuracy = res.Accuracy
		}
		if serr := a.store.Runs().Create(run); serr != nil {
			logger.Log().Warn("failed to record training run", zap.Error(serr))
		}
	}

	if err != nil {
		return nil, err
	}
	logger.Log().Info("model saved",
		zap.String("path", a.cfg.ArtifactPath),
		zap.Float64("accuracy", res.Accuracy))
	return res, nil
}

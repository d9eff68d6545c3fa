package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/artifact"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logger"
)

// LiveResult summarizes a live session.
type LiveResult struct {
	Frames    int
	Announced []string
	Reason    string
}

// Live classifies camera frames until the quit key, ctx cancellation or
// a camera failure. Predictions are drawn on every frame and announced
// through speech when the announcer allows it.
func (a *App) Live(ctx context.Context) (*LiveResult, error) {
	bundle, err := artifact.Load(a.cfg.ArtifactPath)
	if err != nil {
		return nil, fmt.Errorf("%w; train a model first", err)
	}
	clf, err := gesture.NewClassifier(bundle)
	if err != nil {
		return nil, fmt.Errorf("%w; train a model first", err)
	}

	dev, err := a.openDevices("Live Test")
	if err != nil {
		return nil, err
	}
	defer dev.Close()

	sink := a.openSpeech()
	if sink != nil {
		defer sink.Close()
	}

	log := logger.Log()
	log.Info("live classification started", zap.Strings("classes", clf.Classes()))
	if a.store != nil {
		if run, err := a.store.Runs().Latest(); err == nil {
			log.Info("model from training run",
				zap.String("run", run.ID),
				zap.Time("finished_at", run.FinishedAt),
				zap.Float64("accuracy", run.Accuracy))
		}
	}

	session := gesture.NewLiveSession(clf,
		gesture.NewAnnouncer(a.cfg.Live.ConfidenceThreshold, a.cfg.Live.SpeakInterval))
	res := &LiveResult{}

	for res.Reason == "" {
		if ctx.Err() != nil {
			res.Reason = "canceled"
			break
		}

		frame, hands, err := dev.next()
		if err != nil {
			log.Warn("Failed to grab frame", zap.Error(err))
			res.Reason = "camera"
			break
		}
		res.Frames++

		f := session.Step(hands, a.now())
		if f.Err != nil {
			log.Debug("frame not classified", zap.Error(f.Err))
		}

		overlay := capture.Overlay{Text: f.Text, Tone: capture.ToneNeutral}
		if f.Prediction != nil {
			overlay.Tone = capture.ToneResult
			overlay.Hand = &hands[0]
			a.setLast(f.Prediction.Label)
		}
		if f.Announce != "" {
			res.Announced = append(res.Announced, f.Announce)
			if sink != nil {
				sink.Say(f.Announce)
			}
		}

		if key := dev.show(frame, overlay); isKey(key, a.cfg.Live.QuitKey) {
			res.Reason = "quit"
		}
	}

	return res, nil
}

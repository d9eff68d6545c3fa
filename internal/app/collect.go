package app

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/store"
)

// CollectResult summarizes a collection session.
type CollectResult struct {
	Label   string
	Target  int
	Saved   int
	Dropped int
	// Reason is why the session ended: "target", "quit", "camera",
	// "canceled" or "error".
	Reason string
}

// Collect records up to target samples of label. Samples are saved only
// when the save key is pressed with a hand in view. The dataset stays
// valid whenever the session ends.
func (a *App) Collect(ctx context.Context, label string, target int) (*CollectResult, error) {
	rec, err := gesture.NewRecorder(a.cfg.DatasetPath, label, target, a.cfg.Collect.Cooldown)
	if err != nil {
		return nil, err
	}

	dev, err := a.openDevices("Collect Data")
	if err != nil {
		return nil, err
	}
	defer dev.Close()

	log := logger.Log().With(zap.String("label", rec.Label), zap.Int("target", target))
	log.Info("collecting samples")

	started := a.now()
	res := &CollectResult{Label: rec.Label, Target: target}
	var loopErr error

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

		overlay := capture.Overlay{Text: rec.Status(len(hands) > 0), Tone: capture.ToneNeutral}
		if len(hands) > 0 {
			overlay.Tone = capture.ToneReady
			overlay.Hand = &hands[0]
		}
		key := dev.show(frame, overlay)

		switch {
		case isKey(key, a.cfg.Collect.QuitKey):
			res.Reason = "quit"
		case isKey(key, a.cfg.Collect.SaveKey):
			outcome, err := rec.Trigger(hands, a.now())
			switch {
			case err == nil && outcome == gesture.OutcomeSaved:
				log.Info("saved sample", zap.Int("collected", rec.Saved()))
			case errors.Is(err, gesture.ErrSample):
				log.Warn("bad sample, skipped", zap.Error(err))
			case err != nil:
				loopErr = err
				res.Reason = "error"
			}
		}

		if res.Reason == "" && rec.Done() {
			log.Info("target reached")
			res.Reason = "target"
		}
	}

	res.Saved = rec.Saved()
	res.Dropped = rec.Dropped()

	if a.store != nil {
		err := a.store.Sessions().Create(&store.CollectionSession{
			Label:       rec.Label,
			Target:      target,
			Saved:       res.Saved,
			Dropped:     res.Dropped,
			DatasetPath: a.cfg.DatasetPath,
			StartedAt:   started,
			EndedAt:     a.now(),
		})
		if err != nil {
			log.Warn("failed to record collection session", zap.Error(err))
		}
	}

	return res, loopErr
}

package commands

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/tray"
)

var trayCmd = &cobra.Command{
	Use:   "tray",
	Short: "Run the menu-bar front end",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		t := tray.New()
		a.OnPrediction(t.SetLastGesture)

		live := tray.NewLiveSwitch(func(ctx context.Context) error {
			res, err := a.Live(ctx)
			if err != nil {
				logger.Log().Error("live recognition failed", zap.Error(err))
				return err
			}
			logger.Log().Info("live recognition stopped",
				zap.String("reason", res.Reason), zap.Int("frames", res.Frames))
			return nil
		}, func(error) { t.SetLive(false) })

		t.OnLive(func(on bool) {
			if on {
				live.Start(cmd.Context())
			} else {
				live.Stop()
			}
		})

		t.OnTrain(func() {
			go func() {
				t.SetTraining(true)
				defer t.SetTraining(false)
				res, err := a.Train()
				if err != nil {
					logger.Log().Error("training failed", zap.Error(err))
					return
				}
				logger.Log().Info("training finished", zap.Float64("accuracy", res.Accuracy))
			}()
		})

		t.OnQuit(live.Stop)

		t.Run()
		live.Wait()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(trayCmd)
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var liveQuiet bool

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Recognize gestures from the camera and speak them",
	RunE: func(cmd *cobra.Command, args []string) error {
		if liveQuiet {
			cfg.Speech.Disable = true
		}
		res, err := newApp().Live(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Processed %d frames, announced %d gestures.\n",
			res.Frames, len(res.Announced))
		return nil
	},
}

func init() {
	liveCmd.Flags().BoolVarP(&liveQuiet, "quiet", "q", false, "visual output only")
	rootCmd.AddCommand(liveCmd)
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	collectLabel string
	collectCount int
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Record labeled hand samples from the camera",
	Long: `Open the camera and append one sample to the dataset each time the save
key is pressed with a hand in view. Stops at --count samples or on the
quit key.`,
	Example: `  mudra collect --label fist --count 50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newApp().Collect(cmd.Context(), collectLabel, collectCount)
		if res != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d/%d samples for '%s' (%s)\n",
				res.Saved, res.Target, res.Label, res.Reason)
		}
		return err
	},
}

func init() {
	collectCmd.Flags().StringVarP(&collectLabel, "label", "l", "", "gesture label")
	collectCmd.Flags().IntVarP(&collectCount, "count", "n", 50, "number of samples to collect")
	collectCmd.MarkFlagRequired("label")
	rootCmd.AddCommand(collectCmd)
}

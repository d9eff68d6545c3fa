package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the gesture model on the dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newApp().Train()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Accuracy on test set: %.3f\n", res.Accuracy)
		fmt.Fprint(out, res.Report.String())
		fmt.Fprintf(out, "Saved model to %s\n", cfg.ArtifactPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(trainCmd)
}

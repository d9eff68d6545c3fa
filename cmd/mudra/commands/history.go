package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/dataset"
)

var (
	historyLimit int
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f"))
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded training runs and collection sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireHistory()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		runs, err := s.Runs().List(historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list training runs: %w", err)
		}
		fmt.Fprintln(out, headerStyle.Render("Training runs"))
		if len(runs) == 0 {
			fmt.Fprintln(out, "  none")
		}
		for _, r := range runs {
			line := fmt.Sprintf("  %s  %-9s  %4d samples  acc %.3f  [%s]",
				r.StartedAt.Local().Format("2006-01-02 15:04"), r.Status, r.Samples, r.Accuracy,
				strings.Join(r.Classes, ", "))
			if r.Error != "" {
				line = failStyle.Render(fmt.Sprintf("  %s  %-9s  %s",
					r.StartedAt.Local().Format("2006-01-02 15:04"), r.Status, r.Error))
			}
			fmt.Fprintln(out, line)
		}

		totals, err := s.Sessions().Totals()
		if err != nil {
			return fmt.Errorf("failed to list collection sessions: %w", err)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, headerStyle.Render("Samples collected"))
		if len(totals) == 0 {
			fmt.Fprintln(out, "  none")
		}
		sessions, err := s.Sessions().List("")
		if err != nil {
			return fmt.Errorf("failed to list collection sessions: %w", err)
		}
		seen := map[string]bool{}
		for _, cs := range sessions {
			if seen[cs.Label] {
				continue
			}
			seen[cs.Label] = true
			fmt.Fprintf(out, "  %-20s %5d\n", cs.Label, totals[cs.Label])
		}

		fmt.Fprintln(out)
		return printDataset(out, cfg.DatasetPath)
	},
}

// printDataset lists the samples per label currently in the dataset file.
func printDataset(out io.Writer, path string) error {
	fmt.Fprintln(out, headerStyle.Render("Dataset "+path))
	ds, err := dataset.Load(path)
	if err != nil {
		if errors.Is(err, dataset.ErrData) {
			fmt.Fprintf(out, "  %s\n", failStyle.Render(err.Error()))
			return nil
		}
		return err
	}
	if ds.Len() == 0 {
		fmt.Fprintln(out, "  none")
	}
	for _, c := range ds.Counts() {
		fmt.Fprintf(out, "  %-20s %5d\n", c.Label, c.Count)
	}
	return nil
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of training runs to show")
	rootCmd.AddCommand(historyCmd)
}

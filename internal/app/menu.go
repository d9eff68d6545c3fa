package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff9f"))
)

// Menu is the interactive text front end. Failures of an action are
// printed and control returns to the menu.
type Menu struct {
	app *App
	in  *bufio.Scanner
	out io.Writer
}

// NewMenu creates a menu reading choices from in and writing to out.
func NewMenu(a *App, in io.Reader, out io.Writer) *Menu {
	return &Menu{app: a, in: bufio.NewScanner(in), out: out}
}

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}

// prompt prints label and reads one line. ok is false at end of input.
func (m *Menu) prompt(label string) (string, bool) {
	m.printf("%s", label)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

// Run shows the menu until the operator exits, input ends or ctx is done.
func (m *Menu) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		m.printf("\n%s\n", titleStyle.Render("Hand Gesture Recognition System"))
		m.printf("1. Collect Data\n2. Train Model\n3. Test Live\n4. Exit\n")

		choice, ok := m.prompt("Select an option (1-4): ")
		if !ok {
			return nil
		}

		switch choice {
		case "1":
			if !m.collect(ctx) {
				return nil
			}
		case "2":
			m.train()
		case "3":
			m.live(ctx)
		case "4":
			m.printf("Exiting...\n")
			return nil
		default:
			m.printf("%s\n", errStyle.Render("Invalid option. Please try again."))
		}
	}
	return ctx.Err()
}

func (m *Menu) fail(err error) {
	m.printf("%s\n", errStyle.Render("Error: "+err.Error()))
}

func (m *Menu) collect(ctx context.Context) bool {
	label, ok := m.prompt("Enter gesture label: ")
	if !ok {
		return false
	}
	countText, ok := m.prompt("How many samples to collect? ")
	if !ok {
		return false
	}
	target, err := strconv.Atoi(countText)
	if err != nil || target <= 0 {
		m.printf("%s\n", errStyle.Render("Sample count must be a positive number."))
		return true
	}

	cfg := m.app.Config()
	m.printf("Collecting %d samples for '%s'. Press '%s' to save, '%s' to quit.\n",
		target, label, cfg.Collect.SaveKey, cfg.Collect.QuitKey)

	res, err := m.app.Collect(ctx, label, target)
	if res != nil {
		m.printf("Saved %d/%d samples for '%s'", res.Saved, res.Target, res.Label)
		if res.Dropped > 0 {
			m.printf(" (%d dropped)", res.Dropped)
		}
		m.printf(".\n")
	}
	if err != nil {
		m.fail(err)
	}
	return true
}

func (m *Menu) train() {
	m.printf("Loading data...\n")
	res, err := m.app.Train()
	if err != nil {
		m.fail(err)
		return
	}
	m.printf("Trained on %d samples (%d holdout), classes: %s\n",
		res.Samples, res.Test, strings.Join(res.Classes, ", "))
	m.printf("%s\n", okStyle.Render(fmt.Sprintf("Accuracy on test set: %.3f", res.Accuracy)))
	m.printf("%s", dimStyle.Render(res.Report.String()))
	m.printf("\nSaved model to %s\n", m.app.Config().ArtifactPath)
}

func (m *Menu) live(ctx context.Context) {
	m.printf("Press '%s' to quit live test\n", m.app.Config().Live.QuitKey)
	res, err := m.app.Live(ctx)
	if err != nil {
		m.fail(err)
		return
	}
	m.printf("Processed %d frames, announced %d gestures.\n", res.Frames, len(res.Announced))
}

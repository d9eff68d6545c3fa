package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

// engines are probed in order when no command is configured.
var engines = []string{"say", "espeak-ng", "espeak"}

// CommandSpeaker speaks by running a TTS executable once per utterance.
type CommandSpeaker struct {
	path    string
	rate    int
	timeout time.Duration
}

// NewCommandSpeaker resolves command on PATH, or the first available of
// say and espeak when command is empty. rate is in words per minute and
// is ignored by engines without a rate flag. A missing engine returns
// ErrUnavailable.
func NewCommandSpeaker(command string, rate int, timeout time.Duration) (*CommandSpeaker, error) {
	candidates := engines
	if command != "" {
		candidates = []string{command}
	}
	for _, c := range candidates {
		path, err := exec.LookPath(c)
		if err == nil {
			return &CommandSpeaker{path: path, rate: rate, timeout: timeout}, nil
		}
	}
	return nil, fmt.Errorf("%w: none of %v found on PATH", ErrUnavailable, candidates)
}

// Path returns the resolved executable.
func (s *CommandSpeaker) Path() string {
	return s.path
}

func (s *CommandSpeaker) args(text string) []string {
	var args []string
	if s.rate > 0 {
		switch filepath.Base(s.path) {
		case "say":
			args = append(args, "-r", strconv.Itoa(s.rate))
		case "espeak", "espeak-ng":
			args = append(args, "-s", strconv.Itoa(s.rate))
		}
	}
	return append(args, text)
}

// Speak runs the engine and waits for it to finish. The run is bounded by
// the configured timeout as well as ctx.
func (s *CommandSpeaker) Speak(ctx context.Context, text string) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, s.path, s.args(text)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("speech timeout after %s", s.timeout)
	}
	if err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("speech failed: %w, stderr: %s", err, stderr.String())
		}
		return fmt.Errorf("speech failed: %w", err)
	}
	return nil
}

func (s *CommandSpeaker) Close() error { return nil }

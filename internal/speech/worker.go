package speech

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/logger"
)

// Worker speaks on its own goroutine so the caller never waits for audio.
// It holds at most one pending utterance: a newer Say replaces an older
// one that has not started yet.
type Worker struct {
	speaker Speaker
	pending chan string

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewWorker starts a worker speaking through s.
func NewWorker(s Speaker) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		speaker: s,
		pending: make(chan string, 1),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Worker) run() {
	defer close(w.done)
	for {
		select {
		case <-w.ctx.Done():
			return
		case text := <-w.pending:
			if err := w.speaker.Speak(w.ctx, text); err != nil && w.ctx.Err() == nil {
				logger.Log().Warn("speech failed", zap.String("text", text), zap.Error(err))
			}
		}
	}
}

// Say queues text without blocking.
func (w *Worker) Say(text string) {
	select {
	case <-w.ctx.Done():
		return
	default:
	}
	for {
		select {
		case w.pending <- text:
			return
		default:
		}
		// drop the stale utterance and retry
		select {
		case <-w.pending:
		default:
		}
	}
}

// Close stops the worker, abandons any pending utterance and closes the
// speaker.
func (w *Worker) Close() error {
	var err error
	w.once.Do(func() {
		w.cancel()
		<-w.done
		err = w.speaker.Close()
	})
	return err
}

// Inline is a Sink that speaks on the caller's goroutine.
type Inline struct {
	Speaker Speaker
}

// Say speaks text and logs a failure.
func (i Inline) Say(text string) {
	if err := i.Speaker.Speak(context.Background(), text); err != nil {
		logger.Log().Warn("speech failed", zap.String("text", text), zap.Error(err))
	}
}

func (i Inline) Close() error { return i.Speaker.Close() }

// NewSink wraps s in a Worker when async is set and in Inline otherwise.
func NewSink(s Speaker, async bool) Sink {
	if async {
		return NewWorker(s)
	}
	return Inline{Speaker: s}
}

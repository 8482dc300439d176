package daemon

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/1broseidon/tagwm/internal/platform"
	"github.com/1broseidon/tagwm/internal/wm"
)

// ErrDisplayClosed is returned when the connection to the display ends
// without a quit or restart request.
var ErrDisplayClosed = errors.New("display connection closed")

// Handler is the window manager as the loop sees it.
type Handler interface {
	Handle(ev platform.Event)
	Sweep() int
	Outcome() wm.Outcome
}

// LoopConfig holds configuration for the event loop.
type LoopConfig struct {
	// SweepInterval is how often managed windows are checked against the
	// server. Zero disables the sweep.
	SweepInterval time.Duration
	Logger        *slog.Logger
}

// Loop feeds events to a Handler one at a time. Config reloads and
// periodic sweeps are serialized with the events on the same goroutine.
type Loop struct {
	handler  Handler
	events   <-chan platform.Event
	changes  <-chan struct{}
	onChange func() bool
	interval time.Duration
	logger   *slog.Logger
}

// NewLoop builds a loop over events. onChange runs for every value on
// changes and returns true when the manager should restart.
func NewLoop(cfg LoopConfig, h Handler, events <-chan platform.Event, changes <-chan struct{}, onChange func() bool) *Loop {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		handler:  h,
		events:   events,
		changes:  changes,
		onChange: onChange,
		interval: cfg.SweepInterval,
		logger:   logger,
	}
}

// Run blocks until the handler asks to quit or restart, ctx is cancelled,
// or the event source closes.
func (l *Loop) Run(ctx context.Context) (wm.Outcome, error) {
	var sweep <-chan time.Time
	if l.interval > 0 {
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()
		sweep = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("event loop stopped")
			return wm.Quit, nil

		case ev, ok := <-l.events:
			if !ok {
				return wm.Quit, ErrDisplayClosed
			}
			l.dispatch(ev)
			if o := l.handler.Outcome(); o != wm.Running {
				return o, nil
			}

		case <-l.changes:
			if l.onChange != nil && l.onChange() {
				return wm.Restart, nil
			}

		case <-sweep:
			l.reconcile()
		}
	}
}

// dispatch handles one event. A panic in a handler is logged and the
// event dropped so one bad window cannot take the session down.
func (l *Loop) dispatch(ev platform.Event) {
	defer func() {
		if err := recover(); err != nil {
			l.logger.Error("event handler panic recovered", "event", ev, "error", err)
		}
	}()
	l.handler.Handle(ev)
}

// reconcile drops clients whose destroy notification never arrived.
func (l *Loop) reconcile() {
	defer func() {
		if err := recover(); err != nil {
			l.logger.Error("reconciler panic recovered", "error", err)
		}
	}()
	if n := l.handler.Sweep(); n > 0 {
		l.logger.Info("reconciler: dropped vanished windows", "count", n)
	}
}

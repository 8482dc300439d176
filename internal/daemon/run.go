//go:build linux

package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/tagwm/internal/bar"
	"github.com/1broseidon/tagwm/internal/config"
	"github.com/1broseidon/tagwm/internal/hotkeys"
	"github.com/1broseidon/tagwm/internal/launch"
	"github.com/1broseidon/tagwm/internal/platform"
	"github.com/1broseidon/tagwm/internal/wm"
)

const sweepInterval = 10 * time.Second

// Options configures a window manager session.
type Options struct {
	Config     *config.Config
	ConfigPath string // watched for edits when set
	Logger     *slog.Logger
}

// Run takes over the display named by $DISPLAY and manages it until the
// user quits or restarts, ctx is cancelled, or the connection drops.
func Run(ctx context.Context, opts Options) (wm.Outcome, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pal := cfg.Palette()

	table, errs := hotkeys.Build(cfg.Keybindings, cfg.Modifier, cfg.Commands, len(cfg.Tags))
	for _, err := range errs {
		logger.Warn("skipping key binding", "error", err)
	}

	var renderer *bar.Renderer
	if cfg.Bar.Enabled {
		face, err := bar.LoadFace(cfg.Bar.Font, cfg.Bar.FontSize)
		if err != nil {
			logger.Warn("failed to load bar font, using the built-in face", "font", cfg.Bar.Font, "error", err)
		}
		renderer = bar.NewRenderer(face, pal.Background, pal.Foreground)
	}

	backend, err := platform.OpenLinuxBackend(logger.With("component", "backend"), pal.Background)
	if err != nil {
		return wm.Quit, err
	}

	mgr := wm.NewManager(wm.OptionsFromConfig(cfg, 0), backend,
		launch.New(logger.With("component", "launcher")), table, renderer, logger.With("component", "wm"))
	defer mgr.Shutdown()
	if err := mgr.Start(); err != nil {
		return wm.Quit, err
	}

	var changes <-chan struct{}
	reload := &reloader{path: opts.ConfigPath, current: cfg, logger: logger}
	if opts.ConfigPath != "" {
		w, err := WatchConfig(opts.ConfigPath, logger)
		if err != nil {
			logger.Warn("config changes will not be noticed", "error", err)
		} else {
			defer w.Close()
			go w.Run(ctx)
			changes = w.Changes()
		}
	}

	loop := NewLoop(LoopConfig{SweepInterval: sweepInterval, Logger: logger},
		mgr, backend.Events(), changes, reload.changed)
	outcome, err := loop.Run(ctx)
	logger.Info("session ended", "outcome", outcome.String())
	return outcome, err
}

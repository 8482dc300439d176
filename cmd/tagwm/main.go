package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/tagwm/internal/config"
	"github.com/1broseidon/tagwm/internal/daemon"
	"github.com/1broseidon/tagwm/internal/wm"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "tagwm",
		Short:         "A tag-based tiling window manager for X11",
		Long:          "tagwm manages the X display named by $DISPLAY with a master-stack layout and dwm-style tags.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWM(cmd.Context(), opts, cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file path (default: $XDG_CONFIG_HOME/tagwm/config.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (default: from config)")

	root.AddCommand(newConfigCmd(opts), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "tagwm", version)
		},
	}
}

func (o *rootOptions) resolvePath() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return config.DefaultConfigPath()
}

func runWM(ctx context.Context, opts *rootOptions, stderr io.Writer) error {
	path, err := opts.resolvePath()
	if err != nil {
		return err
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return err
	}

	level := opts.logLevel
	if level == "" {
		level = res.Config.LogLevel
	}
	logger := newLogger(stderr, level)
	slog.SetDefault(logger)

	if res.Created {
		logger.Info("wrote default config", "path", path)
	}
	for _, w := range res.Warnings {
		logger.Warn("config value rejected, using default", "error", w)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcome, err := daemon.Run(ctx, daemon.Options{
		Config:     res.Config,
		ConfigPath: path,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("window manager stopped", "error", err)
		return err
	}
	if outcome == wm.Restart {
		stop()
		return restart(logger)
	}
	return nil
}

// restart replaces the process with a fresh copy of itself. The new
// instance adopts the mapped windows.
func restart(logger *slog.Logger) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to find executable: %w", err)
	}
	logger.Info("restarting", "executable", exe)
	return syscall.Exec(exe, os.Args, os.Environ())
}

// newLogger logs text to a terminal and JSON anywhere else, such as a file
// redirected from .xinitrc.
func newLogger(w io.Writer, level string) *slog.Logger {
	if level == "warning" {
		level = "warn"
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

package launch

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"
)

// Command is a user command to run detached from the window manager.
type Command struct {
	Line string // passed to sh -c
	Name string // for logs only
}

// ErrEmptyCommand is returned for a blank command line.
var ErrEmptyCommand = errors.New("empty command")

// Launcher starts commands in their own process group with no stdio and
// reaps them in the background. Exit statuses are logged, never returned.
type Launcher struct {
	Shell  string
	Env    []string // nil inherits the manager's environment
	logger *slog.Logger
}

func New(logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{Shell: "/bin/sh", logger: logger}
}

// Launch starts cmd and returns once the process exists.
func (l *Launcher) Launch(cmd Command) error {
	line := strings.TrimSpace(cmd.Line)
	if line == "" {
		return ErrEmptyCommand
	}
	name := cmd.Name
	if name == "" {
		name = strings.Fields(line)[0]
	}

	c := exec.Command(l.Shell, "-c", line)
	c.Env = l.Env
	c.Stdin, c.Stdout, c.Stderr = nil, nil, nil
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := c.Start(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", name, err)
	}

	pid := c.Process.Pid
	l.logger.Debug("launched", "command", name, "pid", pid)
	go func() {
		if err := c.Wait(); err != nil {
			l.logger.Debug("command exited", "command", name, "pid", pid, "error", err)
		}
	}()
	return nil
}

package launch

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testLauncher() *Launcher {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLaunch_RunsDetachedCommand(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "ran")
	l := testLauncher()

	if err := l.Launch(Command{Line: "echo ok > " + marker, Name: "marker"}); err != nil {
		t.Fatalf("launch: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		data, err := os.ReadFile(marker)
		if err == nil && string(data) == "ok\n" {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("command did not run (last error: %v)", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLaunch_FailingCommandIsNotAnError(t *testing.T) {
	if err := testLauncher().Launch(Command{Line: "exit 3"}); err != nil {
		t.Fatalf("non-zero exit must not surface: %v", err)
	}
}

func TestLaunch_EmptyCommand(t *testing.T) {
	err := testLauncher().Launch(Command{Line: "   "})
	if !errors.Is(err, ErrEmptyCommand) {
		t.Fatalf("expected ErrEmptyCommand, got %v", err)
	}
}

func TestLaunch_MissingShell(t *testing.T) {
	l := testLauncher()
	l.Shell = filepath.Join(t.TempDir(), "no-such-shell")
	if err := l.Launch(Command{Line: "true"}); err == nil {
		t.Fatalf("expected error for missing shell")
	}
}

package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/1broseidon/tagwm/internal/config"
)

func TestConfigWatcherDebouncesEdits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("gap: 4\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := WatchConfig(path, quietLogger())
	if err != nil {
		t.Fatalf("WatchConfig: %v", err)
	}
	defer w.Close()
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Other files in the directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-w.Changes():
		t.Fatal("change reported for an unrelated file")
	case <-time.After(150 * time.Millisecond):
	}

	for i := range 5 {
		data := []byte("layout:\n  gap: " + string(rune('0'+i)) + "\n")
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatal(err)
		}
	}
	select {
	case <-w.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestReloaderRestartsOnlyWhenAsked(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	r := &reloader{path: path, current: config.DefaultConfig(), logger: quietLogger()}

	if err := os.WriteFile(path, []byte("layout:\n  gap: 4\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if r.changed() {
		t.Fatal("restart requested without restart_on_config_change")
	}
	if r.current.Layout.Gap != 4 {
		t.Fatalf("current gap = %d, want 4", r.current.Layout.Gap)
	}
	if r.changed() {
		t.Fatal("unchanged file requested a restart")
	}

	if err := os.WriteFile(path, []byte("restart_on_config_change: true\nlayout:\n  gap: 6\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if !r.changed() {
		t.Fatal("restart not requested")
	}
}

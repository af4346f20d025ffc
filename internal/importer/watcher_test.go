package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func startWatcher(t *testing.T, w *Watcher) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestWatcherProcessesDroppedSheet(t *testing.T) {
	service := newTestService(t)
	dir := t.TempDir()

	w := NewWatcher(New(service), WatcherConfig{
		Dir:          dir,
		PollInterval: 20 * time.Millisecond,
	})
	startWatcher(t, w)

	writeSheet(t, dir, "game-night.json", sampleSheet())

	waitFor(t, "sheet to be archived", func() bool {
		return fileExists(filepath.Join(dir, "processed", "game-night.json"))
	})

	players, err := service.FindPlayersByName(context.Background(), "Jordan")
	if err != nil {
		t.Fatalf("failed to find player: %v", err)
	}
	if len(players) != 1 {
		t.Fatalf("expected imported player, got %d", len(players))
	}
	if fileExists(filepath.Join(dir, "game-night.json")) {
		t.Error("expected sheet removed from drop directory")
	}
}

func TestWatcherImportsPreexistingFiles(t *testing.T) {
	service := newTestService(t)
	dir := t.TempDir()

	// Already sitting in the directory before the watcher starts.
	writeSheet(t, dir, "backlog.json", sampleSheet())

	w := NewWatcher(New(service), WatcherConfig{
		Dir:          dir,
		PollInterval: time.Hour, // first sweep only
	})
	startWatcher(t, w)

	waitFor(t, "backlog sheet to be archived", func() bool {
		return fileExists(filepath.Join(dir, "processed", "backlog.json"))
	})
}

func TestWatcherFsnotifyEvents(t *testing.T) {
	service := newTestService(t)
	dir := t.TempDir()

	w := NewWatcher(New(service), WatcherConfig{
		Dir:          dir,
		PollInterval: time.Hour, // events must carry this test
		UseFsnotify:  true,
	})
	startWatcher(t, w)

	// Give the watcher a moment to register before dropping the file.
	time.Sleep(100 * time.Millisecond)
	writeSheet(t, dir, "live.json", sampleSheet())

	waitFor(t, "event-driven import", func() bool {
		return fileExists(filepath.Join(dir, "processed", "live.json"))
	})
}

func TestWatcherRejectsWithNote(t *testing.T) {
	service := newTestService(t)
	dir := t.TempDir()

	w := NewWatcher(New(service), WatcherConfig{
		Dir:          dir,
		PollInterval: 20 * time.Millisecond,
	})
	startWatcher(t, w)

	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write bad sheet: %v", err)
	}

	failed := filepath.Join(dir, "failed", "bad.json")
	waitFor(t, "reject to be moved", func() bool {
		return fileExists(failed) && fileExists(failed+".err")
	})

	note, err := os.ReadFile(failed + ".err")
	if err != nil {
		t.Fatalf("failed to read rejection note: %v", err)
	}
	if !strings.Contains(string(note), "parse") {
		t.Errorf("expected parse error in note, got %q", note)
	}
}

func TestWatcherSkipsUnsettledFiles(t *testing.T) {
	service := newTestService(t)
	dir := t.TempDir()

	w := NewWatcher(New(service), WatcherConfig{
		Dir:          dir,
		PollInterval: 20 * time.Millisecond,
		SettleDelay:  time.Hour,
	})
	startWatcher(t, w)

	path := writeSheet(t, dir, "fresh.json", sampleSheet())

	// A freshly written file stays put until it settles.
	time.Sleep(200 * time.Millisecond)
	if !fileExists(path) {
		t.Fatal("expected unsettled sheet to remain in drop directory")
	}

	// Backdate it and it goes through on the next sweep.
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("failed to backdate sheet: %v", err)
	}
	waitFor(t, "settled sheet to be archived", func() bool {
		return fileExists(filepath.Join(dir, "processed", "fresh.json"))
	})
}

func TestWatcherArchivesDuplicateNames(t *testing.T) {
	service := newTestService(t)
	dir := t.TempDir()

	w := NewWatcher(New(service), WatcherConfig{
		Dir:          dir,
		PollInterval: 20 * time.Millisecond,
	})
	startWatcher(t, w)

	writeSheet(t, dir, "weekly.json", sampleSheet())
	waitFor(t, "first drop", func() bool {
		return fileExists(filepath.Join(dir, "processed", "weekly.json"))
	})

	writeSheet(t, dir, "weekly.json", sampleSheet())
	waitFor(t, "second drop", func() bool {
		entries, err := os.ReadDir(filepath.Join(dir, "processed"))
		return err == nil && len(entries) == 2
	})
}

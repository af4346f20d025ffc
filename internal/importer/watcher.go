package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// WatcherConfig controls the drop-directory watcher.
type WatcherConfig struct {
	// Dir is the drop directory. Finished sheets move to Dir/processed,
	// rejected ones to Dir/failed with an .err note alongside.
	Dir string

	// PollInterval is the fallback sweep interval. Zero means 30s.
	PollInterval time.Duration

	// UseFsnotify reacts to file system events between sweeps.
	UseFsnotify bool

	// SettleDelay skips files modified more recently than this, so a
	// sheet still being written is left for the next sweep. Zero
	// imports immediately.
	SettleDelay time.Duration
}

// Watcher imports every score sheet dropped into a directory.
type Watcher struct {
	importer *Importer
	config   WatcherConfig
}

// NewWatcher creates a watcher that feeds files to the importer.
func NewWatcher(imp *Importer, config WatcherConfig) *Watcher {
	if config.PollInterval <= 0 {
		config.PollInterval = 30 * time.Second
	}
	return &Watcher{importer: imp, config: config}
}

func (w *Watcher) processedDir() string { return filepath.Join(w.config.Dir, "processed") }
func (w *Watcher) failedDir() string    { return filepath.Join(w.config.Dir, "failed") }

// Start watches the drop directory until the context is canceled.
// Files already present are imported on the first sweep.
func (w *Watcher) Start(ctx context.Context) error {
	for _, dir := range []string{w.config.Dir, w.processedDir(), w.failedDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	var events chan fsnotify.Event
	var errors chan error
	if w.config.UseFsnotify {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		defer func() {
			//nolint:errcheck // watcher teardown on exit
			_ = watcher.Close()
		}()
		if err := watcher.Add(w.config.Dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", w.config.Dir, err)
		}
		events = watcher.Events
		errors = watcher.Errors
	}

	// Ticker as backup so delayed or missed events cannot strand files.
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-events:
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				w.sweep(ctx)
			}
		case err := <-errors:
			log.Warn().Err(err).Msg("file watcher error")
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep imports every settled .json file sitting in the drop directory.
func (w *Watcher) sweep(ctx context.Context) {
	entries, err := os.ReadDir(w.config.Dir)
	if err != nil {
		log.Warn().Err(err).Str("dir", w.config.Dir).Msg("failed to read drop directory")
		return
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if w.config.SettleDelay > 0 {
			info, err := entry.Info()
			if err != nil || time.Since(info.ModTime()) < w.config.SettleDelay {
				continue
			}
		}
		w.process(ctx, filepath.Join(w.config.Dir, entry.Name()))
	}
}

func (w *Watcher) process(ctx context.Context, path string) {
	name := filepath.Base(path)

	result, err := w.importer.ImportFile(ctx, path)
	if err != nil {
		log.Error().Err(err).Str("file", name).Msg("score sheet rejected")
		w.moveToFailed(path, err)
		return
	}

	log.Info().
		Str("file", name).
		Int("games", result.GamesImported).
		Msg("score sheet processed")

	if err := os.Rename(path, uniquePath(w.processedDir(), name)); err != nil {
		log.Warn().Err(err).Str("file", name).Msg("failed to archive processed sheet")
	}
}

func (w *Watcher) moveToFailed(path string, cause error) {
	name := filepath.Base(path)
	dest := uniquePath(w.failedDir(), name)

	if err := os.Rename(path, dest); err != nil {
		log.Warn().Err(err).Str("file", name).Msg("failed to move rejected sheet")
		return
	}
	note := dest + ".err"
	if err := os.WriteFile(note, []byte(cause.Error()+"\n"), 0o644); err != nil {
		log.Warn().Err(err).Str("file", name).Msg("failed to write rejection note")
	}
}

// uniquePath keeps a re-dropped file from clobbering an archived one.
func uniquePath(dir, name string) string {
	dest := filepath.Join(dir, name)
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		return dest
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return filepath.Join(dir, fmt.Sprintf("%s-%s%s", base, time.Now().Format("20060102150405.000"), ext))
}

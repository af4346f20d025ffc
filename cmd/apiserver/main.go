// Command apiserver runs the scorebook backend: the REST API with the
// live scoreboard feed, the score-sheet import watcher and the backup
// scheduler, all over one SQLite database.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rlattimer/scorebook/internal/api"
	"github.com/rlattimer/scorebook/internal/config"
	"github.com/rlattimer/scorebook/internal/importer"
	"github.com/rlattimer/scorebook/internal/storage"
	"github.com/rlattimer/scorebook/internal/version"
)

var (
	port   = flag.Int("port", 0, "API server port (overrides config)")
	dbPath = flag.String("db-path", "", "Database path (overrides config)")
)

func main() {
	flag.Parse()

	// A missing .env is fine; explicit environment still applies.
	_ = godotenv.Load()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	cfg.ApplyEnv()
	if *port != 0 {
		cfg.API.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	if cfg.App.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	resolvedDBPath, err := cfg.DatabasePath()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve database path")
	}
	if err := os.MkdirAll(filepath.Dir(resolvedDBPath), 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create database directory")
	}

	log.Info().
		Str("version", version.GetVersion()).
		Str("database", resolvedDBPath).
		Msg("scorebook starting")

	dbConfig := storage.DefaultConfig(resolvedDBPath)
	dbConfig.AutoMigrate = true
	db, err := storage.Open(dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}()

	service := storage.NewService(db)

	server := api.NewServer(cfg.API, service)
	if err := server.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start API server")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcherDone := startWatcher(ctx, cfg, service)
	scheduler := startBackupScheduler(cfg, resolvedDBPath)

	log.Info().Int("port", server.Port()).Msg("scorebook ready")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutting down")
	cancel()

	if scheduler != nil {
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("failed to stop backup scheduler")
		}
	}
	if watcherDone != nil {
		<-watcherDone
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during API shutdown")
	}

	log.Info().Msg("scorebook stopped")
}

// startWatcher runs the score-sheet import watcher when a watch
// directory is configured. The returned channel closes once the
// watcher has stopped.
func startWatcher(ctx context.Context, cfg *config.Config, service *storage.Service) <-chan struct{} {
	if cfg.Import.WatchDir == "" {
		return nil
	}

	pollInterval, err := cfg.PollInterval()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid import poll interval")
	}

	watcher := importer.NewWatcher(importer.New(service), importer.WatcherConfig{
		Dir:          cfg.Import.WatchDir,
		PollInterval: pollInterval,
		UseFsnotify:  cfg.Import.UseFsnotify,
		SettleDelay:  2 * time.Second,
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := watcher.Start(ctx); err != nil {
			log.Error().Err(err).Msg("import watcher stopped")
		}
	}()

	log.Info().Str("dir", cfg.Import.WatchDir).Msg("import watcher started")
	return done
}

// startBackupScheduler runs interval backups when an interval is
// configured.
func startBackupScheduler(cfg *config.Config, dbPath string) *storage.BackupScheduler {
	interval, err := cfg.BackupInterval()
	if err != nil || interval <= 0 {
		return nil
	}

	schedConfig := storage.DefaultSchedulerConfig()
	schedConfig.Interval = interval
	if cfg.Database.BackupDir != "" {
		schedConfig.BackupConfig.Dir = cfg.Database.BackupDir
	}
	schedConfig.OnBackupComplete = func(backupPath string, err error) {
		if err != nil {
			log.Error().Err(err).Msg("scheduled backup failed")
			return
		}
		log.Info().Str("path", backupPath).Msg("scheduled backup created")
	}

	scheduler := storage.NewBackupScheduler(storage.NewBackupManager(dbPath), schedConfig)
	if err := scheduler.Start(); err != nil {
		log.Error().Err(err).Msg("failed to start backup scheduler")
		return nil
	}

	log.Info().Dur("interval", interval).Msg("backup scheduler started")
	return scheduler
}

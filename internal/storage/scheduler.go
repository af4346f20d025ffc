package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// BackupScheduler runs periodic backups of the scorebook database.
type BackupScheduler struct {
	manager *BackupManager
	config  *SchedulerConfig
	clock   clockwork.Clock

	mu           sync.Mutex
	running      bool
	stop         chan struct{}
	done         chan struct{}
	lastBackup   time.Time
	lastError    error
	backupCount  int
	failureCount int
}

// SchedulerConfig holds the backup schedule.
type SchedulerConfig struct {
	// Interval between backups, e.g. 24h.
	Interval time.Duration

	// BackupConfig used for every run. Nil means defaults.
	BackupConfig *BackupConfig

	// StartImmediately runs a backup as soon as the scheduler starts
	// instead of waiting a full interval.
	StartImmediately bool

	// OnBackupComplete is called after every attempt, successful or
	// not. Optional.
	OnBackupComplete func(backupPath string, err error)
}

// DefaultSchedulerConfig returns a daily backup schedule.
func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		Interval:     24 * time.Hour,
		BackupConfig: DefaultBackupConfig(),
	}
}

// NewBackupScheduler creates a scheduler on the wall clock.
func NewBackupScheduler(manager *BackupManager, config *SchedulerConfig) *BackupScheduler {
	return NewBackupSchedulerWithClock(manager, config, clockwork.NewRealClock())
}

// NewBackupSchedulerWithClock creates a scheduler with an injected
// clock, so tests can drive the interval.
func NewBackupSchedulerWithClock(manager *BackupManager, config *SchedulerConfig, clock clockwork.Clock) *BackupScheduler {
	if config == nil {
		config = DefaultSchedulerConfig()
	}
	return &BackupScheduler{
		manager: manager,
		config:  config,
		clock:   clock,
	}
}

// Start launches the scheduler loop. It fails if already running.
func (s *BackupScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("backup scheduler already running")
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.run(s.stop, s.done)
	return nil
}

// Stop halts the scheduler and waits for an in-flight backup to
// finish. It fails if the scheduler is not running.
func (s *BackupScheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("backup scheduler not running")
	}
	s.running = false
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done
	return nil
}

// IsRunning reports whether the scheduler loop is active.
func (s *BackupScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// TriggerBackup runs a backup right away without disturbing the
// schedule and returns its result.
func (s *BackupScheduler) TriggerBackup() (string, error) {
	if !s.IsRunning() {
		return "", fmt.Errorf("backup scheduler not running")
	}
	return s.runBackup()
}

func (s *BackupScheduler) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := s.clock.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if s.config.StartImmediately {
		//nolint:errcheck // recorded in Status and reported via the callback
		_, _ = s.runBackup()
	}

	for {
		select {
		case <-ticker.Chan():
			//nolint:errcheck // recorded in Status and reported via the callback
			_, _ = s.runBackup()
		case <-stop:
			return
		}
	}
}

func (s *BackupScheduler) runBackup() (string, error) {
	backupPath, err := s.manager.Backup(s.config.BackupConfig)

	s.mu.Lock()
	s.lastBackup = s.clock.Now()
	s.lastError = err
	if err != nil {
		s.failureCount++
	} else {
		s.backupCount++
	}
	s.mu.Unlock()

	if s.config.OnBackupComplete != nil {
		s.config.OnBackupComplete(backupPath, err)
	}
	return backupPath, err
}

// SchedulerStatus is a snapshot of the scheduler state.
type SchedulerStatus struct {
	Running      bool
	Interval     time.Duration
	LastBackup   time.Time
	NextBackup   time.Time
	BackupCount  int
	FailureCount int
	LastError    error
}

// Status returns a snapshot of the scheduler state.
func (s *BackupScheduler) Status() *SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := &SchedulerStatus{
		Running:      s.running,
		Interval:     s.config.Interval,
		LastBackup:   s.lastBackup,
		BackupCount:  s.backupCount,
		FailureCount: s.failureCount,
		LastError:    s.lastError,
	}
	if s.running && !s.lastBackup.IsZero() {
		status.NextBackup = s.lastBackup.Add(s.config.Interval)
	}
	return status
}

// String renders the status for the CLI.
func (s *SchedulerStatus) String() string {
	if !s.Running {
		return "Backup scheduler: stopped"
	}

	out := "Backup scheduler: running\n"
	out += fmt.Sprintf("  Interval: %s\n", s.Interval)
	out += fmt.Sprintf("  Backups: %d\n", s.BackupCount)
	out += fmt.Sprintf("  Failures: %d\n", s.FailureCount)
	if !s.LastBackup.IsZero() {
		out += fmt.Sprintf("  Last backup: %s\n", s.LastBackup.Format(time.RFC3339))
	}
	if !s.NextBackup.IsZero() {
		out += fmt.Sprintf("  Next backup: %s\n", s.NextBackup.Format(time.RFC3339))
	}
	if s.LastError != nil {
		out += fmt.Sprintf("  Last error: %v\n", s.LastError)
	}
	return out
}

// Package storage persists players, teams and games to SQLite and
// exposes the session, service and repository layers built on top of it.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// DB wraps the SQLite connection pool.
type DB struct {
	conn *sql.DB
}

// Config holds database settings.
type Config struct {
	// Path is the SQLite database file. ":memory:" opens an in-memory
	// database, useful for tests.
	Path string

	// MaxOpenConns caps open connections. Default 25.
	MaxOpenConns int

	// MaxIdleConns caps idle pooled connections. Default 5.
	MaxIdleConns int

	// ConnMaxLifetime bounds how long a connection is reused. Default 5m.
	ConnMaxLifetime time.Duration

	// BusyTimeout is how long a statement waits on a locked database.
	// Default 5s.
	BusyTimeout time.Duration

	// JournalMode is the SQLite journal mode. Default WAL.
	JournalMode string

	// Synchronous is the SQLite synchronous level. Default NORMAL.
	Synchronous string

	// AutoMigrate runs pending schema migrations during Open.
	AutoMigrate bool
}

// DefaultConfig returns a Config with the defaults documented above.
func DefaultConfig(path string) *Config {
	return &Config{
		Path:            path,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		BusyTimeout:     5 * time.Second,
		JournalMode:     "WAL",
		Synchronous:     "NORMAL",
	}
}

// DSN renders the sqlite connection string. Pragmas ride along as
// _pragma parameters so the driver applies them to every pooled
// connection. Foreign keys are always on: cascade deletion of teams
// and games depends on them.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(%s)&_pragma=synchronous(%s)&_pragma=foreign_keys(1)",
		c.Path,
		c.BusyTimeout.Milliseconds(),
		c.JournalMode,
		c.Synchronous,
	)
}

// Open opens the database, configures the pool and verifies the
// connection. With AutoMigrate set it also brings the schema up to
// date first; migrations need exclusive access, so the pool is opened
// only after they finish.
func Open(config *Config) (*DB, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if config.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(config.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	if config.AutoMigrate {
		mgr, err := NewMigrationManager(config.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to create migration manager: %w", err)
		}
		if err := mgr.Up(); err != nil {
			_ = mgr.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		if err := mgr.Close(); err != nil {
			return nil, fmt.Errorf("failed to close migration manager: %w", err)
		}
	}

	conn, err := openPool(config)
	if err != nil {
		return nil, err
	}
	return &DB{conn: conn}, nil
}

func openPool(config *Config) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(config.MaxOpenConns)
	conn.SetMaxIdleConns(config.MaxIdleConns)
	conn.SetConnMaxLifetime(config.ConnMaxLifetime)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Conn returns the underlying sql.DB for raw queries.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping verifies the database connection is alive.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const backupTimeLayout = "20060102_150405"

// BackupManager creates, verifies and restores point-in-time copies of
// the scorebook database file.
type BackupManager struct {
	dbPath string
}

// NewBackupManager returns a backup manager for the database at dbPath.
func NewBackupManager(dbPath string) *BackupManager {
	return &BackupManager{dbPath: dbPath}
}

// BackupConfig controls a single backup run.
type BackupConfig struct {
	// Dir is where the backup lands. Empty means a "backups"
	// subdirectory next to the database file.
	Dir string

	// Name is the backup filename without extension. Empty means a
	// timestamped scorebook_YYYYMMDD_HHMMSS name.
	Name string

	// Verify runs an integrity check on the finished backup.
	Verify bool
}

// DefaultBackupConfig returns a config that writes a timestamped,
// verified backup next to the database.
func DefaultBackupConfig() *BackupConfig {
	return &BackupConfig{Verify: true}
}

// BackupInfo describes one backup file on disk.
type BackupInfo struct {
	Path     string
	Name     string
	Size     int64
	ModTime  time.Time
	Checksum string
}

// Backup writes a consistent copy of the database. It prefers VACUUM
// INTO, which snapshots without an exclusive lock, and falls back to a
// plain file copy on engines that lack it.
func (bm *BackupManager) Backup(config *BackupConfig) (string, error) {
	if config == nil {
		config = DefaultBackupConfig()
	}

	dir := config.Dir
	if dir == "" {
		dir = bm.BackupDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := config.Name
	if name == "" {
		name = "scorebook_" + time.Now().Format(backupTimeLayout)
	}
	backupPath := filepath.Join(dir, name+".db")

	if err := bm.vacuumInto(backupPath); err != nil {
		if copyErr := copyFile(bm.dbPath, backupPath); copyErr != nil {
			return "", fmt.Errorf("failed to back up database: %w", copyErr)
		}
	}

	if config.Verify {
		if err := bm.Verify(backupPath); err != nil {
			_ = os.Remove(backupPath)
			return "", fmt.Errorf("backup verification failed: %w", err)
		}
	}

	return backupPath, nil
}

func (bm *BackupManager) vacuumInto(backupPath string) error {
	source, err := sql.Open("sqlite", bm.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer func() {
		//nolint:errcheck // source is read-only here
		_ = source.Close()
	}()

	if _, err := source.Exec(fmt.Sprintf("VACUUM INTO %q", backupPath)); err != nil {
		return fmt.Errorf("vacuum into failed: %w", err)
	}
	return nil
}

// Restore replaces the current database with the given backup. The
// backup is verified, staged next to the database, and swapped in with
// a rename; the previous database file is kept aside with an .old
// suffix. The caller must have closed its DB handle first.
func (bm *BackupManager) Restore(backupPath string) error {
	if _, err := os.Stat(backupPath); err != nil {
		return fmt.Errorf("backup file not readable: %w", err)
	}
	if err := bm.Verify(backupPath); err != nil {
		return fmt.Errorf("backup verification failed: %w", err)
	}

	tempPath := bm.dbPath + ".restore.tmp"
	if err := copyFile(backupPath, tempPath); err != nil {
		return fmt.Errorf("failed to stage restore: %w", err)
	}
	if err := bm.Verify(tempPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("staged restore verification failed: %w", err)
	}

	if _, err := os.Stat(bm.dbPath); err == nil {
		aside := bm.dbPath + ".old." + time.Now().Format(backupTimeLayout)
		if err := os.Rename(bm.dbPath, aside); err != nil {
			_ = os.Remove(tempPath)
			return fmt.Errorf("failed to set aside current database: %w", err)
		}
	}

	if err := os.Rename(tempPath, bm.dbPath); err != nil {
		return fmt.Errorf("failed to swap in restored database: %w", err)
	}
	return nil
}

// Verify checks that the file at path is a healthy sqlite database.
func (bm *BackupManager) Verify(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open backup as database: %w", err)
	}
	defer func() {
		//nolint:errcheck // verification is read-only
		_ = db.Close()
	}()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping backup database: %w", err)
	}

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("failed to run integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check reported: %s", result)
	}
	return nil
}

// ListBackups returns the .db files in the backup directory, newest
// first, each with its sha256 checksum. An empty dir means the default
// backup directory; a missing directory yields an empty list.
func (bm *BackupManager) ListBackups(dir string) ([]BackupInfo, error) {
	if dir == "" {
		dir = bm.BackupDir()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		checksum, err := fileChecksum(path)
		if err != nil {
			checksum = "unknown"
		}

		backups = append(backups, BackupInfo{
			Path:     path,
			Name:     entry.Name(),
			Size:     info.Size(),
			ModTime:  info.ModTime(),
			Checksum: checksum,
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].ModTime.After(backups[j].ModTime)
	})
	return backups, nil
}

// BackupDir returns the default backup directory, a "backups"
// subdirectory next to the database file.
func (bm *BackupManager) BackupDir() string {
	return filepath.Join(filepath.Dir(bm.dbPath), "backups")
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() {
		//nolint:errcheck // read side
		_ = in.Close()
	}()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("failed to flush %s: %w", dst, err)
	}
	return nil
}

func fileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		//nolint:errcheck // read side
		_ = file.Close()
	}()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

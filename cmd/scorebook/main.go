// Command scorebook is the scorekeeping CLI: it manages the database
// (migrate, backup), records score sheets (import) and prints or
// exports rosters, standings and game logs.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/rlattimer/scorebook/internal/config"
	"github.com/rlattimer/scorebook/internal/storage"
	"github.com/rlattimer/scorebook/internal/version"
)

func main() {
	// A missing .env is fine; explicit environment still applies.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "migrate":
		runMigrationCommand()
	case "backup":
		runBackupCommand()
	case "import":
		runImportCommand()
	case "export":
		runExportCommand()
	case "report":
		runReportCommand()
	case "roster":
		runRosterCommand()
	case "standings":
		runStandingsCommand()
	case "games":
		runGamesCommand()
	case "version":
		fmt.Printf("scorebook %s\n", version.GetVersion())
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Scorebook")
	fmt.Println("=========")
	fmt.Println()
	fmt.Println("Usage: scorebook <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  roster     - List players and their teams")
	fmt.Println("  standings  - Print the league table")
	fmt.Println("  games      - Print a team's game log")
	fmt.Println("  import     - Import score sheet files")
	fmt.Println("  export     - Export games, standings or player summaries")
	fmt.Println("  report     - Render HTML performance charts for a team")
	fmt.Println("  migrate    - Run database migrations")
	fmt.Println("  backup     - Create, verify and restore database backups")
	fmt.Println("  version    - Print the version")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  SCOREBOOK_DB_PATH   Override the database path")
	fmt.Println("                      (default: ~/.scorebook/scorebook.db)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  scorebook migrate up")
	fmt.Println("  scorebook import sheets/saturday.json")
	fmt.Println("  scorebook standings")
	fmt.Println("  scorebook export --type standings --format csv")
	fmt.Println()
}

// getDBPath resolves the database path from SCOREBOOK_DB_PATH, the
// config file, or the default location, and ensures its directory
// exists.
func getDBPath() string {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	cfg.ApplyEnv()

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		log.Fatalf("Error resolving database path: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		log.Fatalf("Error creating database directory: %v", err)
	}
	return dbPath
}

// openService opens the database with migrations applied and returns
// the storage service plus a close function.
func openService() (*storage.Service, func()) {
	dbConfig := storage.DefaultConfig(getDBPath())
	dbConfig.AutoMigrate = true

	db, err := storage.Open(dbConfig)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}

	service := storage.NewService(db)
	return service, func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
}

func runMigrationCommand() {
	if len(os.Args) < 3 {
		printMigrationUsage()
		os.Exit(1)
	}

	mgr, err := storage.NewMigrationManager(getDBPath())
	if err != nil {
		log.Fatalf("Error creating migration manager: %v", err)
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Printf("Error closing migration manager: %v", err)
		}
	}()

	switch os.Args[2] {
	case "up":
		fmt.Println("Applying all pending migrations...")
		if err := mgr.Up(); err != nil {
			log.Fatalf("Error applying migrations: %v", err)
		}
		printMigrationVersion(mgr)

	case "down":
		fmt.Println("Rolling back last migration...")
		if err := mgr.Down(); err != nil {
			log.Fatalf("Error rolling back migration: %v", err)
		}
		printMigrationVersion(mgr)

	case "status", "version":
		version, dirty, err := mgr.Version()
		if err != nil {
			log.Fatalf("Error getting version: %v", err)
		}
		if dirty {
			fmt.Printf("Current version: %d (dirty - migration failed or interrupted)\n", version)
			fmt.Println("Use 'migrate force <version>' to recover")
		} else {
			fmt.Printf("Current version: %d\n", version)
		}

	case "goto":
		if len(os.Args) < 4 {
			fmt.Println("Error: goto command requires a version number")
			fmt.Println("Usage: scorebook migrate goto <version>")
			os.Exit(1)
		}
		version, err := strconv.ParseUint(os.Args[3], 10, 32)
		if err != nil {
			log.Fatalf("Invalid version number: %v", err)
		}
		fmt.Printf("Migrating to version %d...\n", version)
		if err := mgr.Goto(uint(version)); err != nil {
			log.Fatalf("Error migrating to version %d: %v", version, err)
		}
		fmt.Println("Migration successful!")

	case "force":
		if len(os.Args) < 4 {
			fmt.Println("Error: force command requires a version number")
			fmt.Println("Usage: scorebook migrate force <version>")
			os.Exit(1)
		}
		version, err := strconv.Atoi(os.Args[3])
		if err != nil {
			log.Fatalf("Invalid version number: %v", err)
		}
		fmt.Printf("Forcing migration version to %d...\n", version)
		fmt.Println("WARNING: This does not run migrations, only sets the version.")
		if err := mgr.Force(version); err != nil {
			log.Fatalf("Error forcing version: %v", err)
		}
		fmt.Println("Version forced successfully!")

	default:
		fmt.Printf("Unknown migration command: %s\n\n", os.Args[2])
		printMigrationUsage()
		os.Exit(1)
	}
}

func printMigrationVersion(mgr *storage.MigrationManager) {
	version, dirty, err := mgr.Version()
	if err != nil {
		log.Fatalf("Error getting version: %v", err)
	}
	if dirty {
		fmt.Printf("Current version: %d (dirty)\n", version)
	} else {
		fmt.Printf("Current version: %d\n", version)
	}
}

func printMigrationUsage() {
	fmt.Println("Scorebook - Database Migration Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  scorebook migrate <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up                Apply all pending migrations")
	fmt.Println("  down              Rollback the last migration")
	fmt.Println("  status            Show current migration version")
	fmt.Println("  version           Show current migration version (alias for status)")
	fmt.Println("  goto <version>    Migrate to a specific version")
	fmt.Println("  force <version>   Force set migration version (use with caution)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  scorebook migrate up")
	fmt.Println("  scorebook migrate status")
	fmt.Println("  SCOREBOOK_DB_PATH=/tmp/test.db scorebook migrate up")
}

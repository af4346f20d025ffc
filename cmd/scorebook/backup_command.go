package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/rlattimer/scorebook/internal/storage"
)

const backupPasswordEnv = "SCOREBOOK_BACKUP_PASSWORD"

// runBackupCommand handles backup, restore, verify and list commands.
func runBackupCommand() {
	if len(os.Args) < 3 {
		printBackupUsage()
		os.Exit(1)
	}

	dbPath := getDBPath()
	command := os.Args[2]

	// list works without a database; everything else needs one.
	if command != "list" && command != "ls" {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) && command != "restore" {
			log.Fatalf("Database file does not exist: %s", dbPath)
		}
	}

	backupMgr := storage.NewBackupManager(dbPath)

	switch command {
	case "create":
		createFlags := flag.NewFlagSet("create", flag.ExitOnError)
		backupDir := createFlags.String("dir", os.Getenv("SCOREBOOK_BACKUP_DIR"), "Backup directory")
		backupName := createFlags.String("name", "", "Backup name (default: timestamped)")
		encrypt := createFlags.Bool("encrypt", false, "Encrypt backup with "+backupPasswordEnv)
		verify := createFlags.Bool("verify", true, "Verify backup after creation")

		if err := createFlags.Parse(os.Args[3:]); err != nil {
			log.Fatalf("Error parsing flags: %v", err)
		}

		config := storage.DefaultBackupConfig()
		config.Dir = *backupDir
		config.Name = *backupName
		config.Verify = *verify

		var password string
		if *encrypt {
			password = os.Getenv(backupPasswordEnv)
			if password == "" {
				log.Fatalf("Error: %s is not set or empty", backupPasswordEnv)
			}
		}

		fmt.Println("Creating backup...")
		backupPath, err := backupMgr.Backup(config)
		if err != nil {
			log.Fatalf("Error creating backup: %v", err)
		}

		if *encrypt {
			encryptedPath := backupPath + ".enc"
			encConfig := storage.DefaultEncryptionConfig(password)
			if err := storage.EncryptFile(backupPath, encryptedPath, encConfig); err != nil {
				log.Fatalf("Error encrypting backup: %v", err)
			}
			if err := os.Remove(backupPath); err != nil {
				log.Printf("Warning: failed to remove plaintext backup: %v", err)
			}
			backupPath = encryptedPath
		}

		fmt.Printf("Backup created: %s\n", backupPath)

	case "restore":
		restoreFlags := flag.NewFlagSet("restore", flag.ExitOnError)
		if err := restoreFlags.Parse(os.Args[3:]); err != nil {
			log.Fatalf("Error parsing flags: %v", err)
		}
		if restoreFlags.NArg() < 1 {
			fmt.Println("Error: restore requires a backup file path")
			fmt.Println("Usage: scorebook backup restore <file>")
			os.Exit(1)
		}
		backupPath := restoreFlags.Arg(0)

		encrypted, err := storage.IsEncrypted(backupPath)
		if err != nil {
			log.Fatalf("Error reading backup file: %v", err)
		}
		if encrypted {
			password := os.Getenv(backupPasswordEnv)
			if password == "" {
				log.Fatalf("Error: backup is encrypted and %s is not set", backupPasswordEnv)
			}
			decryptedPath := filepath.Join(os.TempDir(), filepath.Base(backupPath)+".dec")
			encConfig := storage.DefaultEncryptionConfig(password)
			if err := storage.DecryptFile(backupPath, decryptedPath, encConfig); err != nil {
				log.Fatalf("Error decrypting backup: %v", err)
			}
			defer func() {
				if err := os.Remove(decryptedPath); err != nil {
					log.Printf("Warning: failed to remove decrypted temp file: %v", err)
				}
			}()
			backupPath = decryptedPath
		}

		fmt.Printf("Restoring %s...\n", restoreFlags.Arg(0))
		if err := backupMgr.Restore(backupPath); err != nil {
			log.Fatalf("Error restoring backup: %v", err)
		}
		fmt.Println("Database restored. The previous database was kept with an .old suffix.")

	case "verify":
		if len(os.Args) < 4 {
			fmt.Println("Error: verify requires a backup file path")
			fmt.Println("Usage: scorebook backup verify <file>")
			os.Exit(1)
		}
		if err := backupMgr.Verify(os.Args[3]); err != nil {
			log.Fatalf("Backup verification failed: %v", err)
		}
		fmt.Println("Backup verified successfully.")

	case "list", "ls":
		listFlags := flag.NewFlagSet("list", flag.ExitOnError)
		backupDir := listFlags.String("dir", os.Getenv("SCOREBOOK_BACKUP_DIR"), "Backup directory")
		if err := listFlags.Parse(os.Args[3:]); err != nil {
			log.Fatalf("Error parsing flags: %v", err)
		}

		dir := *backupDir
		if dir == "" {
			dir = backupMgr.BackupDir()
		}

		backups, err := backupMgr.ListBackups(dir)
		if err != nil {
			log.Fatalf("Error listing backups: %v", err)
		}
		if len(backups) == 0 {
			fmt.Printf("No backups found in %s\n", dir)
			return
		}

		fmt.Printf("Backups in %s:\n\n", dir)
		for _, b := range backups {
			fmt.Printf("  %s\n", b.Name)
			fmt.Printf("    Created:  %s\n", b.ModTime.Format("2006-01-02 15:04:05"))
			fmt.Printf("    Size:     %.1f KB\n", float64(b.Size)/1024)
			fmt.Printf("    Checksum: %s\n", b.Checksum)
			fmt.Println()
		}

	default:
		fmt.Printf("Unknown backup command: %s\n\n", command)
		printBackupUsage()
		os.Exit(1)
	}
}

func printBackupUsage() {
	fmt.Println("Scorebook - Backup Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  scorebook backup <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  create [--dir d] [--name n] [--encrypt]   Create a backup")
	fmt.Println("  restore <file>                            Restore a backup")
	fmt.Println("  verify <file>                             Verify a backup file")
	fmt.Println("  list [--dir d]                            List backups")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Printf("  %s   Password for --encrypt and encrypted restores\n", backupPasswordEnv)
	fmt.Println("  SCOREBOOK_BACKUP_DIR        Default backup directory")
	fmt.Println()
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rlattimer/scorebook/internal/importer"
)

// runImportCommand records one or more score sheet files. A directory
// argument imports every .json file in it.
func runImportCommand() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: scorebook import <file|dir> [...]")
		os.Exit(1)
	}

	service, closeDB := openService()
	defer closeDB()

	imp := importer.New(service)
	ctx := context.Background()

	var paths []string
	for _, arg := range os.Args[2:] {
		info, err := os.Stat(arg)
		if err != nil {
			log.Fatalf("Error reading %s: %v", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			log.Fatalf("Error reading directory %s: %v", arg, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
				paths = append(paths, filepath.Join(arg, entry.Name()))
			}
		}
	}

	if len(paths) == 0 {
		log.Fatal("No score sheets found")
	}

	imported, failed := 0, 0
	for _, path := range paths {
		result, err := imp.ImportFile(ctx, path)
		if err != nil {
			fmt.Printf("FAILED  %s: %v\n", path, err)
			failed++
			continue
		}
		created := ""
		if result.PlayerCreated || result.TeamCreated {
			created = " (created"
			if result.PlayerCreated {
				created += " player"
			}
			if result.TeamCreated {
				created += " team"
			}
			created += ")"
		}
		fmt.Printf("OK      %s: %d game(s)%s\n", path, result.GamesImported, created)
		imported++
	}

	fmt.Printf("\nImported %d sheet(s), %d failed\n", imported, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

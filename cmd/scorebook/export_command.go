package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/rlattimer/scorebook/internal/charts"
	"github.com/rlattimer/scorebook/internal/config"
	"github.com/rlattimer/scorebook/internal/export"
)

// runExportCommand writes games, standings or player summaries to a
// CSV or JSON file.
func runExportCommand() {
	exportFlags := flag.NewFlagSet("export", flag.ExitOnError)
	exportType := exportFlags.String("type", "standings", "What to export: games, standings, players")
	format := exportFlags.String("format", "csv", "Output format: csv or json")
	output := exportFlags.String("output", "", "Output file (default: timestamped name in the export dir)")
	teamID := exportFlags.String("team", "", "Team ID (required for --type games)")
	pretty := exportFlags.Bool("pretty", true, "Indent JSON output")
	overwrite := exportFlags.Bool("overwrite", false, "Replace the output file if it exists")

	if err := exportFlags.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}

	var exportFormat export.Format
	switch *format {
	case "csv":
		exportFormat = export.FormatCSV
	case "json":
		exportFormat = export.FormatJSON
	default:
		log.Fatalf("Invalid format: %s (must be csv or json)", *format)
	}

	filePath := *output
	if filePath == "" {
		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
		cfg.ApplyEnv()
		filePath = filepath.Join(cfg.Export.Dir, export.GenerateFilename(*exportType, exportFormat))
	}

	opts := export.Options{
		Format:     exportFormat,
		FilePath:   filePath,
		PrettyJSON: *pretty,
		Overwrite:  *overwrite,
	}

	service, closeDB := openService()
	defer closeDB()
	ctx := context.Background()

	var err error
	switch *exportType {
	case "games":
		if *teamID == "" {
			log.Fatal("Error: --team is required for --type games")
		}
		err = export.ExportTeamGames(ctx, service, *teamID, opts)
	case "standings":
		err = export.ExportStandings(ctx, service, opts)
	case "players":
		err = export.ExportPlayerSummaries(ctx, service, opts)
	default:
		log.Fatalf("Invalid export type: %s (must be games, standings or players)", *exportType)
	}
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	fmt.Printf("Exported %s to %s\n", *exportType, filePath)
}

// runReportCommand renders HTML charts for one team.
func runReportCommand() {
	reportFlags := flag.NewFlagSet("report", flag.ExitOnError)
	teamID := reportFlags.String("team", "", "Team ID (required)")
	outDir := reportFlags.String("dir", "", "Output directory (default: <export dir>/reports/<team>)")

	if err := reportFlags.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}
	if *teamID == "" {
		log.Fatal("Error: --team is required")
	}

	service, closeDB := openService()
	defer closeDB()
	ctx := context.Background()

	team, err := service.GetTeamWithGames(ctx, *teamID)
	if err != nil {
		log.Fatalf("Error loading team: %v", err)
	}

	dir := *outDir
	if dir == "" {
		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
		cfg.ApplyEnv()
		dir = filepath.Join(cfg.Export.Dir, "reports", team.ID)
	}

	report, err := charts.RenderTeamReport(team, dir)
	if err != nil {
		log.Fatalf("Error rendering report: %v", err)
	}

	fmt.Printf("Report for %s (%s):\n", team.Name, team.RecordDisplay())
	fmt.Printf("  Record chart:       %s\n", report.RecordChart)
	fmt.Printf("  Differential chart: %s\n", report.DifferentialChart)
}

package charts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rlattimer/scorebook/internal/storage/models"
)

func gameOn(day int, teamScore, opponentScore int) *models.Game {
	date := time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC)
	return &models.Game{Date: &date, TeamScore: teamScore, OpponentScore: opponentScore}
}

func TestBuildRecordSeries(t *testing.T) {
	team := &models.Team{
		Name: "Tigers",
		Games: []*models.Game{
			// Out of order on purpose; the series is chronological.
			gameOn(10, 3, 1),
			gameOn(1, 0, 2),
			gameOn(5, 2, 2),
		},
	}

	series := BuildRecordSeries(team)
	if len(series) != 2 {
		t.Fatalf("Expected 2 series, got %d", len(series))
	}

	wins, losses := series[0], series[1]
	if wins.Name != "Wins" || losses.Name != "Losses" {
		t.Fatalf("Unexpected series names: %s, %s", wins.Name, losses.Name)
	}
	if len(wins.Points) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(wins.Points))
	}

	// Loss on the 1st, tie on the 5th, win on the 10th.
	if wins.Points[0].Value != 0 || losses.Points[0].Value != 1 {
		t.Errorf("Unexpected first point: wins=%v losses=%v", wins.Points[0].Value, losses.Points[0].Value)
	}
	if wins.Points[1].Value != 0 || losses.Points[1].Value != 1 {
		t.Errorf("Tie should not move either count")
	}
	if wins.Points[2].Value != 1 || losses.Points[2].Value != 1 {
		t.Errorf("Unexpected final point: wins=%v losses=%v", wins.Points[2].Value, losses.Points[2].Value)
	}
	if wins.Points[0].Label != "Mar 1" {
		t.Errorf("Unexpected label: %q", wins.Points[0].Label)
	}
}

func TestBuildDifferentialPoints(t *testing.T) {
	team := &models.Team{
		Games: []*models.Game{
			gameOn(1, 10, 7),
			gameOn(2, 3, 9),
		},
	}

	points := BuildDifferentialPoints(team)
	if len(points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(points))
	}
	if points[0].Value != 3 || points[1].Value != -6 {
		t.Errorf("Unexpected values: %v, %v", points[0].Value, points[1].Value)
	}
}

func TestRenderTeamReport(t *testing.T) {
	dir := t.TempDir()
	team := &models.Team{
		Name:  "Tigers",
		Games: []*models.Game{gameOn(1, 2, 1), gameOn(2, 1, 4)},
	}

	report, err := RenderTeamReport(team, filepath.Join(dir, "report"))
	if err != nil {
		t.Fatalf("RenderTeamReport failed: %v", err)
	}

	for _, path := range []string{report.RecordChart, report.DifferentialChart} {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Chart file not written: %v", err)
		}
		if !strings.Contains(string(data), "echarts") {
			t.Errorf("Chart file %s does not look like an echarts page", path)
		}
	}
}

func TestRenderTeamReportNoGames(t *testing.T) {
	if _, err := RenderTeamReport(&models.Team{Name: "Empty"}, t.TempDir()); err == nil {
		t.Error("Expected error for a team with no games")
	}
}

package charts

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rlattimer/scorebook/internal/stats"
	"github.com/rlattimer/scorebook/internal/storage/models"
)

// Report holds the paths of the chart files written for one team.
type Report struct {
	RecordChart       string
	DifferentialChart string
}

// Undated games are excluded by ChronologicalGames, so every plotted
// game has a date to label.
func gameLabel(game *models.Game) string {
	return game.Date.Format("Jan 2")
}

// BuildRecordSeries returns cumulative win and loss counts over the
// team's games in chronological order.
func BuildRecordSeries(team *models.Team) []SeriesData {
	games := stats.ChronologicalGames(team.Games)

	wins := SeriesData{Name: "Wins", Points: make([]DataPoint, 0, len(games))}
	losses := SeriesData{Name: "Losses", Points: make([]DataPoint, 0, len(games))}

	winCount, lossCount := 0, 0
	for _, game := range games {
		if game.IsWin() {
			winCount++
		} else if game.IsLoss() {
			lossCount++
		}
		label := gameLabel(game)
		wins.Points = append(wins.Points, DataPoint{Label: label, Value: float64(winCount)})
		losses.Points = append(losses.Points, DataPoint{Label: label, Value: float64(lossCount)})
	}

	return []SeriesData{wins, losses}
}

// BuildDifferentialPoints returns the per-game point differential in
// chronological order. Positive bars are wins, negative losses.
func BuildDifferentialPoints(team *models.Team) []DataPoint {
	games := stats.ChronologicalGames(team.Games)

	points := make([]DataPoint, 0, len(games))
	for _, game := range games {
		points = append(points, DataPoint{
			Label: gameLabel(game),
			Value: float64(game.TeamScore - game.OpponentScore),
		})
	}
	return points
}

// RenderTeamReport writes the record and differential charts for one
// team into dir. The team must have its games loaded.
func RenderTeamReport(team *models.Team, dir string) (*Report, error) {
	if len(team.Games) == 0 {
		return nil, fmt.Errorf("no games recorded for team %s", team.Name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	report := &Report{
		RecordChart:       filepath.Join(dir, "record.html"),
		DifferentialChart: filepath.Join(dir, "differential.html"),
	}

	recordConfig := DefaultChartConfig()
	recordConfig.Title = fmt.Sprintf("%s Record", team.Name)
	recordConfig.Subtitle = fmt.Sprintf("Cumulative wins and losses (%s)", team.RecordDisplay())
	if err := RenderMultiLineChart(BuildRecordSeries(team), recordConfig, report.RecordChart); err != nil {
		return nil, err
	}

	diffConfig := DefaultChartConfig()
	diffConfig.Title = fmt.Sprintf("%s Point Differential", team.Name)
	diffConfig.Subtitle = "Per-game margin"
	diffConfig.SeriesName = "Margin"
	if err := RenderBarChart(BuildDifferentialPoints(team), diffConfig, report.DifferentialChart); err != nil {
		return nil, err
	}

	return report, nil
}

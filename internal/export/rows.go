package export

import (
	"context"
	"fmt"

	"github.com/rlattimer/scorebook/internal/stats"
	"github.com/rlattimer/scorebook/internal/storage"
	"github.com/rlattimer/scorebook/internal/storage/models"
)

// GameRow is one exported game from the owning team's point of view.
type GameRow struct {
	Team          string `csv:"team" json:"team"`
	Date          string `csv:"date" json:"date"` // ISO date, empty when unscheduled
	Opponent      string `csv:"opponent" json:"opponent"`
	Location      string `csv:"location" json:"location"`
	Result        string `csv:"result" json:"result"` // "W", "L" or "T"
	TeamScore     int    `csv:"team_score" json:"team_score"`
	OpponentScore int    `csv:"opponent_score" json:"opponent_score"`
	Score         string `csv:"score" json:"score"`
	Notes         string `csv:"notes" json:"notes"`
}

// StandingRow is one exported league-table row.
type StandingRow struct {
	Rank              int     `csv:"rank" json:"rank"`
	Team              string  `csv:"team" json:"team"`
	GamesPlayed       int     `csv:"games_played" json:"games_played"`
	Wins              int     `csv:"wins" json:"wins"`
	Losses            int     `csv:"losses" json:"losses"`
	Ties              int     `csv:"ties" json:"ties"`
	Record            string  `csv:"record" json:"record"`
	WinPercentage     float64 `csv:"win_percentage" json:"win_percentage"`
	PointDifferential int     `csv:"point_differential" json:"point_differential"`
}

// PlayerSummaryRow aggregates one player's record across all teams.
type PlayerSummaryRow struct {
	Player            string `csv:"player" json:"player"`
	Sport             string `csv:"sport" json:"sport"`
	Teams             int    `csv:"teams" json:"teams"`
	GamesPlayed       int    `csv:"games_played" json:"games_played"`
	Wins              int    `csv:"wins" json:"wins"`
	Losses            int    `csv:"losses" json:"losses"`
	Ties              int    `csv:"ties" json:"ties"`
	Record            string `csv:"record" json:"record"`
	PointDifferential int    `csv:"point_differential" json:"point_differential"`
}

// BuildGameRows flattens a team's games into export rows, in display
// order.
func BuildGameRows(team *models.Team) []*GameRow {
	rows := make([]*GameRow, 0, len(team.Games))
	for _, game := range team.Games {
		date := ""
		if game.Date != nil {
			date = game.Date.Format("2006-01-02")
		}
		rows = append(rows, &GameRow{
			Team:          team.Name,
			Date:          date,
			Opponent:      game.Opponent,
			Location:      game.Location,
			Result:        game.ResultCode(),
			TeamScore:     game.TeamScore,
			OpponentScore: game.OpponentScore,
			Score:         game.ScoreDisplay(),
			Notes:         game.Notes,
		})
	}
	return rows
}

// BuildStandingRows converts ranked standings into export rows.
func BuildStandingRows(standings []*stats.Standing) []*StandingRow {
	rows := make([]*StandingRow, 0, len(standings))
	for _, s := range standings {
		rows = append(rows, &StandingRow{
			Rank:              s.Rank,
			Team:              s.TeamName,
			GamesPlayed:       s.GamesPlayed,
			Wins:              s.Wins,
			Losses:            s.Losses,
			Ties:              s.Ties,
			Record:            s.Record,
			WinPercentage:     s.WinPercentage,
			PointDifferential: s.PointDifferential,
		})
	}
	return rows
}

// BuildPlayerSummaryRow totals a player's teams. Teams must have their
// games loaded.
func BuildPlayerSummaryRow(player *models.Player, teams []*models.Team) *PlayerSummaryRow {
	row := &PlayerSummaryRow{
		Player: player.Name,
		Sport:  player.Sport,
		Teams:  len(teams),
	}
	for _, team := range teams {
		row.GamesPlayed += team.GamesPlayed()
		row.Wins += team.Wins()
		row.Losses += team.Losses()
		row.Ties += team.Ties()
		row.PointDifferential += team.PointDifferential()
	}
	row.Record = fmt.Sprintf("%d-%d-%d", row.Wins, row.Losses, row.Ties)
	return row
}

// ExportTeamGames exports one team's games to the configured format.
func ExportTeamGames(ctx context.Context, service *storage.Service, teamID string, opts Options) error {
	team, err := service.GetTeamWithGames(ctx, teamID)
	if err != nil {
		return fmt.Errorf("failed to load team: %w", err)
	}

	rows := BuildGameRows(team)
	if len(rows) == 0 {
		return fmt.Errorf("no games recorded for team %s", team.Name)
	}
	return NewExporter(opts).Export(rows)
}

// ExportStandings exports the full league table.
func ExportStandings(ctx context.Context, service *storage.Service, opts Options) error {
	teams, err := service.ListAllTeamsWithGames(ctx)
	if err != nil {
		return fmt.Errorf("failed to load teams: %w", err)
	}
	if len(teams) == 0 {
		return fmt.Errorf("no teams to export")
	}
	return NewExporter(opts).Export(BuildStandingRows(stats.Standings(teams)))
}

// ExportPlayerSummaries exports one aggregate row per player.
func ExportPlayerSummaries(ctx context.Context, service *storage.Service, opts Options) error {
	players, err := service.ListPlayers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load players: %w", err)
	}
	if len(players) == 0 {
		return fmt.Errorf("no players to export")
	}

	rows := make([]*PlayerSummaryRow, 0, len(players))
	for _, player := range players {
		teams, err := service.ListTeamsWithGames(ctx, player.ID)
		if err != nil {
			return fmt.Errorf("failed to load teams for %s: %w", player.Name, err)
		}
		rows = append(rows, BuildPlayerSummaryRow(player, teams))
	}
	return NewExporter(opts).Export(rows)
}

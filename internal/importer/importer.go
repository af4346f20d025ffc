package importer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/rlattimer/scorebook/internal/storage"
	"github.com/rlattimer/scorebook/internal/storage/models"
)

// GameRecorder is the slice of the storage service the importer needs.
type GameRecorder interface {
	FindPlayersByName(ctx context.Context, name string) ([]*models.Player, error)
	CreatePlayer(ctx context.Context, name, color, sport string) (*models.Player, error)
	ListTeams(ctx context.Context, playerID string) ([]*models.Team, error)
	CreateTeam(ctx context.Context, playerID, name, color, sport string) (*models.Team, error)
	RecordGame(ctx context.Context, teamID string, in storage.GameInput) (*models.Game, error)
}

// Importer records score sheets through the storage service.
type Importer struct {
	service GameRecorder
}

// New creates an importer over the given service.
func New(service GameRecorder) *Importer {
	return &Importer{service: service}
}

// Result summarizes one imported sheet.
type Result struct {
	PlayerID      string
	PlayerCreated bool
	TeamID        string
	TeamCreated   bool
	GamesImported int
}

// ImportFile reads one score sheet and records its games. The sheet is
// validated before any write, so a rejected file leaves no partial
// state behind. Players and teams are matched by exact name and
// created when missing.
func (imp *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	sheet, err := ReadSheet(path)
	if err != nil {
		return nil, err
	}
	return imp.importSheet(ctx, sheet)
}

func (imp *Importer) importSheet(ctx context.Context, sheet *ScoreSheet) (*Result, error) {
	result := &Result{}

	player, err := imp.findPlayer(ctx, sheet.Player)
	if err != nil {
		return nil, err
	}
	if player == nil {
		player, err = imp.service.CreatePlayer(ctx, sheet.Player, "", sheet.Sport)
		if err != nil {
			return nil, fmt.Errorf("failed to create player %q: %w", sheet.Player, err)
		}
		result.PlayerCreated = true
	}
	result.PlayerID = player.ID

	team, err := imp.findTeam(ctx, player.ID, sheet.Team)
	if err != nil {
		return nil, err
	}
	if team == nil {
		team, err = imp.service.CreateTeam(ctx, player.ID, sheet.Team, sheet.Color, sheet.Sport)
		if err != nil {
			return nil, fmt.Errorf("failed to create team %q: %w", sheet.Team, err)
		}
		result.TeamCreated = true
	}
	result.TeamID = team.ID

	for i, row := range sheet.Games {
		in, err := row.Input()
		if err != nil {
			return result, fmt.Errorf("game %d: %w", i+1, err)
		}
		if _, err := imp.service.RecordGame(ctx, team.ID, in); err != nil {
			return result, fmt.Errorf("game %d: %w", i+1, err)
		}
		result.GamesImported++
	}

	log.Info().
		Str("player", sheet.Player).
		Str("team", sheet.Team).
		Int("games", result.GamesImported).
		Bool("player_created", result.PlayerCreated).
		Bool("team_created", result.TeamCreated).
		Msg("imported score sheet")

	return result, nil
}

func (imp *Importer) findPlayer(ctx context.Context, name string) (*models.Player, error) {
	players, err := imp.service.FindPlayersByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up player %q: %w", name, err)
	}
	if len(players) == 0 {
		return nil, nil
	}
	// Duplicate names are legal; sheets land on the first in display order.
	return players[0], nil
}

func (imp *Importer) findTeam(ctx context.Context, playerID, name string) (*models.Team, error) {
	teams, err := imp.service.ListTeams(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	for _, team := range teams {
		if team.Name == name {
			return team, nil
		}
	}
	return nil, nil
}

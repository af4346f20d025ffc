// Package handlers implements the HTTP handlers for the scorebook API.
// Each handler consumes the storage service through a narrow interface
// so tests can swap in fakes, and maps domain models onto wire DTOs.
package handlers

import (
	"time"

	"github.com/rlattimer/scorebook/internal/storage/models"
)

// GameResponse is the wire representation of a game. The scoreboard
// image is never inlined; clients fetch it from the image endpoint when
// has_scoreboard_image is set.
type GameResponse struct {
	ID                 string     `json:"id"`
	TeamID             string     `json:"team_id"`
	Date               *time.Time `json:"date"`
	Location           string     `json:"location,omitempty"`
	Opponent           string     `json:"opponent"`
	TeamScore          int        `json:"team_score"`
	OpponentScore      int        `json:"opponent_score"`
	Result             string     `json:"result"`
	Score              string     `json:"score"`
	Notes              string     `json:"notes,omitempty"`
	HasScoreboardImage bool       `json:"has_scoreboard_image"`
	DisplayOrder       int        `json:"display_order"`
	LastModified       time.Time  `json:"last_modified"`
	CreatedAt          time.Time  `json:"created_at"`
}

// NewGameResponse converts a game model to its wire form.
func NewGameResponse(g *models.Game) GameResponse {
	return GameResponse{
		ID:                 g.ID,
		TeamID:             g.TeamID,
		Date:               g.Date,
		Location:           g.Location,
		Opponent:           g.Opponent,
		TeamScore:          g.TeamScore,
		OpponentScore:      g.OpponentScore,
		Result:             g.ResultCode(),
		Score:              g.ScoreDisplay(),
		Notes:              g.Notes,
		HasScoreboardImage: len(g.ScoreboardImage) > 0,
		DisplayOrder:       g.DisplayOrder,
		LastModified:       g.LastModified,
		CreatedAt:          g.CreatedAt,
	}
}

// NewGameResponses converts a slice of games, returning an empty slice
// rather than nil so the JSON encodes as [].
func NewGameResponses(games []*models.Game) []GameResponse {
	out := make([]GameResponse, 0, len(games))
	for _, g := range games {
		out = append(out, NewGameResponse(g))
	}
	return out
}

// TeamResponse is the wire representation of a team. The record fields
// are derived from the loaded games; when games were not loaded they
// report zero and games is omitted.
type TeamResponse struct {
	ID                string         `json:"id"`
	PlayerID          string         `json:"player_id"`
	Name              string         `json:"name"`
	Color             string         `json:"color,omitempty"`
	Sport             string         `json:"sport,omitempty"`
	DisplayOrder      int            `json:"display_order"`
	GamesPlayed       int            `json:"games_played"`
	Wins              int            `json:"wins"`
	Losses            int            `json:"losses"`
	Ties              int            `json:"ties"`
	Record            string         `json:"record"`
	WinPercentage     float64        `json:"win_percentage"`
	PointDifferential int            `json:"point_differential"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	Games             []GameResponse `json:"games,omitempty"`
}

// NewTeamResponse converts a team model to its wire form. Games are
// included when includeGames is set and the team's games were loaded.
func NewTeamResponse(t *models.Team, includeGames bool) TeamResponse {
	resp := TeamResponse{
		ID:                t.ID,
		PlayerID:          t.PlayerID,
		Name:              t.Name,
		Color:             t.Color,
		Sport:             t.Sport,
		DisplayOrder:      t.DisplayOrder,
		GamesPlayed:       t.GamesPlayed(),
		Wins:              t.Wins(),
		Losses:            t.Losses(),
		Ties:              t.Ties(),
		Record:            t.RecordDisplay(),
		WinPercentage:     t.WinPercentage(),
		PointDifferential: t.PointDifferential(),
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
	if includeGames {
		resp.Games = NewGameResponses(t.Games)
	}
	return resp
}

// NewTeamResponses converts a slice of teams, returning an empty slice
// rather than nil.
func NewTeamResponses(teams []*models.Team, includeGames bool) []TeamResponse {
	out := make([]TeamResponse, 0, len(teams))
	for _, t := range teams {
		out = append(out, NewTeamResponse(t, includeGames))
	}
	return out
}

// PlayerResponse is the wire representation of a player.
type PlayerResponse struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Color        string         `json:"color,omitempty"`
	Sport        string         `json:"sport,omitempty"`
	DisplayOrder int            `json:"display_order"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Teams        []TeamResponse `json:"teams,omitempty"`
}

// NewPlayerResponse converts a player model to its wire form. Teams are
// included when includeTeams is set and the player's teams were loaded.
func NewPlayerResponse(p *models.Player, includeTeams bool) PlayerResponse {
	resp := PlayerResponse{
		ID:           p.ID,
		Name:         p.Name,
		Color:        p.Color,
		Sport:        p.Sport,
		DisplayOrder: p.DisplayOrder,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if includeTeams {
		resp.Teams = NewTeamResponses(p.Teams, true)
	}
	return resp
}

// NewPlayerResponses converts a slice of players, returning an empty
// slice rather than nil.
func NewPlayerResponses(players []*models.Player) []PlayerResponse {
	out := make([]PlayerResponse, 0, len(players))
	for _, p := range players {
		out = append(out, NewPlayerResponse(p, false))
	}
	return out
}

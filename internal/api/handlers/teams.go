package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rlattimer/scorebook/internal/api/response"
	"github.com/rlattimer/scorebook/internal/api/websocket"
	"github.com/rlattimer/scorebook/internal/stats"
	"github.com/rlattimer/scorebook/internal/storage"
	"github.com/rlattimer/scorebook/internal/storage/models"
)

// TeamStore is the slice of the storage service the team handler needs.
type TeamStore interface {
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	GetTeamWithGames(ctx context.Context, id string) (*models.Team, error)
	UpdateTeam(ctx context.Context, team *models.Team) error
	DeleteTeam(ctx context.Context, id string) error
	FindTeamsByName(ctx context.Context, name string) ([]*models.Team, error)
	ListAllTeamsWithGames(ctx context.Context) ([]*models.Team, error)
	ListGames(ctx context.Context, teamID string) ([]*models.Game, error)
	RecordGame(ctx context.Context, teamID string, in storage.GameInput) (*models.Game, error)
}

// TeamHandler handles team-related API requests.
type TeamHandler struct {
	store TeamStore
	hub   Broadcaster
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(store TeamStore, hub Broadcaster) *TeamHandler {
	return &TeamHandler{store: store, hub: hub}
}

// ListTeams returns every team with its record. A q parameter narrows
// the list to teams whose name contains the query.
func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	if q := r.URL.Query().Get("q"); q != "" {
		found, err := h.store.FindTeamsByName(r.Context(), q)
		if err != nil {
			response.InternalError(w, err)
			return
		}
		// Search returns bare rows; reload each hit with games so the
		// records are populated.
		teams := make([]*models.Team, 0, len(found))
		for _, t := range found {
			team, err := h.store.GetTeamWithGames(r.Context(), t.ID)
			if err != nil {
				response.FromError(w, err)
				return
			}
			teams = append(teams, team)
		}
		response.Success(w, NewTeamResponses(teams, false))
		return
	}

	teams, err := h.store.ListAllTeamsWithGames(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, NewTeamResponses(teams, false))
}

// GetTeam returns a team with its games and record.
func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")
	if teamID == "" {
		response.BadRequest(w, errors.New("team ID is required"))
		return
	}

	team, err := h.store.GetTeamWithGames(r.Context(), teamID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, NewTeamResponse(team, true))
}

// UpdateTeamRequest represents a request to update a team. Omitted
// fields keep their current values.
type UpdateTeamRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
	Sport *string `json:"sport"`
}

// UpdateTeam updates a team's editable fields.
func (h *TeamHandler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")
	if teamID == "" {
		response.BadRequest(w, errors.New("team ID is required"))
		return
	}

	var req UpdateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	team, err := h.store.GetTeam(r.Context(), teamID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	if req.Name != nil {
		team.Name = *req.Name
	}
	if req.Color != nil {
		team.Color = *req.Color
	}
	if req.Sport != nil {
		team.Sport = *req.Sport
	}

	if err := h.store.UpdateTeam(r.Context(), team); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, NewTeamResponse(team, false))
}

// DeleteTeam removes a team along with all its games.
func (h *TeamHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")
	if teamID == "" {
		response.BadRequest(w, errors.New("team ID is required"))
		return
	}

	if err := h.store.DeleteTeam(r.Context(), teamID); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}

// ListGames returns the team's games in display order.
func (h *TeamHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")
	if teamID == "" {
		response.BadRequest(w, errors.New("team ID is required"))
		return
	}

	if _, err := h.store.GetTeam(r.Context(), teamID); err != nil {
		response.FromError(w, err)
		return
	}

	games, err := h.store.ListGames(r.Context(), teamID)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, NewGameResponses(games))
}

// RecordGameRequest represents a request to record a played game.
type RecordGameRequest struct {
	Date          string `json:"date"`
	Location      string `json:"location"`
	Opponent      string `json:"opponent"`
	TeamScore     int    `json:"team_score"`
	OpponentScore int    `json:"opponent_score"`
	Notes         string `json:"notes"`
}

// Input converts the request to a storage GameInput. An unparseable
// date is passed through as nil and rejected by validation.
func (req RecordGameRequest) Input() storage.GameInput {
	in := storage.GameInput{
		Location:      req.Location,
		Opponent:      req.Opponent,
		TeamScore:     req.TeamScore,
		OpponentScore: req.OpponentScore,
		Notes:         req.Notes,
	}
	if date, err := parseGameDate(req.Date); err == nil {
		in.Date = &date
	}
	return in
}

// parseGameDate accepts a calendar date or an RFC 3339 timestamp.
func parseGameDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// RecordGame appends a game to the team and notifies scoreboard
// clients.
func (h *TeamHandler) RecordGame(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")
	if teamID == "" {
		response.BadRequest(w, errors.New("team ID is required"))
		return
	}

	var req RecordGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	game, err := h.store.RecordGame(r.Context(), teamID, req.Input())
	if err != nil {
		response.FromError(w, err)
		return
	}

	broadcast(h.hub, websocket.EventGameRecorded, NewGameResponse(game))
	response.Created(w, NewGameResponse(game))
}

// TeamStatsResponse summarizes a team's performance.
type TeamStatsResponse struct {
	TeamID            string  `json:"team_id"`
	TeamName          string  `json:"team_name"`
	GamesPlayed       int     `json:"games_played"`
	Record            string  `json:"record"`
	WinPercentage     float64 `json:"win_percentage"`
	PointDifferential int     `json:"point_differential"`
	AverageScore      float64 `json:"average_score"`
	CurrentStreak     string  `json:"current_streak"`
	LongestWinStreak  int     `json:"longest_win_streak"`
	LongestLossStreak int     `json:"longest_loss_streak"`
	RecentForm        string  `json:"recent_form"`
}

// GetTeamStats returns derived statistics for a team.
func (h *TeamHandler) GetTeamStats(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")
	if teamID == "" {
		response.BadRequest(w, errors.New("team ID is required"))
		return
	}

	team, err := h.store.GetTeamWithGames(r.Context(), teamID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	streaks := stats.TeamStreaks(team)
	response.Success(w, TeamStatsResponse{
		TeamID:            team.ID,
		TeamName:          team.Name,
		GamesPlayed:       team.GamesPlayed(),
		Record:            team.RecordDisplay(),
		WinPercentage:     team.WinPercentage(),
		PointDifferential: team.PointDifferential(),
		AverageScore:      team.AverageScore(),
		CurrentStreak:     stats.FormatCurrentStreak(streaks.CurrentStreak),
		LongestWinStreak:  streaks.LongestWinStreak,
		LongestLossStreak: streaks.LongestLossStreak,
		RecentForm:        stats.RecentForm(team.Games, models.RecentGamesLimit),
	})
}

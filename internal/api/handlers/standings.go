package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rlattimer/scorebook/internal/api/response"
	"github.com/rlattimer/scorebook/internal/stats"
	"github.com/rlattimer/scorebook/internal/storage/models"
)

// StandingsStore is the slice of the storage service the standings
// handler needs.
type StandingsStore interface {
	GetPlayer(ctx context.Context, id string) (*models.Player, error)
	ListAllTeamsWithGames(ctx context.Context) ([]*models.Team, error)
	ListTeamsWithGames(ctx context.Context, playerID string) ([]*models.Team, error)
}

// StandingsHandler handles league table requests.
type StandingsHandler struct {
	store StandingsStore
}

// NewStandingsHandler creates a new StandingsHandler.
func NewStandingsHandler(store StandingsStore) *StandingsHandler {
	return &StandingsHandler{store: store}
}

// StandingResponse is one ranked row of the league table.
type StandingResponse struct {
	Rank              int     `json:"rank"`
	TeamID            string  `json:"team_id"`
	TeamName          string  `json:"team_name"`
	PlayerID          string  `json:"player_id"`
	GamesPlayed       int     `json:"games_played"`
	Wins              int     `json:"wins"`
	Losses            int     `json:"losses"`
	Ties              int     `json:"ties"`
	WinPercentage     float64 `json:"win_percentage"`
	PointDifferential int     `json:"point_differential"`
	Record            string  `json:"record"`
	CurrentStreak     string  `json:"current_streak"`
}

// NewStandingResponses converts ranked standings to their wire form,
// returning an empty slice rather than nil.
func NewStandingResponses(standings []*stats.Standing) []StandingResponse {
	out := make([]StandingResponse, 0, len(standings))
	for _, s := range standings {
		out = append(out, StandingResponse{
			Rank:              s.Rank,
			TeamID:            s.TeamID,
			TeamName:          s.TeamName,
			PlayerID:          s.PlayerID,
			GamesPlayed:       s.GamesPlayed,
			Wins:              s.Wins,
			Losses:            s.Losses,
			Ties:              s.Ties,
			WinPercentage:     s.WinPercentage,
			PointDifferential: s.PointDifferential,
			Record:            s.Record,
			CurrentStreak:     stats.FormatCurrentStreak(s.CurrentStreak),
		})
	}
	return out
}

// GetStandings returns the league table across every team.
func (h *StandingsHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	teams, err := h.store.ListAllTeamsWithGames(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, NewStandingResponses(stats.Standings(teams)))
}

// GetPlayerStandings returns the league table restricted to one
// player's teams.
func (h *StandingsHandler) GetPlayerStandings(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	if playerID == "" {
		response.BadRequest(w, errors.New("player ID is required"))
		return
	}

	if _, err := h.store.GetPlayer(r.Context(), playerID); err != nil {
		response.FromError(w, err)
		return
	}

	teams, err := h.store.ListTeamsWithGames(r.Context(), playerID)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, NewStandingResponses(stats.Standings(teams)))
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rlattimer/scorebook/internal/api/response"
	"github.com/rlattimer/scorebook/internal/api/websocket"
	"github.com/rlattimer/scorebook/internal/storage/models"
)

// maxImageBytes caps scoreboard photo uploads.
const maxImageBytes = 10 << 20

// GameStore is the slice of the storage service the game handler needs.
type GameStore interface {
	GetGame(ctx context.Context, id string) (*models.Game, error)
	UpdateGame(ctx context.Context, game *models.Game) error
	DeleteGame(ctx context.Context, id string) error
	FindGamesByOpponent(ctx context.Context, opponent string) ([]*models.Game, error)
	ReassignGame(ctx context.Context, gameID, toTeamID string) error
	AttachScoreboardImage(ctx context.Context, gameID string, image []byte) error
	RemoveScoreboardImage(ctx context.Context, gameID string) error
}

// GameHandler handles game-related API requests.
type GameHandler struct {
	store GameStore
	hub   Broadcaster
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(store GameStore, hub Broadcaster) *GameHandler {
	return &GameHandler{store: store, hub: hub}
}

// SearchGames returns games against a given opponent across all teams,
// most recent first. Games live under their team; the flat collection
// exists only for opponent search.
func (h *GameHandler) SearchGames(w http.ResponseWriter, r *http.Request) {
	opponent := r.URL.Query().Get("opponent")
	if opponent == "" {
		response.BadRequest(w, errors.New("opponent query parameter is required"))
		return
	}

	games, err := h.store.FindGamesByOpponent(r.Context(), opponent)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, NewGameResponses(games))
}

// GetGame returns a single game.
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if gameID == "" {
		response.BadRequest(w, errors.New("game ID is required"))
		return
	}

	game, err := h.store.GetGame(r.Context(), gameID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, NewGameResponse(game))
}

// UpdateGameRequest represents a request to update a game. Omitted
// fields keep their current values.
type UpdateGameRequest struct {
	Date          *string `json:"date"`
	Location      *string `json:"location"`
	Opponent      *string `json:"opponent"`
	TeamScore     *int    `json:"team_score"`
	OpponentScore *int    `json:"opponent_score"`
	Notes         *string `json:"notes"`
}

// UpdateGame updates a game's editable fields and notifies scoreboard
// clients.
func (h *GameHandler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if gameID == "" {
		response.BadRequest(w, errors.New("game ID is required"))
		return
	}

	var req UpdateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	game, err := h.store.GetGame(r.Context(), gameID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	if req.Date != nil {
		date, err := parseGameDate(*req.Date)
		if err != nil {
			response.BadRequest(w, errors.New("invalid date"))
			return
		}
		game.Date = &date
	}
	if req.Location != nil {
		game.Location = *req.Location
	}
	if req.Opponent != nil {
		game.Opponent = *req.Opponent
	}
	if req.TeamScore != nil {
		game.TeamScore = *req.TeamScore
	}
	if req.OpponentScore != nil {
		game.OpponentScore = *req.OpponentScore
	}
	if req.Notes != nil {
		game.Notes = *req.Notes
	}

	if err := h.store.UpdateGame(r.Context(), game); err != nil {
		response.FromError(w, err)
		return
	}

	updated, err := h.store.GetGame(r.Context(), gameID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	broadcast(h.hub, websocket.EventGameUpdated, NewGameResponse(updated))
	response.Success(w, NewGameResponse(updated))
}

// DeleteGame removes a game and notifies scoreboard clients.
func (h *GameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if gameID == "" {
		response.BadRequest(w, errors.New("game ID is required"))
		return
	}

	game, err := h.store.GetGame(r.Context(), gameID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	if err := h.store.DeleteGame(r.Context(), gameID); err != nil {
		response.FromError(w, err)
		return
	}

	broadcast(h.hub, websocket.EventGameDeleted, map[string]string{
		"game_id": game.ID,
		"team_id": game.TeamID,
	})
	response.NoContent(w)
}

// ReassignGameRequest moves a game to another team.
type ReassignGameRequest struct {
	TeamID string `json:"team_id"`
}

// ReassignGame moves a game to another team and notifies scoreboard
// clients.
func (h *GameHandler) ReassignGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if gameID == "" {
		response.BadRequest(w, errors.New("game ID is required"))
		return
	}

	var req ReassignGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.TeamID == "" {
		response.BadRequest(w, errors.New("team ID is required"))
		return
	}

	if err := h.store.ReassignGame(r.Context(), gameID, req.TeamID); err != nil {
		response.FromError(w, err)
		return
	}

	game, err := h.store.GetGame(r.Context(), gameID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	broadcast(h.hub, websocket.EventGameReassigned, NewGameResponse(game))
	response.Success(w, NewGameResponse(game))
}

// GetImage serves the game's scoreboard photo.
func (h *GameHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if gameID == "" {
		response.BadRequest(w, errors.New("game ID is required"))
		return
	}

	game, err := h.store.GetGame(r.Context(), gameID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	if len(game.ScoreboardImage) == 0 {
		response.NotFound(w, errors.New("game has no scoreboard image"))
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(game.ScoreboardImage))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(game.ScoreboardImage)
}

// UploadImage attaches a scoreboard photo to the game. The body is the
// raw image.
func (h *GameHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if gameID == "" {
		response.BadRequest(w, errors.New("game ID is required"))
		return
	}

	image, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImageBytes))
	if err != nil {
		response.BadRequest(w, errors.New("image too large or unreadable"))
		return
	}
	if len(image) == 0 {
		response.BadRequest(w, errors.New("image body is required"))
		return
	}

	if err := h.store.AttachScoreboardImage(r.Context(), gameID, image); err != nil {
		response.FromError(w, err)
		return
	}

	game, err := h.store.GetGame(r.Context(), gameID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	broadcast(h.hub, websocket.EventGameUpdated, NewGameResponse(game))
	response.Success(w, NewGameResponse(game))
}

// DeleteImage removes the game's scoreboard photo.
func (h *GameHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if gameID == "" {
		response.BadRequest(w, errors.New("game ID is required"))
		return
	}

	if err := h.store.RemoveScoreboardImage(r.Context(), gameID); err != nil {
		response.FromError(w, err)
		return
	}

	game, err := h.store.GetGame(r.Context(), gameID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	broadcast(h.hub, websocket.EventGameUpdated, NewGameResponse(game))
	response.NoContent(w)
}

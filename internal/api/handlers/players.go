package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rlattimer/scorebook/internal/api/response"
	"github.com/rlattimer/scorebook/internal/storage/models"
)

// PlayerStore is the slice of the storage service the player handler
// needs.
type PlayerStore interface {
	CreatePlayer(ctx context.Context, name, color, sport string) (*models.Player, error)
	UpdatePlayer(ctx context.Context, player *models.Player) error
	DeletePlayer(ctx context.Context, id string) error
	GetPlayer(ctx context.Context, id string) (*models.Player, error)
	GetPlayerWithTeams(ctx context.Context, id string) (*models.Player, error)
	FindPlayersByName(ctx context.Context, name string) ([]*models.Player, error)
	ListPlayers(ctx context.Context) ([]*models.Player, error)
	CreateTeam(ctx context.Context, playerID, name, color, sport string) (*models.Team, error)
	ListTeamsWithGames(ctx context.Context, playerID string) ([]*models.Team, error)
	ReorderTeams(ctx context.Context, playerID string, from, count, to int) error
}

// PlayerHandler handles player-related API requests.
type PlayerHandler struct {
	store PlayerStore
}

// NewPlayerHandler creates a new PlayerHandler.
func NewPlayerHandler(store PlayerStore) *PlayerHandler {
	return &PlayerHandler{store: store}
}

// ListPlayers returns all players in display order. A q parameter
// narrows the list to players whose name contains the query.
func (h *PlayerHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	var (
		players []*models.Player
		err     error
	)

	if q := r.URL.Query().Get("q"); q != "" {
		players, err = h.store.FindPlayersByName(r.Context(), q)
	} else {
		players, err = h.store.ListPlayers(r.Context())
	}
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, NewPlayerResponses(players))
}

// CreatePlayerRequest represents a request to create a player.
type CreatePlayerRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Sport string `json:"sport"`
}

// CreatePlayer creates a new player at the end of the display order.
func (h *PlayerHandler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req CreatePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	player, err := h.store.CreatePlayer(r.Context(), req.Name, req.Color, req.Sport)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, NewPlayerResponse(player, false))
}

// GetPlayer returns a player with their teams and games loaded.
func (h *PlayerHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	if playerID == "" {
		response.BadRequest(w, errors.New("player ID is required"))
		return
	}

	player, err := h.store.GetPlayerWithTeams(r.Context(), playerID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, NewPlayerResponse(player, true))
}

// UpdatePlayerRequest represents a request to update a player. Omitted
// fields keep their current values.
type UpdatePlayerRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
	Sport *string `json:"sport"`
}

// UpdatePlayer updates a player's editable fields.
func (h *PlayerHandler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	if playerID == "" {
		response.BadRequest(w, errors.New("player ID is required"))
		return
	}

	var req UpdatePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	player, err := h.store.GetPlayer(r.Context(), playerID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	if req.Name != nil {
		player.Name = *req.Name
	}
	if req.Color != nil {
		player.Color = *req.Color
	}
	if req.Sport != nil {
		player.Sport = *req.Sport
	}

	if err := h.store.UpdatePlayer(r.Context(), player); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, NewPlayerResponse(player, false))
}

// DeletePlayer removes a player along with all their teams and games.
func (h *PlayerHandler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	if playerID == "" {
		response.BadRequest(w, errors.New("player ID is required"))
		return
	}

	if err := h.store.DeletePlayer(r.Context(), playerID); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}

// ListTeams returns the player's teams in display order with their
// records.
func (h *PlayerHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
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

	response.Success(w, NewTeamResponses(teams, false))
}

// CreateTeamRequest represents a request to create a team for a player.
type CreateTeamRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Sport string `json:"sport"`
}

// CreateTeam adds a team to the end of the player's list.
func (h *PlayerHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	if playerID == "" {
		response.BadRequest(w, errors.New("player ID is required"))
		return
	}

	var req CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	team, err := h.store.CreateTeam(r.Context(), playerID, req.Name, req.Color, req.Sport)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, NewTeamResponse(team, false))
}

// ReorderTeamsRequest moves a block of count teams from position from
// to position to within the player's list.
type ReorderTeamsRequest struct {
	From  int `json:"from"`
	Count int `json:"count"`
	To    int `json:"to"`
}

// ReorderTeams moves a block of the player's teams and returns the
// resulting order.
func (h *PlayerHandler) ReorderTeams(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	if playerID == "" {
		response.BadRequest(w, errors.New("player ID is required"))
		return
	}

	var req ReorderTeamsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	if err := h.store.ReorderTeams(r.Context(), playerID, req.From, req.Count, req.To); err != nil {
		response.FromError(w, err)
		return
	}

	teams, err := h.store.ListTeamsWithGames(r.Context(), playerID)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, NewTeamResponses(teams, false))
}

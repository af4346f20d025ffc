package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rlattimer/scorebook/internal/api/handlers"
	"github.com/rlattimer/scorebook/internal/config"
	"github.com/rlattimer/scorebook/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := storage.DefaultConfig(filepath.Join(t.TempDir(), "scorebook.db"))
	cfg.AutoMigrate = true
	db, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})

	server := NewServer(config.DefaultConfig().API, storage.NewService(db))
	go server.hub.Run()
	t.Cleanup(server.hub.Stop)
	return server
}

// doJSON performs a request against the router with a JSON body.
func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeData unmarshals the data field of a success envelope.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v (body %s)", err, rec.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, v); err != nil {
		t.Fatalf("failed to decode data: %v (body %s)", err, rec.Body.String())
	}
}

func createPlayer(t *testing.T, h http.Handler, name string) handlers.PlayerResponse {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/players", map[string]string{"name": name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed to create player: status %d body %s", rec.Code, rec.Body.String())
	}
	var player handlers.PlayerResponse
	decodeData(t, rec, &player)
	return player
}

func createTeam(t *testing.T, h http.Handler, playerID, name string) handlers.TeamResponse {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/players/"+playerID+"/teams", map[string]string{"name": name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed to create team: status %d body %s", rec.Code, rec.Body.String())
	}
	var team handlers.TeamResponse
	decodeData(t, rec, &team)
	return team
}

func recordGame(t *testing.T, h http.Handler, teamID, date, opponent string, teamScore, opponentScore int) handlers.GameResponse {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/teams/"+teamID+"/games", map[string]interface{}{
		"date":           date,
		"opponent":       opponent,
		"team_score":     teamScore,
		"opponent_score": opponentScore,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed to record game: status %d body %s", rec.Code, rec.Body.String())
	}
	var game handlers.GameResponse
	decodeData(t, rec, &game)
	return game
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server.Handler(), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("expected healthy status, got %q", body["status"])
	}
	if body["service"] != "scorebook-api" {
		t.Errorf("expected scorebook-api service, got %q", body["service"])
	}
}

func TestPlayerLifecycle(t *testing.T) {
	server := newTestServer(t)
	h := server.Handler()

	player := createPlayer(t, h, "Jordan")
	if player.ID == "" {
		t.Fatal("expected player ID to be set")
	}
	if player.DisplayOrder != 0 {
		t.Errorf("expected display order 0, got %d", player.DisplayOrder)
	}

	second := createPlayer(t, h, "Casey")
	if second.DisplayOrder != 1 {
		t.Errorf("expected display order 1, got %d", second.DisplayOrder)
	}

	rec := doJSON(t, h, http.MethodGet, "/api/v1/players", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var players []handlers.PlayerResponse
	decodeData(t, rec, &players)
	if len(players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(players))
	}
	if players[0].Name != "Jordan" || players[1].Name != "Casey" {
		t.Errorf("unexpected player order: %s, %s", players[0].Name, players[1].Name)
	}

	rec = doJSON(t, h, http.MethodPut, "/api/v1/players/"+player.ID, map[string]string{"color": "blue"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated handlers.PlayerResponse
	decodeData(t, rec, &updated)
	if updated.Color != "blue" {
		t.Errorf("expected color blue, got %q", updated.Color)
	}
	if updated.Name != "Jordan" {
		t.Errorf("expected name to be unchanged, got %q", updated.Name)
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/players/"+player.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/players/"+player.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}

	// Remaining player renumbered to the front.
	rec = doJSON(t, h, http.MethodGet, "/api/v1/players", nil)
	decodeData(t, rec, &players)
	if len(players) != 1 || players[0].DisplayOrder != 0 {
		t.Errorf("expected one player at order 0, got %+v", players)
	}
}

func TestCreatePlayerValidation(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server.Handler(), http.MethodPost, "/api/v1/players", map[string]string{"name": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var body struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if body.Code != http.StatusBadRequest {
		t.Errorf("expected code 400, got %d", body.Code)
	}
	if !strings.Contains(body.Message, "name") {
		t.Errorf("expected message to mention name, got %q", body.Message)
	}
}

func TestTeamAndGameFlow(t *testing.T) {
	server := newTestServer(t)
	h := server.Handler()

	player := createPlayer(t, h, "Jordan")
	team := createTeam(t, h, player.ID, "Sharks")
	if team.PlayerID != player.ID {
		t.Errorf("expected team owned by %s, got %s", player.ID, team.PlayerID)
	}

	recordGame(t, h, team.ID, "2026-05-01", "Tigers", 3, 1)
	recordGame(t, h, team.ID, "2026-05-08", "Bears", 2, 2)
	recordGame(t, h, team.ID, "2026-05-15", "Lions", 0, 4)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/teams/"+team.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var full handlers.TeamResponse
	decodeData(t, rec, &full)
	if full.GamesPlayed != 3 {
		t.Errorf("expected 3 games played, got %d", full.GamesPlayed)
	}
	if full.Record != "1-1-1" {
		t.Errorf("expected record 1-1-1, got %q", full.Record)
	}
	if len(full.Games) != 3 {
		t.Fatalf("expected 3 games inline, got %d", len(full.Games))
	}
	if full.Games[0].Opponent != "Tigers" || full.Games[0].DisplayOrder != 0 {
		t.Errorf("unexpected first game: %+v", full.Games[0])
	}
	if full.Games[0].Result != "W" || full.Games[1].Result != "T" || full.Games[2].Result != "L" {
		t.Errorf("unexpected results: %s %s %s", full.Games[0].Result, full.Games[1].Result, full.Games[2].Result)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/teams/"+team.ID+"/games", nil)
	var games []handlers.GameResponse
	decodeData(t, rec, &games)
	if len(games) != 3 {
		t.Errorf("expected 3 games, got %d", len(games))
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/teams/"+team.ID+"/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var teamStats handlers.TeamStatsResponse
	decodeData(t, rec, &teamStats)
	if teamStats.Record != "1-1-1" {
		t.Errorf("expected record 1-1-1, got %q", teamStats.Record)
	}
	if teamStats.RecentForm != "L-T-W" {
		t.Errorf("expected recent form L-T-W, got %q", teamStats.RecentForm)
	}

	// Player view includes the team tree.
	rec = doJSON(t, h, http.MethodGet, "/api/v1/players/"+player.ID, nil)
	var withTeams handlers.PlayerResponse
	decodeData(t, rec, &withTeams)
	if len(withTeams.Teams) != 1 || len(withTeams.Teams[0].Games) != 3 {
		t.Errorf("expected full tree, got %+v", withTeams.Teams)
	}
}

func TestReorderTeamsEndpoint(t *testing.T) {
	server := newTestServer(t)
	h := server.Handler()

	player := createPlayer(t, h, "Jordan")
	for _, name := range []string{"Alpha", "Bravo", "Charlie"} {
		createTeam(t, h, player.ID, name)
	}

	rec := doJSON(t, h, http.MethodPost, "/api/v1/players/"+player.ID+"/teams/reorder",
		map[string]int{"from": 0, "count": 1, "to": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var teams []handlers.TeamResponse
	decodeData(t, rec, &teams)
	got := make([]string, 0, len(teams))
	for _, team := range teams {
		got = append(got, team.Name)
	}
	want := []string{"Bravo", "Charlie", "Alpha"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}

	rec = doJSON(t, h, http.MethodPost, "/api/v1/players/"+player.ID+"/teams/reorder",
		map[string]int{"from": 2, "count": 2, "to": 0})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for out of bounds reorder, got %d", rec.Code)
	}
}

func TestGameUpdateDeleteReassign(t *testing.T) {
	server := newTestServer(t)
	h := server.Handler()

	player := createPlayer(t, h, "Jordan")
	sharks := createTeam(t, h, player.ID, "Sharks")
	rays := createTeam(t, h, player.ID, "Rays")

	game := recordGame(t, h, sharks.ID, "2026-05-01", "Tigers", 1, 2)
	if game.Result != "L" {
		t.Fatalf("expected loss, got %s", game.Result)
	}

	rec := doJSON(t, h, http.MethodPut, "/api/v1/games/"+game.ID, map[string]int{"team_score": 5})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated handlers.GameResponse
	decodeData(t, rec, &updated)
	if updated.Result != "W" {
		t.Errorf("expected win after update, got %s", updated.Result)
	}
	if updated.Opponent != "Tigers" {
		t.Errorf("expected opponent unchanged, got %q", updated.Opponent)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/v1/games/"+game.ID+"/reassign",
		map[string]string{"team_id": rays.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var moved handlers.GameResponse
	decodeData(t, rec, &moved)
	if moved.TeamID != rays.ID {
		t.Errorf("expected game on team %s, got %s", rays.ID, moved.TeamID)
	}
	if moved.DisplayOrder != 0 {
		t.Errorf("expected display order 0 on new team, got %d", moved.DisplayOrder)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/teams/"+sharks.ID+"/games", nil)
	var remaining []handlers.GameResponse
	decodeData(t, rec, &remaining)
	if len(remaining) != 0 {
		t.Errorf("expected no games left on old team, got %d", len(remaining))
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/games/"+game.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodGet, "/api/v1/games/"+game.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestGameImageEndpoints(t *testing.T) {
	server := newTestServer(t)
	h := server.Handler()

	player := createPlayer(t, h, "Jordan")
	team := createTeam(t, h, player.ID, "Sharks")
	game := recordGame(t, h, team.ID, "2026-05-01", "Tigers", 3, 1)

	image := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0x42}, 64)...)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/games/"+game.ID+"/image", bytes.NewReader(image))
	req.Header.Set("Content-Type", "image/png")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var withImage handlers.GameResponse
	decodeData(t, rec, &withImage)
	if !withImage.HasScoreboardImage {
		t.Error("expected has_scoreboard_image true")
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/games/"+game.ID+"/image", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	if !bytes.Equal(rec.Body.Bytes(), image) {
		t.Error("image bytes do not round-trip")
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/games/"+game.ID+"/image", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/games/"+game.ID+"/image", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after image delete, got %d", rec.Code)
	}
}

func TestStandingsEndpoints(t *testing.T) {
	server := newTestServer(t)
	h := server.Handler()

	player := createPlayer(t, h, "Jordan")
	sharks := createTeam(t, h, player.ID, "Sharks")
	rays := createTeam(t, h, player.ID, "Rays")

	recordGame(t, h, sharks.ID, "2026-05-01", "Tigers", 3, 1)
	recordGame(t, h, sharks.ID, "2026-05-08", "Bears", 2, 0)
	recordGame(t, h, rays.ID, "2026-05-01", "Tigers", 1, 3)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/standings", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var standings []handlers.StandingResponse
	decodeData(t, rec, &standings)
	if len(standings) != 2 {
		t.Fatalf("expected 2 standings rows, got %d", len(standings))
	}
	if standings[0].TeamName != "Sharks" || standings[0].Rank != 1 {
		t.Errorf("expected Sharks ranked first, got %+v", standings[0])
	}
	if standings[0].CurrentStreak != "2 win streak" {
		t.Errorf("expected 2 win streak, got %q", standings[0].CurrentStreak)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/players/"+player.ID+"/standings", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	decodeData(t, rec, &standings)
	if len(standings) != 2 {
		t.Errorf("expected 2 rows for player standings, got %d", len(standings))
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/players/missing/standings", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing player, got %d", rec.Code)
	}
}

func TestOpponentSearch(t *testing.T) {
	server := newTestServer(t)
	h := server.Handler()

	player := createPlayer(t, h, "Jordan")
	team := createTeam(t, h, player.ID, "Sharks")
	recordGame(t, h, team.ID, "2026-05-01", "Tigers", 3, 1)
	recordGame(t, h, team.ID, "2026-05-08", "Bears", 2, 0)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/games?opponent=Tigers", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var games []handlers.GameResponse
	decodeData(t, rec, &games)
	if len(games) != 1 || games[0].Opponent != "Tigers" {
		t.Errorf("unexpected search result: %+v", games)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/games", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without opponent query, got %d", rec.Code)
	}
}

func TestContentTypeEnforced(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/players", strings.NewReader("name=Jordan"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", rec.Code)
	}
}

func TestRateLimitOnMutations(t *testing.T) {
	cfg := storage.DefaultConfig(filepath.Join(t.TempDir(), "scorebook.db"))
	cfg.AutoMigrate = true
	db, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	apiCfg := config.DefaultConfig().API
	apiCfg.RateLimit = 0.001
	apiCfg.RateBurst = 2
	server := NewServer(apiCfg, storage.NewService(db))
	h := server.Handler()

	for i := 0; i < 2; i++ {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/players", map[string]string{"name": fmt.Sprintf("Player %d", i)})
		if rec.Code != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i, rec.Code)
		}
	}

	rec := doJSON(t, h, http.MethodPost, "/api/v1/players", map[string]string{"name": "Over Limit"})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", rec.Code)
	}

	// Reads are not limited.
	rec = doJSON(t, h, http.MethodGet, "/api/v1/players", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for read, got %d", rec.Code)
	}
}

func TestScoreboardFeedReceivesEvents(t *testing.T) {
	server := newTestServer(t)

	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to connect to scoreboard feed: %v", err)
	}
	defer conn.Close() //nolint:errcheck

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) && server.Hub().ClientCount() == 0 {
		time.Sleep(10 * time.Millisecond)
	}

	player := createPlayer(t, server.Handler(), "Jordan")
	team := createTeam(t, server.Handler(), player.ID, "Sharks")

	body, err := json.Marshal(map[string]interface{}{
		"date": "2026-05-01", "opponent": "Tigers", "team_score": 3, "opponent_score": 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(ts.URL+"/api/v1/teams/"+team.ID+"/games", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("failed to record game: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatal(err)
	}
	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read scoreboard event: %v", err)
	}

	var event struct {
		Type string `json:"type"`
		Data struct {
			Opponent  string `json:"opponent"`
			TeamScore int    `json:"team_score"`
		} `json:"data"`
	}
	if err := json.Unmarshal(message, &event); err != nil {
		t.Fatalf("failed to decode scoreboard event: %v", err)
	}
	if event.Type != "game.recorded" {
		t.Errorf("expected game.recorded event, got %q", event.Type)
	}
	if event.Data.Opponent != "Tigers" || event.Data.TeamScore != 3 {
		t.Errorf("unexpected event payload: %+v", event.Data)
	}
}

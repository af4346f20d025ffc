package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rlattimer/scorebook/internal/api/handlers"
	"github.com/rlattimer/scorebook/internal/api/response"
	"github.com/rlattimer/scorebook/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	// WebSocket endpoint (no JSON content-type requirement)
	s.router.Get("/ws", s.hub.ServeWs)

	// API v1 routes
	s.router.Route("/api/v1", func(r chi.Router) {
		playerHandler := handlers.NewPlayerHandler(s.service)
		standingsHandler := handlers.NewStandingsHandler(s.service)
		r.Route("/players", func(r chi.Router) {
			r.Get("/", playerHandler.ListPlayers)
			r.Post("/", playerHandler.CreatePlayer)
			r.Route("/{playerID}", func(r chi.Router) {
				r.Get("/", playerHandler.GetPlayer)
				r.Put("/", playerHandler.UpdatePlayer)
				r.Delete("/", playerHandler.DeletePlayer)
				r.Get("/teams", playerHandler.ListTeams)
				r.Post("/teams", playerHandler.CreateTeam)
				r.Post("/teams/reorder", playerHandler.ReorderTeams)
				r.Get("/standings", standingsHandler.GetPlayerStandings)
			})
		})

		// Team routes
		teamHandler := handlers.NewTeamHandler(s.service, s.hub)
		r.Route("/teams", func(r chi.Router) {
			r.Get("/", teamHandler.ListTeams)
			r.Route("/{teamID}", func(r chi.Router) {
				r.Get("/", teamHandler.GetTeam)
				r.Put("/", teamHandler.UpdateTeam)
				r.Delete("/", teamHandler.DeleteTeam)
				r.Get("/games", teamHandler.ListGames)
				r.Post("/games", teamHandler.RecordGame)
				r.Get("/stats", teamHandler.GetTeamStats)
			})
		})

		// Game routes
		gameHandler := handlers.NewGameHandler(s.service, s.hub)
		r.Route("/games", func(r chi.Router) {
			r.Get("/", gameHandler.SearchGames)
			r.Route("/{gameID}", func(r chi.Router) {
				r.Get("/", gameHandler.GetGame)
				r.Put("/", gameHandler.UpdateGame)
				r.Delete("/", gameHandler.DeleteGame)
				r.Post("/reassign", gameHandler.ReassignGame)
				r.Get("/image", gameHandler.GetImage)
				r.Put("/image", gameHandler.UploadImage)
				r.Delete("/image", gameHandler.DeleteImage)
			})
		})

		// League table
		r.Get("/standings", standingsHandler.GetStandings)
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "scorebook-api",
		"version": version.GetVersion(),
	})
}

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rlattimer/scorebook/internal/storage/models"
	"github.com/rlattimer/scorebook/internal/storage/repository"
)

// Service provides high-level operations for scorebook data. Every
// mutation runs in its own Session, so sibling renumbering and cascades
// commit atomically. Reads go straight to the pool.
type Service struct {
	db    *DB
	clock clockwork.Clock

	players repository.PlayerRepository
	teams   repository.TeamRepository
	games   repository.GameRepository
}

// NewService creates a storage service using the wall clock.
func NewService(db *DB) *Service {
	return NewServiceWithClock(db, clockwork.NewRealClock())
}

// NewServiceWithClock creates a storage service with an injected clock,
// so tests can pin timestamps.
func NewServiceWithClock(db *DB, clock clockwork.Clock) *Service {
	return &Service{
		db:      db,
		clock:   clock,
		players: repository.NewPlayerRepository(db.Conn()),
		teams:   repository.NewTeamRepository(db.Conn()),
		games:   repository.NewGameRepository(db.Conn()),
	}
}

// Session opens a unit of work callers can batch multiple mutations
// into before a single Save.
func (s *Service) Session() *Session {
	return NewSession(s.db, s.clock)
}

// withSession runs fn in a fresh session and commits it.
func (s *Service) withSession(ctx context.Context, fn func(*Session) error) error {
	sess := s.Session()
	defer func() {
		//nolint:errcheck // Close after Save is a no-op; after an error it discards the batch
		_ = sess.Close()
	}()

	if err := fn(sess); err != nil {
		return err
	}
	return sess.Save(ctx)
}

// GameInput carries the caller-supplied fields for a new game.
type GameInput struct {
	Date          *time.Time
	Location      string
	Opponent      string
	TeamScore     int
	OpponentScore int
	Notes         string
}

// CreatePlayer validates and stores a new player at the end of the
// display order.
func (s *Service) CreatePlayer(ctx context.Context, name, color, sport string) (*models.Player, error) {
	player := &models.Player{Name: name, Color: color, Sport: sport}
	if err := s.withSession(ctx, func(sess *Session) error {
		return sess.CreatePlayer(ctx, player)
	}); err != nil {
		return nil, err
	}
	return player, nil
}

// UpdatePlayer validates and stores changes to an existing player.
func (s *Service) UpdatePlayer(ctx context.Context, player *models.Player) error {
	return s.withSession(ctx, func(sess *Session) error {
		return sess.UpdatePlayer(ctx, player)
	})
}

// DeletePlayer removes a player; teams and games cascade, remaining
// players are renumbered.
func (s *Service) DeletePlayer(ctx context.Context, id string) error {
	return s.withSession(ctx, func(sess *Session) error {
		return sess.DeletePlayer(ctx, id)
	})
}

// GetPlayer retrieves a player by ID.
func (s *Service) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	player, err := s.players.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, fmt.Errorf("%w: player %s", ErrNotFound, id)
	}
	return player, nil
}

// GetPlayerWithTeams retrieves a player with its teams loaded in
// display order.
func (s *Service) GetPlayerWithTeams(ctx context.Context, id string) (*models.Player, error) {
	player, err := s.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	teams, err := s.teams.ListByPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	player.Teams = teams
	return player, nil
}

// FindPlayersByName retrieves every player with exactly the given name.
func (s *Service) FindPlayersByName(ctx context.Context, name string) ([]*models.Player, error) {
	return s.players.FindByName(ctx, name)
}

// ListPlayers retrieves all players in display order.
func (s *Service) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	return s.players.List(ctx)
}

// CreateTeam validates and stores a new team at the end of the
// player's display order.
func (s *Service) CreateTeam(ctx context.Context, playerID, name, color, sport string) (*models.Team, error) {
	team := &models.Team{PlayerID: playerID, Name: name, Color: color, Sport: sport}
	if err := s.withSession(ctx, func(sess *Session) error {
		return sess.CreateTeam(ctx, team)
	}); err != nil {
		return nil, err
	}
	return team, nil
}

// UpdateTeam validates and stores changes to an existing team.
func (s *Service) UpdateTeam(ctx context.Context, team *models.Team) error {
	return s.withSession(ctx, func(sess *Session) error {
		return sess.UpdateTeam(ctx, team)
	})
}

// DeleteTeam removes a team; its games cascade and the player's
// remaining teams are renumbered.
func (s *Service) DeleteTeam(ctx context.Context, id string) error {
	return s.withSession(ctx, func(sess *Session) error {
		return sess.DeleteTeam(ctx, id)
	})
}

// ReorderTeams moves a contiguous block of the player's teams so it
// occupies position to, renumbering every team atomically.
func (s *Service) ReorderTeams(ctx context.Context, playerID string, from, count, to int) error {
	return s.withSession(ctx, func(sess *Session) error {
		return sess.ReorderTeams(ctx, playerID, from, count, to)
	})
}

// GetTeam retrieves a team by ID.
func (s *Service) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, fmt.Errorf("%w: team %s", ErrNotFound, id)
	}
	return team, nil
}

// GetTeamWithGames retrieves a team with its games loaded in display
// order, ready for derived stats.
func (s *Service) GetTeamWithGames(ctx context.Context, id string) (*models.Team, error) {
	team, err := s.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	games, err := s.games.ListByTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	team.Games = games
	return team, nil
}

// FindTeamsByName retrieves every team with exactly the given name.
func (s *Service) FindTeamsByName(ctx context.Context, name string) ([]*models.Team, error) {
	return s.teams.FindByName(ctx, name)
}

// ListTeams retrieves a player's teams in display order.
func (s *Service) ListTeams(ctx context.Context, playerID string) ([]*models.Team, error) {
	return s.teams.ListByPlayer(ctx, playerID)
}

// ListTeamsWithGames retrieves a player's teams with games loaded.
func (s *Service) ListTeamsWithGames(ctx context.Context, playerID string) ([]*models.Team, error) {
	teams, err := s.teams.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return s.loadGames(ctx, teams)
}

// ListAllTeamsWithGames retrieves every team with games loaded,
// ordered by owner. Standings are computed from this set.
func (s *Service) ListAllTeamsWithGames(ctx context.Context) ([]*models.Team, error) {
	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.loadGames(ctx, teams)
}

func (s *Service) loadGames(ctx context.Context, teams []*models.Team) ([]*models.Team, error) {
	for _, team := range teams {
		games, err := s.games.ListByTeam(ctx, team.ID)
		if err != nil {
			return nil, err
		}
		team.Games = games
	}
	return teams, nil
}

// RecordGame validates and stores a new game at the end of the team's
// display order.
func (s *Service) RecordGame(ctx context.Context, teamID string, in GameInput) (*models.Game, error) {
	game := &models.Game{
		TeamID:        teamID,
		Date:          in.Date,
		Location:      in.Location,
		Opponent:      in.Opponent,
		TeamScore:     in.TeamScore,
		OpponentScore: in.OpponentScore,
		Notes:         in.Notes,
	}
	if err := s.withSession(ctx, func(sess *Session) error {
		return sess.RecordGame(ctx, game)
	}); err != nil {
		return nil, err
	}
	return game, nil
}

// UpdateGame validates and stores changes to an existing game.
func (s *Service) UpdateGame(ctx context.Context, game *models.Game) error {
	return s.withSession(ctx, func(sess *Session) error {
		return sess.UpdateGame(ctx, game)
	})
}

// DeleteGame removes a game and renumbers the team's remaining games.
func (s *Service) DeleteGame(ctx context.Context, id string) error {
	return s.withSession(ctx, func(sess *Session) error {
		return sess.DeleteGame(ctx, id)
	})
}

// GetGame retrieves a game by ID.
func (s *Service) GetGame(ctx context.Context, id string) (*models.Game, error) {
	game, err := s.games.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, id)
	}
	return game, nil
}

// ListGames retrieves a team's games in display order.
func (s *Service) ListGames(ctx context.Context, teamID string) ([]*models.Game, error) {
	return s.games.ListByTeam(ctx, teamID)
}

// FindGamesByOpponent retrieves every game against the given opponent,
// newest first.
func (s *Service) FindGamesByOpponent(ctx context.Context, opponent string) ([]*models.Game, error) {
	return s.games.FindByOpponent(ctx, opponent)
}

// ReassignGame moves a game to another team, keeping both teams'
// display orders contiguous.
func (s *Service) ReassignGame(ctx context.Context, gameID, toTeamID string) error {
	return s.withSession(ctx, func(sess *Session) error {
		return sess.ReassignGame(ctx, gameID, toTeamID)
	})
}

// AttachScoreboardImage stores a game's scoreboard photo, touching its
// LastModified stamp.
func (s *Service) AttachScoreboardImage(ctx context.Context, gameID string, image []byte) error {
	return s.withSession(ctx, func(sess *Session) error {
		return sess.SetScoreboardImage(ctx, gameID, image)
	})
}

// RemoveScoreboardImage clears a game's scoreboard photo, touching its
// LastModified stamp.
func (s *Service) RemoveScoreboardImage(ctx context.Context, gameID string) error {
	return s.withSession(ctx, func(sess *Session) error {
		return sess.ClearScoreboardImage(ctx, gameID)
	})
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/rlattimer/scorebook/internal/storage/models"
	"github.com/rlattimer/scorebook/internal/storage/repository"
)

// Session is a unit of work over the store. Mutations accumulate in a
// lazily opened transaction; Save commits them all at once and Reset
// throws them away, after which reads see durable state again. Reads
// inside an open session observe its uncommitted changes.
//
// A mutex serializes every method, so one session may be shared, but
// writes are single-file. Sessions are cheap; one per batch of related
// changes is the intended use.
type Session struct {
	db    *DB
	clock clockwork.Clock

	mu sync.Mutex
	tx *sql.Tx
}

// NewSession opens a unit of work on the database. A nil clock falls
// back to the wall clock.
func NewSession(db *DB, clock clockwork.Clock) *Session {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Session{db: db, clock: clock}
}

// begin opens the transaction on first mutation.
func (s *Session) begin(ctx context.Context) error {
	if s.tx != nil {
		return nil
	}
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin session transaction: %w", err)
	}
	s.tx = tx
	return nil
}

// q returns the open transaction when there is one, the pool otherwise.
func (s *Session) q() repository.Querier {
	if s.tx != nil {
		return s.tx
	}
	return s.db.conn
}

func (s *Session) players() repository.PlayerRepository {
	return repository.NewPlayerRepository(s.q())
}

func (s *Session) teams() repository.TeamRepository {
	return repository.NewTeamRepository(s.q())
}

func (s *Session) games() repository.GameRepository {
	return repository.NewGameRepository(s.q())
}

// Save commits every pending change as one atomic batch. On failure
// the batch is rolled back, nothing is applied, and the error wraps
// ErrCommit; the caller may rebuild the batch and retry. Saving a
// session with no pending changes is a no-op.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrCommit, err)
	}
	return nil
}

// Reset discards every uncommitted change. Subsequent reads through
// the session reload from durable storage.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rollback()
}

// Close discards any uncommitted changes. Safe to defer alongside an
// explicit Save.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rollback()
}

func (s *Session) rollback() error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("failed to roll back session: %w", err)
	}
	return nil
}

// CreatePlayer validates and registers a new player. Missing ID,
// timestamps and display order are filled in.
func (s *Session) CreatePlayer(ctx context.Context, player *models.Player) error {
	if err := player.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return err
	}

	if player.ID == "" {
		player.ID = uuid.NewString()
	}
	now := s.clock.Now().UTC()
	if player.CreatedAt.IsZero() {
		player.CreatedAt = now
	}
	player.UpdatedAt = now

	next, err := s.players().NextDisplayOrder(ctx)
	if err != nil {
		return err
	}
	player.DisplayOrder = next

	return s.players().Create(ctx, player)
}

// UpdatePlayer validates and registers changes to an existing player.
func (s *Session) UpdatePlayer(ctx context.Context, player *models.Player) error {
	if err := player.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return err
	}

	player.UpdatedAt = s.clock.Now().UTC()
	return s.players().Update(ctx, player)
}

// DeletePlayer registers deletion of a player. Teams and games cascade
// with it, and the remaining players are renumbered.
func (s *Session) DeletePlayer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return err
	}

	existing, err := s.players().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("%w: player %s", ErrNotFound, id)
	}
	if err := s.players().Delete(ctx, id); err != nil {
		return err
	}
	return s.players().Renumber(ctx)
}

// CreateTeam validates and registers a new team under its player.
func (s *Session) CreateTeam(ctx context.Context, team *models.Team) error {
	if err := team.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return err
	}

	owner, err := s.players().GetByID(ctx, team.PlayerID)
	if err != nil {
		return err
	}
	if owner == nil {
		return fmt.Errorf("%w: player %s", ErrNotFound, team.PlayerID)
	}

	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	now := s.clock.Now().UTC()
	if team.CreatedAt.IsZero() {
		team.CreatedAt = now
	}
	team.UpdatedAt = now

	next, err := s.teams().NextDisplayOrder(ctx, team.PlayerID)
	if err != nil {
		return err
	}
	team.DisplayOrder = next

	return s.teams().Create(ctx, team)
}

// UpdateTeam validates and registers changes to an existing team.
func (s *Session) UpdateTeam(ctx context.Context, team *models.Team) error {
	if err := team.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return err
	}

	team.UpdatedAt = s.clock.Now().UTC()
	return s.teams().Update(ctx, team)
}

// DeleteTeam registers deletion of a team. Its games cascade with it,
// and the player's remaining teams are renumbered.
func (s *Session) DeleteTeam(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return err
	}

	team, err := s.teams().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if team == nil {
		return fmt.Errorf("%w: team %s", ErrNotFound, id)
	}
	if err := s.teams().Delete(ctx, id); err != nil {
		return err
	}
	return s.teams().Renumber(ctx, team.PlayerID)
}

// ReorderTeams moves a contiguous block of the player's teams so it
// occupies position to, then renumbers them all.
func (s *Session) ReorderTeams(ctx context.Context, playerID string, from, count, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return err
	}

	owner, err := s.players().GetByID(ctx, playerID)
	if err != nil {
		return err
	}
	if owner == nil {
		return fmt.Errorf("%w: player %s", ErrNotFound, playerID)
	}

	teams, err := s.teams().ListByPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	owner.Teams = teams
	if err := owner.ReorderTeams(from, count, to); err != nil {
		return err
	}

	for _, team := range owner.Teams {
		if err := s.teams().SetDisplayOrder(ctx, team.ID, team.DisplayOrder); err != nil {
			return err
		}
	}
	return nil
}

// RecordGame validates and registers a new game under its team.
func (s *Session) RecordGame(ctx context.Context, game *models.Game) error {
	if err := game.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return err
	}

	team, err := s.teams().GetByID(ctx, game.TeamID)
	if err != nil {
		return err
	}
	if team == nil {
		return fmt.Errorf("%w: team %s", ErrNotFound, game.TeamID)
	}

	if game.ID == "" {
		game.ID = uuid.NewString()
	}
	now := s.clock.Now().UTC()
	if game.CreatedAt.IsZero() {
		game.CreatedAt = now
	}
	game.LastModified = now

	next, err := s.games().NextDisplayOrder(ctx, game.TeamID)
	if err != nil {
		return err
	}
	game.DisplayOrder = next

	return s.games().Create(ctx, game)
}

// UpdateGame validates and registers changes to an existing game.
func (s *Session) UpdateGame(ctx context.Context, game *models.Game) error {
	if err := game.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return err
	}

	game.LastModified = s.clock.Now().UTC()
	return s.games().Update(ctx, game)
}

// DeleteGame registers deletion of a game and renumbers the team's
// remaining games.
func (s *Session) DeleteGame(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return err
	}

	game, err := s.games().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if game == nil {
		return fmt.Errorf("%w: game %s", ErrNotFound, id)
	}
	if err := s.games().Delete(ctx, id); err != nil {
		return err
	}
	return s.games().Renumber(ctx, game.TeamID)
}

// ReassignGame moves a game to another team: it is detached from its
// current team, appended to the destination's order, and both teams'
// display orders stay contiguous. Reassigning to the current team is
// a no-op.
func (s *Session) ReassignGame(ctx context.Context, gameID, toTeamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return err
	}

	game, err := s.games().GetByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	if game.TeamID == toTeamID {
		return nil
	}

	target, err := s.teams().GetByID(ctx, toTeamID)
	if err != nil {
		return err
	}
	if target == nil {
		return fmt.Errorf("%w: team %s", ErrNotFound, toTeamID)
	}

	next, err := s.games().NextDisplayOrder(ctx, toTeamID)
	if err != nil {
		return err
	}
	if err := s.games().Reassign(ctx, gameID, toTeamID, next, s.clock.Now().UTC()); err != nil {
		return err
	}
	return s.games().Renumber(ctx, game.TeamID)
}

// SetScoreboardImage stores a game's scoreboard photo and touches its
// LastModified stamp.
func (s *Session) SetScoreboardImage(ctx context.Context, gameID string, image []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(ctx); err != nil {
		return err
	}

	game, err := s.games().GetByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	return s.games().UpdateScoreboardImage(ctx, gameID, image, s.clock.Now().UTC())
}

// ClearScoreboardImage removes a game's scoreboard photo and touches
// its LastModified stamp.
func (s *Session) ClearScoreboardImage(ctx context.Context, gameID string) error {
	return s.SetScoreboardImage(ctx, gameID, nil)
}

// GetPlayer reads a player through the session.
func (s *Session) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.players().GetByID(ctx, id)
}

// FindPlayersByName reads players with the given name through the session.
func (s *Session) FindPlayersByName(ctx context.Context, name string) ([]*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.players().FindByName(ctx, name)
}

// ListPlayers reads all players in display order through the session.
func (s *Session) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.players().List(ctx)
}

// GetTeam reads a team through the session.
func (s *Session) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.teams().GetByID(ctx, id)
}

// FindTeamsByName reads teams with the given name through the session.
func (s *Session) FindTeamsByName(ctx context.Context, name string) ([]*models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.teams().FindByName(ctx, name)
}

// ListTeams reads a player's teams in display order through the session.
func (s *Session) ListTeams(ctx context.Context, playerID string) ([]*models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.teams().ListByPlayer(ctx, playerID)
}

// GetGame reads a game through the session.
func (s *Session) GetGame(ctx context.Context, id string) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.games().GetByID(ctx, id)
}

// ListGames reads a team's games in display order through the session.
func (s *Session) ListGames(ctx context.Context, teamID string) ([]*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.games().ListByTeam(ctx, teamID)
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rlattimer/scorebook/internal/storage/models"
)

// TeamRepository handles database operations for teams.
type TeamRepository interface {
	// Create inserts a new team.
	Create(ctx context.Context, team *models.Team) error

	// GetByID retrieves a team by ID, or nil when absent.
	GetByID(ctx context.Context, id string) (*models.Team, error)

	// FindByName retrieves every team with exactly the given name.
	FindByName(ctx context.Context, name string) ([]*models.Team, error)

	// ListByPlayer retrieves a player's teams ordered by display order.
	ListByPlayer(ctx context.Context, playerID string) ([]*models.Team, error)

	// List retrieves all teams ordered by owner, then display order.
	List(ctx context.Context) ([]*models.Team, error)

	// Update rewrites a team's mutable fields.
	Update(ctx context.Context, team *models.Team) error

	// Delete removes a team. Owned games go with it through the
	// cascade foreign key.
	Delete(ctx context.Context, id string) error

	// NextDisplayOrder returns the display order for a player's new team.
	NextDisplayOrder(ctx context.Context, playerID string) (int, error)

	// Renumber closes display-order gaps among one player's teams.
	Renumber(ctx context.Context, playerID string) error

	// SetDisplayOrder moves a single team to the given position.
	SetDisplayOrder(ctx context.Context, id string, order int) error

	// CountByPlayer returns how many teams a player owns.
	CountByPlayer(ctx context.Context, playerID string) (int, error)
}

// teamRepository is the concrete implementation of TeamRepository.
type teamRepository struct {
	q Querier
}

// NewTeamRepository creates a new team repository.
func NewTeamRepository(q Querier) TeamRepository {
	return &teamRepository{q: q}
}

const teamColumns = `id, player_id, name, color, sport, display_order, created_at, updated_at`

// Create inserts a new team.
func (r *teamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (id, player_id, name, color, sport, display_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.q.ExecContext(ctx, query,
		team.ID,
		team.PlayerID,
		team.Name,
		team.Color,
		team.Sport,
		team.DisplayOrder,
		team.CreatedAt,
		team.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}

	return nil
}

// GetByID retrieves a team by ID, or nil when absent.
func (r *teamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = ?`

	team := &models.Team{}
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&team.ID,
		&team.PlayerID,
		&team.Name,
		&team.Color,
		&team.Sport,
		&team.DisplayOrder,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team by id: %w", err)
	}

	return team, nil
}

// FindByName retrieves every team with exactly the given name.
func (r *teamRepository) FindByName(ctx context.Context, name string) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE name = ? ORDER BY player_id, display_order`

	rows, err := r.q.QueryContext(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to find teams by name: %w", err)
	}
	return scanTeams(rows)
}

// ListByPlayer retrieves a player's teams ordered by display order.
func (r *teamRepository) ListByPlayer(ctx context.Context, playerID string) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE player_id = ? ORDER BY display_order`

	rows, err := r.q.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for player: %w", err)
	}
	return scanTeams(rows)
}

// List retrieves all teams ordered by owner, then display order.
func (r *teamRepository) List(ctx context.Context) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams ORDER BY player_id, display_order`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return scanTeams(rows)
}

func scanTeams(rows *sql.Rows) ([]*models.Team, error) {
	defer func() {
		//nolint:errcheck // Ignore error on cleanup - this is a defer cleanup operation
		_ = rows.Close()
	}()

	var teams []*models.Team
	for rows.Next() {
		team := &models.Team{}
		err := rows.Scan(
			&team.ID,
			&team.PlayerID,
			&team.Name,
			&team.Color,
			&team.Sport,
			&team.DisplayOrder,
			&team.CreatedAt,
			&team.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

// Update rewrites a team's mutable fields. PlayerID is included so the
// session can persist reparenting.
func (r *teamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `
		UPDATE teams
		SET player_id = ?, name = ?, color = ?, sport = ?, display_order = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.q.ExecContext(ctx, query,
		team.PlayerID,
		team.Name,
		team.Color,
		team.Sport,
		team.DisplayOrder,
		team.UpdatedAt,
		team.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update team: %w", err)
	}

	return nil
}

// Delete removes a team; cascade removes its games.
func (r *teamRepository) Delete(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM teams WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return nil
}

// NextDisplayOrder returns the display order for a player's new team.
func (r *teamRepository) NextDisplayOrder(ctx context.Context, playerID string) (int, error) {
	var next int
	err := r.q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(display_order) + 1, 0) FROM teams WHERE player_id = ?`, playerID,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to get next team display order: %w", err)
	}
	return next, nil
}

// Renumber closes display-order gaps among one player's teams, keeping
// the current order. Ties break by id so the result is deterministic.
func (r *teamRepository) Renumber(ctx context.Context, playerID string) error {
	query := `
		UPDATE teams
		SET display_order = (
			SELECT COUNT(*) FROM teams AS t2
			WHERE t2.player_id = teams.player_id
			  AND (t2.display_order < teams.display_order
			   OR (t2.display_order = teams.display_order AND t2.id < teams.id))
		)
		WHERE player_id = ?
	`

	if _, err := r.q.ExecContext(ctx, query, playerID); err != nil {
		return fmt.Errorf("failed to renumber teams: %w", err)
	}
	return nil
}

// SetDisplayOrder moves a single team to the given position.
func (r *teamRepository) SetDisplayOrder(ctx context.Context, id string, order int) error {
	_, err := r.q.ExecContext(ctx, `UPDATE teams SET display_order = ? WHERE id = ?`, order, id)
	if err != nil {
		return fmt.Errorf("failed to set team display order: %w", err)
	}
	return nil
}

// CountByPlayer returns how many teams a player owns.
func (r *teamRepository) CountByPlayer(ctx context.Context, playerID string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams WHERE player_id = ?`, playerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count teams for player: %w", err)
	}
	return count, nil
}

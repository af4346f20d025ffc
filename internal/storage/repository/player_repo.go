package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rlattimer/scorebook/internal/storage/models"
)

// PlayerRepository handles database operations for players.
type PlayerRepository interface {
	// Create inserts a new player.
	Create(ctx context.Context, player *models.Player) error

	// GetByID retrieves a player by ID, or nil when absent.
	GetByID(ctx context.Context, id string) (*models.Player, error)

	// FindByName retrieves every player with exactly the given name.
	FindByName(ctx context.Context, name string) ([]*models.Player, error)

	// List retrieves all players ordered by display order.
	List(ctx context.Context) ([]*models.Player, error)

	// Update rewrites a player's mutable fields.
	Update(ctx context.Context, player *models.Player) error

	// Delete removes a player. Owned teams and their games go with it
	// through the cascade foreign keys.
	Delete(ctx context.Context, id string) error

	// NextDisplayOrder returns the display order for a new player.
	NextDisplayOrder(ctx context.Context) (int, error)

	// Renumber closes the gaps deletions leave so display orders run
	// 0..n-1 again, preserving the current order.
	Renumber(ctx context.Context) error

	// SetDisplayOrder moves a single player to the given position.
	SetDisplayOrder(ctx context.Context, id string, order int) error
}

// playerRepository is the concrete implementation of PlayerRepository.
type playerRepository struct {
	q Querier
}

// NewPlayerRepository creates a new player repository.
func NewPlayerRepository(q Querier) PlayerRepository {
	return &playerRepository{q: q}
}

const playerColumns = `id, name, color, sport, display_order, created_at, updated_at`

// Create inserts a new player.
func (r *playerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (id, name, color, sport, display_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.q.ExecContext(ctx, query,
		player.ID,
		player.Name,
		player.Color,
		player.Sport,
		player.DisplayOrder,
		player.CreatedAt,
		player.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}

	return nil
}

// GetByID retrieves a player by ID, or nil when absent.
func (r *playerRepository) GetByID(ctx context.Context, id string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = ?`

	player := &models.Player{}
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&player.ID,
		&player.Name,
		&player.Color,
		&player.Sport,
		&player.DisplayOrder,
		&player.CreatedAt,
		&player.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

// FindByName retrieves every player with exactly the given name.
func (r *playerRepository) FindByName(ctx context.Context, name string) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE name = ? ORDER BY display_order`

	rows, err := r.q.QueryContext(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to find players by name: %w", err)
	}
	return scanPlayers(rows)
}

// List retrieves all players ordered by display order.
func (r *playerRepository) List(ctx context.Context) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY display_order`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return scanPlayers(rows)
}

func scanPlayers(rows *sql.Rows) ([]*models.Player, error) {
	defer func() {
		//nolint:errcheck // Ignore error on cleanup - this is a defer cleanup operation
		_ = rows.Close()
	}()

	var players []*models.Player
	for rows.Next() {
		player := &models.Player{}
		err := rows.Scan(
			&player.ID,
			&player.Name,
			&player.Color,
			&player.Sport,
			&player.DisplayOrder,
			&player.CreatedAt,
			&player.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, player)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}

	return players, nil
}

// Update rewrites a player's mutable fields.
func (r *playerRepository) Update(ctx context.Context, player *models.Player) error {
	query := `
		UPDATE players
		SET name = ?, color = ?, sport = ?, display_order = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.q.ExecContext(ctx, query,
		player.Name,
		player.Color,
		player.Sport,
		player.DisplayOrder,
		player.UpdatedAt,
		player.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}

// Delete removes a player; cascade removes its teams and games.
func (r *playerRepository) Delete(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}
	return nil
}

// NextDisplayOrder returns the display order for a new player.
func (r *playerRepository) NextDisplayOrder(ctx context.Context) (int, error) {
	var next int
	err := r.q.QueryRowContext(ctx, `SELECT COALESCE(MAX(display_order) + 1, 0) FROM players`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to get next player display order: %w", err)
	}
	return next, nil
}

// Renumber closes the gaps deletions leave, keeping the current order.
// Ties on display_order break by id so the result is deterministic.
func (r *playerRepository) Renumber(ctx context.Context) error {
	query := `
		UPDATE players
		SET display_order = (
			SELECT COUNT(*) FROM players AS p2
			WHERE p2.display_order < players.display_order
			   OR (p2.display_order = players.display_order AND p2.id < players.id)
		)
	`

	if _, err := r.q.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to renumber players: %w", err)
	}
	return nil
}

// SetDisplayOrder moves a single player to the given position.
func (r *playerRepository) SetDisplayOrder(ctx context.Context, id string, order int) error {
	_, err := r.q.ExecContext(ctx, `UPDATE players SET display_order = ? WHERE id = ?`, order, id)
	if err != nil {
		return fmt.Errorf("failed to set player display order: %w", err)
	}
	return nil
}

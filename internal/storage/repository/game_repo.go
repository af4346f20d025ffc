package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rlattimer/scorebook/internal/storage/models"
)

// GameRepository handles database operations for games.
type GameRepository interface {
	// Create inserts a new game.
	Create(ctx context.Context, game *models.Game) error

	// GetByID retrieves a game by ID, or nil when absent.
	GetByID(ctx context.Context, id string) (*models.Game, error)

	// ListByTeam retrieves a team's games ordered by display order.
	ListByTeam(ctx context.Context, teamID string) ([]*models.Game, error)

	// FindByOpponent retrieves every game played against the given
	// opponent, newest first.
	FindByOpponent(ctx context.Context, opponent string) ([]*models.Game, error)

	// Update rewrites a game's mutable fields, scoreboard image included.
	Update(ctx context.Context, game *models.Game) error

	// UpdateScoreboardImage writes just the image and the LastModified
	// touch that must accompany it.
	UpdateScoreboardImage(ctx context.Context, id string, image []byte, lastModified time.Time) error

	// Reassign moves a game to another team at the given position.
	Reassign(ctx context.Context, id, teamID string, displayOrder int, lastModified time.Time) error

	// Delete removes a game.
	Delete(ctx context.Context, id string) error

	// NextDisplayOrder returns the display order for a team's new game.
	NextDisplayOrder(ctx context.Context, teamID string) (int, error)

	// Renumber closes display-order gaps among one team's games.
	Renumber(ctx context.Context, teamID string) error

	// CountByTeam returns how many games a team has on record.
	CountByTeam(ctx context.Context, teamID string) (int, error)
}

// gameRepository is the concrete implementation of GameRepository.
type gameRepository struct {
	q Querier
}

// NewGameRepository creates a new game repository.
func NewGameRepository(q Querier) GameRepository {
	return &gameRepository{q: q}
}

const gameColumns = `id, team_id, date, location, opponent, team_score, opponent_score,
		notes, scoreboard_image, display_order, last_modified, created_at`

// Create inserts a new game.
func (r *gameRepository) Create(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (
			id, team_id, date, location, opponent, team_score, opponent_score,
			notes, scoreboard_image, display_order, last_modified, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.q.ExecContext(ctx, query,
		game.ID,
		game.TeamID,
		game.Date,
		game.Location,
		game.Opponent,
		game.TeamScore,
		game.OpponentScore,
		game.Notes,
		game.ScoreboardImage,
		game.DisplayOrder,
		game.LastModified,
		game.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	return nil
}

// GetByID retrieves a game by ID, or nil when absent.
func (r *gameRepository) GetByID(ctx context.Context, id string) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = ?`

	game := &models.Game{}
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&game.ID,
		&game.TeamID,
		&game.Date,
		&game.Location,
		&game.Opponent,
		&game.TeamScore,
		&game.OpponentScore,
		&game.Notes,
		&game.ScoreboardImage,
		&game.DisplayOrder,
		&game.LastModified,
		&game.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return game, nil
}

// ListByTeam retrieves a team's games ordered by display order.
func (r *gameRepository) ListByTeam(ctx context.Context, teamID string) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE team_id = ? ORDER BY display_order`

	rows, err := r.q.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games for team: %w", err)
	}
	return scanGames(rows)
}

// FindByOpponent retrieves every game against the given opponent,
// newest first with undated games last.
func (r *gameRepository) FindByOpponent(ctx context.Context, opponent string) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE opponent = ?
		ORDER BY date IS NULL, date DESC`

	rows, err := r.q.QueryContext(ctx, query, opponent)
	if err != nil {
		return nil, fmt.Errorf("failed to find games by opponent: %w", err)
	}
	return scanGames(rows)
}

func scanGames(rows *sql.Rows) ([]*models.Game, error) {
	defer func() {
		//nolint:errcheck // Ignore error on cleanup - this is a defer cleanup operation
		_ = rows.Close()
	}()

	var games []*models.Game
	for rows.Next() {
		game := &models.Game{}
		err := rows.Scan(
			&game.ID,
			&game.TeamID,
			&game.Date,
			&game.Location,
			&game.Opponent,
			&game.TeamScore,
			&game.OpponentScore,
			&game.Notes,
			&game.ScoreboardImage,
			&game.DisplayOrder,
			&game.LastModified,
			&game.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}

// Update rewrites a game's mutable fields, scoreboard image included.
func (r *gameRepository) Update(ctx context.Context, game *models.Game) error {
	query := `
		UPDATE games
		SET team_id = ?, date = ?, location = ?, opponent = ?, team_score = ?,
			opponent_score = ?, notes = ?, scoreboard_image = ?, display_order = ?,
			last_modified = ?
		WHERE id = ?
	`

	_, err := r.q.ExecContext(ctx, query,
		game.TeamID,
		game.Date,
		game.Location,
		game.Opponent,
		game.TeamScore,
		game.OpponentScore,
		game.Notes,
		game.ScoreboardImage,
		game.DisplayOrder,
		game.LastModified,
		game.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

// UpdateScoreboardImage writes the image and its LastModified touch.
func (r *gameRepository) UpdateScoreboardImage(ctx context.Context, id string, image []byte, lastModified time.Time) error {
	query := `UPDATE games SET scoreboard_image = ?, last_modified = ? WHERE id = ?`

	_, err := r.q.ExecContext(ctx, query, image, lastModified, id)
	if err != nil {
		return fmt.Errorf("failed to update scoreboard image: %w", err)
	}
	return nil
}

// Reassign moves a game to another team at the given position.
func (r *gameRepository) Reassign(ctx context.Context, id, teamID string, displayOrder int, lastModified time.Time) error {
	query := `UPDATE games SET team_id = ?, display_order = ?, last_modified = ? WHERE id = ?`

	_, err := r.q.ExecContext(ctx, query, teamID, displayOrder, lastModified, id)
	if err != nil {
		return fmt.Errorf("failed to reassign game: %w", err)
	}
	return nil
}

// Delete removes a game.
func (r *gameRepository) Delete(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}

// NextDisplayOrder returns the display order for a team's new game.
func (r *gameRepository) NextDisplayOrder(ctx context.Context, teamID string) (int, error) {
	var next int
	err := r.q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(display_order) + 1, 0) FROM games WHERE team_id = ?`, teamID,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to get next game display order: %w", err)
	}
	return next, nil
}

// Renumber closes display-order gaps among one team's games, keeping
// the current order. Ties break by id so the result is deterministic.
func (r *gameRepository) Renumber(ctx context.Context, teamID string) error {
	query := `
		UPDATE games
		SET display_order = (
			SELECT COUNT(*) FROM games AS g2
			WHERE g2.team_id = games.team_id
			  AND (g2.display_order < games.display_order
			   OR (g2.display_order = games.display_order AND g2.id < games.id))
		)
		WHERE team_id = ?
	`

	if _, err := r.q.ExecContext(ctx, query, teamID); err != nil {
		return fmt.Errorf("failed to renumber games: %w", err)
	}
	return nil
}

// CountByTeam returns how many games a team has on record.
func (r *gameRepository) CountByTeam(ctx context.Context, teamID string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM games WHERE team_id = ?`, teamID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count games for team: %w", err)
	}
	return count, nil
}

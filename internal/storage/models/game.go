package models

import (
	"fmt"
	"strings"
	"time"
)

// Game represents a single played game from the owning team's point of
// view. Win/loss/tie is always derived from the scores; no result flag
// is stored.
type Game struct {
	ID              string
	TeamID          string     // Owning team
	Date            *time.Time // Nullable
	Location        string
	Opponent        string
	TeamScore       int
	OpponentScore   int
	Notes           string
	ScoreboardImage []byte // Nullable, raw image bytes
	DisplayOrder    int    // Position among the team's games, contiguous from 0
	LastModified    time.Time
	CreatedAt       time.Time
}

// IsWin reports whether the team outscored the opponent.
func (g *Game) IsWin() bool {
	return g.TeamScore > g.OpponentScore
}

// IsLoss reports whether the opponent outscored the team.
func (g *Game) IsLoss() bool {
	return g.TeamScore < g.OpponentScore
}

// IsTie reports whether the scores are equal.
func (g *Game) IsTie() bool {
	return g.TeamScore == g.OpponentScore
}

// ResultCode returns "W", "L" or "T".
func (g *Game) ResultCode() string {
	switch {
	case g.IsWin():
		return "W"
	case g.IsLoss():
		return "L"
	default:
		return "T"
	}
}

// ScoreDisplay formats the score as "team-opponent", e.g. "100-90".
func (g *Game) ScoreDisplay() string {
	return fmt.Sprintf("%d-%d", g.TeamScore, g.OpponentScore)
}

// DateDisplay formats the game date for humans, or "No date" when the
// date was never set.
func (g *Game) DateDisplay() string {
	if g.Date == nil {
		return "No date"
	}
	return g.Date.Format("Jan 2, 2006")
}

// Validate checks the fields that must hold before the game is saved.
func (g *Game) Validate() error {
	if g.Date == nil {
		return fmt.Errorf("%w: game date is required", ErrValidation)
	}
	if strings.TrimSpace(g.Opponent) == "" {
		return fmt.Errorf("%w: opponent name is required", ErrValidation)
	}
	if g.TeamScore < 0 {
		return fmt.Errorf("%w: team score cannot be negative", ErrValidation)
	}
	if g.OpponentScore < 0 {
		return fmt.Errorf("%w: opponent score cannot be negative", ErrValidation)
	}
	return nil
}

// SetScoreboardImage stores the scoreboard photo and touches
// LastModified. The touch is mandatory on every image mutation.
func (g *Game) SetScoreboardImage(data []byte, now time.Time) {
	g.ScoreboardImage = data
	g.LastModified = now
}

// ClearScoreboardImage removes the scoreboard photo and touches
// LastModified.
func (g *Game) ClearScoreboardImage(now time.Time) {
	g.ScoreboardImage = nil
	g.LastModified = now
}

// SetTeam moves the game from one team to another. The game is detached
// from its current owner before it is attached, so it is never a member
// of two teams at once, and both teams' display orders stay contiguous.
// Either side may be nil to only detach or only attach.
func (g *Game) SetTeam(from, to *Team) {
	if from != nil {
		from.RemoveGame(g)
	}
	if to != nil {
		to.AddGame(g)
	}
}

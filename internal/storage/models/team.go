package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RecentGamesLimit caps the number of games returned by RecentGames.
const RecentGamesLimit = 5

// Team represents one team a player keeps score for. Results are never
// stored on the team; every figure below is derived from the games.
type Team struct {
	ID           string
	PlayerID     string // Owning player
	Name         string
	Color        string
	Sport        string
	DisplayOrder int // Position among the player's teams, contiguous from 0
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Games []*Game // Owned games in DisplayOrder; may be unloaded (nil)
}

// Validate checks the fields that must hold before the team is saved.
func (t *Team) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: team name is required", ErrValidation)
	}
	return nil
}

// AddGame appends a game to the team's list, taking ownership.
func (t *Team) AddGame(g *Game) {
	g.TeamID = t.ID
	g.DisplayOrder = len(t.Games)
	t.Games = append(t.Games, g)
}

// RemoveGame detaches a game from the team and renumbers the remaining
// games. Removing a game the team does not own is a no-op.
func (t *Team) RemoveGame(g *Game) {
	idx := -1
	for i, existing := range t.Games {
		if existing == g || (g.ID != "" && existing.ID == g.ID) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	t.Games = append(t.Games[:idx], t.Games[idx+1:]...)
	g.TeamID = ""
	g.DisplayOrder = 0
	t.renumberGames()
}

func (t *Team) renumberGames() {
	for i, g := range t.Games {
		g.DisplayOrder = i
	}
}

// Wins counts games where the team outscored the opponent.
func (t *Team) Wins() int {
	n := 0
	for _, g := range t.Games {
		if g.IsWin() {
			n++
		}
	}
	return n
}

// Losses counts games where the opponent outscored the team.
func (t *Team) Losses() int {
	n := 0
	for _, g := range t.Games {
		if g.IsLoss() {
			n++
		}
	}
	return n
}

// Ties counts games with equal scores.
func (t *Team) Ties() int {
	n := 0
	for _, g := range t.Games {
		if g.IsTie() {
			n++
		}
	}
	return n
}

// GamesPlayed returns the number of games on record.
func (t *Team) GamesPlayed() int {
	return len(t.Games)
}

// AverageScore returns the mean of the team's own scores, 0 with no games.
func (t *Team) AverageScore() float64 {
	if len(t.Games) == 0 {
		return 0
	}
	total := 0
	for _, g := range t.Games {
		total += g.TeamScore
	}
	return float64(total) / float64(len(t.Games))
}

// PointDifferential returns the sum of (team score - opponent score)
// across all games. Negative when the team is outscored overall.
func (t *Team) PointDifferential() int {
	diff := 0
	for _, g := range t.Games {
		diff += g.TeamScore - g.OpponentScore
	}
	return diff
}

// WinPercentage returns the team's winning percentage with ties counted
// as half a win, 0 with no games.
func (t *Team) WinPercentage() float64 {
	played := len(t.Games)
	if played == 0 {
		return 0
	}
	return (float64(t.Wins()) + 0.5*float64(t.Ties())) / float64(played)
}

// RecentGames returns up to RecentGamesLimit games, most recent date
// first. Games without a date sort after dated ones.
func (t *Team) RecentGames() []*Game {
	recent := make([]*Game, len(t.Games))
	copy(recent, t.Games)
	sort.SliceStable(recent, func(i, j int) bool {
		di, dj := recent[i].Date, recent[j].Date
		switch {
		case di == nil && dj == nil:
			return false
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.After(*dj)
		}
	})
	if len(recent) > RecentGamesLimit {
		recent = recent[:RecentGamesLimit]
	}
	return recent
}

// RecordDisplay formats the team's record as "wins-losses-ties".
func (t *Team) RecordDisplay() string {
	return fmt.Sprintf("%d-%d-%d", t.Wins(), t.Losses(), t.Ties())
}

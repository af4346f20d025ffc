// Package importer records score sheets dropped as JSON files, either
// one-shot from the CLI or continuously from a watched directory.
package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rlattimer/scorebook/internal/storage"
)

// ScoreSheet is the JSON document a scorekeeper drops into the watch
// directory: one team's games, keyed by player and team name. Names
// are the lookup key; unknown players and teams are created.
type ScoreSheet struct {
	Player string      `json:"player"`
	Team   string      `json:"team"`
	Color  string      `json:"color,omitempty"`
	Sport  string      `json:"sport,omitempty"`
	Games  []SheetGame `json:"games"`
}

// SheetGame is one game row on a score sheet.
type SheetGame struct {
	Date          string `json:"date"` // 2006-01-02
	Location      string `json:"location,omitempty"`
	Opponent      string `json:"opponent"`
	TeamScore     int    `json:"team_score"`
	OpponentScore int    `json:"opponent_score"`
	Notes         string `json:"notes,omitempty"`
}

// ReadSheet parses and validates a score sheet file.
func ReadSheet(path string) (*ScoreSheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read score sheet: %w", err)
	}

	var sheet ScoreSheet
	if err := json.Unmarshal(data, &sheet); err != nil {
		return nil, fmt.Errorf("failed to parse score sheet: %w", err)
	}
	if err := sheet.Validate(); err != nil {
		return nil, err
	}
	return &sheet, nil
}

// Validate checks the sheet before anything touches the store, so a
// bad row cannot leave a half-imported file behind.
func (s *ScoreSheet) Validate() error {
	if strings.TrimSpace(s.Player) == "" {
		return fmt.Errorf("score sheet needs a player name")
	}
	if strings.TrimSpace(s.Team) == "" {
		return fmt.Errorf("score sheet needs a team name")
	}
	if len(s.Games) == 0 {
		return fmt.Errorf("score sheet has no games")
	}
	for i, g := range s.Games {
		if _, err := g.ParseDate(); err != nil {
			return fmt.Errorf("game %d: %w", i+1, err)
		}
		if strings.TrimSpace(g.Opponent) == "" {
			return fmt.Errorf("game %d: opponent is required", i+1)
		}
		if g.TeamScore < 0 || g.OpponentScore < 0 {
			return fmt.Errorf("game %d: scores cannot be negative", i+1)
		}
	}
	return nil
}

// ParseDate parses the game date, accepting 2006-01-02 or RFC 3339.
func (g *SheetGame) ParseDate() (time.Time, error) {
	if t, err := time.Parse("2006-01-02", g.Date); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, g.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want 2006-01-02)", g.Date)
	}
	return t, nil
}

// Input converts the row to the service's game input.
func (g *SheetGame) Input() (storage.GameInput, error) {
	date, err := g.ParseDate()
	if err != nil {
		return storage.GameInput{}, err
	}
	return storage.GameInput{
		Date:          &date,
		Location:      g.Location,
		Opponent:      g.Opponent,
		TeamScore:     g.TeamScore,
		OpponentScore: g.OpponentScore,
		Notes:         g.Notes,
	}, nil
}

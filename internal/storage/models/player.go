package models

import (
	"fmt"
	"strings"
	"time"
)

// Player represents a scorekeeper who owns an ordered list of teams.
type Player struct {
	ID           string
	Name         string
	Color        string // Display tag, free-form ("blue", "#1e88e5", ...)
	Sport        string
	DisplayOrder int // Position among all players, contiguous from 0
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Teams []*Team // Owned teams in DisplayOrder; may be unloaded (nil)
}

// Validate checks the fields that must hold before the player is saved.
func (p *Player) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: player name is required", ErrValidation)
	}
	return nil
}

// AddTeam appends a team to the player's list, taking ownership.
// The team receives the next sequential display order.
func (p *Player) AddTeam(t *Team) {
	t.PlayerID = p.ID
	t.DisplayOrder = len(p.Teams)
	p.Teams = append(p.Teams, t)
}

// RemoveTeam detaches a team from the player and renumbers the remaining
// teams so their display orders stay contiguous from zero. Removing a
// team the player does not own is a no-op.
func (p *Player) RemoveTeam(t *Team) {
	idx := -1
	for i, existing := range p.Teams {
		if existing == t || (t.ID != "" && existing.ID == t.ID) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	p.Teams = append(p.Teams[:idx], p.Teams[idx+1:]...)
	t.PlayerID = ""
	t.DisplayOrder = 0
	p.renumberTeams()
}

// ReorderTeams moves the contiguous block of count teams starting at
// from so that it occupies position to in the resulting list, then
// renumbers every team. Indices are positions in the current list.
func (p *Player) ReorderTeams(from, count, to int) error {
	n := len(p.Teams)
	if count <= 0 || from < 0 || from+count > n {
		return fmt.Errorf("%w: reorder source range [%d,%d) is out of bounds", ErrValidation, from, from+count)
	}
	if to < 0 || to+count > n {
		return fmt.Errorf("%w: reorder destination %d is out of bounds", ErrValidation, to)
	}
	if to != from {
		block := make([]*Team, count)
		copy(block, p.Teams[from:from+count])

		rest := make([]*Team, 0, n-count)
		rest = append(rest, p.Teams[:from]...)
		rest = append(rest, p.Teams[from+count:]...)

		reordered := make([]*Team, 0, n)
		reordered = append(reordered, rest[:to]...)
		reordered = append(reordered, block...)
		reordered = append(reordered, rest[to:]...)
		p.Teams = reordered
	}
	p.renumberTeams()
	return nil
}

func (p *Player) renumberTeams() {
	for i, t := range p.Teams {
		t.DisplayOrder = i
	}
}

package models

import (
	"errors"
	"testing"
	"time"
)

func TestGameResultClassification(t *testing.T) {
	tests := []struct {
		name          string
		teamScore     int
		opponentScore int
		wantWin       bool
		wantLoss      bool
		wantTie       bool
		wantCode      string
	}{
		{"win", 100, 90, true, false, false, "W"},
		{"loss", 90, 100, false, true, false, "L"},
		{"tie", 90, 90, false, false, true, "T"},
		{"zero-zero tie", 0, 0, false, false, true, "T"},
		{"one point win", 1, 0, true, false, false, "W"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Game{TeamScore: tt.teamScore, OpponentScore: tt.opponentScore}

			if got := g.IsWin(); got != tt.wantWin {
				t.Errorf("IsWin() = %v, want %v", got, tt.wantWin)
			}
			if got := g.IsLoss(); got != tt.wantLoss {
				t.Errorf("IsLoss() = %v, want %v", got, tt.wantLoss)
			}
			if got := g.IsTie(); got != tt.wantTie {
				t.Errorf("IsTie() = %v, want %v", got, tt.wantTie)
			}
			if got := g.ResultCode(); got != tt.wantCode {
				t.Errorf("ResultCode() = %q, want %q", got, tt.wantCode)
			}

			// Exactly one classification holds.
			count := 0
			for _, v := range []bool{g.IsWin(), g.IsLoss(), g.IsTie()} {
				if v {
					count++
				}
			}
			if count != 1 {
				t.Errorf("%d classifications true, want exactly 1", count)
			}
		})
	}
}

func TestGameScoreDisplay(t *testing.T) {
	g := &Game{TeamScore: 100, OpponentScore: 90}
	if got := g.ScoreDisplay(); got != "100-90" {
		t.Errorf("ScoreDisplay() = %q, want %q", got, "100-90")
	}
}

func TestGameDateDisplay(t *testing.T) {
	g := &Game{}
	if got := g.DateDisplay(); got != "No date" {
		t.Errorf("DateDisplay() with nil date = %q, want %q", got, "No date")
	}

	g.Date = datePtr(2026, time.March, 15)
	if got := g.DateDisplay(); got != "Mar 15, 2026" {
		t.Errorf("DateDisplay() = %q, want %q", got, "Mar 15, 2026")
	}
}

func TestGameValidate(t *testing.T) {
	valid := func() *Game {
		return &Game{
			Date:          datePtr(2026, time.April, 1),
			Opponent:      "Rivals",
			TeamScore:     10,
			OpponentScore: 8,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Game)
		wantErr bool
	}{
		{"valid", func(g *Game) {}, false},
		{"nil date", func(g *Game) { g.Date = nil }, true},
		{"empty opponent", func(g *Game) { g.Opponent = "" }, true},
		{"whitespace opponent", func(g *Game) { g.Opponent = "  " }, true},
		{"negative team score", func(g *Game) { g.TeamScore = -1 }, true},
		{"negative opponent score", func(g *Game) { g.OpponentScore = -3 }, true},
		{"zero scores ok", func(g *Game) { g.TeamScore = 0; g.OpponentScore = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := valid()
			tt.mutate(g)
			err := g.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("Validate() = %v, want ErrValidation", err)
				}
			} else if err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestGameScoreboardImageTouchesLastModified(t *testing.T) {
	g := &Game{}
	setAt := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
	clearAt := setAt.Add(time.Hour)

	g.SetScoreboardImage([]byte{0xff, 0xd8, 0xff}, setAt)
	if g.ScoreboardImage == nil {
		t.Fatal("ScoreboardImage is nil after SetScoreboardImage")
	}
	if !g.LastModified.Equal(setAt) {
		t.Errorf("LastModified = %v, want %v", g.LastModified, setAt)
	}

	g.ClearScoreboardImage(clearAt)
	if g.ScoreboardImage != nil {
		t.Error("ScoreboardImage not nil after ClearScoreboardImage")
	}
	if !g.LastModified.Equal(clearAt) {
		t.Errorf("LastModified = %v, want %v", g.LastModified, clearAt)
	}
}

func TestGameSetTeamMovesOwnership(t *testing.T) {
	teamA := &Team{ID: "team-a", Name: "A"}
	teamB := &Team{ID: "team-b", Name: "B"}

	g1 := &Game{ID: "game-1", Opponent: "Rivals"}
	g2 := &Game{ID: "game-2", Opponent: "Rivals"}
	g3 := &Game{ID: "game-3", Opponent: "Rivals"}
	teamA.AddGame(g1)
	teamA.AddGame(g2)
	teamB.AddGame(g3)

	g1.SetTeam(teamA, teamB)

	if g1.TeamID != teamB.ID {
		t.Errorf("game team ID = %q, want %q", g1.TeamID, teamB.ID)
	}
	for _, g := range teamA.Games {
		if g.ID == "game-1" {
			t.Error("source team still contains the moved game")
		}
	}
	found := false
	for _, g := range teamB.Games {
		if g.ID == "game-1" {
			found = true
		}
	}
	if !found {
		t.Error("destination team does not contain the moved game")
	}

	for i, g := range teamA.Games {
		if g.DisplayOrder != i {
			t.Errorf("source team game %s has display order %d, want %d", g.ID, g.DisplayOrder, i)
		}
	}
	for i, g := range teamB.Games {
		if g.DisplayOrder != i {
			t.Errorf("destination team game %s has display order %d, want %d", g.ID, g.DisplayOrder, i)
		}
	}
}

func TestGameSetTeamDetachOnly(t *testing.T) {
	team := &Team{ID: "team-a", Name: "A"}
	g := &Game{ID: "game-1", Opponent: "Rivals"}
	team.AddGame(g)

	g.SetTeam(team, nil)

	if g.TeamID != "" {
		t.Errorf("detached game has team ID %q", g.TeamID)
	}
	if len(team.Games) != 0 {
		t.Errorf("len(team.Games) = %d, want 0", len(team.Games))
	}
}

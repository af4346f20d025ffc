// Package stats derives league tables, streaks and time-windowed form
// from stored games. Everything here is computed; nothing is persisted.
package stats

import (
	"fmt"
	"sort"

	"github.com/rlattimer/scorebook/internal/storage/models"
)

// StreakStats summarizes runs of results for one team.
type StreakStats struct {
	// CurrentStreak is positive for an active win streak, negative
	// for an active loss streak, 0 after a tie or with no games.
	CurrentStreak     int
	LongestWinStreak  int
	LongestLossStreak int
}

// ChronologicalGames returns the dated games oldest first. Games with
// no date carry no position in time and are left out.
func ChronologicalGames(games []*models.Game) []*models.Game {
	dated := make([]*models.Game, 0, len(games))
	for _, g := range games {
		if g.Date != nil {
			dated = append(dated, g)
		}
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].Date.Before(*dated[j].Date)
	})
	return dated
}

// CalculateStreaks walks games ordered oldest to newest and tracks win
// and loss runs. A tie ends both kinds of streak.
func CalculateStreaks(games []*models.Game) *StreakStats {
	stats := &StreakStats{}
	winRun, lossRun := 0, 0

	for _, g := range games {
		switch {
		case g.IsWin():
			winRun++
			lossRun = 0
			if winRun > stats.LongestWinStreak {
				stats.LongestWinStreak = winRun
			}
		case g.IsLoss():
			lossRun++
			winRun = 0
			if lossRun > stats.LongestLossStreak {
				stats.LongestLossStreak = lossRun
			}
		default:
			winRun, lossRun = 0, 0
		}
	}

	if winRun > 0 {
		stats.CurrentStreak = winRun
	} else if lossRun > 0 {
		stats.CurrentStreak = -lossRun
	}
	return stats
}

// TeamStreaks computes streaks for a team from its loaded games.
func TeamStreaks(team *models.Team) *StreakStats {
	return CalculateStreaks(ChronologicalGames(team.Games))
}

// FormatCurrentStreak renders a signed streak for display.
func FormatCurrentStreak(streak int) string {
	switch {
	case streak == 0:
		return "No active streak"
	case streak == 1:
		return "1 win streak"
	case streak > 1:
		return fmt.Sprintf("%d win streak", streak)
	case streak == -1:
		return "1 loss streak"
	default:
		return fmt.Sprintf("%d loss streak", -streak)
	}
}

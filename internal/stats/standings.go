package stats

import (
	"sort"

	"github.com/rlattimer/scorebook/internal/storage/models"
)

// Standing is one ranked row of the league table. All figures are
// derived from the team's loaded games at build time.
type Standing struct {
	Rank              int
	TeamID            string
	TeamName          string
	PlayerID          string
	GamesPlayed       int
	Wins              int
	Losses            int
	Ties              int
	WinPercentage     float64
	PointDifferential int
	Record            string
	CurrentStreak     int
}

// Standings ranks teams by winning percentage (ties count as half a
// win), breaking ties on point differential, then wins, then name.
// Teams must have their games loaded.
func Standings(teams []*models.Team) []*Standing {
	standings := make([]*Standing, 0, len(teams))
	for _, team := range teams {
		standings = append(standings, &Standing{
			TeamID:            team.ID,
			TeamName:          team.Name,
			PlayerID:          team.PlayerID,
			GamesPlayed:       team.GamesPlayed(),
			Wins:              team.Wins(),
			Losses:            team.Losses(),
			Ties:              team.Ties(),
			WinPercentage:     team.WinPercentage(),
			PointDifferential: team.PointDifferential(),
			Record:            team.RecordDisplay(),
			CurrentStreak:     TeamStreaks(team).CurrentStreak,
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.WinPercentage != b.WinPercentage {
			return a.WinPercentage > b.WinPercentage
		}
		if a.PointDifferential != b.PointDifferential {
			return a.PointDifferential > b.PointDifferential
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.TeamName < b.TeamName
	})

	for i, s := range standings {
		s.Rank = i + 1
	}
	return standings
}

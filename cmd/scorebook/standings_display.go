package main

import (
	"context"
	"fmt"
	"log"

	"github.com/rlattimer/scorebook/internal/stats"
)

// runStandingsCommand prints the league table across all teams.
func runStandingsCommand() {
	service, closeDB := openService()
	defer closeDB()
	ctx := context.Background()

	teams, err := service.ListAllTeamsWithGames(ctx)
	if err != nil {
		log.Fatalf("Error loading teams: %v", err)
	}
	if len(teams) == 0 {
		fmt.Println("No teams yet.")
		return
	}

	displayStandings(stats.Standings(teams))
}

func displayStandings(standings []*stats.Standing) {
	fmt.Println("Standings")
	fmt.Println("---------")
	fmt.Println()
	fmt.Printf("%-4s %-24s %-4s %-4s %-4s %-4s %7s %6s  %s\n",
		"#", "Team", "GP", "W", "L", "T", "Win%", "Diff", "Streak")

	for _, s := range standings {
		diff := fmt.Sprintf("%+d", s.PointDifferential)
		if s.PointDifferential == 0 {
			diff = "0"
		}
		fmt.Printf("%-4d %-24s %-4d %-4d %-4d %-4d %6.1f%% %6s  %s\n",
			s.Rank, s.TeamName, s.GamesPlayed, s.Wins, s.Losses, s.Ties,
			s.WinPercentage*100, diff, stats.FormatCurrentStreak(s.CurrentStreak))
	}
	fmt.Println()
}

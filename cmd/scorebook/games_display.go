package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/rlattimer/scorebook/internal/storage/models"
)

// runGamesCommand prints one team's game log in display order.
func runGamesCommand() {
	gamesFlags := flag.NewFlagSet("games", flag.ExitOnError)
	teamID := gamesFlags.String("team", "", "Team ID (required)")
	recent := gamesFlags.Bool("recent", false, "Only the most recent games")

	if err := gamesFlags.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}
	if *teamID == "" {
		log.Fatal("Error: --team is required")
	}

	service, closeDB := openService()
	defer closeDB()

	team, err := service.GetTeamWithGames(context.Background(), *teamID)
	if err != nil {
		log.Fatalf("Error loading team: %v", err)
	}

	games := team.Games
	if *recent {
		games = team.RecentGames()
	}

	fmt.Printf("%s  %s\n", team.Name, team.RecordDisplay())
	fmt.Println()
	if len(games) == 0 {
		fmt.Println("No games recorded.")
		return
	}

	for _, game := range games {
		displayGame(game)
	}
	fmt.Printf("Average score: %.1f   Point differential: %+d\n",
		team.AverageScore(), team.PointDifferential())
}

func displayGame(game *models.Game) {
	line := fmt.Sprintf("%s  %s %s vs %s", game.DateDisplay(), game.ResultCode(), game.ScoreDisplay(), game.Opponent)
	if game.Location != "" {
		line += fmt.Sprintf(" @ %s", game.Location)
	}
	fmt.Println(line)
	if game.Notes != "" {
		fmt.Printf("    %s\n", game.Notes)
	}
	if len(game.ScoreboardImage) > 0 {
		fmt.Printf("    Scoreboard photo attached (%d bytes, updated %s)\n",
			len(game.ScoreboardImage), game.LastModified.Format("Jan 2, 2006 15:04"))
	}
}

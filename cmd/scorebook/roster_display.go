package main

import (
	"context"
	"fmt"
	"log"
)

// runRosterCommand lists every player with their teams and records.
func runRosterCommand() {
	service, closeDB := openService()
	defer closeDB()
	ctx := context.Background()

	players, err := service.ListPlayers(ctx)
	if err != nil {
		log.Fatalf("Error listing players: %v", err)
	}
	if len(players) == 0 {
		fmt.Println("No players yet. Drop a score sheet in the import directory or use the API to add one.")
		return
	}

	fmt.Println("Roster")
	fmt.Println("------")
	fmt.Println()

	for _, player := range players {
		label := player.Name
		if player.Sport != "" {
			label += fmt.Sprintf(" (%s)", player.Sport)
		}
		fmt.Printf("%d. %s\n", player.DisplayOrder+1, label)
		fmt.Printf("   ID: %s\n", player.ID)

		teams, err := service.ListTeamsWithGames(ctx, player.ID)
		if err != nil {
			log.Printf("Warning: failed to load teams for %s: %v", player.Name, err)
			continue
		}
		if len(teams) == 0 {
			fmt.Println("   No teams")
		}
		for _, team := range teams {
			fmt.Printf("   - %s  %s  (%d games)\n", team.Name, team.RecordDisplay(), team.GamesPlayed())
			fmt.Printf("     ID: %s\n", team.ID)
		}
		fmt.Println()
	}
}

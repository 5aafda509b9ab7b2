package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gamevault/gamevault-go/internal/models"
	"github.com/gamevault/gamevault-go/internal/repository"
	"github.com/gamevault/gamevault-go/internal/service"
)

var (
	gamesSearch string
	gamesSortBy string
	gamesDesc   bool
	gamesOffset int
	gamesLimit  int
)

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "Read the game catalog from the configured backend",
}

var gamesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List games",
	RunE:  runGamesList,
}

var gamesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one game with its relations and rating",
	Args:  cobra.ExactArgs(1),
	RunE:  runGamesGet,
}

func init() {
	gamesListCmd.Flags().StringVar(&gamesSearch, "search", "", "substring name filter")
	gamesListCmd.Flags().StringVar(&gamesSortBy, "sort", "name", "sort field (name, year_published, bgg_rating, playing_time)")
	gamesListCmd.Flags().BoolVar(&gamesDesc, "desc", false, "sort descending")
	gamesListCmd.Flags().IntVar(&gamesOffset, "offset", 0, "page offset")
	gamesListCmd.Flags().IntVar(&gamesLimit, "limit", 20, "page size")
	gamesCmd.AddCommand(gamesListCmd)
	gamesCmd.AddCommand(gamesGetCmd)
}

func runGamesList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	repos, cleanup, err := openRepos(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	services := service.New(repos, logger)
	order := "asc"
	if gamesDesc {
		order = "desc"
	}
	games, total, err := services.Games.List(ctx, repository.ListParams{
		Offset:    gamesOffset,
		Limit:     gamesLimit,
		Search:    gamesSearch,
		SortBy:    gamesSortBy,
		SortOrder: order,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%d of %d game(s)\n", len(games), total)
	for _, game := range games {
		year := ""
		if game.YearPublished != nil {
			year = " (" + *game.YearPublished + ")"
		}
		fmt.Printf("  %5d  %s%s\n", game.ID, game.Name, year)
	}
	return nil
}

func runGamesGet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid game id %q", args[0])
	}

	repos, cleanup, err := openRepos(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	services := service.New(repos, logger)
	detail, err := services.Games.GetDetail(ctx, id)
	if err != nil {
		return err
	}
	if detail == nil {
		return fmt.Errorf("game %d not found", id)
	}

	fmt.Printf("%s (id %d)\n", detail.Name, detail.ID)
	if detail.YearPublished != nil {
		fmt.Printf("  published: %s\n", *detail.YearPublished)
	}
	if detail.BggRating != nil {
		fmt.Printf("  bgg rating: %.2f\n", *detail.BggRating)
	}
	printRelation("designers", detail.Designers)
	printRelation("artists", detail.Artists)
	printRelation("publishers", detail.Publishers)
	printRelation("mechanics", detail.Mechanics)
	printRelation("genres", detail.Genres)

	average, count, err := services.Reviews.GameRating(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		fmt.Printf("  user rating: %.2f across %d review(s)\n", average, count)
	}
	return nil
}

func printRelation(label string, items []models.IDName) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("  %s:", label)
	for i, item := range items {
		if i > 0 {
			fmt.Print(",")
		}
		fmt.Printf(" %s", item.Name)
	}
	fmt.Println()
}

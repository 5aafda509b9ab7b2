package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gamevault/gamevault-go/internal/config"
	"github.com/gamevault/gamevault-go/internal/database"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show storage sizes for the configured backend",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	switch cfg.Backend {
	case config.BackendSQL:
		return sqlStats(ctx)
	case config.BackendMongo:
		return mongoStats(ctx)
	case config.BackendNeo:
		return neoStats(ctx)
	default:
		return fmt.Errorf("unknown backend %q (valid: sql, mongo, neo)", cfg.Backend)
	}
}

func sqlStats(ctx context.Context) error {
	db, err := openSQL(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tables := []string{
		"game", `"user"`, "designer", "artist", "publisher", "mechanic",
		"genre", "language", "review", "video", "matchup", "move",
	}
	fmt.Println("Relational row counts:")
	for _, table := range tables {
		var count int
		if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM `+table); err != nil {
			return fmt.Errorf("count %s: %w", table, err)
		}
		fmt.Printf("  %-12s %d\n", table, count)
	}
	return nil
}

func mongoStats(ctx context.Context) error {
	client, err := database.OpenMongo(ctx, cfg.Mongo, logger)
	if err != nil {
		return err
	}
	defer client.Close(context.Background())

	fmt.Println("Document collection sizes:")
	for _, name := range []string{"games", "users", "reviews", "matchups", "languages"} {
		count, err := client.Collection(name).CountDocuments(ctx, map[string]any{})
		if err != nil {
			return fmt.Errorf("count %s: %w", name, err)
		}
		fmt.Printf("  %-12s %d\n", name, count)
	}
	return nil
}

func neoStats(ctx context.Context) error {
	client, err := database.OpenNeo4j(ctx, cfg.Neo4j, logger)
	if err != nil {
		return err
	}
	defer client.Close(context.Background())

	records, err := client.RunRead(ctx, `MATCH (n) RETURN count(n) AS total`, nil)
	if err != nil {
		return err
	}
	nodes, err := database.CountValue(records, "total")
	if err != nil {
		return err
	}

	records, err = client.RunRead(ctx, `MATCH ()-[r]->() RETURN count(r) AS total`, nil)
	if err != nil {
		return err
	}
	relationships, err := database.CountValue(records, "total")
	if err != nil {
		return err
	}

	fmt.Printf("Graph: %d node(s), %d relationship(s)\n", nodes, relationships)

	records, err = client.RunRead(ctx,
		`MATCH (n) UNWIND labels(n) AS label RETURN label, count(*) AS total ORDER BY label`, nil)
	if err != nil {
		return err
	}
	for _, record := range records {
		label, _ := record["label"].(string)
		total, _ := record["total"].(int64)
		fmt.Printf("  %-12s %d\n", label, total)
	}
	return nil
}

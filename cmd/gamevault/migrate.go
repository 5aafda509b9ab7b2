package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gamevault/gamevault-go/internal/database"
	"github.com/gamevault/gamevault-go/internal/migrate"
)

var migrateReset bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy the relational store into another backend",
}

var migrateMongoCmd = &cobra.Command{
	Use:   "mongo",
	Short: "Migrate the relational store into MongoDB",
	RunE:  runMigrateMongo,
}

var migrateNeoCmd = &cobra.Command{
	Use:   "neo4j",
	Short: "Migrate the relational store into Neo4j",
	RunE:  runMigrateNeo,
}

func init() {
	migrateMongoCmd.Flags().BoolVar(&migrateReset, "reset", false, "drop target collections before migrating")
	migrateCmd.AddCommand(migrateMongoCmd)
	migrateCmd.AddCommand(migrateNeoCmd)
}

func runMigrateMongo(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	db, err := openSQL(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	client, err := database.OpenMongo(ctx, cfg.Mongo, logger)
	if err != nil {
		return err
	}
	defer client.Close(context.Background())

	migration := migrate.NewMongoMigration(migrate.NewSource(db), client, logger)
	report, err := migration.Run(ctx, migrateReset)
	printReport(report)
	return err
}

func runMigrateNeo(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	db, err := openSQL(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	client, err := database.OpenNeo4j(ctx, cfg.Neo4j, logger)
	if err != nil {
		return err
	}
	defer client.Close(context.Background())

	migration := migrate.NewNeo4jMigration(migrate.NewSource(db), client, logger)
	report, err := migration.Run(ctx)
	printReport(report)
	return err
}

func printReport(report *migrate.Report) {
	if report == nil {
		return
	}
	fmt.Printf("Run %s finished in %s\n", report.RunID, report.Duration())
	for entity, count := range report.Counts {
		fmt.Printf("  %-16s %d\n", entity, count)
	}
	if len(report.Failures) > 0 {
		fmt.Printf("Failures (%d):\n", len(report.Failures))
		for _, failure := range report.Failures {
			fmt.Printf("  %s\n", failure)
		}
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gamevault/gamevault-go/internal/aggregator"
	"github.com/gamevault/gamevault-go/internal/repository/sqlrepo"
)

var importIDs []int

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import games from BoardGameGeek into the relational store",
	RunE:  runImport,
}

func init() {
	importCmd.Flags().IntSliceVar(&importIDs, "ids", nil, "BGG thing ids to import")
	importCmd.MarkFlagRequired("ids")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	db, err := openSQL(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := sqlrepo.InitSchema(ctx, db); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	client := aggregator.NewClient(cfg.BGG, logger)
	things, err := client.FetchThings(ctx, importIDs)
	if err != nil {
		return err
	}

	importer := aggregator.NewImporter(db, logger)
	result, err := importer.Import(ctx, things)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d game(s), skipped %d\n", result.Imported, result.Skipped)
	for id, failure := range result.Failures {
		fmt.Printf("  failed %d: %v\n", id, failure)
	}
	return nil
}

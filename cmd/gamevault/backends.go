package main

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/gamevault/gamevault-go/internal/database"
	"github.com/gamevault/gamevault-go/internal/repository"
	"github.com/gamevault/gamevault-go/internal/repository/factory"
)

// openSQL opens the relational store regardless of the configured backend;
// migrations and the importer always need it as the source of truth.
func openSQL(ctx context.Context) (*sqlx.DB, error) {
	return database.OpenSQL(ctx, cfg.SQL, logger)
}

// openRepos wires the repository set for the configured backend and returns
// a cleanup closing whatever was opened.
func openRepos(ctx context.Context) (*repository.Repositories, func(), error) {
	backend, err := factory.ParseBackend(cfg.Backend)
	if err != nil {
		return nil, nil, err
	}

	clients := factory.Clients{}
	cleanup := func() {}

	switch backend {
	case factory.BackendSQL:
		db, err := openSQL(ctx)
		if err != nil {
			return nil, nil, err
		}
		clients.SQL = db
		cleanup = func() { db.Close() }

	case factory.BackendMongo:
		client, err := database.OpenMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, nil, err
		}
		clients.Mongo = client
		cleanup = func() { client.Close(context.Background()) }

	case factory.BackendNeo:
		client, err := database.OpenNeo4j(ctx, cfg.Neo4j, logger)
		if err != nil {
			return nil, nil, err
		}
		clients.Neo4j = client
		cleanup = func() { client.Close(context.Background()) }
	}

	repos, err := factory.New(backend, clients)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return repos, cleanup, nil
}

// Package factory instantiates the repository set for a selected backend.
// It is the only package that imports the concrete implementations.
package factory

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gamevault/gamevault-go/internal/database"
	"github.com/gamevault/gamevault-go/internal/repository"
	"github.com/gamevault/gamevault-go/internal/repository/mongorepo"
	"github.com/gamevault/gamevault-go/internal/repository/neorepo"
	"github.com/gamevault/gamevault-go/internal/repository/sqlrepo"
)

// Backend selects the storage engine serving the repository interfaces.
type Backend string

const (
	BackendSQL   Backend = "sql"
	BackendMongo Backend = "mongo"
	BackendNeo   Backend = "neo"
)

// ParseBackend validates a configuration value. Invalid values fail
// construction immediately, naming the offending value.
func ParseBackend(value string) (Backend, error) {
	switch Backend(value) {
	case BackendSQL, BackendMongo, BackendNeo:
		return Backend(value), nil
	default:
		return "", fmt.Errorf("unknown backend %q (valid: sql, mongo, neo)", value)
	}
}

// Clients holds the backend handles the factory can draw from. Only the
// handle matching the selected backend needs to be non-nil.
type Clients struct {
	SQL   *sqlx.DB
	Mongo *database.MongoClient
	Neo4j *database.Neo4jClient
}

// New instantiates the full repository set for one backend. This is the seam
// that keeps everything above it backend-agnostic; nothing outside this
// package imports a concrete implementation.
func New(backend Backend, clients Clients) (*repository.Repositories, error) {
	switch backend {
	case BackendSQL:
		if clients.SQL == nil {
			return nil, fmt.Errorf("backend %q selected but no sql connection provided", backend)
		}
		return &repository.Repositories{
			Games:      sqlrepo.NewGameRepository(clients.SQL),
			Users:      sqlrepo.NewUserRepository(clients.SQL),
			Reviews:    sqlrepo.NewReviewRepository(clients.SQL),
			Videos:     sqlrepo.NewVideoRepository(clients.SQL),
			Languages:  sqlrepo.NewLanguageRepository(clients.SQL),
			Designers:  sqlrepo.NewPersonRepository(clients.SQL, sqlrepo.TableDesigners),
			Artists:    sqlrepo.NewPersonRepository(clients.SQL, sqlrepo.TableArtists),
			Publishers: sqlrepo.NewNamedRepository(clients.SQL, sqlrepo.TablePublishers),
			Mechanics:  sqlrepo.NewNamedRepository(clients.SQL, sqlrepo.TableMechanics),
			Genres:     sqlrepo.NewNamedRepository(clients.SQL, sqlrepo.TableGenres),
			Matchups:   sqlrepo.NewMatchupRepository(clients.SQL),
			Moves:      sqlrepo.NewMoveRepository(clients.SQL),
		}, nil

	case BackendMongo:
		if clients.Mongo == nil {
			return nil, fmt.Errorf("backend %q selected but no mongo client provided", backend)
		}
		db := clients.Mongo.Database()
		return &repository.Repositories{
			Games:      mongorepo.NewGameRepository(db),
			Users:      mongorepo.NewUserRepository(db),
			Reviews:    mongorepo.NewReviewRepository(db),
			Videos:     mongorepo.NewVideoRepository(db),
			Languages:  mongorepo.NewLanguageRepository(db),
			Designers:  mongorepo.NewPersonRepository(db, "designers"),
			Artists:    mongorepo.NewPersonRepository(db, "artists"),
			Publishers: mongorepo.NewNamedRepository(db, "publishers"),
			Mechanics:  mongorepo.NewNamedRepository(db, "mechanics"),
			Genres:     mongorepo.NewNamedRepository(db, "genres"),
		}, nil

	case BackendNeo:
		if clients.Neo4j == nil {
			return nil, fmt.Errorf("backend %q selected but no neo4j client provided", backend)
		}
		return &repository.Repositories{
			Games:      neorepo.NewGameRepository(clients.Neo4j),
			Users:      neorepo.NewUserRepository(clients.Neo4j),
			Reviews:    neorepo.NewReviewRepository(clients.Neo4j),
			Videos:     neorepo.NewVideoRepository(clients.Neo4j),
			Languages:  neorepo.NewLanguageRepository(clients.Neo4j),
			Designers:  neorepo.NewPersonRepository(clients.Neo4j, "Designer"),
			Artists:    neorepo.NewPersonRepository(clients.Neo4j, "Artist"),
			Publishers: neorepo.NewNamedRepository(clients.Neo4j, "Publisher"),
			Mechanics:  neorepo.NewNamedRepository(clients.Neo4j, "Mechanic"),
			Genres:     neorepo.NewNamedRepository(clients.Neo4j, "Genre"),
		}, nil

	default:
		return nil, fmt.Errorf("unknown backend %q (valid: sql, mongo, neo)", backend)
	}
}

package sqlrepo

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Table and join-table names for the relational schema.
const (
	TableDesigners  = "designer"
	TableArtists    = "artist"
	TablePublishers = "publisher"
	TableMechanics  = "mechanic"
	TableGenres     = "genre"
)

// joinTables maps a sub-entity table to its game association table and the
// foreign-key column inside it.
var joinTables = map[string]struct {
	Table  string
	Column string
}{
	TableDesigners:  {"game_designers", "designer_id"},
	TableArtists:    {"game_artists", "artist_id"},
	TablePublishers: {"game_publishers", "publisher_id"},
	TableMechanics:  {"game_mechanics", "mechanic_id"},
	TableGenres:     {"game_genres", "genre_id"},
}

// Schema is the relational DDL. Portable across Postgres and SQLite: ids are
// supplied by callers when mirroring external data (BGG ids, migration) and
// otherwise assigned from the max-id path in Create.
const Schema = `
CREATE TABLE IF NOT EXISTS game (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	slug TEXT,
	year_published TEXT,
	bgg_rating DOUBLE PRECISION,
	difficulty_rating DOUBLE PRECISION,
	description TEXT,
	playing_time INTEGER,
	available BOOLEAN,
	min_players INTEGER,
	max_players INTEGER,
	minimum_age INTEGER,
	image TEXT,
	thumbnail TEXT
);

CREATE TABLE IF NOT EXISTS "user" (
	id INTEGER PRIMARY KEY,
	display_name TEXT NOT NULL UNIQUE,
	username TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	email TEXT NOT NULL,
	dob TIMESTAMP,
	is_admin BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS designer (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	dob TIMESTAMP
);

CREATE TABLE IF NOT EXISTS artist (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	dob TIMESTAMP
);

CREATE TABLE IF NOT EXISTS publisher (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS mechanic (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS genre (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS language (
	id INTEGER PRIMARY KEY,
	language TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS review (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	text TEXT NOT NULL DEFAULT '',
	star_amount INTEGER NOT NULL,
	user_id INTEGER NOT NULL REFERENCES "user"(id),
	game_id INTEGER NOT NULL REFERENCES game(id)
);

CREATE TABLE IF NOT EXISTS video (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	category TEXT,
	link TEXT NOT NULL,
	game_id INTEGER NOT NULL REFERENCES game(id),
	language_id INTEGER REFERENCES language(id)
);

CREATE TABLE IF NOT EXISTS game_designers (
	game_id INTEGER NOT NULL REFERENCES game(id),
	designer_id INTEGER NOT NULL REFERENCES designer(id),
	PRIMARY KEY (game_id, designer_id)
);

CREATE TABLE IF NOT EXISTS game_artists (
	game_id INTEGER NOT NULL REFERENCES game(id),
	artist_id INTEGER NOT NULL REFERENCES artist(id),
	PRIMARY KEY (game_id, artist_id)
);

CREATE TABLE IF NOT EXISTS game_publishers (
	game_id INTEGER NOT NULL REFERENCES game(id),
	publisher_id INTEGER NOT NULL REFERENCES publisher(id),
	PRIMARY KEY (game_id, publisher_id)
);

CREATE TABLE IF NOT EXISTS game_mechanics (
	game_id INTEGER NOT NULL REFERENCES game(id),
	mechanic_id INTEGER NOT NULL REFERENCES mechanic(id),
	PRIMARY KEY (game_id, mechanic_id)
);

CREATE TABLE IF NOT EXISTS game_genres (
	game_id INTEGER NOT NULL REFERENCES game(id),
	genre_id INTEGER NOT NULL REFERENCES genre(id),
	PRIMARY KEY (game_id, genre_id)
);

CREATE TABLE IF NOT EXISTS matchup (
	id INTEGER PRIMARY KEY,
	game_id INTEGER NOT NULL REFERENCES game(id),
	user_id_1 INTEGER NOT NULL REFERENCES "user"(id),
	user_id_2 INTEGER NOT NULL REFERENCES "user"(id),
	user_id_winner INTEGER,
	created_by_user_id INTEGER,
	start_time TIMESTAMP,
	end_time TIMESTAMP,
	created_at TIMESTAMP,
	is_private BOOLEAN NOT NULL DEFAULT FALSE,
	is_expired BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS move (
	id INTEGER PRIMARY KEY,
	matchup_id INTEGER NOT NULL REFERENCES matchup(id),
	ply INTEGER NOT NULL,
	start_x INTEGER NOT NULL,
	start_y INTEGER NOT NULL,
	end_x INTEGER,
	end_y INTEGER
);

CREATE TABLE IF NOT EXISTS matchup_comment (
	id INTEGER PRIMARY KEY,
	matchup_id INTEGER NOT NULL REFERENCES matchup(id),
	user_id INTEGER NOT NULL REFERENCES "user"(id),
	text TEXT NOT NULL,
	created_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS spectator (
	matchup_id INTEGER NOT NULL REFERENCES matchup(id),
	user_id INTEGER NOT NULL REFERENCES "user"(id),
	PRIMARY KEY (matchup_id, user_id)
);

CREATE TABLE IF NOT EXISTS friendship (
	user_id_1 INTEGER NOT NULL REFERENCES "user"(id),
	user_id_2 INTEGER NOT NULL REFERENCES "user"(id),
	created_at TIMESTAMP,
	PRIMARY KEY (user_id_1, user_id_2)
);

CREATE TABLE IF NOT EXISTS message (
	id INTEGER PRIMARY KEY,
	user_id_1 INTEGER NOT NULL REFERENCES "user"(id),
	user_id_2 INTEGER NOT NULL REFERENCES "user"(id),
	text TEXT NOT NULL,
	sent_at TIMESTAMP
);
`

// InitSchema creates all tables if they do not already exist.
func InitSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}

package aggregator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/gamevault/gamevault-go/internal/models"
	"github.com/gamevault/gamevault-go/internal/repository/sqlrepo"
)

// linkTables maps BGG link types onto the relational sub-entity tables.
// boardgamecategory lands in genre; BGG has no genre concept of its own.
var linkTables = map[string]string{
	"boardgamedesigner":  sqlrepo.TableDesigners,
	"boardgameartist":    sqlrepo.TableArtists,
	"boardgamepublisher": sqlrepo.TablePublishers,
	"boardgamemechanic":  sqlrepo.TableMechanics,
	"boardgamecategory":  sqlrepo.TableGenres,
}

// Importer upserts fetched BGG data into the relational store, keyed on the
// BGG id. Re-importing the same ids refreshes the rows in place.
type Importer struct {
	db     *sqlx.DB
	games  *sqlrepo.GameRepository
	logger *logrus.Logger
}

func NewImporter(db *sqlx.DB, logger *logrus.Logger) *Importer {
	return &Importer{
		db:     db,
		games:  sqlrepo.NewGameRepository(db),
		logger: logger,
	}
}

// ImportResult accounts for one import run.
type ImportResult struct {
	Imported int
	Skipped  int
	Failures map[int]error
}

// Import writes each fetched thing. A failing record is recorded and
// skipped; non-boardgame items (expansions, accessories) are skipped
// silently.
func (i *Importer) Import(ctx context.Context, things []Thing) (*ImportResult, error) {
	result := &ImportResult{Failures: map[int]error{}}

	for _, thing := range things {
		if thing.Type != "boardgame" {
			result.Skipped++
			continue
		}
		if err := i.importThing(ctx, thing); err != nil {
			i.logger.WithError(err).WithField("bgg_id", thing.ID).Warn("import failed")
			result.Failures[thing.ID] = err
			continue
		}
		result.Imported++
		i.logger.WithFields(logrus.Fields{"bgg_id": thing.ID, "name": thing.PrimaryName()}).Info("game imported")
	}
	return result, nil
}

func (i *Importer) importThing(ctx context.Context, thing Thing) error {
	if err := i.upsertGame(ctx, thing); err != nil {
		return err
	}
	if err := i.upsertLinks(ctx, thing); err != nil {
		return err
	}
	return i.upsertVideos(ctx, thing)
}

func (i *Importer) upsertGame(ctx context.Context, thing Thing) error {
	name := thing.PrimaryName()
	if name == "" {
		return fmt.Errorf("bgg item %d has no name", thing.ID)
	}
	slug := Slugify(name)
	description := html.UnescapeString(thing.Description)

	query := i.db.Rebind(`
		INSERT INTO game (id, name, slug, year_published, bgg_rating, difficulty_rating,
			description, playing_time, min_players, max_players, minimum_age, image, thumbnail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			slug = EXCLUDED.slug,
			year_published = EXCLUDED.year_published,
			bgg_rating = EXCLUDED.bgg_rating,
			difficulty_rating = EXCLUDED.difficulty_rating,
			description = EXCLUDED.description,
			playing_time = EXCLUDED.playing_time,
			min_players = EXCLUDED.min_players,
			max_players = EXCLUDED.max_players,
			minimum_age = EXCLUDED.minimum_age,
			image = EXCLUDED.image,
			thumbnail = EXCLUDED.thumbnail`)

	_, err := i.db.ExecContext(ctx, query,
		thing.ID, name, slug, thing.Year.String(),
		thing.Statistics.Ratings.Average.Float(),
		thing.Statistics.Ratings.AverageWeight.Float(),
		nullableString(description), thing.PlayingTime.Int(),
		thing.MinPlayers.Int(), thing.MaxPlayers.Int(), thing.MinAge.Int(),
		nullableString(thing.Image), nullableString(thing.Thumbnail))
	if err != nil {
		return fmt.Errorf("upsert game %d: %w", thing.ID, err)
	}
	return nil
}

func (i *Importer) upsertLinks(ctx context.Context, thing Thing) error {
	byTable := map[string][]models.IDName{}
	for _, link := range thing.Links {
		table, ok := linkTables[link.Type]
		if !ok {
			continue
		}
		byTable[table] = append(byTable[table], models.IDName{ID: link.ID, Name: link.Value})
	}

	for table, items := range byTable {
		ids := make([]int, 0, len(items))
		for _, item := range items {
			query := i.db.Rebind(`
				INSERT INTO ` + table + ` (id, name) VALUES (?, ?)
				ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`)
			if _, err := i.db.ExecContext(ctx, query, item.ID, item.Name); err != nil {
				return fmt.Errorf("upsert %s %d: %w", table, item.ID, err)
			}
			ids = append(ids, item.ID)
		}
		if err := i.games.SetAssociations(ctx, thing.ID, table, ids); err != nil {
			return err
		}
	}
	return nil
}

func (i *Importer) upsertVideos(ctx context.Context, thing Thing) error {
	for _, video := range thing.Videos.Videos {
		languageID, err := i.languageID(ctx, video.Language)
		if err != nil {
			return err
		}

		query := i.db.Rebind(`
			INSERT INTO video (id, title, category, link, game_id, language_id)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				title = EXCLUDED.title,
				category = EXCLUDED.category,
				link = EXCLUDED.link,
				language_id = EXCLUDED.language_id`)
		_, err = i.db.ExecContext(ctx, query,
			video.ID, video.Title, nullableString(video.Category), video.Link, thing.ID, languageID)
		if err != nil {
			return fmt.Errorf("upsert video %d: %w", video.ID, err)
		}
	}
	return nil
}

// languageID gets or creates a language row by name.
func (i *Importer) languageID(ctx context.Context, name string) (*int, error) {
	if name == "" {
		return nil, nil
	}

	var id int
	query := i.db.Rebind(`SELECT id FROM language WHERE LOWER(language) = LOWER(?)`)
	err := i.db.GetContext(ctx, &id, query, name)
	if err == nil {
		return &id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("look up language %q: %w", name, err)
	}

	insert := i.db.Rebind(`
		INSERT INTO language (id, language)
		VALUES ((SELECT COALESCE(MAX(id), 0) + 1 FROM language), ?)
		RETURNING id`)
	if err := i.db.GetContext(ctx, &id, insert, name); err != nil {
		return nil, fmt.Errorf("create language %q: %w", name, err)
	}
	return &id, nil
}

func nullableString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Slugify lowercases a name and collapses everything non-alphanumeric into
// single hyphens.
func Slugify(name string) *string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		return nil
	}
	return &slug
}

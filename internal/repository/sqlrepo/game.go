package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gamevault/gamevault-go/internal/models"
	"github.com/gamevault/gamevault-go/internal/repository"
)

// GameRepository is the relational game store: normalized game table plus
// explicit join tables for the many-to-many relations.
type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

var gameUpdatable = map[string]bool{
	"name": true, "slug": true, "year_published": true,
	"bgg_rating": true, "difficulty_rating": true, "description": true,
	"playing_time": true, "available": true, "min_players": true,
	"max_players": true, "minimum_age": true, "image": true, "thumbnail": true,
}

var gameSortable = map[string]string{
	"name":           "name",
	"year_published": "year_published",
	"bgg_rating":     "bgg_rating",
	"playing_time":   "playing_time",
}

func (r *GameRepository) Get(ctx context.Context, id int) (*models.Game, error) {
	var game models.Game
	query := r.db.Rebind(`SELECT * FROM game WHERE id = ?`)
	if err := r.db.GetContext(ctx, &game, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get game %d: %w", id, err)
	}
	return &game, nil
}

func (r *GameRepository) GetByName(ctx context.Context, name string) (*models.Game, error) {
	var game models.Game
	query := r.db.Rebind(`SELECT * FROM game WHERE name = ?`)
	if err := r.db.GetContext(ctx, &game, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get game by name %q: %w", name, err)
	}
	return &game, nil
}

// GetDetail loads a game with its related designers, artists, publishers,
// mechanics and genres via explicit join-table queries, one per relation
// (no lazy per-row loading).
func (r *GameRepository) GetDetail(ctx context.Context, id int) (*models.GameDetail, error) {
	game, err := r.Get(ctx, id)
	if err != nil || game == nil {
		return nil, err
	}

	detail := &models.GameDetail{Game: *game}
	for _, rel := range []struct {
		table string
		dest  *[]models.IDName
	}{
		{TableDesigners, &detail.Designers},
		{TableArtists, &detail.Artists},
		{TablePublishers, &detail.Publishers},
		{TableMechanics, &detail.Mechanics},
		{TableGenres, &detail.Genres},
	} {
		join := joinTables[rel.table]
		query := r.db.Rebind(fmt.Sprintf(
			`SELECT e.id, e.name FROM %s e
			 JOIN %s j ON e.id = j.%s
			 WHERE j.game_id = ?
			 ORDER BY e.id`,
			rel.table, join.Table, join.Column))
		if err := r.db.SelectContext(ctx, rel.dest, query, id); err != nil {
			return nil, fmt.Errorf("load %s for game %d: %w", rel.table, id, err)
		}
	}
	return detail, nil
}

// List pages games with an optional case-insensitive substring search on the
// name. Count and page share the same predicate so pagination metadata stays
// consistent with the returned window.
func (r *GameRepository) List(ctx context.Context, p repository.ListParams) ([]models.Game, int, error) {
	where := ""
	args := []any{}
	if p.Search != "" {
		where = ` WHERE LOWER(name) LIKE ?`
		args = append(args, likePattern(p.Search))
	}

	var total int
	countQuery := r.db.Rebind(`SELECT COUNT(*) FROM game` + where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count games: %w", err)
	}

	order := sortClause(p.SortBy, p.Desc(), gameSortable, "id")
	query := r.db.Rebind(`SELECT * FROM game` + where +
		` ORDER BY ` + order + ` LIMIT ? OFFSET ?`)
	args = append(args, p.Limit, p.Offset)

	games := []models.Game{}
	if err := r.db.SelectContext(ctx, &games, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list games: %w", err)
	}
	return games, total, nil
}

func (r *GameRepository) Create(ctx context.Context, game *models.Game) (*models.Game, error) {
	if game.ID == 0 {
		query := r.db.Rebind(`
			INSERT INTO game (id, name, slug, year_published, bgg_rating, difficulty_rating,
				description, playing_time, available, min_players, max_players, minimum_age,
				image, thumbnail)
			VALUES ((SELECT COALESCE(MAX(id), 0) + 1 FROM game), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id`)
		if err := r.db.QueryRowxContext(ctx, query,
			game.Name, game.Slug, game.YearPublished, game.BggRating, game.DifficultyRating,
			game.Description, game.PlayingTime, game.Available, game.MinPlayers, game.MaxPlayers,
			game.MinimumAge, game.Image, game.Thumbnail).Scan(&game.ID); err != nil {
			return nil, fmt.Errorf("create game: %w", err)
		}
		return game, nil
	}

	query := r.db.Rebind(`
		INSERT INTO game (id, name, slug, year_published, bgg_rating, difficulty_rating,
			description, playing_time, available, min_players, max_players, minimum_age,
			image, thumbnail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query,
		game.ID, game.Name, game.Slug, game.YearPublished, game.BggRating, game.DifficultyRating,
		game.Description, game.PlayingTime, game.Available, game.MinPlayers, game.MaxPlayers,
		game.MinimumAge, game.Image, game.Thumbnail); err != nil {
		return nil, fmt.Errorf("create game %d: %w", game.ID, err)
	}
	return game, nil
}

func (r *GameRepository) Update(ctx context.Context, id int, fields map[string]any) (*models.Game, error) {
	set, args, ok := buildSet(fields, gameUpdatable)
	if !ok {
		return r.Get(ctx, id)
	}

	query := r.db.Rebind(`UPDATE game SET ` + set + ` WHERE id = ?`)
	args = append(args, id)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update game %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return r.Get(ctx, id)
}

// Delete removes a game and everything that depends on it: reviews, videos
// and join-table associations, then the game row, all in one transaction.
// Any failure rolls the whole deletion back.
func (r *GameRepository) Delete(ctx context.Context, id int) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin game delete: %w", err)
	}
	defer tx.Rollback()

	cleanups := []string{
		`DELETE FROM review WHERE game_id = ?`,
		`DELETE FROM video WHERE game_id = ?`,
		`DELETE FROM game_designers WHERE game_id = ?`,
		`DELETE FROM game_artists WHERE game_id = ?`,
		`DELETE FROM game_publishers WHERE game_id = ?`,
		`DELETE FROM game_mechanics WHERE game_id = ?`,
		`DELETE FROM game_genres WHERE game_id = ?`,
	}
	for _, stmt := range cleanups {
		if _, err := tx.ExecContext(ctx, tx.Rebind(stmt), id); err != nil {
			return false, fmt.Errorf("delete game %d dependents: %w", id, err)
		}
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM game WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("delete game %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit game delete: %w", err)
	}
	return n > 0, nil
}

// SetAssociations replaces the join-table rows linking a game to one
// sub-entity table. Used by the importer.
func (r *GameRepository) SetAssociations(ctx context.Context, gameID int, table string, relatedIDs []int) error {
	join, ok := joinTables[table]
	if !ok {
		return fmt.Errorf("unknown association table for %q", table)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin association update: %w", err)
	}
	defer tx.Rollback()

	del := tx.Rebind(fmt.Sprintf(`DELETE FROM %s WHERE game_id = ?`, join.Table))
	if _, err := tx.ExecContext(ctx, del, gameID); err != nil {
		return fmt.Errorf("clear %s for game %d: %w", join.Table, gameID, err)
	}

	ins := tx.Rebind(fmt.Sprintf(
		`INSERT INTO %s (game_id, %s) VALUES (?, ?)`, join.Table, join.Column))
	for _, relatedID := range relatedIDs {
		if _, err := tx.ExecContext(ctx, ins, gameID, relatedID); err != nil {
			return fmt.Errorf("link game %d to %s %d: %w", gameID, table, relatedID, err)
		}
	}
	return tx.Commit()
}

// Package migrate copies the relational store into the document and graph
// stores. Transformers are pure functions; orchestrators sequence them,
// log-and-continue on individual records, and account for everything in a
// batch report.
package migrate

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/gamevault/gamevault-go/internal/models"
)

// Source reads the relational store eagerly. Catalog data sets are small
// enough to hold in memory; only reviews are fetched in windows.
type Source struct {
	db *sqlx.DB
}

func NewSource(db *sqlx.DB) *Source {
	return &Source{db: db}
}

func (s *Source) Games(ctx context.Context) ([]models.Game, error) {
	games := []models.Game{}
	if err := s.db.SelectContext(ctx, &games, `SELECT * FROM game ORDER BY id`); err != nil {
		return nil, fmt.Errorf("fetch games: %w", err)
	}
	return games, nil
}

func (s *Source) Users(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.db.SelectContext(ctx, &users, `SELECT * FROM "user" ORDER BY id`); err != nil {
		return nil, fmt.Errorf("fetch users: %w", err)
	}
	return users, nil
}

func (s *Source) Designers(ctx context.Context) ([]models.Person, error) {
	return s.people(ctx, "designer")
}

func (s *Source) Artists(ctx context.Context) ([]models.Person, error) {
	return s.people(ctx, "artist")
}

func (s *Source) people(ctx context.Context, table string) ([]models.Person, error) {
	people := []models.Person{}
	if err := s.db.SelectContext(ctx, &people, `SELECT * FROM `+table+` ORDER BY id`); err != nil {
		return nil, fmt.Errorf("fetch %ss: %w", table, err)
	}
	return people, nil
}

func (s *Source) Publishers(ctx context.Context) ([]models.NamedEntity, error) {
	return s.named(ctx, "publisher")
}

func (s *Source) Mechanics(ctx context.Context) ([]models.NamedEntity, error) {
	return s.named(ctx, "mechanic")
}

func (s *Source) Genres(ctx context.Context) ([]models.NamedEntity, error) {
	return s.named(ctx, "genre")
}

func (s *Source) named(ctx context.Context, table string) ([]models.NamedEntity, error) {
	entities := []models.NamedEntity{}
	if err := s.db.SelectContext(ctx, &entities, `SELECT * FROM `+table+` ORDER BY id`); err != nil {
		return nil, fmt.Errorf("fetch %ss: %w", table, err)
	}
	return entities, nil
}

func (s *Source) Languages(ctx context.Context) ([]models.Language, error) {
	languages := []models.Language{}
	if err := s.db.SelectContext(ctx, &languages, `SELECT * FROM language ORDER BY id`); err != nil {
		return nil, fmt.Errorf("fetch languages: %w", err)
	}
	return languages, nil
}

// gameRelation is one structured join row: game id plus the related
// entity's id and name, fetched in a single query per relation kind.
type gameRelation struct {
	GameID int    `db:"game_id"`
	ID     int    `db:"id"`
	Name   string `db:"name"`
}

var relationQueries = map[string]string{
	"designers": `SELECT gd.game_id, d.id, d.name FROM game_designers gd
		JOIN designer d ON d.id = gd.designer_id ORDER BY gd.game_id, d.id`,
	"artists": `SELECT ga.game_id, a.id, a.name FROM game_artists ga
		JOIN artist a ON a.id = ga.artist_id ORDER BY ga.game_id, a.id`,
	"publishers": `SELECT gp.game_id, p.id, p.name FROM game_publishers gp
		JOIN publisher p ON p.id = gp.publisher_id ORDER BY gp.game_id, p.id`,
	"mechanics": `SELECT gm.game_id, m.id, m.name FROM game_mechanics gm
		JOIN mechanic m ON m.id = gm.mechanic_id ORDER BY gm.game_id, m.id`,
	"genres": `SELECT gg.game_id, g.id, g.name FROM game_genres gg
		JOIN genre g ON g.id = gg.genre_id ORDER BY gg.game_id, g.id`,
}

// RelationsByGame fetches one relation kind for all games at once, keyed by
// game id. kind is one of designers, artists, publishers, mechanics, genres.
func (s *Source) RelationsByGame(ctx context.Context, kind string) (map[int][]models.IDName, error) {
	query, ok := relationQueries[kind]
	if !ok {
		return nil, fmt.Errorf("unknown relation kind %q", kind)
	}

	rows := []gameRelation{}
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("fetch %s relations: %w", kind, err)
	}

	byGame := map[int][]models.IDName{}
	for _, row := range rows {
		byGame[row.GameID] = append(byGame[row.GameID], models.IDName{ID: row.ID, Name: row.Name})
	}
	return byGame, nil
}

// VideoWithLanguage carries the joined language name for document embedding.
type VideoWithLanguage struct {
	models.Video
	Language *string `db:"language"`
}

func (s *Source) VideosByGame(ctx context.Context) (map[int][]VideoWithLanguage, error) {
	videos := []VideoWithLanguage{}
	err := s.db.SelectContext(ctx, &videos, `
		SELECT v.*, l.language FROM video v
		LEFT JOIN language l ON l.id = v.language_id
		ORDER BY v.game_id, v.id`)
	if err != nil {
		return nil, fmt.Errorf("fetch videos: %w", err)
	}

	byGame := map[int][]VideoWithLanguage{}
	for _, video := range videos {
		byGame[video.GameID] = append(byGame[video.GameID], video)
	}
	return byGame, nil
}

func (s *Source) Videos(ctx context.Context) ([]models.Video, error) {
	videos := []models.Video{}
	if err := s.db.SelectContext(ctx, &videos, `SELECT * FROM video ORDER BY id`); err != nil {
		return nil, fmt.Errorf("fetch videos: %w", err)
	}
	return videos, nil
}

// ReviewsBatch pages through reviews joined with their authors; the document
// migration inserts them in windows instead of loading all at once.
func (s *Source) ReviewsBatch(ctx context.Context, offset, limit int) ([]models.ReviewWithUser, error) {
	reviews := []models.ReviewWithUser{}
	query := s.db.Rebind(`
		SELECT r.*, u.display_name, u.username FROM review r
		JOIN "user" u ON u.id = r.user_id
		ORDER BY r.id LIMIT ? OFFSET ?`)
	if err := s.db.SelectContext(ctx, &reviews, query, limit, offset); err != nil {
		return nil, fmt.Errorf("fetch reviews batch at %d: %w", offset, err)
	}
	return reviews, nil
}

// ReviewIDsByGame fetches just the review ids per game, for the
// review_ids backlink embedded in game documents.
func (s *Source) ReviewIDsByGame(ctx context.Context) (map[int][]int, error) {
	rows := []struct {
		ID     int `db:"id"`
		GameID int `db:"game_id"`
	}{}
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, game_id FROM review ORDER BY game_id, id`); err != nil {
		return nil, fmt.Errorf("fetch review ids: %w", err)
	}
	byGame := map[int][]int{}
	for _, row := range rows {
		byGame[row.GameID] = append(byGame[row.GameID], row.ID)
	}
	return byGame, nil
}

func (s *Source) ReviewCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM review`); err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return count, nil
}

func (s *Source) Matchups(ctx context.Context) ([]models.Matchup, error) {
	matchups := []models.Matchup{}
	if err := s.db.SelectContext(ctx, &matchups, `SELECT * FROM matchup ORDER BY id`); err != nil {
		return nil, fmt.Errorf("fetch matchups: %w", err)
	}
	return matchups, nil
}

func (s *Source) MovesByMatchup(ctx context.Context) (map[int][]models.Move, error) {
	moves := []models.Move{}
	if err := s.db.SelectContext(ctx, &moves, `SELECT * FROM move ORDER BY matchup_id, ply`); err != nil {
		return nil, fmt.Errorf("fetch moves: %w", err)
	}
	byMatchup := map[int][]models.Move{}
	for _, move := range moves {
		byMatchup[move.MatchupID] = append(byMatchup[move.MatchupID], move)
	}
	return byMatchup, nil
}

func (s *Source) CommentsByMatchup(ctx context.Context) (map[int][]models.MatchupComment, error) {
	comments := []models.MatchupComment{}
	if err := s.db.SelectContext(ctx, &comments, `SELECT * FROM matchup_comment ORDER BY matchup_id, id`); err != nil {
		return nil, fmt.Errorf("fetch matchup comments: %w", err)
	}
	byMatchup := map[int][]models.MatchupComment{}
	for _, comment := range comments {
		byMatchup[comment.MatchupID] = append(byMatchup[comment.MatchupID], comment)
	}
	return byMatchup, nil
}

func (s *Source) SpectatorsByMatchup(ctx context.Context) (map[int][]int, error) {
	spectators := []models.Spectator{}
	if err := s.db.SelectContext(ctx, &spectators, `SELECT * FROM spectator ORDER BY matchup_id, user_id`); err != nil {
		return nil, fmt.Errorf("fetch spectators: %w", err)
	}
	byMatchup := map[int][]int{}
	for _, spectator := range spectators {
		byMatchup[spectator.MatchupID] = append(byMatchup[spectator.MatchupID], spectator.UserID)
	}
	return byMatchup, nil
}

func (s *Source) Friendships(ctx context.Context) ([]models.Friendship, error) {
	friendships := []models.Friendship{}
	if err := s.db.SelectContext(ctx, &friendships, `SELECT * FROM friendship ORDER BY user_id_1, user_id_2`); err != nil {
		return nil, fmt.Errorf("fetch friendships: %w", err)
	}
	return friendships, nil
}

func (s *Source) Messages(ctx context.Context) ([]models.Message, error) {
	messages := []models.Message{}
	if err := s.db.SelectContext(ctx, &messages, `SELECT * FROM message ORDER BY id`); err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	return messages, nil
}

// SplitIDNamePairs zips comma-joined id and name strings into pairs. Rows
// past the shorter list are dropped; a malformed id drops its pair.
func SplitIDNamePairs(ids, names string) []models.IDName {
	if ids == "" || names == "" {
		return []models.IDName{}
	}
	idParts := strings.Split(ids, ",")
	nameParts := strings.Split(names, ",")

	n := len(idParts)
	if len(nameParts) < n {
		n = len(nameParts)
	}
	pairs := make([]models.IDName, 0, n)
	for i := 0; i < n; i++ {
		id, err := strconv.Atoi(strings.TrimSpace(idParts[i]))
		if err != nil {
			continue
		}
		pairs = append(pairs, models.IDName{ID: id, Name: strings.TrimSpace(nameParts[i])})
	}
	return pairs
}

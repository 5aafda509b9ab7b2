package neorepo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gamevault/gamevault-go/internal/database"
	"github.com/gamevault/gamevault-go/internal/models"
	"github.com/gamevault/gamevault-go/internal/repository"
)

type GameRepository struct {
	client *database.Neo4jClient
}

func NewGameRepository(client *database.Neo4jClient) *GameRepository {
	return &GameRepository{client: client}
}

// gameSortable whitelists ORDER BY properties. Sort fields are interpolated
// into Cypher text, so only values from this map ever reach the query.
var gameSortable = map[string]string{
	"name":           "g.name",
	"year_published": "g.year_published",
	"bgg_rating":     "g.bgg_rating",
	"playing_time":   "g.playing_time",
}

func propsToGame(props map[string]any) *models.Game {
	return &models.Game{
		ID:               intProp(props, "id"),
		Name:             strProp(props, "name"),
		Slug:             strPtrProp(props, "slug"),
		YearPublished:    strPtrProp(props, "year_published"),
		BggRating:        floatPtrProp(props, "bgg_rating"),
		DifficultyRating: floatPtrProp(props, "difficulty_rating"),
		Description:      strPtrProp(props, "description"),
		PlayingTime:      intPtrProp(props, "playing_time"),
		MinPlayers:       intPtrProp(props, "min_players"),
		MaxPlayers:       intPtrProp(props, "max_players"),
		MinimumAge:       intPtrProp(props, "minimum_age"),
		Image:            strPtrProp(props, "image"),
		Thumbnail:        strPtrProp(props, "thumbnail"),
	}
}

func gameProps(game *models.Game) map[string]any {
	return map[string]any{
		"name":              game.Name,
		"slug":              game.Slug,
		"year_published":    game.YearPublished,
		"bgg_rating":        game.BggRating,
		"difficulty_rating": game.DifficultyRating,
		"description":       game.Description,
		"playing_time":      game.PlayingTime,
		"min_players":       game.MinPlayers,
		"max_players":       game.MaxPlayers,
		"minimum_age":       game.MinimumAge,
		"image":             game.Image,
		"thumbnail":         game.Thumbnail,
	}
}

func (r *GameRepository) getOne(ctx context.Context, query string, params map[string]any) (*models.Game, error) {
	records, err := r.client.RunRead(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	props, ok := nodeProps(records[0], "node")
	if !ok {
		return nil, fmt.Errorf("get game: unexpected record shape")
	}
	return propsToGame(props), nil
}

func (r *GameRepository) Get(ctx context.Context, id int) (*models.Game, error) {
	return r.getOne(ctx,
		`MATCH (g:Game {id: $id}) RETURN g{.*} AS node`,
		map[string]any{"id": id})
}

func (r *GameRepository) GetByName(ctx context.Context, name string) (*models.Game, error) {
	return r.getOne(ctx,
		`MATCH (g:Game) WHERE toLower(g.name) = toLower($name) RETURN g{.*} AS node LIMIT 1`,
		map[string]any{"name": name})
}

func collectIDNames(raw any) []models.IDName {
	items := []models.IDName{}
	list, ok := raw.([]any)
	if !ok {
		return items
	}
	for _, entry := range list {
		props, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		items = append(items, models.IDName{ID: intProp(props, "id"), Name: strProp(props, "name")})
	}
	return items
}

func (r *GameRepository) GetDetail(ctx context.Context, id int) (*models.GameDetail, error) {
	query := `
		MATCH (g:Game {id: $id})
		OPTIONAL MATCH (g)-[:` + RelDesignedBy + `]->(d:Designer)
		WITH g, collect(DISTINCT d{.id, .name}) AS designers
		OPTIONAL MATCH (g)-[:` + RelArtBy + `]->(a:Artist)
		WITH g, designers, collect(DISTINCT a{.id, .name}) AS artists
		OPTIONAL MATCH (g)-[:` + RelPublishedBy + `]->(p:Publisher)
		WITH g, designers, artists, collect(DISTINCT p{.id, .name}) AS publishers
		OPTIONAL MATCH (g)-[:` + RelUsesMechanic + `]->(m:Mechanic)
		WITH g, designers, artists, publishers, collect(DISTINCT m{.id, .name}) AS mechanics
		OPTIONAL MATCH (g)-[:` + RelInGenre + `]->(ge:Genre)
		RETURN g{.*} AS node, designers, artists, publishers, mechanics,
		       collect(DISTINCT ge{.id, .name}) AS genres`

	records, err := r.client.RunRead(ctx, query, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get game detail %d: %w", id, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	record := records[0]
	props, ok := nodeProps(record, "node")
	if !ok {
		return nil, fmt.Errorf("get game detail %d: unexpected record shape", id)
	}
	return &models.GameDetail{
		Game:       *propsToGame(props),
		Designers:  collectIDNames(record["designers"]),
		Artists:    collectIDNames(record["artists"]),
		Publishers: collectIDNames(record["publishers"]),
		Mechanics:  collectIDNames(record["mechanics"]),
		Genres:     collectIDNames(record["genres"]),
	}, nil
}

func (r *GameRepository) List(ctx context.Context, p repository.ListParams) ([]models.Game, int, error) {
	where := ""
	params := map[string]any{}
	if p.Search != "" {
		where = searchClause("g.name")
		params["search"] = p.Search
	}

	countRecords, err := r.client.RunRead(ctx,
		`MATCH (g:Game)`+where+` RETURN count(g) AS total`, params)
	if err != nil {
		return nil, 0, fmt.Errorf("count games: %w", err)
	}
	total, err := database.CountValue(countRecords, "total")
	if err != nil {
		return nil, 0, fmt.Errorf("count games: %w", err)
	}

	orderBy := "g.name"
	if field, ok := gameSortable[p.SortBy]; ok {
		orderBy = field
	}
	params["offset"] = p.Offset
	params["limit"] = p.Limit

	query := `MATCH (g:Game)` + where +
		` RETURN g{.*} AS node ORDER BY ` + orderBy + ` ` + sortDir(p.Desc()) +
		` SKIP $offset LIMIT $limit`
	records, err := r.client.RunRead(ctx, query, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list games: %w", err)
	}

	games := []models.Game{}
	for _, record := range records {
		props, ok := nodeProps(record, "node")
		if !ok {
			return nil, 0, fmt.Errorf("list games: unexpected record shape")
		}
		games = append(games, *propsToGame(props))
	}
	return games, total, nil
}

// nextID continues the integer id sequence for a label. Ids normally arrive
// from the relational source or the BGG import; this covers direct creates.
func (r *GameRepository) nextID(ctx context.Context) (int, error) {
	records, err := r.client.RunRead(ctx,
		`MATCH (g:Game) RETURN coalesce(max(g.id), 0) + 1 AS next`, nil)
	if err != nil {
		return 0, fmt.Errorf("next game id: %w", err)
	}
	next, err := database.CountValue(records, "next")
	if err != nil {
		return 0, fmt.Errorf("next game id: %w", err)
	}
	if next == 0 {
		next = 1
	}
	return next, nil
}

func (r *GameRepository) Create(ctx context.Context, game *models.Game) (*models.Game, error) {
	if game.ID == 0 {
		next, err := r.nextID(ctx)
		if err != nil {
			return nil, err
		}
		game.ID = next
	}

	_, err := r.client.Run(ctx,
		`MERGE (g:Game {id: $id}) SET g += $props`,
		map[string]any{"id": game.ID, "props": gameProps(game)})
	if err != nil {
		return nil, fmt.Errorf("create game %d: %w", game.ID, err)
	}
	return game, nil
}

var gameUpdatable = map[string]bool{
	"name":              true,
	"slug":              true,
	"year_published":    true,
	"bgg_rating":        true,
	"difficulty_rating": true,
	"description":       true,
	"playing_time":      true,
	"min_players":       true,
	"max_players":       true,
	"minimum_age":       true,
	"image":             true,
	"thumbnail":         true,
}

// setClauses builds a deterministic SET fragment from whitelisted fields.
// Keys are sorted so the generated Cypher is stable.
func setClauses(alias string, fields map[string]any, allowed map[string]bool, params map[string]any) string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		if allowed[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	for _, key := range keys {
		clauses = append(clauses, fmt.Sprintf("%s.%s = $%s", alias, key, key))
		params[key] = fields[key]
	}
	return strings.Join(clauses, ", ")
}

func (r *GameRepository) Update(ctx context.Context, id int, fields map[string]any) (*models.Game, error) {
	params := map[string]any{"id": id}
	set := setClauses("g", fields, gameUpdatable, params)
	if set == "" {
		return r.Get(ctx, id)
	}

	records, err := r.client.Run(ctx,
		`MATCH (g:Game {id: $id}) SET `+set+` RETURN g{.*} AS node`, params)
	if err != nil {
		return nil, fmt.Errorf("update game %d: %w", id, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	props, ok := nodeProps(records[0], "node")
	if !ok {
		return nil, fmt.Errorf("update game %d: unexpected record shape", id)
	}
	return propsToGame(props), nil
}

// deleteGameCypher drops the game node and its edges. Review and video
// nodes linked to the game stay behind as orphans, since this backend
// enforces no referential integrity.
const deleteGameCypher = `
	MATCH (g:Game {id: $id})
	DETACH DELETE g
	RETURN count(g) AS deleted`

func (r *GameRepository) Delete(ctx context.Context, id int) (bool, error) {
	records, err := r.client.Run(ctx, deleteGameCypher, map[string]any{"id": id})
	if err != nil {
		return false, fmt.Errorf("delete game %d: %w", id, err)
	}
	deleted, err := database.CountValue(records, "deleted")
	if err != nil {
		return false, fmt.Errorf("delete game %d: %w", id, err)
	}
	return deleted > 0, nil
}

// Package mongorepo implements the repository contracts over MongoDB. The
// games collection is the source of truth; designers, artists, publishers,
// mechanics and genres exist only as embedded arrays inside game documents,
// while users and reviews live in their own collections.
package mongorepo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gamevault/gamevault-go/internal/models"
	"github.com/gamevault/gamevault-go/internal/repository"
)

const (
	gamesCollection     = "games"
	usersCollection     = "users"
	reviewsCollection   = "reviews"
	languagesCollection = "languages"
	matchupsCollection  = "matchups"
)

type GameRepository struct {
	games *mongo.Collection
}

func NewGameRepository(db *mongo.Database) *GameRepository {
	return &GameRepository{games: db.Collection(gamesCollection)}
}

// gameSortFields maps the caller-facing sort names onto document paths.
// Anything else is ignored.
var gameSortFields = map[string]string{
	"name":           "name",
	"year_published": "year_published",
	"bgg_rating":     "ratings.bgg_rating",
	"playing_time":   "playing_time",
}

func docToGame(doc *models.GameDocument) *models.Game {
	if doc == nil {
		return nil
	}
	return &models.Game{
		ID:               doc.ID,
		Name:             doc.Name,
		Slug:             doc.Slug,
		YearPublished:    doc.YearPublished,
		BggRating:        doc.Ratings.BggRating,
		DifficultyRating: doc.Ratings.DifficultyRating,
		Description:      doc.Description,
		PlayingTime:      doc.PlayingTime,
		MinPlayers:       doc.PlayerCount.Min,
		MaxPlayers:       doc.PlayerCount.Max,
		MinimumAge:       doc.MinimumAge,
		Image:            doc.Images.Image,
		Thumbnail:        doc.Images.Thumbnail,
	}
}

func gameToDoc(game *models.Game) *models.GameDocument {
	return &models.GameDocument{
		ID:            game.ID,
		Name:          game.Name,
		Slug:          game.Slug,
		YearPublished: game.YearPublished,
		Ratings: models.GameRatings{
			BggRating:        game.BggRating,
			DifficultyRating: game.DifficultyRating,
		},
		Description: game.Description,
		PlayingTime: game.PlayingTime,
		PlayerCount: models.PlayerCount{Min: game.MinPlayers, Max: game.MaxPlayers},
		MinimumAge:  game.MinimumAge,
		Images:      models.GameImages{Thumbnail: game.Thumbnail, Image: game.Image},
		Designers:   []models.IDName{},
		Artists:     []models.IDName{},
		Genres:      []models.IDName{},
		Publishers:  []models.IDName{},
		Mechanics:   []models.IDName{},
		Videos:      []models.VideoDoc{},
		ReviewIDs:   []int{},
	}
}

func (r *GameRepository) findDoc(ctx context.Context, filter bson.M) (*models.GameDocument, error) {
	var doc models.GameDocument
	err := r.games.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find game: %w", err)
	}
	return &doc, nil
}

func (r *GameRepository) Get(ctx context.Context, id int) (*models.Game, error) {
	doc, err := r.findDoc(ctx, bson.M{"_id": id})
	if err != nil || doc == nil {
		return nil, err
	}
	return docToGame(doc), nil
}

func (r *GameRepository) GetByName(ctx context.Context, name string) (*models.Game, error) {
	doc, err := r.findDoc(ctx, bson.M{
		"name": bson.M{"$regex": "^" + regexp.QuoteMeta(name) + "$", "$options": "i"},
	})
	if err != nil || doc == nil {
		return nil, err
	}
	return docToGame(doc), nil
}

// GetDetail needs no joins: the document already embeds every relation.
func (r *GameRepository) GetDetail(ctx context.Context, id int) (*models.GameDetail, error) {
	doc, err := r.findDoc(ctx, bson.M{"_id": id})
	if err != nil || doc == nil {
		return nil, err
	}
	return &models.GameDetail{
		Game:       *docToGame(doc),
		Designers:  doc.Designers,
		Artists:    doc.Artists,
		Publishers: doc.Publishers,
		Mechanics:  doc.Mechanics,
		Genres:     doc.Genres,
	}, nil
}

func (r *GameRepository) List(ctx context.Context, p repository.ListParams) ([]models.Game, int, error) {
	filter := bson.M{}
	if p.Search != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(p.Search), "$options": "i"}
	}

	total, err := r.games.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count games: %w", err)
	}

	opts := options.Find().
		SetSkip(int64(p.Offset)).
		SetLimit(int64(p.Limit))
	if field, ok := gameSortFields[p.SortBy]; ok {
		dir := 1
		if p.Desc() {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: field, Value: dir}})
	}

	cursor, err := r.games.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list games: %w", err)
	}
	defer cursor.Close(ctx)

	games := []models.Game{}
	for cursor.Next(ctx) {
		var doc models.GameDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode game document: %w", err)
		}
		games = append(games, *docToGame(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate games: %w", err)
	}
	return games, int(total), nil
}

func (r *GameRepository) Create(ctx context.Context, game *models.Game) (*models.Game, error) {
	if game.ID == 0 {
		next, err := nextIntID(ctx, r.games)
		if err != nil {
			return nil, err
		}
		game.ID = next
	}

	if _, err := r.games.InsertOne(ctx, gameToDoc(game)); err != nil {
		return nil, fmt.Errorf("create game %d: %w", game.ID, err)
	}
	return game, nil
}

// gameUpdatable maps callable update fields onto document paths.
var gameUpdatable = map[string]string{
	"name":              "name",
	"slug":              "slug",
	"year_published":    "year_published",
	"bgg_rating":        "ratings.bgg_rating",
	"difficulty_rating": "ratings.difficulty_rating",
	"description":       "description",
	"playing_time":      "playing_time",
	"min_players":       "player_count.min",
	"max_players":       "player_count.max",
	"minimum_age":       "minimum_age",
	"image":             "images.image",
	"thumbnail":         "images.thumbnail",
}

func (r *GameRepository) Update(ctx context.Context, id int, fields map[string]any) (*models.Game, error) {
	set := bson.M{}
	for key, value := range fields {
		if path, ok := gameUpdatable[key]; ok {
			set[path] = value
		}
	}
	if len(set) == 0 {
		return r.Get(ctx, id)
	}

	res, err := r.games.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("update game %d: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return nil, nil
	}
	return r.Get(ctx, id)
}

// Delete removes only the game document. Review documents referencing the
// game survive; the document model does not enforce referential integrity.
func (r *GameRepository) Delete(ctx context.Context, id int) (bool, error) {
	ok, err := deleteByID(ctx, r.games, id)
	if err != nil {
		return false, fmt.Errorf("delete game %d: %w", id, err)
	}
	return ok, nil
}

// nextIntID continues the integer id sequence of a collection whose _id is
// an int. Not atomic across concurrent creators; ids normally arrive from
// the relational source or the BGG import.
func nextIntID(ctx context.Context, col *mongo.Collection) (int, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}}).SetProjection(bson.M{"_id": 1})
	var doc struct {
		ID int `bson:"_id"`
	}
	err := col.FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 1, nil
		}
		return 0, fmt.Errorf("next id for %s: %w", col.Name(), err)
	}
	return doc.ID + 1, nil
}

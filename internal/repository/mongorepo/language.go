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

// LanguageRepository keeps the language lookup table as its own small
// collection. Embedded videos reference languages by name, so the table is
// only consulted by the import and the relational round trip.
type LanguageRepository struct {
	languages *mongo.Collection
}

func NewLanguageRepository(db *mongo.Database) *LanguageRepository {
	return &LanguageRepository{languages: db.Collection(languagesCollection)}
}

type languageDoc struct {
	ID       int    `bson:"_id"`
	Language string `bson:"language"`
}

func (r *LanguageRepository) findOne(ctx context.Context, filter bson.M) (*models.Language, error) {
	var doc languageDoc
	err := r.languages.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find language: %w", err)
	}
	return &models.Language{ID: doc.ID, Language: doc.Language}, nil
}

func (r *LanguageRepository) Get(ctx context.Context, id int) (*models.Language, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *LanguageRepository) GetByName(ctx context.Context, name string) (*models.Language, error) {
	return r.findOne(ctx, bson.M{
		"language": bson.M{"$regex": "^" + regexp.QuoteMeta(name) + "$", "$options": "i"},
	})
}

func (r *LanguageRepository) List(ctx context.Context, p repository.ListParams) ([]models.Language, int, error) {
	filter := bson.M{}
	if p.Search != "" {
		filter["language"] = bson.M{"$regex": regexp.QuoteMeta(p.Search), "$options": "i"}
	}

	total, err := r.languages.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count languages: %w", err)
	}

	dir := 1
	if p.Desc() {
		dir = -1
	}
	opts := options.Find().
		SetSkip(int64(p.Offset)).
		SetLimit(int64(p.Limit)).
		SetSort(bson.D{{Key: "language", Value: dir}})

	cursor, err := r.languages.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list languages: %w", err)
	}
	defer cursor.Close(ctx)

	languages := []models.Language{}
	for cursor.Next(ctx) {
		var doc languageDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode language document: %w", err)
		}
		languages = append(languages, models.Language{ID: doc.ID, Language: doc.Language})
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate languages: %w", err)
	}
	return languages, int(total), nil
}

func (r *LanguageRepository) Create(ctx context.Context, language *models.Language) (*models.Language, error) {
	if language.ID == 0 {
		next, err := nextIntID(ctx, r.languages)
		if err != nil {
			return nil, err
		}
		language.ID = next
	}
	if _, err := r.languages.InsertOne(ctx, languageDoc{ID: language.ID, Language: language.Language}); err != nil {
		return nil, fmt.Errorf("create language %d: %w", language.ID, err)
	}
	return language, nil
}

func (r *LanguageRepository) Delete(ctx context.Context, id int) (bool, error) {
	ok, err := deleteByID(ctx, r.languages, id)
	if err != nil {
		return false, fmt.Errorf("delete language %d: %w", id, err)
	}
	return ok, nil
}

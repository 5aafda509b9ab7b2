package mongorepo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gamevault/gamevault-go/internal/models"
	"github.com/gamevault/gamevault-go/internal/repository"
)

// VideoRepository reads the videos embedded in game documents. The document
// model stores the language name inline instead of a language id, so Video
// records come back with a nil LanguageID. Like the other embedded entities,
// videos are read-only on this backend.
type VideoRepository struct {
	games *mongo.Collection
}

func NewVideoRepository(db *mongo.Database) *VideoRepository {
	return &VideoRepository{games: db.Collection(gamesCollection)}
}

func (r *VideoRepository) Get(ctx context.Context, id int) (*models.Video, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"videos.id": id}}},
		{{Key: "$unwind", Value: "$videos"}},
		{{Key: "$match", Value: bson.M{"videos.id": id}}},
		{{Key: "$project", Value: bson.M{"video": "$videos", "game_id": "$_id"}}},
		{{Key: "$limit", Value: 1}},
	}
	cursor, err := r.games.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("find video %d: %w", id, err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		return nil, cursor.Err()
	}
	var result struct {
		Video  models.VideoDoc `bson:"video"`
		GameID int             `bson:"game_id"`
	}
	if err := cursor.Decode(&result); err != nil {
		return nil, fmt.Errorf("decode video %d: %w", id, err)
	}
	return &models.Video{
		ID:       result.Video.ID,
		Title:    result.Video.Title,
		Category: result.Video.Category,
		Link:     result.Video.Link,
		GameID:   result.GameID,
	}, nil
}

func (r *VideoRepository) ListByGame(ctx context.Context, gameID int) ([]models.Video, error) {
	var doc models.GameDocument
	err := r.games.FindOne(ctx, bson.M{"_id": gameID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []models.Video{}, nil
		}
		return nil, fmt.Errorf("list videos of game %d: %w", gameID, err)
	}

	videos := make([]models.Video, 0, len(doc.Videos))
	for _, v := range doc.Videos {
		videos = append(videos, models.Video{
			ID:       v.ID,
			Title:    v.Title,
			Category: v.Category,
			Link:     v.Link,
			GameID:   gameID,
		})
	}
	return videos, nil
}

func (r *VideoRepository) Create(ctx context.Context, video *models.Video) (*models.Video, error) {
	return nil, fmt.Errorf("create video: %w", repository.ErrUnsupported)
}

func (r *VideoRepository) Update(ctx context.Context, id int, fields map[string]any) (*models.Video, error) {
	return nil, fmt.Errorf("update video %d: %w", id, repository.ErrUnsupported)
}

func (r *VideoRepository) Delete(ctx context.Context, id int) (bool, error) {
	return false, fmt.Errorf("delete video %d: %w", id, repository.ErrUnsupported)
}

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

// ReviewRepository serves the reviews collection. Each document carries a
// scalar game_id and a denormalized author snapshot, so the per-game read
// paths need no join stage.
type ReviewRepository struct {
	reviews *mongo.Collection
	users   *mongo.Collection
	games   *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{
		reviews: db.Collection(reviewsCollection),
		users:   db.Collection(usersCollection),
		games:   db.Collection(gamesCollection),
	}
}

func docToReview(doc *models.ReviewDocument) *models.Review {
	if doc == nil {
		return nil
	}
	return &models.Review{
		ID:         doc.ID,
		Title:      doc.Title,
		Text:       doc.Text,
		StarAmount: doc.StarAmount,
		UserID:     doc.User.ID,
		GameID:     doc.GameID,
	}
}

func (r *ReviewRepository) Get(ctx context.Context, id int) (*models.Review, error) {
	var doc models.ReviewDocument
	err := r.reviews.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find review %d: %w", id, err)
	}
	return docToReview(&doc), nil
}

func (r *ReviewRepository) List(ctx context.Context, p repository.ListParams) ([]models.Review, int, error) {
	filter := bson.M{}
	if p.Search != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(p.Search), "$options": "i"}
	}

	total, err := r.reviews.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	dir := 1
	if p.Desc() {
		dir = -1
	}
	opts := options.Find().
		SetSkip(int64(p.Offset)).
		SetLimit(int64(p.Limit)).
		SetSort(bson.D{{Key: "_id", Value: dir}})

	cursor, err := r.reviews.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	for cursor.Next(ctx) {
		var doc models.ReviewDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode review document: %w", err)
		}
		reviews = append(reviews, *docToReview(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate reviews: %w", err)
	}
	return reviews, int(total), nil
}

func (r *ReviewRepository) ListByGame(ctx context.Context, gameID int) ([]models.ReviewWithUser, error) {
	cursor, err := r.reviews.Find(ctx, bson.M{"game_id": gameID})
	if err != nil {
		return nil, fmt.Errorf("list reviews of game %d: %w", gameID, err)
	}
	defer cursor.Close(ctx)

	reviews := []models.ReviewWithUser{}
	for cursor.Next(ctx) {
		var doc models.ReviewDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode review document: %w", err)
		}
		reviews = append(reviews, models.ReviewWithUser{
			Review:      *docToReview(&doc),
			DisplayName: doc.User.DisplayName,
			Username:    doc.User.Username,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews of game %d: %w", gameID, err)
	}
	return reviews, nil
}

func (r *ReviewRepository) CountByGame(ctx context.Context, gameID int) (int, error) {
	total, err := r.reviews.CountDocuments(ctx, bson.M{"game_id": gameID})
	if err != nil {
		return 0, fmt.Errorf("count reviews of game %d: %w", gameID, err)
	}
	return int(total), nil
}

func (r *ReviewRepository) AverageStarsByGame(ctx context.Context, gameID int) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"game_id": gameID}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"average": bson.M{"$avg": "$star_amount"},
		}}},
	}
	cursor, err := r.reviews.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("average stars of game %d: %w", gameID, err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		return 0, cursor.Err()
	}
	var result struct {
		Average float64 `bson:"average"`
	}
	if err := cursor.Decode(&result); err != nil {
		return 0, fmt.Errorf("decode average stars: %w", err)
	}
	return result.Average, nil
}

// Create snapshots the author from the users collection and appends the
// review id to the game document's review_ids.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	if review.ID == 0 {
		next, err := nextIntID(ctx, r.reviews)
		if err != nil {
			return nil, err
		}
		review.ID = next
	}

	snapshot := models.ReviewUserSnapshot{ID: review.UserID}
	var user models.UserDocument
	err := r.users.FindOne(ctx, bson.M{"_id": review.UserID}).Decode(&user)
	if err == nil {
		snapshot.DisplayName = user.DisplayName
		snapshot.Username = user.Username
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("snapshot author %d: %w", review.UserID, err)
	}

	doc := models.ReviewDocument{
		ID:         review.ID,
		Title:      review.Title,
		Text:       review.Text,
		StarAmount: review.StarAmount,
		GameID:     review.GameID,
		User:       snapshot,
	}
	if _, err := r.reviews.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("create review %d: %w", review.ID, err)
	}

	if _, err := r.games.UpdateOne(ctx, bson.M{"_id": review.GameID},
		bson.M{"$addToSet": bson.M{"review_ids": review.ID}}); err != nil {
		return nil, fmt.Errorf("attach review %d to game %d: %w", review.ID, review.GameID, err)
	}
	return review, nil
}

var reviewUpdatable = map[string]string{
	"title":       "title",
	"text":        "text",
	"star_amount": "star_amount",
}

func (r *ReviewRepository) Update(ctx context.Context, id int, fields map[string]any) (*models.Review, error) {
	set := bson.M{}
	for key, value := range fields {
		if path, ok := reviewUpdatable[key]; ok {
			set[path] = value
		}
	}
	if len(set) == 0 {
		return r.Get(ctx, id)
	}

	res, err := r.reviews.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("update review %d: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return nil, nil
	}
	return r.Get(ctx, id)
}

func (r *ReviewRepository) Delete(ctx context.Context, id int) (bool, error) {
	var doc models.ReviewDocument
	err := r.reviews.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("delete review %d: %w", id, err)
	}

	if _, err := r.games.UpdateOne(ctx, bson.M{"_id": doc.GameID},
		bson.M{"$pull": bson.M{"review_ids": id}}); err != nil {
		return false, fmt.Errorf("detach review %d from game %d: %w", id, doc.GameID, err)
	}
	return true, nil
}

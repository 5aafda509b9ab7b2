package migrate

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gamevault/gamevault-go/internal/database"
	"github.com/gamevault/gamevault-go/internal/models"
)

// ReviewBatchSize is the window for paged review migration.
const ReviewBatchSize = 1000

// MongoMigration copies the relational store into the document store:
// users (with embedded friendships and messages), games (with embedded
// sub-entities and videos), reviews in batches, matchups, then a final
// recompute of the per-game user rating aggregates.
type MongoMigration struct {
	source    *Source
	client    *database.MongoClient
	logger    *logrus.Logger
	batchSize int

	// now is injected for deterministic provenance stamps in tests.
	now func() time.Time
}

func NewMongoMigration(source *Source, client *database.MongoClient, logger *logrus.Logger) *MongoMigration {
	return &MongoMigration{
		source:    source,
		client:    client,
		logger:    logger,
		batchSize: ReviewBatchSize,
		now:       time.Now,
	}
}

// Run executes the full document migration. reset drops the target
// collections first; without it the run upserts over existing documents.
// A returned error is structural (a fetch or phase failed outright);
// per-record failures land in the report and do not abort the run.
func (m *MongoMigration) Run(ctx context.Context, reset bool) (*Report, error) {
	report := NewReport()
	defer report.Finish()

	m.logger.WithField("run_id", report.RunID).Info("document migration starting")

	if reset {
		if err := m.reset(ctx); err != nil {
			return report, err
		}
	}

	if err := m.migrateUsers(ctx, report); err != nil {
		return report, err
	}
	if err := m.migrateLanguages(ctx, report); err != nil {
		return report, err
	}
	if err := m.migrateGames(ctx, report); err != nil {
		return report, err
	}
	if err := m.migrateReviews(ctx, report); err != nil {
		return report, err
	}
	if err := m.migrateMatchups(ctx, report); err != nil {
		return report, err
	}
	if err := m.recomputeRatings(ctx); err != nil {
		return report, err
	}

	m.logger.WithFields(logrus.Fields{
		"run_id":   report.RunID,
		"counts":   report.Counts,
		"failures": len(report.Failures),
	}).Info("document migration finished")
	return report, nil
}

func (m *MongoMigration) reset(ctx context.Context) error {
	for _, name := range []string{"games", "users", "reviews", "matchups", "languages"} {
		if err := m.client.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("drop collection %s: %w", name, err)
		}
	}
	m.logger.Info("target collections dropped")
	return nil
}

func (m *MongoMigration) upsert(ctx context.Context, collection string, id int, doc any) error {
	_, err := m.client.Collection(collection).ReplaceOne(ctx,
		bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	return err
}

func (m *MongoMigration) migrateUsers(ctx context.Context, report *Report) error {
	users, err := m.source.Users(ctx)
	if err != nil {
		return err
	}
	friendships, err := m.source.Friendships(ctx)
	if err != nil {
		return err
	}
	messages, err := m.source.Messages(ctx)
	if err != nil {
		return err
	}

	now := m.now()
	for _, user := range users {
		doc := ToUserDocument(user, friendships, messages, now)
		if err := m.upsert(ctx, "users", doc.ID, doc); err != nil {
			m.logger.WithError(err).WithField("user_id", user.ID).Warn("user migration failed")
			report.Fail("user", user.ID, err)
			continue
		}
		report.Add("users", 1)
	}
	return nil
}

func (m *MongoMigration) migrateLanguages(ctx context.Context, report *Report) error {
	languages, err := m.source.Languages(ctx)
	if err != nil {
		return err
	}
	for _, language := range languages {
		doc := bson.M{"_id": language.ID, "language": language.Language}
		if err := m.upsert(ctx, "languages", language.ID, doc); err != nil {
			report.Fail("language", language.ID, err)
			continue
		}
		report.Add("languages", 1)
	}
	return nil
}

func (m *MongoMigration) migrateGames(ctx context.Context, report *Report) error {
	games, err := m.source.Games(ctx)
	if err != nil {
		return err
	}

	relationKinds := []string{"designers", "artists", "publishers", "mechanics", "genres"}
	relations := map[string]map[int][]models.IDName{}
	for _, kind := range relationKinds {
		byGame, err := m.source.RelationsByGame(ctx, kind)
		if err != nil {
			return err
		}
		relations[kind] = byGame
	}
	videos, err := m.source.VideosByGame(ctx)
	if err != nil {
		return err
	}
	reviewIDs, err := m.source.ReviewIDsByGame(ctx)
	if err != nil {
		return err
	}

	now := m.now()
	for _, game := range games {
		doc := ToGameDocument(game, GameRelations{
			Designers:  relations["designers"][game.ID],
			Artists:    relations["artists"][game.ID],
			Publishers: relations["publishers"][game.ID],
			Mechanics:  relations["mechanics"][game.ID],
			Genres:     relations["genres"][game.ID],
			Videos:     videos[game.ID],
			ReviewIDs:  reviewIDs[game.ID],
		}, now)
		if err := m.upsert(ctx, "games", doc.ID, doc); err != nil {
			m.logger.WithError(err).WithField("game_id", game.ID).Warn("game migration failed")
			report.Fail("game", game.ID, err)
			continue
		}
		report.Add("games", 1)
	}
	return nil
}

// migrateReviews pages through the source and bulk-upserts each window.
func (m *MongoMigration) migrateReviews(ctx context.Context, report *Report) error {
	now := m.now()
	collection := m.client.Collection("reviews")

	for offset := 0; ; offset += m.batchSize {
		batch, err := m.source.ReviewsBatch(ctx, offset, m.batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			break
		}

		writes := make([]mongo.WriteModel, 0, len(batch))
		for _, review := range batch {
			doc := ToReviewDocument(review, now)
			writes = append(writes, mongo.NewReplaceOneModel().
				SetFilter(bson.M{"_id": doc.ID}).
				SetReplacement(doc).
				SetUpsert(true))
		}

		if _, err := collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
			// Fall back to per-record writes so one bad document does
			// not sink the whole window.
			m.logger.WithError(err).WithField("offset", offset).Warn("review batch failed, retrying per record")
			for _, review := range batch {
				doc := ToReviewDocument(review, now)
				if err := m.upsert(ctx, "reviews", doc.ID, doc); err != nil {
					report.Fail("review", review.ID, err)
					continue
				}
				report.Add("reviews", 1)
			}
			continue
		}
		report.Add("reviews", len(batch))

		if len(batch) < m.batchSize {
			break
		}
	}
	return nil
}

func (m *MongoMigration) migrateMatchups(ctx context.Context, report *Report) error {
	matchups, err := m.source.Matchups(ctx)
	if err != nil {
		return err
	}
	moves, err := m.source.MovesByMatchup(ctx)
	if err != nil {
		return err
	}
	comments, err := m.source.CommentsByMatchup(ctx)
	if err != nil {
		return err
	}
	spectators, err := m.source.SpectatorsByMatchup(ctx)
	if err != nil {
		return err
	}

	now := m.now()
	for _, matchup := range matchups {
		doc := ToMatchupDocument(matchup, moves[matchup.ID], comments[matchup.ID], spectators[matchup.ID], now)
		if err := m.upsert(ctx, "matchups", doc.ID, doc); err != nil {
			m.logger.WithError(err).WithField("matchup_id", matchup.ID).Warn("matchup migration failed")
			report.Fail("matchup", matchup.ID, err)
			continue
		}
		report.Add("matchups", 1)
	}
	return nil
}

// recomputeRatings aggregates the migrated reviews per game and writes the
// averages back onto the game documents.
func (m *MongoMigration) recomputeRatings(ctx context.Context) error {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":     "$game_id",
			"average": bson.M{"$avg": "$star_amount"},
			"total":   bson.M{"$sum": 1},
		}}},
	}
	cursor, err := m.client.Collection("reviews").Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("aggregate review ratings: %w", err)
	}
	defer cursor.Close(ctx)

	games := m.client.Collection("games")
	for cursor.Next(ctx) {
		var row struct {
			GameID  int     `bson:"_id"`
			Average float64 `bson:"average"`
			Total   int     `bson:"total"`
		}
		if err := cursor.Decode(&row); err != nil {
			return fmt.Errorf("decode rating aggregate: %w", err)
		}
		_, err := games.UpdateOne(ctx, bson.M{"_id": row.GameID}, bson.M{"$set": bson.M{
			"ratings.average_user_rating": row.Average,
			"ratings.total_reviews":       row.Total,
		}})
		if err != nil {
			return fmt.Errorf("update ratings of game %d: %w", row.GameID, err)
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("iterate rating aggregates: %w", err)
	}

	m.logger.Info("per-game rating aggregates recomputed")
	return nil
}

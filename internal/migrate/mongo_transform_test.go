package migrate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamevault/gamevault-go/internal/models"
)

var migrationTime = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

func timePtr(t time.Time) *time.Time { return &t }

func catanGame() models.Game {
	return models.Game{
		ID:            42,
		Name:          "Catan",
		Slug:          strPtr("catan"),
		YearPublished: strPtr("1995"),
		BggRating:     floatPtr(7.1),
		PlayingTime:   intPtr(120),
		MinPlayers:    intPtr(3),
		MaxPlayers:    intPtr(4),
		Thumbnail:     strPtr("http://img/catan-t.jpg"),
	}
}

func TestToGameDocument(t *testing.T) {
	rel := GameRelations{
		Designers: []models.IDName{{ID: 1, Name: "Klaus Teuber"}},
		Mechanics: []models.IDName{{ID: 7, Name: "Dice Rolling"}, {ID: 8, Name: "Trading"}},
		Videos: []VideoWithLanguage{{
			Video:    models.Video{ID: 3, Title: "How to play", Link: "http://v", GameID: 42, LanguageID: intPtr(1)},
			Language: strPtr("English"),
		}},
		ReviewIDs: []int{10, 11},
	}

	doc := ToGameDocument(catanGame(), rel, migrationTime)

	assert.Equal(t, 42, doc.ID)
	assert.Equal(t, "Catan", doc.Name)
	assert.Equal(t, "1995", *doc.YearPublished)

	// Flat columns land in their nested groups.
	assert.InDelta(t, 7.1, *doc.Ratings.BggRating, 0.001)
	assert.Nil(t, doc.Ratings.DifficultyRating)
	assert.Equal(t, 3, *doc.PlayerCount.Min)
	assert.Equal(t, 4, *doc.PlayerCount.Max)
	assert.Equal(t, "http://img/catan-t.jpg", *doc.Images.Thumbnail)

	require.Len(t, doc.Designers, 1)
	assert.Equal(t, "Klaus Teuber", doc.Designers[0].Name)
	require.Len(t, doc.Videos, 1)
	assert.Equal(t, "English", *doc.Videos[0].Language)
	assert.Nil(t, doc.Videos[0].Category)
	assert.Equal(t, []int{10, 11}, doc.ReviewIDs)

	// User rating aggregates start at zero until reviews are migrated.
	assert.Zero(t, doc.Ratings.AverageUserRating)
	assert.Zero(t, doc.Ratings.TotalReviews)

	assert.Equal(t, 42, doc.Metadata.SourceID)
	assert.Equal(t, "2024-03-15T12:00:00Z", doc.Metadata.MigratedAt)
}

func TestToGameDocumentEmptyRelations(t *testing.T) {
	doc := ToGameDocument(catanGame(), GameRelations{}, migrationTime)

	// Empty slices, never nil: the document shape is stable in storage.
	assert.NotNil(t, doc.Designers)
	assert.Empty(t, doc.Designers)
	assert.NotNil(t, doc.Artists)
	assert.NotNil(t, doc.Publishers)
	assert.NotNil(t, doc.Mechanics)
	assert.NotNil(t, doc.Genres)
	assert.NotNil(t, doc.Videos)
	assert.NotNil(t, doc.ReviewIDs)
}

func TestToUserDocument(t *testing.T) {
	user := models.User{
		ID:          5,
		DisplayName: "Alice",
		Username:    "alice",
		Password:    "hash",
		Email:       "alice@example.com",
		DOB:         timePtr(time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC)),
	}
	friendships := []models.Friendship{
		{UserID1: 5, UserID2: 6, CreatedAt: timePtr(migrationTime)},
		{UserID1: 7, UserID2: 5},
		{UserID1: 8, UserID2: 9}, // not Alice's
	}
	messages := []models.Message{
		{ID: 1, UserID1: 5, UserID2: 6, Text: "hi", SentAt: timePtr(migrationTime)},
		{ID: 2, UserID1: 6, UserID2: 5, Text: "hello"},
		{ID: 3, UserID1: 8, UserID2: 9, Text: "other"},
	}

	doc := ToUserDocument(user, friendships, messages, migrationTime)

	assert.Equal(t, 5, doc.ID)
	assert.Equal(t, "1990-06-01", *doc.DOB)

	// Friendships are symmetric: both directions resolve to the other user.
	require.Len(t, doc.Friends, 2)
	assert.Equal(t, 6, doc.Friends[0].UserID)
	assert.Equal(t, "2024-03-15T12:00:00Z", *doc.Friends[0].CreatedAt)
	assert.Equal(t, 7, doc.Friends[1].UserID)

	require.Len(t, doc.Messages, 2)
	assert.Equal(t, 6, doc.Messages[0].WithUserID)
	assert.Equal(t, "sent", doc.Messages[0].Direction)
	assert.Equal(t, 6, doc.Messages[1].WithUserID)
	assert.Equal(t, "received", doc.Messages[1].Direction)
}

func TestToUserDocumentNoRelations(t *testing.T) {
	doc := ToUserDocument(models.User{ID: 1, Username: "bob"}, nil, nil, migrationTime)
	assert.NotNil(t, doc.Friends)
	assert.Empty(t, doc.Friends)
	assert.NotNil(t, doc.Messages)
	assert.Nil(t, doc.DOB)
}

func TestToReviewDocument(t *testing.T) {
	review := models.ReviewWithUser{
		Review: models.Review{
			ID: 10, Title: "Great", Text: "Loved it", StarAmount: 5, UserID: 5, GameID: 42,
		},
		DisplayName: "Alice",
		Username:    "alice",
	}

	doc := ToReviewDocument(review, migrationTime)

	assert.Equal(t, 10, doc.ID)
	assert.Equal(t, 42, doc.GameID)
	assert.Equal(t, 5, doc.User.ID)
	assert.Equal(t, "Alice", doc.User.DisplayName)
	assert.Equal(t, "alice", doc.User.Username)
	assert.Equal(t, 10, doc.Metadata.SourceID)
}

func TestToMatchupDocument(t *testing.T) {
	winner := 5
	matchup := models.Matchup{
		ID: 3, GameID: 42, UserID1: 5, UserID2: 6,
		UserIDWinner: &winner,
		StartTime:    timePtr(migrationTime),
	}
	moves := []models.Move{
		{ID: 1, MatchupID: 3, Ply: 1, StartX: 0, StartY: 0, EndX: intPtr(1), EndY: intPtr(1)},
		{ID: 2, MatchupID: 3, Ply: 2, StartX: 4, StartY: 4},
	}
	comments := []models.MatchupComment{
		{ID: 1, MatchupID: 3, UserID: 7, Text: "nice opening", CreatedAt: timePtr(migrationTime)},
	}

	doc := ToMatchupDocument(matchup, moves, comments, []int{7, 8}, migrationTime)

	assert.Equal(t, 3, doc.ID)
	assert.Equal(t, 5, *doc.UserIDWinner)
	assert.Equal(t, "2024-03-15T12:00:00Z", *doc.StartTime)
	assert.Nil(t, doc.EndTime)

	require.Len(t, doc.Moves, 2)
	assert.Equal(t, 1, doc.Moves[0].Ply)
	assert.Equal(t, 1, *doc.Moves[0].EndX)
	assert.Nil(t, doc.Moves[1].EndX)

	require.Len(t, doc.Comments, 1)
	assert.Equal(t, "nice opening", doc.Comments[0].Text)
	assert.Equal(t, []int{7, 8}, doc.Spectators)

	doc = ToMatchupDocument(matchup, nil, nil, nil, migrationTime)
	assert.NotNil(t, doc.Moves)
	assert.NotNil(t, doc.Comments)
	assert.NotNil(t, doc.Spectators)
}

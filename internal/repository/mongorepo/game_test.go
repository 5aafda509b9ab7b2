package mongorepo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamevault/gamevault-go/internal/models"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

func TestGameDocConversionRoundTrip(t *testing.T) {
	game := &models.Game{
		ID:            42,
		Name:          "Catan",
		Slug:          strPtr("catan"),
		YearPublished: strPtr("1995"),
		BggRating:     floatPtr(7.1),
		PlayingTime:   intPtr(120),
		MinPlayers:    intPtr(3),
		MaxPlayers:    intPtr(4),
		Image:         strPtr("http://img/catan.jpg"),
	}

	doc := gameToDoc(game)

	// Flat fields land in their nested groups.
	assert.Equal(t, 42, doc.ID)
	assert.InDelta(t, 7.1, *doc.Ratings.BggRating, 0.001)
	assert.Equal(t, 3, *doc.PlayerCount.Min)
	assert.Equal(t, "http://img/catan.jpg", *doc.Images.Image)
	assert.Nil(t, doc.Images.Thumbnail)

	// Embedded arrays start empty, not nil.
	assert.NotNil(t, doc.Designers)
	assert.NotNil(t, doc.Videos)
	assert.NotNil(t, doc.ReviewIDs)

	assert.Equal(t, game, docToGame(doc))
	assert.Nil(t, docToGame(nil))
}

func TestGameSortAndUpdatePaths(t *testing.T) {
	// Caller-facing field names resolve onto document paths; the nested
	// rating and player-count groups must not leak flat names.
	assert.Equal(t, "ratings.bgg_rating", gameSortFields["bgg_rating"])
	assert.Equal(t, "ratings.bgg_rating", gameUpdatable["bgg_rating"])
	assert.Equal(t, "player_count.min", gameUpdatable["min_players"])
	assert.Equal(t, "images.thumbnail", gameUpdatable["thumbnail"])

	_, ok := gameUpdatable["id"]
	assert.False(t, ok, "ids are immutable")
	_, ok = gameSortFields["password"]
	assert.False(t, ok)
}

func TestDocTimeHelpers(t *testing.T) {
	ts := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	formatted := formatDocTime(&ts)
	require.NotNil(t, formatted)
	assert.Equal(t, "2024-03-15T12:00:00Z", *formatted)
	assert.Nil(t, formatDocTime(nil))

	parsed := parseDocTime(formatted)
	require.NotNil(t, parsed)
	assert.True(t, ts.Equal(*parsed))

	// Date-only values, the DOB format, parse too.
	dob := parseDocTime(strPtr("1990-06-01"))
	require.NotNil(t, dob)
	assert.Equal(t, "1990-06-01", dob.Format("2006-01-02"))

	assert.Nil(t, parseDocTime(nil))
	assert.Nil(t, parseDocTime(strPtr("")))
	assert.Nil(t, parseDocTime(strPtr("last tuesday")))
}

func TestDocToUser(t *testing.T) {
	doc := &models.UserDocument{
		ID:          5,
		DisplayName: "Alice",
		Username:    "alice",
		DOB:         strPtr("1990-06-01"),
		IsAdmin:     true,
	}

	user := docToUser(doc)
	assert.Equal(t, 5, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.IsAdmin)
	require.NotNil(t, user.DOB)
	assert.Equal(t, "1990-06-01", user.DOB.Format("2006-01-02"))

	assert.Nil(t, docToUser(nil))
}

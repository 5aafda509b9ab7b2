package sqlrepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamevault/gamevault-go/internal/models"
)

func seedReviewFixtures(t *testing.T) (*ReviewRepository, context.Context) {
	t.Helper()
	db := setupTestDB(t)
	ctx := context.Background()

	games := NewGameRepository(db)
	seedGame(t, games, 1, "Catan", 7.1)
	seedGame(t, games, 2, "Azul", 7.8)

	_, err := db.Exec(`INSERT INTO "user" (id, display_name, username, password, email) VALUES
		(1, 'Alice', 'alice', 'x', 'alice@example.com'),
		(2, 'Bob', 'bob', 'x', 'bob@example.com')`)
	require.NoError(t, err)

	repo := NewReviewRepository(db)
	for _, rev := range []models.Review{
		{Title: "Great", Text: "Loved it", StarAmount: 5, UserID: 1, GameID: 1},
		{Title: "Fine", Text: "Decent", StarAmount: 3, UserID: 2, GameID: 1},
		{Title: "Pretty", Text: "Tiles", StarAmount: 4, UserID: 1, GameID: 2},
	} {
		rev := rev
		_, err := repo.Create(ctx, &rev)
		require.NoError(t, err)
	}
	return repo, ctx
}

func TestReviewListByGameJoinsAuthor(t *testing.T) {
	repo, ctx := seedReviewFixtures(t)

	reviews, err := repo.ListByGame(ctx, 1)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "Great", reviews[0].Title)
	assert.Equal(t, "Alice", reviews[0].DisplayName)
	assert.Equal(t, "alice", reviews[0].Username)
	assert.Equal(t, "Bob", reviews[1].DisplayName)

	reviews, err = repo.ListByGame(ctx, 404)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestReviewGameAggregates(t *testing.T) {
	repo, ctx := seedReviewFixtures(t)

	count, err := repo.CountByGame(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	avg, err := repo.AverageStarsByGame(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, avg, 0.001)

	// No reviews: average is zero, not an error.
	avg, err = repo.AverageStarsByGame(ctx, 404)
	require.NoError(t, err)
	assert.Zero(t, avg)
}

func TestReviewUpdateWhitelist(t *testing.T) {
	repo, ctx := seedReviewFixtures(t)

	updated, err := repo.Update(ctx, 1, map[string]any{
		"star_amount": 4,
		"game_id":     2,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 4, updated.StarAmount)
	// game_id is not updatable; the review stays attached to its game.
	assert.Equal(t, 1, updated.GameID)
}

func TestReviewDelete(t *testing.T) {
	repo, ctx := seedReviewFixtures(t)

	deleted, err := repo.Delete(ctx, 2)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, 2)
	require.NoError(t, err)
	assert.False(t, deleted)

	count, err := repo.CountByGame(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

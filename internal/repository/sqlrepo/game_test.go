package sqlrepo

import (
	"context"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamevault/gamevault-go/internal/models"
	"github.com/gamevault/gamevault-go/internal/repository"
)

// setupTestDB creates an in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, InitSchema(context.Background(), db))
	return db
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func seedGame(t *testing.T, repo *GameRepository, id int, name string, rating float64) {
	t.Helper()
	_, err := repo.Create(context.Background(), &models.Game{
		ID:        id,
		Name:      name,
		BggRating: floatPtr(rating),
	})
	require.NoError(t, err)
}

func TestGameCreateAssignsSequentialIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGameRepository(db)
	ctx := context.Background()

	first, err := repo.Create(ctx, &models.Game{Name: "Catan"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)

	second, err := repo.Create(ctx, &models.Game{Name: "Carcassonne"})
	require.NoError(t, err)
	assert.Equal(t, 2, second.ID)

	// Explicit ids are preserved and the sequence continues past them.
	seedGame(t, repo, 100, "Azul", 7.8)
	third, err := repo.Create(ctx, &models.Game{Name: "Wingspan"})
	require.NoError(t, err)
	assert.Equal(t, 101, third.ID)
}

func TestGameGetMissingReturnsNilNil(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGameRepository(db)

	game, err := repo.Get(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, game)

	game, err = repo.GetByName(context.Background(), "no such game")
	require.NoError(t, err)
	assert.Nil(t, game)
}

func TestGameListPaginationAndSearch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGameRepository(db)
	ctx := context.Background()

	names := []string{"Catan", "Carcassonne", "Azul", "Wingspan", "Cascadia"}
	for i, name := range names {
		seedGame(t, repo, i+1, name, float64(5+i))
	}

	t.Run("window and total", func(t *testing.T) {
		games, total, err := repo.List(ctx, repository.ListParams{Offset: 2, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, games, 2)
		assert.Equal(t, 3, games[0].ID)
		assert.Equal(t, 4, games[1].ID)
	})

	t.Run("search is case-insensitive substring", func(t *testing.T) {
		games, total, err := repo.List(ctx, repository.ListParams{
			Limit: 10, Search: "CA",
		})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, games, 3)
		for _, g := range games {
			assert.Contains(t, []string{"Catan", "Carcassonne", "Cascadia"}, g.Name)
		}
	})

	t.Run("search with no matches", func(t *testing.T) {
		games, total, err := repo.List(ctx, repository.ListParams{Limit: 10, Search: "zzz"})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, games)
	})

	t.Run("descending sort on whitelisted field", func(t *testing.T) {
		games, _, err := repo.List(ctx, repository.ListParams{
			Limit: 10, SortBy: "bgg_rating", SortOrder: "desc",
		})
		require.NoError(t, err)
		require.Len(t, games, 5)
		assert.Equal(t, "Cascadia", games[0].Name)
		assert.Equal(t, "Catan", games[4].Name)
	})

	t.Run("unknown sort field falls back to id", func(t *testing.T) {
		games, _, err := repo.List(ctx, repository.ListParams{
			Limit: 10, SortBy: "id; DROP TABLE game",
		})
		require.NoError(t, err)
		require.Len(t, games, 5)
		assert.Equal(t, 1, games[0].ID)
	})
}

func TestGameUpdatePartialFields(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGameRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Game{
		Name:      "Catan",
		Slug:      strPtr("catan"),
		BggRating: floatPtr(7.1),
	})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, created.ID, map[string]any{"name": "Catan (2015)"})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Catan (2015)", updated.Name)
	// Untouched columns survive a partial update.
	require.NotNil(t, updated.Slug)
	assert.Equal(t, "catan", *updated.Slug)
	require.NotNil(t, updated.BggRating)
	assert.InDelta(t, 7.1, *updated.BggRating, 0.001)
}

func TestGameUpdateIgnoresNonWhitelistedFields(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGameRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Game{Name: "Catan"})
	require.NoError(t, err)

	// Only unknown keys: no SQL runs, current row comes back unchanged.
	updated, err := repo.Update(ctx, created.ID, map[string]any{
		"id":       999,
		"nonsense": "x",
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Catan", updated.Name)
}

func TestGameUpdateMissingReturnsNilNil(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGameRepository(db)

	updated, err := repo.Update(context.Background(), 404, map[string]any{"name": "ghost"})
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestGameDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGameRepository(db)
	ctx := context.Background()

	seedGame(t, repo, 1, "Catan", 7.1)
	_, err := db.Exec(`INSERT INTO "user" (id, display_name, username, password, email)
		VALUES (1, 'Alice', 'alice', 'x', 'alice@example.com')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO review (id, title, text, star_amount, user_id, game_id)
		VALUES (1, 'Great', 'Loved it', 5, 1, 1)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO video (id, title, link, game_id) VALUES (1, 'How to play', 'http://v', 1)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO designer (id, name) VALUES (10, 'Klaus Teuber')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO game_designers (game_id, designer_id) VALUES (1, 10)`)
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, 1)
	require.NoError(t, err)
	assert.True(t, deleted)

	for _, table := range []string{"review", "video", "game_designers"} {
		var n int
		require.NoError(t, db.Get(&n, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)))
		assert.Zero(t, n, "orphan rows left in %s", table)
	}
	// The designer itself is shared data and stays.
	var designers int
	require.NoError(t, db.Get(&designers, `SELECT COUNT(*) FROM designer`))
	assert.Equal(t, 1, designers)

	deleted, err = repo.Delete(ctx, 1)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestGameGetDetailLoadsRelations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGameRepository(db)
	ctx := context.Background()

	seedGame(t, repo, 42, "Catan", 7.1)
	_, err := db.Exec(`INSERT INTO designer (id, name) VALUES (1, 'Klaus Teuber')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO mechanic (id, name) VALUES (7, 'Dice Rolling'), (8, 'Trading')`)
	require.NoError(t, err)

	require.NoError(t, repo.SetAssociations(ctx, 42, TableDesigners, []int{1}))
	require.NoError(t, repo.SetAssociations(ctx, 42, TableMechanics, []int{7, 8}))

	detail, err := repo.GetDetail(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, "Catan", detail.Name)
	require.Len(t, detail.Designers, 1)
	assert.Equal(t, models.IDName{ID: 1, Name: "Klaus Teuber"}, detail.Designers[0])
	require.Len(t, detail.Mechanics, 2)
	assert.Empty(t, detail.Artists)
	assert.Empty(t, detail.Publishers)
	assert.Empty(t, detail.Genres)

	detail, err = repo.GetDetail(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, detail)
}

func TestGameSetAssociationsReplaces(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGameRepository(db)
	ctx := context.Background()

	seedGame(t, repo, 1, "Catan", 7.1)
	_, err := db.Exec(`INSERT INTO genre (id, name) VALUES (1, 'Strategy'), (2, 'Family'), (3, 'Economic')`)
	require.NoError(t, err)

	require.NoError(t, repo.SetAssociations(ctx, 1, TableGenres, []int{1, 2}))
	require.NoError(t, repo.SetAssociations(ctx, 1, TableGenres, []int{3}))

	detail, err := repo.GetDetail(ctx, 1)
	require.NoError(t, err)
	require.Len(t, detail.Genres, 1)
	assert.Equal(t, "Economic", detail.Genres[0].Name)

	assert.Error(t, repo.SetAssociations(ctx, 1, "not_a_table", []int{1}))
}

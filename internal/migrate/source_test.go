package migrate

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamevault/gamevault-go/internal/models"
	"github.com/gamevault/gamevault-go/internal/repository/sqlrepo"
)

func setupSource(t *testing.T) (*Source, *sqlx.DB) {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, sqlrepo.InitSchema(context.Background(), db))

	db.MustExec(`INSERT INTO game (id, name) VALUES (1, 'Catan'), (2, 'Azul')`)
	db.MustExec(`INSERT INTO "user" (id, display_name, username, password, email) VALUES
		(1, 'Alice', 'alice', 'x', 'alice@example.com'),
		(2, 'Bob', 'bob', 'x', 'bob@example.com')`)
	db.MustExec(`INSERT INTO designer (id, name) VALUES (1, 'Klaus Teuber'), (2, 'Michael Kiesling')`)
	db.MustExec(`INSERT INTO game_designers (game_id, designer_id) VALUES (1, 1), (2, 2)`)
	db.MustExec(`INSERT INTO language (id, language) VALUES (1, 'English')`)
	db.MustExec(`INSERT INTO video (id, title, link, game_id, language_id) VALUES
		(1, 'How to play', 'http://v1', 1, 1),
		(2, 'Review', 'http://v2', 1, NULL)`)
	db.MustExec(`INSERT INTO review (id, title, text, star_amount, user_id, game_id) VALUES
		(1, 'Great', '', 5, 1, 1),
		(2, 'Fine', '', 3, 2, 1),
		(3, 'Pretty', '', 4, 1, 2)`)
	db.MustExec(`INSERT INTO matchup (id, game_id, user_id_1, user_id_2) VALUES (1, 1, 1, 2)`)
	db.MustExec(`INSERT INTO spectator (matchup_id, user_id) VALUES (1, 2), (1, 1)`)

	return NewSource(db), db
}

func TestSourceRelationsByGame(t *testing.T) {
	source, _ := setupSource(t)
	ctx := context.Background()

	designers, err := source.RelationsByGame(ctx, "designers")
	require.NoError(t, err)
	assert.Equal(t, []models.IDName{{ID: 1, Name: "Klaus Teuber"}}, designers[1])
	assert.Equal(t, []models.IDName{{ID: 2, Name: "Michael Kiesling"}}, designers[2])

	// Kind with no rows yields an empty map, not an error.
	artists, err := source.RelationsByGame(ctx, "artists")
	require.NoError(t, err)
	assert.Empty(t, artists)

	_, err = source.RelationsByGame(ctx, "owners")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"owners"`)
}

func TestSourceVideosByGame(t *testing.T) {
	source, _ := setupSource(t)

	videos, err := source.VideosByGame(context.Background())
	require.NoError(t, err)
	require.Len(t, videos[1], 2)
	require.NotNil(t, videos[1][0].Language)
	assert.Equal(t, "English", *videos[1][0].Language)
	assert.Nil(t, videos[1][1].Language)
}

func TestSourceReviewsBatch(t *testing.T) {
	source, _ := setupSource(t)
	ctx := context.Background()

	count, err := source.ReviewCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	batch, err := source.ReviewsBatch(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, 1, batch[0].ID)
	assert.Equal(t, "Alice", batch[0].DisplayName)

	batch, err = source.ReviewsBatch(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, 3, batch[0].ID)

	batch, err = source.ReviewsBatch(ctx, 4, 2)
	require.NoError(t, err)
	assert.Empty(t, batch)

	ids, err := source.ReviewIDsByGame(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids[1])
	assert.Equal(t, []int{3}, ids[2])
}

func TestSourceSpectatorsByMatchup(t *testing.T) {
	source, _ := setupSource(t)

	spectators, err := source.SpectatorsByMatchup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, spectators[1])
}

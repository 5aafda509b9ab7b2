package aggregator

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

func setupImporter(t *testing.T) (*Importer, *sqlx.DB) {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, sqlrepo.InitSchema(context.Background(), db))
	return NewImporter(db, testLogger()), db
}

func catanThing() Thing {
	things, err := ParseThings([]byte(catanXML))
	if err != nil || len(things) != 1 {
		panic("bad fixture")
	}
	return things[0]
}

func TestImportCreatesGameWithRelations(t *testing.T) {
	importer, db := setupImporter(t)
	ctx := context.Background()

	result, err := importer.Import(ctx, []Thing{catanThing()})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Zero(t, result.Skipped)
	assert.Empty(t, result.Failures)

	games := sqlrepo.NewGameRepository(db)
	detail, err := games.GetDetail(ctx, 13)
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, "CATAN", detail.Name)
	assert.Equal(t, "catan", *detail.Slug)
	assert.Equal(t, "1995", *detail.YearPublished)
	assert.InDelta(t, 7.09803, *detail.BggRating, 0.0001)
	assert.InDelta(t, 2.2915, *detail.DifficultyRating, 0.0001)
	assert.Equal(t, 120, *detail.PlayingTime)

	require.Len(t, detail.Designers, 1)
	assert.Equal(t, models.IDName{ID: 11, Name: "Klaus Teuber"}, detail.Designers[0])
	require.Len(t, detail.Publishers, 1)
	require.Len(t, detail.Mechanics, 1)
	// BGG categories land in genres.
	require.Len(t, detail.Genres, 1)
	assert.Equal(t, "Economic", detail.Genres[0].Name)

	var videos int
	require.NoError(t, db.Get(&videos, `SELECT COUNT(*) FROM video WHERE game_id = 13`))
	assert.Equal(t, 2, videos)

	// Both video languages were created as rows.
	var languages []string
	require.NoError(t, db.Select(&languages, `SELECT language FROM language ORDER BY id`))
	assert.Equal(t, []string{"English", "German"}, languages)
}

func TestImportIsIdempotent(t *testing.T) {
	importer, db := setupImporter(t)
	ctx := context.Background()

	_, err := importer.Import(ctx, []Thing{catanThing()})
	require.NoError(t, err)

	// Re-import with a changed name refreshes in place.
	updated := catanThing()
	updated.Names[0].Value = "CATAN (2015)"
	result, err := importer.Import(ctx, []Thing{updated})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM game`))
	assert.Equal(t, 1, count)

	var name string
	require.NoError(t, db.Get(&name, `SELECT name FROM game WHERE id = 13`))
	assert.Equal(t, "CATAN (2015)", name)

	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM language`))
	assert.Equal(t, 2, count, "languages must not duplicate on re-import")

	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM game_designers`))
	assert.Equal(t, 1, count)
}

func TestImportSkipsNonBoardgames(t *testing.T) {
	importer, _ := setupImporter(t)

	expansion := catanThing()
	expansion.ID = 926
	expansion.Type = "boardgameexpansion"

	result, err := importer.Import(context.Background(), []Thing{expansion})
	require.NoError(t, err)
	assert.Zero(t, result.Imported)
	assert.Equal(t, 1, result.Skipped)
}

func TestImportRecordsFailures(t *testing.T) {
	importer, _ := setupImporter(t)

	nameless := Thing{ID: 7, Type: "boardgame"}
	result, err := importer.Import(context.Background(), []Thing{nameless, catanThing()})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Contains(t, result.Failures, 7)
	assert.Contains(t, result.Failures[7].Error(), "no name")
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Catan", "catan"},
		{"spaces and punctuation", "7 Wonders: Duel", "7-wonders-duel"},
		{"collapses runs", "Tzolk'in -- The Mayan Calendar", "tzolk-in-the-mayan-calendar"},
		{"trailing separators", "Azul!!!", "azul"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slug := Slugify(tt.in)
			require.NotNil(t, slug)
			assert.Equal(t, tt.want, *slug)
		})
	}

	assert.Nil(t, Slugify("!!!"))
	assert.Nil(t, Slugify(""))
}

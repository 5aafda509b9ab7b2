package service

import (
	"context"
	"io"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamevault/gamevault-go/internal/models"
	"github.com/gamevault/gamevault-go/internal/repository"
	"github.com/gamevault/gamevault-go/internal/repository/factory"
	"github.com/gamevault/gamevault-go/internal/repository/sqlrepo"
)

func setupServices(t *testing.T) *Services {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, sqlrepo.InitSchema(context.Background(), db))

	repos, err := factory.New(factory.BackendSQL, factory.Clients{SQL: db})
	require.NoError(t, err)
	return New(repos, logrusDiscard())
}

func TestGameServiceCreateRejectsDuplicateName(t *testing.T) {
	services := setupServices(t)
	ctx := context.Background()

	_, err := services.Games.Create(ctx, &models.Game{Name: "Catan"})
	require.NoError(t, err)

	_, err = services.Games.Create(ctx, &models.Game{Name: "Catan"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Contains(t, err.Error(), `"Catan"`)
}

func TestGameServiceRename(t *testing.T) {
	services := setupServices(t)
	ctx := context.Background()

	catan, err := services.Games.Create(ctx, &models.Game{Name: "Catan"})
	require.NoError(t, err)
	azul, err := services.Games.Create(ctx, &models.Game{Name: "Azul"})
	require.NoError(t, err)

	// Renaming onto another game's name is rejected.
	_, err = services.Games.Update(ctx, azul.ID, map[string]any{"name": "Catan"})
	assert.ErrorIs(t, err, ErrDuplicateName)

	// Re-submitting a game's own name is not a conflict.
	updated, err := services.Games.Update(ctx, catan.ID, map[string]any{"name": "Catan"})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Catan", updated.Name)
}

func TestGameServiceListDefaultLimit(t *testing.T) {
	captured := &capturingGames{}
	services := New(&repository.Repositories{Games: captured}, logrusDiscard())

	_, _, err := services.Games.List(context.Background(), repository.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 20, captured.params.Limit)

	_, _, err = services.Games.List(context.Background(), repository.ListParams{Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, captured.params.Limit)
}

func TestUserServiceCreateRejectsDuplicates(t *testing.T) {
	services := setupServices(t)
	ctx := context.Background()

	_, err := services.Users.Create(ctx, &models.User{
		DisplayName: "Alice", Username: "alice", Password: "x", Email: "alice@example.com",
	})
	require.NoError(t, err)

	_, err = services.Users.Create(ctx, &models.User{
		DisplayName: "Alice 2", Username: "alice", Password: "x", Email: "a2@example.com",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Contains(t, err.Error(), "username")

	_, err = services.Users.Create(ctx, &models.User{
		DisplayName: "Alice", Username: "alice2", Password: "x", Email: "a3@example.com",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Contains(t, err.Error(), "display name")
}

func TestReviewServiceGameRating(t *testing.T) {
	services := setupServices(t)
	ctx := context.Background()

	game, err := services.Games.Create(ctx, &models.Game{Name: "Catan"})
	require.NoError(t, err)
	user, err := services.Users.Create(ctx, &models.User{
		DisplayName: "Alice", Username: "alice", Password: "x", Email: "alice@example.com",
	})
	require.NoError(t, err)

	// No reviews yet.
	average, count, err := services.Reviews.GameRating(ctx, game.ID)
	require.NoError(t, err)
	assert.Zero(t, average)
	assert.Zero(t, count)

	for _, stars := range []int{5, 3} {
		_, err := services.Reviews.Create(ctx, &models.Review{
			Title: "r", StarAmount: stars, UserID: user.ID, GameID: game.ID,
		})
		require.NoError(t, err)
	}

	average, count, err = services.Reviews.GameRating(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.InDelta(t, 4.0, average, 0.001)
}

func TestCatalogServiceCreateChecksNames(t *testing.T) {
	services := setupServices(t)
	ctx := context.Background()

	_, err := services.Catalog.CreatePerson(ctx, services.Catalog.Designers(), &models.Person{Name: "Klaus Teuber"})
	require.NoError(t, err)
	_, err = services.Catalog.CreatePerson(ctx, services.Catalog.Designers(), &models.Person{Name: "Klaus Teuber"})
	assert.ErrorIs(t, err, ErrDuplicateName)

	// The same name under a different sub-entity kind is fine.
	_, err = services.Catalog.CreatePerson(ctx, services.Catalog.Artists(), &models.Person{Name: "Klaus Teuber"})
	require.NoError(t, err)

	_, err = services.Catalog.CreateNamed(ctx, services.Catalog.Mechanics(), &models.NamedEntity{Name: "Dice Rolling"})
	require.NoError(t, err)
	_, err = services.Catalog.CreateNamed(ctx, services.Catalog.Mechanics(), &models.NamedEntity{Name: "Dice Rolling"})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestLanguageServiceCreateRejectsDuplicate(t *testing.T) {
	services := setupServices(t)
	ctx := context.Background()

	_, err := services.Languages.Create(ctx, &models.Language{Language: "English"})
	require.NoError(t, err)
	_, err = services.Languages.Create(ctx, &models.Language{Language: "English"})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func logrusDiscard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// capturingGames records the list params it was called with. The embedded
// interface panics on anything else, which is the point.
type capturingGames struct {
	repository.GameRepository
	params repository.ListParams
}

func (c *capturingGames) List(ctx context.Context, p repository.ListParams) ([]models.Game, int, error) {
	c.params = p
	return nil, 0, nil
}

package sqlrepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamevault/gamevault-go/internal/models"
	"github.com/gamevault/gamevault-go/internal/repository"
)

func seedUser(t *testing.T, repo *UserRepository, id int, displayName, username, email string) {
	t.Helper()
	_, err := repo.Create(context.Background(), &models.User{
		ID:          id,
		DisplayName: displayName,
		Username:    username,
		Password:    "secret",
		Email:       email,
	})
	require.NoError(t, err)
}

func TestUserListSearchesUsernameAndEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	seedUser(t, repo, 1, "Alice", "meeplequeen", "alice@example.com")
	seedUser(t, repo, 2, "Bob", "bob", "meeple@example.com")
	seedUser(t, repo, 3, "Meeple Wanderer", "carol", "carol@example.com")

	tests := []struct {
		name   string
		search string
		want   []int
	}{
		{"matches username", "meeplequeen", []int{1}},
		{"matches email", "meeple@", []int{2}},
		{"matches either column", "meeple", []int{1, 2}},
		{"ignores display name", "Wanderer", []int{}},
		{"case-insensitive", "MEEPLE", []int{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, total, err := repo.List(context.Background(), repository.ListParams{
				Limit: 10, Search: tt.search,
			})
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), total)
			got := []int{}
			for _, u := range users {
				got = append(got, u.ID)
			}
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestUserGetByDisplayName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	seedUser(t, repo, 1, "Alice", "meeplequeen", "alice@example.com")

	user, err := repo.GetByDisplayName(context.Background(), "Alice")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "meeplequeen", user.Username)

	missing, err := repo.GetByDisplayName(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

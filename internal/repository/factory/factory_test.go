package factory

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBackend(t *testing.T) {
	tests := []struct {
		value   string
		want    Backend
		wantErr bool
	}{
		{"sql", BackendSQL, false},
		{"mongo", BackendMongo, false},
		{"neo", BackendNeo, false},
		{"neo4j", "", true},
		{"postgres", "", true},
		{"", "", true},
		{"SQL", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := ParseBackend(tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.value)
				assert.Contains(t, err.Error(), "valid: sql, mongo, neo")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRequiresMatchingClient(t *testing.T) {
	_, err := New(BackendSQL, Clients{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sql")

	_, err = New(BackendMongo, Clients{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo")

	_, err = New(BackendNeo, Clients{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neo")

	_, err = New(Backend("bogus"), Clients{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown backend "bogus"`)
}

func TestNewSQLWiresAllRepositories(t *testing.T) {
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	repos, err := New(BackendSQL, Clients{SQL: db})
	require.NoError(t, err)
	require.NotNil(t, repos)

	assert.NotNil(t, repos.Games)
	assert.NotNil(t, repos.Users)
	assert.NotNil(t, repos.Reviews)
	assert.NotNil(t, repos.Videos)
	assert.NotNil(t, repos.Languages)
	assert.NotNil(t, repos.Designers)
	assert.NotNil(t, repos.Artists)
	assert.NotNil(t, repos.Publishers)
	assert.NotNil(t, repos.Mechanics)
	assert.NotNil(t, repos.Genres)
	assert.NotNil(t, repos.Matchups)
	assert.NotNil(t, repos.Moves)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, BackendSQL, cfg.Backend)
	assert.Equal(t, "sqlite3", cfg.SQL.Driver)
	assert.NotEmpty(t, cfg.SQL.SQLitePath)
	assert.Equal(t, "gamevault", cfg.Mongo.Database)
	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4j.URI)
	assert.Equal(t, float64(1), cfg.BGG.RateLimit)
	assert.Equal(t, 15*time.Second, cfg.BGG.Timeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gamevault.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend: mongo
mongo:
  uri: mongodb://db.internal:27017
  database: games_test
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendMongo, cfg.Backend)
	assert.Equal(t, "mongodb://db.internal:27017", cfg.Mongo.URI)
	assert.Equal(t, "games_test", cfg.Mongo.Database)
	// Untouched sections keep their defaults.
	assert.Equal(t, "sqlite3", cfg.SQL.Driver)
	assert.Equal(t, "neo4j", cfg.Neo4j.User)
}

func TestLoadRejectsInvalidBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gamevault.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: cassandra\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown backend "cassandra"`)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DB_MODE", "neo")
	t.Setenv("NEO4J_URI", "bolt://graph.internal:7687")
	t.Setenv("NEO4J_PASSWORD", "s3cret")
	t.Setenv("BGG_RATE_LIMIT", "0.5")

	path := filepath.Join(t.TempDir(), "gamevault.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: sql\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// Environment wins over the file.
	assert.Equal(t, BackendNeo, cfg.Backend)
	assert.Equal(t, "bolt://graph.internal:7687", cfg.Neo4j.URI)
	assert.Equal(t, "s3cret", cfg.Neo4j.Password)
	assert.Equal(t, 0.5, cfg.BGG.RateLimit)
}

func TestDatabaseURLSwitchesDriver(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://app@db/gamevault")

	path := filepath.Join(t.TempDir(), "gamevault.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: sql\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "pgx", cfg.SQL.Driver)
	assert.Equal(t, "postgres://app@db/gamevault", cfg.SQL.DSN)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid default", func(c *Config) {}, ""},
		{"bad backend", func(c *Config) { c.Backend = "redis" }, "unknown backend"},
		{"bad driver", func(c *Config) { c.SQL.Driver = "mysql" }, "unknown sql driver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

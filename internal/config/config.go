package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration settings
type Config struct {
	// Backend selects the repository implementation: "sql", "mongo" or "neo".
	Backend string `yaml:"backend"`

	SQL   SQLConfig   `yaml:"sql"`
	Mongo MongoConfig `yaml:"mongo"`
	Neo4j Neo4jConfig `yaml:"neo4j"`
	BGG   BGGConfig   `yaml:"bgg"`
}

type SQLConfig struct {
	Driver     string `yaml:"driver"` // "pgx" or "sqlite3"
	DSN        string `yaml:"dsn"`
	SQLitePath string `yaml:"sqlite_path"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type BGGConfig struct {
	BaseURL   string        `yaml:"base_url"`
	APIToken  string        `yaml:"api_token"`
	RateLimit float64       `yaml:"rate_limit"` // requests per second
	Timeout   time.Duration `yaml:"timeout"`
}

// Valid backend selector values.
const (
	BackendSQL   = "sql"
	BackendMongo = "mongo"
	BackendNeo   = "neo"
)

// Default returns default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Backend: BackendSQL,
		SQL: SQLConfig{
			Driver:     "sqlite3",
			SQLitePath: filepath.Join(homeDir, ".gamevault", "local.db"),
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "gamevault",
		},
		Neo4j: Neo4jConfig{
			URI:      "bolt://localhost:7687",
			User:     "neo4j",
			Database: "neo4j",
		},
		BGG: BGGConfig{
			BaseURL:   "https://boardgamegeek.com/xmlapi2",
			RateLimit: 1, // BGG throttles aggressively
			Timeout:   15 * time.Second,
		},
	}
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("backend", cfg.Backend)
	v.SetDefault("sql", cfg.SQL)
	v.SetDefault("mongo", cfg.Mongo)
	v.SetDefault("neo4j", cfg.Neo4j)
	v.SetDefault("bgg", cfg.BGG)

	v.SetEnvPrefix("GAMEVAULT")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("gamevault")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".gamevault"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate fails fast on configuration that cannot produce a working
// repository set. The backend selector in particular must name one of the
// three known engines.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQL, BackendMongo, BackendNeo:
	default:
		return fmt.Errorf("unknown backend %q (valid: sql, mongo, neo)", c.Backend)
	}
	if c.SQL.Driver != "pgx" && c.SQL.Driver != "sqlite3" {
		return fmt.Errorf("unknown sql driver %q (valid: pgx, sqlite3)", c.SQL.Driver)
	}
	return nil
}

// loadEnvFiles loads .env files in order of precedence
func loadEnvFiles() {
	envFiles := []string{
		".env.local",
		".env",
	}
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}

	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".gamevault", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		godotenv.Load(homeEnvFile)
	}
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	if mode := os.Getenv("DB_MODE"); mode != "" {
		cfg.Backend = mode
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.SQL.Driver = "pgx"
		cfg.SQL.DSN = dsn
	}
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		cfg.Mongo.URI = uri
	}
	if db := os.Getenv("MONGO_DATABASE"); db != "" {
		cfg.Mongo.Database = db
	}
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		cfg.Neo4j.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		cfg.Neo4j.User = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		cfg.Neo4j.Password = pass
	}
	if token := os.Getenv("BGG_API_TOKEN"); token != "" {
		cfg.BGG.APIToken = token
	}
	if limit := os.Getenv("BGG_RATE_LIMIT"); limit != "" {
		if parsed, err := strconv.ParseFloat(limit, 64); err == nil {
			cfg.BGG.RateLimit = parsed
		}
	}
}

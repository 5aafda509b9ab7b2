package database

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"

	"github.com/gamevault/gamevault-go/internal/config"
)

// Neo4jClient wraps the Neo4j driver with query helpers shared by the graph
// repositories and the graph migration.
type Neo4jClient struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *logrus.Logger
}

// OpenNeo4j creates a Neo4j client and verifies connectivity (fail fast on
// startup).
func OpenNeo4j(ctx context.Context, cfg config.Neo4jConfig, logger *logrus.Logger) (*Neo4jClient, error) {
	if cfg.URI == "" || cfg.User == "" {
		return nil, fmt.Errorf("neo4j configuration missing: uri=%q user=%q", cfg.URI, cfg.User)
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI,
		neo4j.BasicAuth(cfg.User, cfg.Password, ""),
		func(c *neo4j.Config) {
			c.MaxConnectionPoolSize = 50
			c.ConnectionAcquisitionTimeout = 60 * time.Second
			c.MaxConnectionLifetime = time.Hour
			c.SocketConnectTimeout = 5 * time.Second
			c.SocketKeepalive = true
		})
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j at %s: %w", cfg.URI, err)
	}

	database := cfg.Database
	if database == "" {
		database = "neo4j"
	}

	logger.WithFields(logrus.Fields{
		"uri":      cfg.URI,
		"user":     cfg.User,
		"database": database,
	}).Info("neo4j client connected")

	return &Neo4jClient{
		driver:   driver,
		database: database,
		logger:   logger,
	}, nil
}

// Close closes the Neo4j driver connection.
func (c *Neo4jClient) Close(ctx context.Context) error {
	if err := c.driver.Close(ctx); err != nil {
		return fmt.Errorf("failed to close neo4j driver: %w", err)
	}
	c.logger.Info("neo4j client closed")
	return nil
}

// HealthCheck verifies Neo4j connectivity.
func (c *Neo4jClient) HealthCheck(ctx context.Context) error {
	if err := c.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("neo4j health check failed: %w", err)
	}
	return nil
}

// Driver returns the underlying driver for session-level operations.
func (c *Neo4jClient) Driver() neo4j.DriverWithContext {
	return c.driver
}

// Database returns the configured database name.
func (c *Neo4jClient) Database() string {
	return c.database
}

// Run executes a single Cypher statement and returns the eager result rows
// as maps.
func (c *Neo4jClient) Run(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	result, err := neo4j.ExecuteQuery(ctx, c.driver, query, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(c.database))
	if err != nil {
		return nil, fmt.Errorf("cypher execution failed: %w", err)
	}

	records := make([]map[string]any, 0, len(result.Records))
	for _, record := range result.Records {
		records = append(records, record.AsMap())
	}
	return records, nil
}

// RunRead executes a read-only statement with reader routing.
func (c *Neo4jClient) RunRead(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	result, err := neo4j.ExecuteQuery(ctx, c.driver, query, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(c.database),
		neo4j.ExecuteQueryWithReadersRouting())
	if err != nil {
		return nil, fmt.Errorf("cypher read failed: %w", err)
	}

	records := make([]map[string]any, 0, len(result.Records))
	for _, record := range result.Records {
		records = append(records, record.AsMap())
	}
	return records, nil
}

// CountValue extracts an integer scalar from the first record of a count
// query, tolerating empty result sets.
func CountValue(records []map[string]any, key string) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	raw, ok := records[0][key]
	if !ok {
		return 0, fmt.Errorf("count query returned no %q column", key)
	}
	n, ok := raw.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected type for %q: %T (expected int64)", key, raw)
	}
	return int(n), nil
}

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/gamevault/gamevault-go/internal/config"
)

// MongoClient wraps the driver client together with the selected database
// handle so callers receive an explicitly constructed dependency instead of
// reaching for a process-global.
type MongoClient struct {
	client *mongo.Client
	db     *mongo.Database
	logger *logrus.Logger
}

// OpenMongo connects to MongoDB and verifies connectivity before returning.
func OpenMongo(ctx context.Context, cfg config.MongoConfig, logger *logrus.Logger) (*MongoClient, error) {
	if cfg.URI == "" || cfg.Database == "" {
		return nil, fmt.Errorf("mongo configuration missing: uri=%q database=%q", cfg.URI, cfg.Database)
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to reach mongo at %s: %w", cfg.URI, err)
	}

	logger.WithFields(logrus.Fields{
		"uri":      cfg.URI,
		"database": cfg.Database,
	}).Info("mongo client connected")

	return &MongoClient{
		client: client,
		db:     client.Database(cfg.Database),
		logger: logger,
	}, nil
}

// Database returns the selected database handle.
func (c *MongoClient) Database() *mongo.Database {
	return c.db
}

// Collection is a shorthand for a collection on the selected database.
func (c *MongoClient) Collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

// Close disconnects the underlying client.
func (c *MongoClient) Close(ctx context.Context) error {
	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	c.logger.Info("mongo client closed")
	return nil
}

// HealthCheck verifies connectivity.
func (c *MongoClient) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo health check failed: %w", err)
	}
	return nil
}

package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/gamevault/gamevault-go/internal/config"
)

// OpenSQL connects the relational engine. Postgres (pgx) in production,
// SQLite for local/test setups; the repositories run unchanged on either
// because their queries go through sqlx.Rebind.
func OpenSQL(ctx context.Context, cfg config.SQLConfig, logger *logrus.Logger) (*sqlx.DB, error) {
	var db *sqlx.DB
	var err error

	switch cfg.Driver {
	case "pgx":
		db, err = sqlx.ConnectContext(ctx, "pgx", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	case "sqlite3":
		dir := filepath.Dir(cfg.SQLitePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		db, err = sqlx.ConnectContext(ctx, "sqlite3", cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("connect to sqlite: %w", err)
		}
		db.Exec("PRAGMA foreign_keys = ON")
		db.Exec("PRAGMA journal_mode = WAL")
	default:
		return nil, fmt.Errorf("unknown sql driver %q (valid: pgx, sqlite3)", cfg.Driver)
	}

	logger.WithFields(logrus.Fields{
		"driver": cfg.Driver,
	}).Info("sql database connected")

	return db, nil
}

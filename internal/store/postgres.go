package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"feedpulse/internal/logger"
)

// PostgresStore persists subscriptions in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("connected to PostgreSQL subscription store")
	return &PostgresStore{db: db}, nil
}

// Ensure creates the feeds table when it does not exist yet.
func (s *PostgresStore) Ensure(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE EXTENSION IF NOT EXISTS pgcrypto;
CREATE TABLE IF NOT EXISTS feeds (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    created_at TIMESTAMP NOT NULL DEFAULT now(),
    url TEXT UNIQUE NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT ''
);
`)
	return err
}

func (s *PostgresStore) List(ctx context.Context) ([]Feed, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, title, description, created_at FROM feeds ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Feed
	for rows.Next() {
		var f Feed
		if err := rows.Scan(&f.ID, &f.URL, &f.Title, &f.Description, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Create(ctx context.Context, url, title, description string) (Feed, error) {
	if url == "" {
		return Feed{}, fmt.Errorf("feed url is required")
	}

	f := Feed{URL: url, Title: title, Description: description}
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO feeds (url, title, description) VALUES ($1, $2, $3) RETURNING id, created_at`,
		url, title, description)
	if err := row.Scan(&f.ID, &f.CreatedAt); err != nil {
		return Feed{}, fmt.Errorf("insert feed: %w", err)
	}
	return f, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

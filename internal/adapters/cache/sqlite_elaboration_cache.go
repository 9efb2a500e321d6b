package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLite backed cache for elaborated action text. Keys are expected to be
// content hashes computed by the caller.
type SqliteElaborationCache struct {
	DB    *sql.DB
	Model string
}

func NewSqliteElaborationCache(db *sql.DB, model string) *SqliteElaborationCache {
	return &SqliteElaborationCache{DB: db, Model: model}
}

func (s *SqliteElaborationCache) Get(ctx context.Context, key string) (string, bool, error) {
	if s.DB == nil {
		return "", false, errors.New("elaboration cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return "", false, errors.New("get elaboration cache: key must not be empty")
	}

	q := `
	SELECT body
	FROM elaboration_cache
	WHERE cache_key = ?;
	`

	var body string
	err := s.DB.QueryRowContext(ctx, q, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get elaboration cache: query elaboration_cache table: %w", err)
	}

	return body, true, nil
}

func (s *SqliteElaborationCache) Put(ctx context.Context, key string, text string) error {
	if s.DB == nil {
		return errors.New("elaboration cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("insert elaboration cache: key must not be empty")
	}

	q := `
	INSERT OR REPLACE INTO elaboration_cache (
		cache_key,
		model,
		body,
		created_at
	)
	VALUES (?, ?, ?, ?);
	`
	if _, err := s.DB.ExecContext(ctx, q, key, s.Model, text, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("insert elaboration cache key=%q: %w", key, err)
	}

	return nil
}

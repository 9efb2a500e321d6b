package cache

import (
	"context"
	"database/sql"
	"delivery-delay-service/internal/platform/obs"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLElaborationCache is a Postgres-backed cache for elaborated action text.
type SQLElaborationCache struct {
	DB    *sql.DB
	Model string
}

func NewSQLElaborationCache(db *sql.DB, model string) *SQLElaborationCache {
	return &SQLElaborationCache{DB: db, Model: model}
}

func (s *SQLElaborationCache) Get(ctx context.Context, key string) (_ string, _ bool, err error) {
	defer obs.Time(ctx, "elaboration.cache.Get")(&err)

	if s.DB == nil {
		return "", false, errors.New("elaboration cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return "", false, errors.New("get elaboration cache: key must not be empty")
	}

	var body string
	err = s.DB.QueryRowContext(ctx, `SELECT body FROM elaboration_cache WHERE cache_key = $1;`, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get elaboration cache: query elaboration_cache table: %w", err)
	}

	return body, true, nil
}

func (s *SQLElaborationCache) Put(ctx context.Context, key string, text string) error {
	if s.DB == nil {
		return errors.New("elaboration cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("insert elaboration cache: key must not be empty")
	}

	q := `
	INSERT INTO elaboration_cache (cache_key, model, body, created_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (cache_key) DO UPDATE
	SET model = EXCLUDED.model,
		body = EXCLUDED.body,
		created_at = EXCLUDED.created_at;
	`
	if _, err := s.DB.ExecContext(ctx, q, key, s.Model, text, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("insert elaboration cache key=%q: %w", key, err)
	}

	return nil
}

package repositories

import (
	"context"
	"database/sql"
	"delivery-delay-service/internal/domain"
	"delivery-delay-service/internal/platform/obs"
	"errors"
	"fmt"
	"time"
)

// SQLite-backed implementation of the ModelStore port.
type SqliteModelStore struct{ DB *sql.DB }

func NewSqliteModelStore(db *sql.DB) *SqliteModelStore {
	return &SqliteModelStore{DB: db}
}

// Return the active parameters.
func (s *SqliteModelStore) LoadParams(ctx context.Context) (_ *domain.ModelParams, err error) {
	defer obs.Time(ctx, "model.sqlite.LoadParams")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite model store: DB is nil")
	}

	query := `
	SELECT params
	FROM model_params
	WHERE slot = ?;
	`
	var blob string
	err = s.DB.QueryRowContext(ctx, query, activeModel).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load params: %w", domain.ErrModelNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load params: query model_params table: %w", err)
	}

	params, err := decodeParams([]byte(blob))
	if err != nil {
		return nil, fmt.Errorf("load params: %w", err)
	}
	return params, nil
}

// Replace the active parameters.
func (s *SqliteModelStore) SaveParams(ctx context.Context, params *domain.ModelParams) (err error) {
	defer obs.Time(ctx, "model.sqlite.SaveParams")(&err)

	if s.DB == nil {
		return errors.New("sqlite model store: DB is nil")
	}

	blob, err := encodeParams(params)
	if err != nil {
		return fmt.Errorf("save params: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO model_params (
		slot,
		params_id,
		trained_at,
		params
	)
	VALUES (?, ?, ?, ?);
	`
	if _, err := s.DB.ExecContext(ctx, query, activeModel, params.ID, params.TrainedAt.Format(time.RFC3339Nano), string(blob)); err != nil {
		return fmt.Errorf("save params id=%s: %w", params.ID, err)
	}
	return nil
}

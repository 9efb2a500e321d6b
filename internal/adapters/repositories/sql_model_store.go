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

// SQLModelStore is a Postgres-backed ModelStore.
type SQLModelStore struct{ DB *sql.DB }

func NewSQLModelStore(db *sql.DB) *SQLModelStore {
	return &SQLModelStore{DB: db}
}

func (s *SQLModelStore) LoadParams(ctx context.Context) (_ *domain.ModelParams, err error) {
	defer obs.Time(ctx, "model.sql.LoadParams")(&err)

	if s.DB == nil {
		return nil, errors.New("sql model store: DB is nil")
	}

	var blob string
	err = s.DB.QueryRowContext(ctx, `SELECT params FROM model_params WHERE slot = $1;`, activeModel).Scan(&blob)
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

func (s *SQLModelStore) SaveParams(ctx context.Context, params *domain.ModelParams) (err error) {
	defer obs.Time(ctx, "model.sql.SaveParams")(&err)

	if s.DB == nil {
		return errors.New("sql model store: DB is nil")
	}

	blob, err := encodeParams(params)
	if err != nil {
		return fmt.Errorf("save params: %w", err)
	}

	query := `
	INSERT INTO model_params (slot, params_id, trained_at, params)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (slot) DO UPDATE
	SET params_id = EXCLUDED.params_id,
		trained_at = EXCLUDED.trained_at,
		params = EXCLUDED.params;
	`
	if _, err := s.DB.ExecContext(ctx, query, activeModel, params.ID, params.TrainedAt.Format(time.RFC3339Nano), string(blob)); err != nil {
		return fmt.Errorf("save params id=%s: %w", params.ID, err)
	}
	return nil
}

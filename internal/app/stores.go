package app

import (
	"database/sql"
	"delivery-delay-service/internal/adapters/cache"
	"delivery-delay-service/internal/adapters/repositories"
	"delivery-delay-service/internal/config"
	"delivery-delay-service/internal/platform/db"
	"delivery-delay-service/internal/ports"
	"errors"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Stores holds the configured persistence adapters and their connections.
type Stores struct {
	Model ports.ModelStore
	// Cache is nil when ELABORATION_CACHE=none.
	Cache ports.ElaborationCache

	sqlite   *sql.DB
	postgres *sql.DB
}

// OpenStores connects every database the configuration names, initialises
// its schema and builds the model store and elaboration cache. Any
// connection failure is returned so the caller can stop before serving.
func OpenStores(cfg config.Config) (_ *Stores, err error) {
	s := &Stores{}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	if cfg.NeedsSQLite() {
		if s.sqlite, err = db.OpenSQLite(cfg.DBPath); err != nil {
			return nil, err
		}
		if err := repositories.InitSchema(s.sqlite); err != nil {
			return nil, fmt.Errorf("open stores: sqlite: %w", err)
		}
	}
	if cfg.NeedsPostgres() {
		if s.postgres, err = db.Open(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		if err := repositories.InitSchema(s.postgres); err != nil {
			return nil, fmt.Errorf("open stores: postgres: %w", err)
		}
	}

	switch cfg.ModelStore {
	case config.StoreFile:
		s.Model = repositories.NewFileModelStore(cfg.ModelPath)
	case config.StoreSQLite:
		s.Model = repositories.NewSqliteModelStore(s.sqlite)
	case config.StorePostgres:
		s.Model = repositories.NewSQLModelStore(s.postgres)
	default:
		return nil, fmt.Errorf("open stores: unknown MODEL_STORE %q", cfg.ModelStore)
	}

	switch cfg.ElaborationCache {
	case config.StoreNone:
	case config.StoreSQLite:
		s.Cache = cache.NewSqliteElaborationCache(s.sqlite, cfg.ElaborationModel)
	case config.StorePostgres:
		s.Cache = cache.NewSQLElaborationCache(s.postgres, cfg.ElaborationModel)
	default:
		return nil, fmt.Errorf("open stores: unknown ELABORATION_CACHE %q", cfg.ElaborationCache)
	}

	log.Printf("stores model=%s elaboration_cache=%s", cfg.ModelStore, cfg.ElaborationCache)
	return s, nil
}

func (s *Stores) Close() {
	var errs []error
	if s.sqlite != nil {
		errs = append(errs, s.sqlite.Close())
	}
	if s.postgres != nil {
		errs = append(errs, s.postgres.Close())
	}
	if err := errors.Join(errs...); err != nil {
		log.Printf("close stores: %v", err)
	}
}

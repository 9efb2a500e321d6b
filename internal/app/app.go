package app

import (
	"context"
	"delivery-delay-service/internal/adapters/catalog"
	"delivery-delay-service/internal/adapters/csvsource"
	"delivery-delay-service/internal/adapters/elaboration"
	"delivery-delay-service/internal/config"
	"delivery-delay-service/internal/domain"
	"delivery-delay-service/internal/platform/metrics"
	"delivery-delay-service/internal/platform/resilience"
	"delivery-delay-service/internal/ports"
	"delivery-delay-service/internal/services"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// LoadData checks the data directory and the mandatory orders file, then
// merges and derives the dataset.
func LoadData(ctx context.Context, cfg config.Config, m *metrics.Metrics) (*services.Dataset, error) {
	src := csvsource.NewDirSource(cfg.DataDir)
	if err := src.Check(); err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}

	orders := src.Path(services.OrdersSource.Name)
	if _, err := os.Stat(orders); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load data: %s: %w", orders, domain.ErrMandatorySource)
		}
		return nil, fmt.Errorf("load data: %s: %w", orders, err)
	}

	ds, err := services.LoadDataset(ctx, src, m)
	if err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}
	return ds, nil
}

// NewElaborator selects the elaborator for cfg. cache may be nil.
func NewElaborator(cfg config.Config, cache ports.ElaborationCache, m *metrics.Metrics) ports.Elaborator {
	return elaboration.New(elaboration.Options{
		ForceLocal: cfg.ForceLocalElaboration,
		Remote: elaboration.RemoteConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.ElaborationBaseURL,
			Model:   cfg.ElaborationModel,
			Timeout: cfg.ElaborationTimeout,
			Cache:   cache,
			Breaker: resilience.DefaultBreakerConfig("elaboration"),
			Metrics: m,
		},
	})
}

// NewRecommender builds the predictor from store and history and wraps it
// with the catalogue and elaborator.
func NewRecommender(
	ctx context.Context,
	cfg config.Config,
	store ports.ModelStore,
	history *services.History,
	elaborator ports.Elaborator,
	m *metrics.Metrics,
) (*services.Recommender, error) {
	actions, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("new recommender: %w", err)
	}

	predictor := services.NewDelayPredictor(ctx, store, history)

	// Per-call budget covers the HTTP timeout plus retry backoff.
	timeout := cfg.ElaborationTimeout + 2*time.Second
	return services.NewRecommender(actions, predictor, elaborator, services.RecommenderOptions{
		ElaborateTop:       cfg.ElaborateTop,
		ElaborationTimeout: timeout,
		Metrics:            m,
	}), nil
}

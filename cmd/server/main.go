package main

import (
	"context"
	"delivery-delay-service/internal/api"
	"delivery-delay-service/internal/app"
	"delivery-delay-service/internal/config"
	"delivery-delay-service/internal/platform/metrics"
	"log"
	"net/http"
	"time"
)

// main is the application composition root.
// It validates configuration, loads the dataset once, fixes the predictor
// mode and starts the HTTP server.
func main() {
	config.LoadEnv()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	m := metrics.New("delivery_delay")

	// Startup failures stop the process before any computation.
	stores, err := app.OpenStores(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer stores.Close()

	ds, err := app.LoadData(ctx, cfg, m)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("dataset rows=%d degraded=%d warnings=%d", ds.Table.Len(), len(ds.Degraded), len(ds.Warnings))
	for _, w := range ds.Warnings {
		log.Printf("dataset warning %s", w)
	}

	elaborator := app.NewElaborator(cfg, stores.Cache, m)
	recommender, err := app.NewRecommender(ctx, cfg, stores.Model, ds.History(), elaborator, m)
	if err != nil {
		log.Fatal(err)
	}

	router := api.NewRouter(api.Deps{
		Dataset:     ds,
		Recommender: recommender,
		Elaborator:  elaborator.Name(),
		Metrics:     m,
	})

	// Write timeout covers elaboration of the top actions.
	log.Printf("Server listening addr=:%s", cfg.Port)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

package api

import (
	"delivery-delay-service/internal/api/handlers"
	"delivery-delay-service/internal/platform/metrics"
	"delivery-delay-service/internal/services"
	"net/http"
)

// Deps are the services the HTTP API exposes.
type Deps struct {
	Dataset     *services.Dataset
	Recommender *services.Recommender
	Elaborator  string
	Metrics     *metrics.Metrics
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()
	routes := make(map[string]bool)
	handle := func(path string, h http.HandlerFunc) {
		routes[path] = true
		mux.HandleFunc(path, h)
	}

	datasetHandler := &handlers.DatasetHandler{
		Dataset:   d.Dataset,
		Predictor: d.Recommender.Predictor(),
	}
	predictHandler := &handlers.PredictHandler{
		Recommender: d.Recommender,
		Metrics:     d.Metrics,
	}
	modelHandler := &handlers.ModelHandler{
		Recommender: d.Recommender,
		Elaborator:  d.Elaborator,
	}
	chartsHandler := &handlers.ChartsHandler{Dataset: datasetHandler}

	handle("/health", handlers.Health)
	handle("/dataset", datasetHandler.List)
	handle("/analytics", datasetHandler.Analytics)
	handle("/export/dataset.csv", datasetHandler.ExportCSV)
	handle("/export/dataset.xlsx", datasetHandler.ExportXLSX)
	handle("/predict", predictHandler.Predict)
	handle("/actions", predictHandler.Actions)
	handle("/export/actions.csv", predictHandler.ExportActions)
	handle("/model", modelHandler.Get)
	handle("/charts", chartsHandler.Page)

	routes["/metrics"] = true
	mux.Handle("/metrics", d.Metrics.Handler())

	return requestIDMiddleware(loggingMiddleware(mux, d.Metrics, routes))
}

package services

import (
	"context"
	"delivery-delay-service/internal/domain"
	"delivery-delay-service/internal/ports"
	"errors"
	"fmt"
	"log"
	"math"
	"slices"
)

// Base feature names, in model column order. One-hot carrier columns follow.
const (
	FeatureDistanceKM            = "distance_km"
	FeaturePriorityLevel         = "priority_level"
	FeatureWeatherSeverity       = "weather_severity"
	FeatureHistoricalReliability = "historical_reliability"

	carrierFeaturePrefix = "carrier="
)

// Fallback inflation per weather severity step.
const weatherDelayFactor = 0.1

var baseFeatures = []string{
	FeatureDistanceKM,
	FeaturePriorityLevel,
	FeatureWeatherSeverity,
	FeatureHistoricalReliability,
}

// DelayPredictor predicts the delay in minutes of a shipment. Its mode is
// fixed at construction: Loaded uses persisted regression parameters,
// Fallback uses the historical heuristic.
type DelayPredictor struct {
	mode    domain.PredictorMode
	params  *domain.ModelParams
	history *History
}

// NewDelayPredictor loads parameters from store. A nil store, missing
// parameters or an unreadable blob select Fallback mode; this is logged and
// never an error.
func NewDelayPredictor(ctx context.Context, store ports.ModelStore, history *History) *DelayPredictor {
	if store == nil {
		log.Printf("predictor mode=%s reason=%q", domain.ModeFallback, "no model store configured")
		return NewFallbackPredictor(history)
	}

	params, err := store.LoadParams(ctx)
	if err != nil {
		reason := err.Error()
		if errors.Is(err, domain.ErrModelNotFound) {
			reason = "no persisted model"
		}
		log.Printf("predictor mode=%s reason=%q", domain.ModeFallback, reason)
		return NewFallbackPredictor(history)
	}

	p, err := NewLoadedPredictor(params, history)
	if err != nil {
		log.Printf("predictor mode=%s reason=%q", domain.ModeFallback, err.Error())
		return NewFallbackPredictor(history)
	}
	log.Printf("predictor mode=%s model_id=%s trained_at=%s", p.mode, params.ID, params.TrainedAt.Format("2006-01-02T15:04:05Z07:00"))
	return p
}

func NewFallbackPredictor(history *History) *DelayPredictor {
	return &DelayPredictor{mode: domain.ModeFallback, history: history}
}

// NewLoadedPredictor validates params before accepting them.
func NewLoadedPredictor(params *domain.ModelParams, history *History) (*DelayPredictor, error) {
	if params == nil {
		return nil, fmt.Errorf("loaded predictor: nil params")
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("loaded predictor: %w", err)
	}
	if want := featureNames(params.Carriers); !slices.Equal(params.Features, want) {
		return nil, fmt.Errorf("loaded predictor: features %v do not match carriers %v, want %v",
			params.Features, params.Carriers, want)
	}
	return &DelayPredictor{mode: domain.ModeLoaded, params: params, history: history}, nil
}

func (p *DelayPredictor) Mode() domain.PredictorMode {
	return p.mode
}

// Params returns the loaded parameters, nil in Fallback mode.
func (p *DelayPredictor) Params() *domain.ModelParams {
	return p.params
}

func (p *DelayPredictor) History() *History {
	return p.history
}

// Encode turns a feature vector into model inputs. Unknown weather encodes
// as severity 0 and unknown historical reliability is looked up.
func (p *DelayPredictor) Encode(fv domain.FeatureVector) domain.EncodedFeatures {
	fv = fv.Normalized()
	severity, _ := domain.WeatherSeverity(fv.Weather)
	rel := fv.HistoricalReliability
	if math.IsNaN(rel) {
		rel = p.history.Reliability(fv.Route, fv.Carrier)
	}
	return domain.EncodedFeatures{
		Route:                 fv.Route,
		Carrier:               fv.Carrier,
		DistanceKM:            fv.DistanceKM,
		PriorityLevel:         domain.PriorityLevel(fv.Priority),
		WeatherSeverity:       severity,
		HistoricalReliability: rel,
	}
}

// Predict returns the predicted delay in minutes, finite and never negative.
func (p *DelayPredictor) Predict(fv domain.FeatureVector) float64 {
	return p.PredictEncoded(p.Encode(fv))
}

func (p *DelayPredictor) PredictEncoded(e domain.EncodedFeatures) float64 {
	var v float64
	if p.mode == domain.ModeLoaded {
		v = p.params.Intercept
		for i, x := range featureRow(e, p.params.Carriers) {
			v += p.params.Coefficients[i] * (x - p.params.Means[i]) / p.params.Scales[i]
		}
	} else {
		v = p.history.DelayEstimate(e.Route, e.Carrier) * (1 + weatherDelayFactor*e.WeatherSeverity)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// featureRow lays out e in model column order.
func featureRow(e domain.EncodedFeatures, carriers []string) []float64 {
	row := make([]float64, 0, len(baseFeatures)+len(carriers))
	row = append(row, e.DistanceKM, e.PriorityLevel, e.WeatherSeverity, e.HistoricalReliability)
	for _, c := range carriers {
		if c == e.Carrier {
			row = append(row, 1)
		} else {
			row = append(row, 0)
		}
	}
	return row
}

func featureNames(carriers []string) []string {
	names := append([]string(nil), baseFeatures...)
	for _, c := range carriers {
		names = append(names, carrierFeaturePrefix+c)
	}
	return names
}

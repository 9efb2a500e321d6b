package domain

import (
	"fmt"
	"math"
	"time"
)

// PredictorMode is fixed at startup from persisted-state presence.
type PredictorMode string

const (
	ModeLoaded   PredictorMode = "loaded"
	ModeFallback PredictorMode = "fallback"
)

// EncodedFeatures is the numeric form of a FeatureVector. Route and Carrier
// are kept for the carrier one-hot columns and the fallback heuristic.
type EncodedFeatures struct {
	Route                 string
	Carrier               string
	DistanceKM            float64
	PriorityLevel         float64
	WeatherSeverity       float64
	HistoricalReliability float64
}

// Evaluation is the held-out error of a fitted model.
type Evaluation struct {
	MAE       float64 `json:"mae"`
	R2        float64 `json:"r2"`
	TrainRows int     `json:"train_rows"`
	TestRows  int     `json:"test_rows"`
}

// ModelParams is the persisted state of the delay regression.
type ModelParams struct {
	ID           string     `json:"id"`
	Algorithm    string     `json:"algorithm"`
	TrainedAt    time.Time  `json:"trained_at"`
	Features     []string   `json:"features"`
	Carriers     []string   `json:"carriers"`
	Means        []float64  `json:"means"`
	Scales       []float64  `json:"scales"`
	Coefficients []float64  `json:"coefficients"`
	Intercept    float64    `json:"intercept"`
	Lambda       float64    `json:"lambda"`
	Evaluation   Evaluation `json:"evaluation"`
}

// Validate checks that the parameter vectors line up and are finite.
func (p *ModelParams) Validate() error {
	n := len(p.Features)
	if n == 0 {
		return fmt.Errorf("model params: no features")
	}
	if len(p.Means) != n || len(p.Scales) != n || len(p.Coefficients) != n {
		return fmt.Errorf(
			"model params: length mismatch features=%d means=%d scales=%d coefficients=%d",
			n, len(p.Means), len(p.Scales), len(p.Coefficients),
		)
	}
	for i := 0; i < n; i++ {
		for _, v := range []float64{p.Means[i], p.Scales[i], p.Coefficients[i]} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("model params: non-finite value for feature %q", p.Features[i])
			}
		}
		if p.Scales[i] <= 0 {
			return fmt.Errorf("model params: non-positive scale for feature %q", p.Features[i])
		}
	}
	if math.IsNaN(p.Intercept) || math.IsInf(p.Intercept, 0) {
		return fmt.Errorf("model params: non-finite intercept")
	}
	return nil
}

package services

import (
	"context"
	"delivery-delay-service/internal/adapters/repositories"
	"delivery-delay-service/internal/domain"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackPredictorBlend(t *testing.T) {
	ds := loadFixture(t)
	p := NewFallbackPredictor(ds.History())
	require.Equal(t, domain.ModeFallback, p.Mode())

	tests := []struct {
		name string
		fv   domain.FeatureVector
		want float64
	}{
		// Route R1 mean 22.5, carrier SlowCo mean 15.
		{"route and carrier", domain.FeatureVector{Route: "R1", Carrier: "SlowCo", Weather: "None"}, 0.6*22.5 + 0.4*15},
		{"weather scales", domain.FeatureVector{Route: "R1", Carrier: "SlowCo", Weather: "Heavy_Rain"}, (0.6*22.5 + 0.4*15) * 1.2},
		{"route only", domain.FeatureVector{Route: "R2", Carrier: "Nobody"}, 30},
		{"carrier only", domain.FeatureVector{Route: "R9", Carrier: "FastCo"}, 45},
		{"global mean", domain.FeatureVector{Route: "R9", Carrier: "Nobody"}, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fv := tt.fv
			fv.HistoricalReliability = math.NaN()
			assert.InDelta(t, tt.want, p.Predict(fv), 1e-9)
		})
	}
}

func TestFallbackPredictorEmptyHistory(t *testing.T) {
	p := NewFallbackPredictor(NewHistory(nil))
	got := p.Predict(domain.FeatureVector{Route: "R1", Carrier: "X", Weather: "Fog", HistoricalReliability: math.NaN()})
	if got != 0 {
		t.Fatalf("Predict = %v, want 0", got)
	}
}

func TestNewDelayPredictorFallsBack(t *testing.T) {
	ctx := context.Background()
	h := NewHistory(nil)

	assert.Equal(t, domain.ModeFallback, NewDelayPredictor(ctx, nil, h).Mode())

	store := repositories.NewFileModelStore(filepath.Join(t.TempDir(), "model.json"))
	assert.Equal(t, domain.ModeFallback, NewDelayPredictor(ctx, store, h).Mode())
}

func TestNewLoadedPredictorRejectsBadParams(t *testing.T) {
	_, err := NewLoadedPredictor(nil, nil)
	require.Error(t, err)

	params := &domain.ModelParams{
		Features:     featureNames(nil),
		Carriers:     []string{"A"},
		Means:        make([]float64, 4),
		Scales:       []float64{1, 1, 1, 1},
		Coefficients: make([]float64, 4),
	}
	_, err = NewLoadedPredictor(params, nil)
	require.Error(t, err, "carrier count does not match features")

	reordered := &domain.ModelParams{
		Features:     []string{FeaturePriorityLevel, FeatureDistanceKM, FeatureWeatherSeverity, FeatureHistoricalReliability},
		Means:        make([]float64, 4),
		Scales:       []float64{1, 1, 1, 1},
		Coefficients: make([]float64, 4),
	}
	_, err = NewLoadedPredictor(reordered, nil)
	require.Error(t, err, "features out of order")

	renamed := &domain.ModelParams{
		Features:     append(featureNames(nil), "carrier=B"),
		Carriers:     []string{"A"},
		Means:        make([]float64, 5),
		Scales:       []float64{1, 1, 1, 1, 1},
		Coefficients: make([]float64, 5),
	}
	_, err = NewLoadedPredictor(renamed, nil)
	require.Error(t, err, "carrier feature renamed")
}

func TestPredictionsNeverNegative(t *testing.T) {
	params := &domain.ModelParams{
		Features:     featureNames(nil),
		Means:        make([]float64, 4),
		Scales:       []float64{1, 1, 1, 1},
		Coefficients: []float64{-10, 0, 0, 0},
		Intercept:    5,
	}
	p, err := NewLoadedPredictor(params, NewHistory(nil))
	require.NoError(t, err)

	got := p.Predict(domain.FeatureVector{DistanceKM: 100, HistoricalReliability: 0.5})
	if got != 0 {
		t.Fatalf("Predict = %v, want 0", got)
	}
}

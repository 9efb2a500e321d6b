package domain

import (
	"math"
	"strings"
)

// Weather severity codes. Higher is worse.
var weatherSeverity = map[string]float64{
	"none":       0,
	"light_rain": 1,
	"heavy_rain": 2,
	"fog":        3,
}

// MaxWeatherSeverity is the severity of the worst known weather category.
const MaxWeatherSeverity = 3.0

// WeatherSeverity maps a Weather_Impact category to its severity code.
// The second result is false for empty or unrecognised categories.
func WeatherSeverity(category string) (float64, bool) {
	key := strings.ToLower(strings.TrimSpace(category))
	key = strings.ReplaceAll(key, " ", "_")
	v, ok := weatherSeverity[key]
	return v, ok
}

var priorityLevels = map[string]float64{
	"economy":  0,
	"standard": 1,
	"express":  2,
}

// PriorityLevel maps a priority tier to an ordinal. Unknown tiers map to
// Standard.
func PriorityLevel(tier string) float64 {
	if v, ok := priorityLevels[strings.ToLower(strings.TrimSpace(tier))]; ok {
		return v
	}
	return priorityLevels["standard"]
}

// FeatureVector is the input of a delay prediction.
type FeatureVector struct {
	Route    string
	Carrier  string
	Priority string
	Weather  string
	// DistanceKM is clamped to zero when negative or NaN.
	DistanceKM float64
	// HistoricalReliability in [0,1]; NaN means "look it up from history".
	HistoricalReliability float64
	// FuelPerKM is context for the recommender only; the model ignores it.
	FuelPerKM float64
}

// Normalized returns a copy with non-finite or negative numerics replaced
// by neutral values.
func (f FeatureVector) Normalized() FeatureVector {
	if math.IsNaN(f.DistanceKM) || math.IsInf(f.DistanceKM, 0) || f.DistanceKM < 0 {
		f.DistanceKM = 0
	}
	if math.IsNaN(f.FuelPerKM) || math.IsInf(f.FuelPerKM, 0) || f.FuelPerKM < 0 {
		f.FuelPerKM = 0
	}
	if !math.IsNaN(f.HistoricalReliability) {
		f.HistoricalReliability = Clamp01(f.HistoricalReliability)
	}
	return f
}

// Clamp01 bounds v to [0,1]; NaN maps to 0.5.
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0.5
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

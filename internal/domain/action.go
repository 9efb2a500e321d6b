package domain

import "strings"

// Recommendation context fields available to catalogue conditions.
const (
	CtxPredictedDelay        = "predicted_delay"
	CtxDistanceKM            = "distance_km"
	CtxWeatherSeverity       = "weather_severity"
	CtxPriorityLevel         = "priority_level"
	CtxFuelPerKM             = "fuel_per_km"
	CtxHistoricalReliability = "historical_reliability"
)

// ContextFields lists every field a Condition may name.
var ContextFields = []string{
	CtxPredictedDelay,
	CtxDistanceKM,
	CtxWeatherSeverity,
	CtxPriorityLevel,
	CtxFuelPerKM,
	CtxHistoricalReliability,
}

// Condition is one applicability test against a recommendation context,
// e.g. {predicted_delay gte 30}.
type Condition struct {
	Field string  `yaml:"field" json:"field"`
	Op    string  `yaml:"op" json:"op"`
	Value float64 `yaml:"value" json:"value"`
}

// Holds reports whether the condition is satisfied. Unknown fields and
// operators never hold.
func (c Condition) Holds(ctx map[string]float64) bool {
	actual, ok := ctx[c.Field]
	if !ok {
		return false
	}
	switch strings.ToLower(c.Op) {
	case "gte":
		return actual >= c.Value
	case "lte":
		return actual <= c.Value
	case "gt":
		return actual > c.Value
	case "lt":
		return actual < c.Value
	case "eq":
		return actual == c.Value
	case "ne":
		return actual != c.Value
	default:
		return false
	}
}

// Adjustment describes how an action changes the model inputs, used to
// estimate its delay reduction with the predictor.
type Adjustment struct {
	Feature string  `yaml:"feature" json:"feature"`
	Op      string  `yaml:"op" json:"op"`
	Value   float64 `yaml:"value" json:"value"`
}

// CorrectiveAction is a catalogue entry.
type CorrectiveAction struct {
	ID                 string       `yaml:"id" json:"id"`
	Title              string       `yaml:"title" json:"title"`
	Template           string       `yaml:"template" json:"template"`
	ReductionPct       float64      `yaml:"reduction_pct" json:"reduction_pct"`
	ImplementationCost float64      `yaml:"implementation_cost" json:"implementation_cost"`
	When               []Condition  `yaml:"when" json:"when"`
	Adjust             []Adjustment `yaml:"adjust" json:"adjust"`
}

// Applies reports whether every condition holds. An action without
// conditions always applies.
func (a CorrectiveAction) Applies(ctx map[string]float64) bool {
	for _, c := range a.When {
		if !c.Holds(ctx) {
			return false
		}
	}
	return true
}

// RecommendedAction is a ranked, possibly elaborated catalogue entry.
type RecommendedAction struct {
	Rank                  int
	ActionID              string
	Title                 string
	EstimatedReductionMin float64
	ImplementationCost    float64
	Details               string
	Elaborated            bool
}

// Recommendation is the result of one recommend call.
type Recommendation struct {
	PredictedDelayMin float64
	Mode              PredictorMode
	Actions           []RecommendedAction
}

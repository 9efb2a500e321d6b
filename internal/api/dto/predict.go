package dto

import "time"

type FeatureRequest struct {
	Route      string  `json:"route"`
	Carrier    string  `json:"carrier"`
	Priority   string  `json:"priority"`
	Weather    string  `json:"weather"`
	DistanceKM float64 `json:"distance_km"`
	// Omitted means "look up from history".
	HistoricalReliability *float64 `json:"historical_reliability"`
	FuelPerKM             float64  `json:"fuel_per_km"`
}

type PredictResponse struct {
	PredictedDelayMin float64 `json:"predicted_delay_min"`
	Mode              string  `json:"mode"`
}

type ActionResponse struct {
	Rank                  int     `json:"rank"`
	ActionID              string  `json:"action_id"`
	Title                 string  `json:"title"`
	EstimatedReductionMin float64 `json:"estimated_reduction_min"`
	ImplementationCost    float64 `json:"implementation_cost"`
	Details               string  `json:"details"`
	Elaborated            bool    `json:"elaborated"`
}

type ActionsResponse struct {
	PredictedDelayMin float64          `json:"predicted_delay_min"`
	Mode              string           `json:"mode"`
	Actions           []ActionResponse `json:"actions"`
}

type EvaluationResponse struct {
	MAE       float64 `json:"mae"`
	R2        float64 `json:"r2"`
	TrainRows int     `json:"train_rows"`
	TestRows  int     `json:"test_rows"`
}

type ModelResponse struct {
	Mode       string              `json:"mode"`
	ID         string              `json:"id,omitempty"`
	Algorithm  string              `json:"algorithm,omitempty"`
	TrainedAt  *time.Time          `json:"trained_at,omitempty"`
	Features   []string            `json:"features,omitempty"`
	Evaluation *EvaluationResponse `json:"evaluation,omitempty"`
	Elaborator string              `json:"elaborator"`
	Actions    []string            `json:"catalog_actions"`
}

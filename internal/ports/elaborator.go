package ports

import (
	"context"
	"delivery-delay-service/internal/domain"
)

// Input for phrasing one corrective action.
type ElaborationRequest struct {
	Action                domain.CorrectiveAction
	PredictedDelayMin     float64
	EstimatedReductionMin float64
	Route                 string
	Carrier               string
}

// Contract for turning a catalogue action into natural-language guidance.
type Elaborator interface {
	// Return elaborated text for the action. Any failure means the
	// service is unavailable and callers fall back to the template.
	Elaborate(ctx context.Context, req ElaborationRequest) (string, error)
	// Short implementation name for logs and responses.
	Name() string
}

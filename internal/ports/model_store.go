package ports

import (
	"context"
	"delivery-delay-service/internal/domain"
)

// Port: persisted regression parameters.
type ModelStore interface {
	// Return the persisted parameters, or an error wrapping
	// domain.ErrModelNotFound when none exist.
	LoadParams(ctx context.Context) (*domain.ModelParams, error)
	// Replace the persisted parameters.
	SaveParams(ctx context.Context, params *domain.ModelParams) error
}

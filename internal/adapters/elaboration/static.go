package elaboration

import (
	"context"
	"delivery-delay-service/internal/ports"
)

const staticName = "static"

// StaticElaborator returns the catalogue template unchanged. It never fails
// and makes no network calls.
type StaticElaborator struct{}

func NewStaticElaborator() *StaticElaborator {
	return &StaticElaborator{}
}

func (StaticElaborator) Name() string { return staticName }

func (StaticElaborator) Elaborate(_ context.Context, req ports.ElaborationRequest) (string, error) {
	return req.Action.Template, nil
}

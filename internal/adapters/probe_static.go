package adapters

import (
	"context"

	"variant-packager/internal/ports"
	"variant-packager/internal/types"
)

// StaticProbeAdapter reports facts supplied by configuration or flags.
type StaticProbeAdapter struct {
	Facts types.EnvironmentFacts
}

func NewStaticProbeAdapter(facts types.EnvironmentFacts) StaticProbeAdapter {
	return StaticProbeAdapter{Facts: facts}
}

func (a StaticProbeAdapter) Probe(context.Context) (types.EnvironmentFacts, error) {
	return a.Facts, nil
}

var _ ports.EnvironmentProbePort = StaticProbeAdapter{}

package ports

import (
	"context"

	"variant-packager/internal/types"
)

// EnvironmentProbePort gathers the facts the classifier works from. Probes
// report what they observe; they never classify.
type EnvironmentProbePort interface {
	Probe(ctx context.Context) (types.EnvironmentFacts, error)
}

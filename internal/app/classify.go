package app

import (
	"context"

	"variant-packager/internal/core"
)

func (s Service) Classify(ctx context.Context, req ClassifyRequest) (ClassifyResult, error) {
	facts, err := s.gatherFacts(ctx, req.Environment)
	if err != nil {
		return ClassifyResult{}, err
	}
	tag, err := core.NewEnvironmentClassifier().Classify(ctx, facts)
	if err != nil {
		return ClassifyResult{}, err
	}
	return ClassifyResult{Tag: tag, Facts: facts}, nil
}

package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"variant-packager/internal/adapters"
	"variant-packager/internal/policies"
	"variant-packager/internal/types"
)

// Finalize runs only the finalize phase against an existing staging root,
// for trees installed by other means.
func (s Service) Finalize(ctx context.Context, req FinalizeRequest) (FinalizeResult, error) {
	root := strings.TrimSpace(req.StagingDir)
	if root == "" {
		return FinalizeResult{}, types.NewPipelineError(types.ErrorKindConfiguration, types.BuildPhaseFinalize,
			errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("staging directory is required"))
	}
	finalizer := s.Finalizer
	if len(req.PurgePatterns) > 0 {
		if err := policies.ValidatePatterns(req.PurgePatterns); err != nil {
			return FinalizeResult{}, types.NewPipelineError(types.ErrorKindConfiguration, types.BuildPhaseFinalize, err)
		}
		finalizer = adapters.NewFilesystemFinalizerAdapter(policies.NewPurgePolicy(req.PurgePatterns))
	}
	report, err := finalizer.Finalize(ctx, root)
	if err != nil {
		if _, ok := types.KindOf(err); !ok {
			err = types.NewPipelineError(types.ErrorKindCleanup, types.BuildPhaseFinalize, err)
		}
		return FinalizeResult{}, err
	}
	return FinalizeResult{Report: report}, nil
}

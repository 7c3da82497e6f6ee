package core

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"variant-packager/internal/types"
)

// The two thresholds come from different probes and share no scale.
const (
	TumbleweedVersionThreshold = 1500
	EnterpriseVersionThreshold = 150000
)

type EnvironmentClassifier struct{}

func NewEnvironmentClassifier() EnvironmentClassifier {
	return EnvironmentClassifier{}
}

// Classify maps facts to exactly one profile tag. Tumbleweed is checked
// first, then Enterprise; neither matching yields the generic tag. Both
// matching is contradictory input and is reported as a configuration error.
func (c EnvironmentClassifier) Classify(ctx context.Context, facts types.EnvironmentFacts) (types.ProfileTag, error) {
	tumbleweed := facts.TumbleweedVersion != nil && *facts.TumbleweedVersion > TumbleweedVersionThreshold
	enterprise := facts.EnterpriseVersion != nil && *facts.EnterpriseVersion > EnterpriseVersionThreshold

	var tag types.ProfileTag
	switch {
	case tumbleweed && enterprise:
		return "", types.NewPipelineError(types.ErrorKindConfiguration, types.BuildPhaseClassify,
			errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("environment matches both tumbleweed (%d) and enterprise (%d) profiles",
					*facts.TumbleweedVersion, *facts.EnterpriseVersion)))
	case tumbleweed:
		tag = types.ProfileTagSUSETumbleweed
	case enterprise:
		tag = types.ProfileTagSUSEEnterprise
	default:
		tag = types.ProfileTagGeneric
	}
	log.Ctx(ctx).Debug().
		Str("tag", string(tag)).
		Bool("tumbleweed", tumbleweed).
		Bool("enterprise", enterprise).
		Msg("environment classified")
	return tag, nil
}

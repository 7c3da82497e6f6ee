package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"variant-packager/internal/adapters"
	"variant-packager/internal/ports"
	"variant-packager/internal/types"
)

func (s Service) probe(req EnvironmentRequest) (ports.EnvironmentProbePort, error) {
	kind := types.ProbeKind(strings.ToLower(strings.TrimSpace(req.Probe)))
	if kind == "" {
		kind = types.ProbeKindStatic
	}
	switch kind {
	case types.ProbeKindStatic:
		tumbleweed, err := adapters.ParseOptionalInt(req.TumbleweedVersion)
		if err != nil {
			return nil, err
		}
		enterprise, err := adapters.ParseOptionalInt(req.EnterpriseVersion)
		if err != nil {
			return nil, err
		}
		return adapters.NewStaticProbeAdapter(types.EnvironmentFacts{
			TumbleweedVersion: tumbleweed,
			EnterpriseVersion: enterprise,
			Interpreter:       strings.TrimSpace(req.Interpreter),
		}), nil
	case types.ProbeKindRPM:
		probe := adapters.NewRPMProbeAdapter(req.Interpreter)
		if s.RPMExec != nil {
			probe.Exec = s.RPMExec
		}
		return probe, nil
	default:
		return nil, types.NewPipelineError(types.ErrorKindConfiguration, types.BuildPhaseClassify,
			errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("unknown probe %q (want %s or %s)", req.Probe, types.ProbeKindStatic, types.ProbeKindRPM)))
	}
}

func (s Service) gatherFacts(ctx context.Context, req EnvironmentRequest) (types.EnvironmentFacts, error) {
	probe, err := s.probe(req)
	if err != nil {
		return types.EnvironmentFacts{}, err
	}
	facts, err := probe.Probe(ctx)
	if err != nil {
		if _, ok := types.KindOf(err); !ok {
			err = types.NewPipelineError(types.ErrorKindConfiguration, types.BuildPhaseClassify, err)
		}
		return types.EnvironmentFacts{}, err
	}
	return facts, nil
}

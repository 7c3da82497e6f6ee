package adapters

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"variant-packager/internal/ports"
	"variant-packager/internal/shared"
	"variant-packager/internal/types"
)

const (
	rpmTumbleweedMacro  = "%{?suse_version}"
	rpmEnterpriseMacro  = "%{?sle_version}"
	rpmInterpreterMacro = "%{?python3_version}"
)

// CommandFunc runs name with args and returns its standard output.
type CommandFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// RPMProbeAdapter reads distribution facts from rpm macros. Undefined
// macros expand to nothing and are reported as absent.
type RPMProbeAdapter struct {
	Exec        CommandFunc
	Interpreter string
}

func NewRPMProbeAdapter(interpreter string) RPMProbeAdapter {
	return RPMProbeAdapter{Exec: execOutput, Interpreter: interpreter}
}

func (a RPMProbeAdapter) Probe(ctx context.Context) (types.EnvironmentFacts, error) {
	tumbleweed, err := a.evalInt(ctx, rpmTumbleweedMacro)
	if err != nil {
		return types.EnvironmentFacts{}, err
	}
	enterprise, err := a.evalInt(ctx, rpmEnterpriseMacro)
	if err != nil {
		return types.EnvironmentFacts{}, err
	}
	interpreter := strings.TrimSpace(a.Interpreter)
	if interpreter == "" {
		value, err := a.eval(ctx, rpmInterpreterMacro)
		if err != nil {
			return types.EnvironmentFacts{}, err
		}
		interpreter = value
	}
	facts := types.EnvironmentFacts{
		TumbleweedVersion: tumbleweed,
		EnterpriseVersion: enterprise,
		Interpreter:       interpreter,
	}
	log.Ctx(ctx).Debug().
		Bool("tumbleweed", tumbleweed != nil).
		Bool("enterprise", enterprise != nil).
		Str("interpreter", interpreter).
		Msg("rpm environment probed")
	return facts, nil
}

func (a RPMProbeAdapter) eval(ctx context.Context, macro string) (string, error) {
	output, err := a.Exec(ctx, "rpm", "--eval", macro)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("rpm --eval %s failed", macro)).
			WithCause(err)
	}
	value := strings.TrimSpace(string(output))
	if value == macro {
		// rpm echoes macros it cannot expand.
		return "", nil
	}
	return value, nil
}

func (a RPMProbeAdapter) evalInt(ctx context.Context, macro string) (*int, error) {
	value, err := a.eval(ctx, macro)
	if err != nil {
		return nil, err
	}
	return ParseOptionalInt(value)
}

// ParseOptionalInt turns an empty string into nil and anything else into an
// integer. Non-numeric input is a configuration error.
func ParseOptionalInt(value string) (*int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return nil, types.NewPipelineError(types.ErrorKindConfiguration, types.BuildPhaseClassify,
			errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("environment version %q is not a number", trimmed)).
				WithCause(err))
	}
	return &parsed, nil
}

func execOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, shared.CommandError([]byte(stderr.String()), err)
	}
	return output, nil
}

var _ ports.EnvironmentProbePort = RPMProbeAdapter{}

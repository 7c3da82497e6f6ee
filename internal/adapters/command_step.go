package adapters

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"variant-packager/internal/ports"
	"variant-packager/internal/shared"
)

// CommandStepAdapter runs build and install steps as child processes. The
// context deadline kills the process.
type CommandStepAdapter struct {
	Env []string
}

func NewCommandStepAdapter(env []string) CommandStepAdapter {
	return CommandStepAdapter{Env: env}
}

func (a CommandStepAdapter) Run(ctx context.Context, step ports.Step) (ports.StepResult, error) {
	if len(step.Args) == 0 || strings.TrimSpace(step.Args[0]) == "" {
		return ports.StepResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("%s step has no command", step.Name))
	}
	cmd := exec.CommandContext(ctx, step.Args[0], step.Args[1:]...)
	cmd.Dir = step.Dir
	if len(a.Env) > 0 {
		cmd.Env = append(cmd.Environ(), a.Env...)
	}
	output, err := cmd.CombinedOutput()
	result := ports.StepResult{Output: output}
	if err == nil {
		log.Ctx(ctx).Debug().Str("step", step.Name).Int("output_bytes", len(output)).Msg("step finished")
		return result, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	}
	return result, errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(fmt.Sprintf("%s step failed", step.Name)).
		WithCause(shared.CommandError(output, err))
}

var _ ports.StepRunnerPort = CommandStepAdapter{}

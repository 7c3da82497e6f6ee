package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"variant-packager/internal/ports"
	"variant-packager/internal/types"
)

const DefaultStepTimeout = 30 * time.Minute

var allowedTransitions = map[types.BuildState][]types.BuildState{
	types.BuildStatePending:   {types.BuildStateExtracted, types.BuildStateFailed},
	types.BuildStateExtracted: {types.BuildStateBuilt, types.BuildStateFailed},
	types.BuildStateBuilt:     {types.BuildStateInstalled, types.BuildStateFailed},
	types.BuildStateInstalled: {types.BuildStateFinalized, types.BuildStateFailed},
}

type PipelineConfig struct {
	ArchivePath string
	WorkDir     string
	StagingRoot string

	// BuildArgs and InstallArgs are argv templates. {workdir}, {root},
	// {name} and {version} are substituted before running.
	BuildArgs   []string
	InstallArgs []string
	StepTimeout time.Duration
}

type BuildOutcome struct {
	State       types.BuildState
	History     []types.StateTransition
	FailedPhase types.BuildPhase
	ExitCode    int
	Report      types.FinalizeReport
}

// Pipeline drives one build through extract, build, install and finalize.
// A Pipeline runs once; re-running means constructing a new one over the
// same roots, which are cleared before extraction.
type Pipeline struct {
	Extractor ports.ArchiveExtractorPort
	Runner    ports.StepRunnerPort
	Finalizer ports.FinalizerPort
	Locker    ports.WorkspaceLockPort
	Config    PipelineConfig

	state   types.BuildState
	history []types.StateTransition
}

func NewPipeline(extractor ports.ArchiveExtractorPort, runner ports.StepRunnerPort, finalizer ports.FinalizerPort, locker ports.WorkspaceLockPort, config PipelineConfig) *Pipeline {
	return &Pipeline{
		Extractor: extractor,
		Runner:    runner,
		Finalizer: finalizer,
		Locker:    locker,
		Config:    config,
		state:     types.BuildStatePending,
	}
}

func (p *Pipeline) State() types.BuildState {
	return p.state
}

func (p *Pipeline) History() []types.StateTransition {
	return append([]types.StateTransition(nil), p.history...)
}

func (p *Pipeline) Run(ctx context.Context, identity types.PackageIdentity) (BuildOutcome, error) {
	if p.state != types.BuildStatePending {
		return p.outcome(), errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("pipeline already ran (state %s)", p.state))
	}
	if err := p.validateConfig(); err != nil {
		return p.fail(ctx, err)
	}

	logger := log.Ctx(ctx).With().Str("package", identity.Name).Logger()
	ctx = logger.WithContext(ctx)

	release, err := p.Locker.Acquire(ctx, p.lockPath())
	if err != nil {
		return p.fail(ctx, types.NewPipelineError(types.ErrorKindConfiguration, types.BuildPhaseExtract, err))
	}
	defer func() {
		if releaseErr := release(); releaseErr != nil {
			logger.Warn().Err(releaseErr).Msg("failed to release workspace lock")
		}
	}()

	if err := p.extract(ctx); err != nil {
		return p.fail(ctx, err)
	}
	if err := p.transition(ctx, types.BuildStateExtracted); err != nil {
		return p.fail(ctx, err)
	}

	vars := map[string]string{
		"{workdir}": p.Config.WorkDir,
		"{root}":    p.Config.StagingRoot,
		"{name}":    identity.Name,
		"{version}": identity.Version,
	}
	if err := p.runStep(ctx, types.BuildPhaseBuild, types.ErrorKindBuild, expandArgs(p.Config.BuildArgs, vars)); err != nil {
		return p.fail(ctx, err)
	}
	if err := p.transition(ctx, types.BuildStateBuilt); err != nil {
		return p.fail(ctx, err)
	}

	if err := p.runStep(ctx, types.BuildPhaseInstall, types.ErrorKindInstall, expandArgs(p.Config.InstallArgs, vars)); err != nil {
		return p.fail(ctx, err)
	}
	if err := p.transition(ctx, types.BuildStateInstalled); err != nil {
		return p.fail(ctx, err)
	}

	report, err := p.Finalizer.Finalize(ctx, p.Config.StagingRoot)
	if err != nil {
		if _, ok := types.KindOf(err); !ok {
			err = types.NewPipelineError(types.ErrorKindCleanup, types.BuildPhaseFinalize, err)
		}
		return p.fail(ctx, err)
	}
	if err := p.transition(ctx, types.BuildStateFinalized); err != nil {
		return p.fail(ctx, err)
	}
	outcome := p.outcome()
	outcome.Report = report
	logger.Info().
		Int("purged", report.Purged).
		Int("linked", report.Linked).
		Msg("pipeline finalized")
	return outcome, nil
}

func (p *Pipeline) validateConfig() error {
	workDir := strings.TrimSpace(p.Config.WorkDir)
	stagingRoot := strings.TrimSpace(p.Config.StagingRoot)
	if strings.TrimSpace(p.Config.ArchivePath) == "" || workDir == "" || stagingRoot == "" {
		return types.NewPipelineError(types.ErrorKindConfiguration, types.BuildPhaseExtract,
			errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("archive, working directory and staging root are required"))
	}
	work, err := filepath.Abs(workDir)
	if err != nil {
		return types.NewPipelineError(types.ErrorKindConfiguration, types.BuildPhaseExtract, err)
	}
	staging, err := filepath.Abs(stagingRoot)
	if err != nil {
		return types.NewPipelineError(types.ErrorKindConfiguration, types.BuildPhaseExtract, err)
	}
	if staging == string(filepath.Separator) || work == string(filepath.Separator) {
		return types.NewPipelineError(types.ErrorKindConfiguration, types.BuildPhaseExtract,
			errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("refusing to use the filesystem root as working directory or staging root"))
	}
	if nested(work, staging) || nested(staging, work) {
		return types.NewPipelineError(types.ErrorKindConfiguration, types.BuildPhaseExtract,
			errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("working directory %s and staging root %s must not overlap", work, staging)))
	}
	if len(p.Config.BuildArgs) == 0 || len(p.Config.InstallArgs) == 0 {
		return types.NewPipelineError(types.ErrorKindConfiguration, types.BuildPhaseExtract,
			errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("build and install commands are required"))
	}
	p.Config.WorkDir = work
	p.Config.StagingRoot = staging
	return nil
}

func (p *Pipeline) lockPath() string {
	return p.Config.WorkDir + ".lock"
}

// extract clears both roots so a re-run starts from the same state, then
// unpacks the archive.
func (p *Pipeline) extract(ctx context.Context) error {
	for _, dir := range []string{p.Config.WorkDir, p.Config.StagingRoot} {
		if err := os.RemoveAll(dir); err != nil {
			return types.NewPipelineError(types.ErrorKindExtraction, types.BuildPhaseExtract,
				errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg(fmt.Sprintf("failed to clear %s", dir)).
					WithCause(err))
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return types.NewPipelineError(types.ErrorKindExtraction, types.BuildPhaseExtract,
				errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg(fmt.Sprintf("failed to create %s", dir)).
					WithCause(err))
		}
	}
	if err := p.Extractor.Extract(ctx, p.Config.ArchivePath, p.Config.WorkDir); err != nil {
		return types.NewPipelineError(types.ErrorKindExtraction, types.BuildPhaseExtract, err)
	}
	return nil
}

func (p *Pipeline) runStep(ctx context.Context, phase types.BuildPhase, kind types.ErrorKind, args []string) error {
	timeout := p.Config.StepTimeout
	if timeout <= 0 {
		timeout = DefaultStepTimeout
	}
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log.Ctx(ctx).Info().Str("phase", string(phase)).Strs("args", args).Msg("running step")
	result, err := p.Runner.Run(stepCtx, ports.Step{Name: string(phase), Args: args, Dir: p.Config.WorkDir})
	if err == nil && result.ExitCode != 0 {
		err = errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("%s step exited with code %d", phase, result.ExitCode))
	}
	if err == nil {
		return nil
	}
	if errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
		err = errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("%s step timed out after %s", phase, timeout)).
			WithCause(err)
	}
	return types.NewPipelineError(kind, phase, err).WithExitCode(result.ExitCode)
}

func (p *Pipeline) transition(ctx context.Context, next types.BuildState) error {
	for _, allowed := range allowedTransitions[p.state] {
		if allowed == next {
			p.history = append(p.history, types.StateTransition{From: p.state, To: next})
			log.Ctx(ctx).Debug().Str("from", string(p.state)).Str("state", string(next)).Msg("state transition")
			p.state = next
			return nil
		}
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(fmt.Sprintf("invalid state transition %s -> %s", p.state, next))
}

func (p *Pipeline) fail(ctx context.Context, err error) (BuildOutcome, error) {
	if !p.state.Terminal() {
		p.history = append(p.history, types.StateTransition{From: p.state, To: types.BuildStateFailed})
		p.state = types.BuildStateFailed
	}
	outcome := p.outcome()
	var pipelineErr *types.PipelineError
	if errors.As(err, &pipelineErr) {
		outcome.FailedPhase = pipelineErr.Phase
		outcome.ExitCode = pipelineErr.ExitCode
	}
	log.Ctx(ctx).Error().
		Err(err).
		Str("phase", string(outcome.FailedPhase)).
		Int("exit_code", outcome.ExitCode).
		Msg("pipeline failed")
	return outcome, err
}

func (p *Pipeline) outcome() BuildOutcome {
	return BuildOutcome{State: p.state, History: p.History()}
}

func expandArgs(args []string, vars map[string]string) []string {
	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, key, value)
	}
	replacer := strings.NewReplacer(pairs...)
	expanded := make([]string, 0, len(args))
	for _, arg := range args {
		expanded = append(expanded, replacer.Replace(arg))
	}
	return expanded
}

func nested(parent string, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

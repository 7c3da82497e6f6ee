package app

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"variant-packager/internal/adapters"
	"variant-packager/internal/core"
	"variant-packager/internal/types"
)

// DefaultBuildCommand builds a wheel from the extracted tree without
// reaching the network.
var DefaultBuildCommand = []string{
	"python3", "-m", "pip", "wheel",
	"--no-deps", "--no-build-isolation",
	"--wheel-dir", "{workdir}/dist",
	"{workdir}",
}

// DefaultInstallCommand installs the wheel built by DefaultBuildCommand
// into the staging root.
var DefaultInstallCommand = []string{
	"python3", "-m", "pip", "install",
	"--root", "{root}",
	"--no-deps", "--no-index", "--ignore-installed",
	"--find-links", "{workdir}/dist",
	"{name}=={version}",
}

// Build runs classify, resolve and the four-phase pipeline for one recipe.
// The manifest is written only when the pipeline reaches FINALIZED.
func (s Service) Build(ctx context.Context, req BuildRequest) (BuildResult, error) {
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		return BuildResult{}, types.NewPipelineError(types.ErrorKindConfiguration, types.BuildPhaseResolve,
			errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("output directory is required"))
	}

	buildID := s.NewBuildID()
	logger := log.Ctx(ctx).With().Str("build_id", buildID).Logger()
	ctx = logger.WithContext(ctx)

	recipe, err := s.loadRecipe(ctx, req.RecipePath)
	if err != nil {
		return BuildResult{BuildID: buildID}, err
	}
	classified, err := s.Classify(ctx, ClassifyRequest{Environment: req.Environment})
	if err != nil {
		return BuildResult{BuildID: buildID}, err
	}
	profile, err := resolveProfile(ctx, recipe, classified)
	if err != nil {
		return BuildResult{BuildID: buildID}, err
	}
	logger.Info().
		Str("package", recipe.Package.Name).
		Str("tag", string(profile.Tag)).
		Str("subpackage", profile.SubpackageName).
		Msg("profile selected")

	config := core.PipelineConfig{
		ArchivePath: recipe.Source.Archive,
		WorkDir:     strings.TrimSpace(req.WorkDir),
		StagingRoot: strings.TrimSpace(req.StagingDir),
		BuildArgs:   firstCommand(req.BuildCommand, recipe.Steps.Build, DefaultBuildCommand),
		InstallArgs: firstCommand(req.InstallCommand, recipe.Steps.Install, DefaultInstallCommand),
		StepTimeout: req.StepTimeout,
	}
	pipeline := core.NewPipeline(s.Extractor, s.Runner, s.Finalizer, s.Locker, config)
	outcome, err := pipeline.Run(ctx, recipe.Package)
	result := BuildResult{BuildID: buildID, Outcome: outcome, Profile: profile}
	if err != nil {
		return result, err
	}

	stagingRoot, err := filepath.Abs(config.StagingRoot)
	if err != nil {
		return result, err
	}
	files, err := s.Files.ListFiles(stagingRoot)
	if err != nil {
		return result, err
	}
	manifest := types.Manifest{
		BuildID:     buildID,
		Package:     recipe.Package,
		License:     strings.TrimSpace(recipe.License),
		Environment: classified.Facts,
		Profile:     profile,
		Files:       files,
		Finalize: types.FinalizeSummary{
			Purged:       outcome.Report.Purged,
			Linked:       outcome.Report.Linked,
			DuplicateSet: outcome.Report.DuplicateSet,
		},
		CreatedAt: s.Clock().UTC().Format(time.RFC3339),
	}
	sbomPath, err := s.SBOMWriter.WriteSBOM(outputDir, stagingRoot, manifest)
	if err != nil {
		return result, err
	}
	if err := s.ManifestWriter(outputDir).WriteManifest(manifest); err != nil {
		return result, err
	}
	result.ManifestPath = filepath.Join(outputDir, adapters.ManifestFileName)
	result.SBOMPath = sbomPath
	result.FileCount = len(files)
	logger.Info().
		Int("files", len(files)).
		Str("manifest", result.ManifestPath).
		Msg("build finished")
	return result, nil
}

func firstCommand(candidates ...[]string) []string {
	for _, candidate := range candidates {
		if len(candidate) > 0 {
			return append([]string(nil), candidate...)
		}
	}
	return nil
}

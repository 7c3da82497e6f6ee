package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"variant-packager/internal/app"
	"variant-packager/internal/core"
)

type buildOptions struct {
	Recipe         string
	WorkDir        string
	StagingDir     string
	OutputDir      string
	BuildCommand   string
	InstallCommand string
	StepTimeout    time.Duration
	Environment    environmentOptions
}

func newBuildCommand() *cobra.Command {
	opts := buildOptions{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Extract, build, install and finalize one recipe",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Recipe, "recipe", "recipe.yaml", "Recipe path")
	cmd.Flags().StringVar(&opts.WorkDir, "work-dir", "build/work", "Working directory the archive is extracted into")
	cmd.Flags().StringVar(&opts.StagingDir, "staging-dir", "build/root", "Staging root the install step writes into")
	cmd.Flags().StringVar(&opts.OutputDir, "output", "out", "Output directory for the manifest")
	cmd.Flags().StringVar(&opts.BuildCommand, "build-command", "", "Build command override ({workdir}, {root}, {name}, {version} are expanded)")
	cmd.Flags().StringVar(&opts.InstallCommand, "install-command", "", "Install command override")
	cmd.Flags().DurationVar(&opts.StepTimeout, "step-timeout", core.DefaultStepTimeout, "Timeout for each external step")
	addEnvironmentFlags(cmd, &opts.Environment)

	_ = viper.BindPFlag("recipe", cmd.Flags().Lookup("recipe"))
	_ = viper.BindPFlag("work_dir", cmd.Flags().Lookup("work-dir"))
	_ = viper.BindPFlag("staging_dir", cmd.Flags().Lookup("staging-dir"))
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("build_command", cmd.Flags().Lookup("build-command"))
	_ = viper.BindPFlag("install_command", cmd.Flags().Lookup("install-command"))
	_ = viper.BindPFlag("step_timeout", cmd.Flags().Lookup("step-timeout"))

	return cmd
}

func runBuild(ctx context.Context, cmd *cobra.Command, opts buildOptions) error {
	service := newAppService()
	result, err := service.Build(ctx, app.BuildRequest{
		RecipePath:     resolveString(cmd, opts.Recipe, "recipe", "recipe"),
		WorkDir:        resolveString(cmd, opts.WorkDir, "work_dir", "work-dir"),
		StagingDir:     resolveString(cmd, opts.StagingDir, "staging_dir", "staging-dir"),
		OutputDir:      resolveString(cmd, opts.OutputDir, "output", "output"),
		Environment:    resolveEnvironment(cmd, opts.Environment),
		BuildCommand:   resolveCommand(cmd, opts.BuildCommand, "build_command", "build-command"),
		InstallCommand: resolveCommand(cmd, opts.InstallCommand, "install_command", "install-command"),
		StepTimeout:    resolveDuration(cmd, opts.StepTimeout, "step_timeout", "step-timeout"),
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "built %s (%s): %s\n", result.Profile.SubpackageName, result.Profile.Tag, result.Outcome.State)
	fmt.Fprintf(out, "files: %d, purged: %d, linked: %d\n",
		result.FileCount, result.Outcome.Report.Purged, result.Outcome.Report.Linked)
	fmt.Fprintf(out, "manifest: %s\n", result.ManifestPath)
	fmt.Fprintf(out, "sbom: %s\n", result.SBOMPath)
	return nil
}

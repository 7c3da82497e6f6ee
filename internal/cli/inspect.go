package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"variant-packager/internal/app"
)

type inspectOptions struct {
	OutputDir string
}

func newInspectCommand() *cobra.Command {
	opts := inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize a written manifest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.OutputDir, "output", "out", "Output directory")
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	return cmd
}

func runInspect(cmd *cobra.Command, opts inspectOptions) error {
	service := newAppService()
	result, err := service.Inspect(app.InspectRequest{
		OutputDir: resolveString(cmd, opts.OutputDir, "output", "output"),
	})
	if err != nil {
		return err
	}

	manifest := result.Manifest
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "build %s: %s %s\n", manifest.BuildID, manifest.Package.Name, manifest.Package.EVR())
	fmt.Fprintf(out, "profile: %s -> %s\n", manifest.Profile.Tag, manifest.Profile.SubpackageName)
	fmt.Fprintf(out, "requires: %d, provides: %d\n", len(manifest.Profile.Requires), len(manifest.Profile.Provides))
	fmt.Fprintf(out, "files: %d under %s\n", result.FileCount, manifest.Profile.FileManifestRoot)
	if len(result.Uncovered) > 0 {
		fmt.Fprintf(out, "not covered by the file manifest root (%d):\n", len(result.Uncovered))
		for _, file := range result.Uncovered {
			fmt.Fprintf(out, "- %s\n", file)
		}
	}
	return nil
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"variant-packager/internal/app"
)

func newClassifyCommand() *cobra.Command {
	opts := environmentOptions{}
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Print the profile tag for this build environment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClassify(cmd.Context(), cmd, opts)
		},
	}
	addEnvironmentFlags(cmd, &opts)
	return cmd
}

func runClassify(ctx context.Context, cmd *cobra.Command, opts environmentOptions) error {
	service := newAppService()
	result, err := service.Classify(ctx, app.ClassifyRequest{
		Environment: resolveEnvironment(cmd, opts),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Tag)
	return nil
}

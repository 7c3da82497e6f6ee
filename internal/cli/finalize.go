package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"variant-packager/internal/app"
)

type finalizeOptions struct {
	StagingDir string
	Purge      []string
}

func newFinalizeCommand() *cobra.Command {
	opts := finalizeOptions{}
	cmd := &cobra.Command{
		Use:   "finalize",
		Short: "Purge build artifacts and hard-link duplicates in a staging root",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFinalize(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.StagingDir, "staging-dir", "build/root", "Staging root to finalize")
	cmd.Flags().StringSliceVar(&opts.Purge, "purge", nil, "Purge patterns (dir/, *suffix, prefix*, exact); defaults to bytecode")
	_ = viper.BindPFlag("staging_dir", cmd.Flags().Lookup("staging-dir"))
	_ = viper.BindPFlag("purge_patterns", cmd.Flags().Lookup("purge"))
	return cmd
}

func runFinalize(ctx context.Context, cmd *cobra.Command, opts finalizeOptions) error {
	service := newAppService()
	result, err := service.Finalize(ctx, app.FinalizeRequest{
		StagingDir:    resolveString(cmd, opts.StagingDir, "staging_dir", "staging-dir"),
		PurgePatterns: resolveStrings(cmd, opts.Purge, "purge_patterns", "purge"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "purged: %d, linked: %d, duplicate sets: %d\n",
		result.Report.Purged, result.Report.Linked, result.Report.DuplicateSet)
	return nil
}

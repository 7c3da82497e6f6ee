package cli

import (
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"variant-packager/internal/app"
)

type resolveOptions struct {
	Recipe      string
	Environment environmentOptions
}

func newResolveCommand() *cobra.Command {
	opts := resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the packaging profile a recipe resolves to",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Recipe, "recipe", "recipe.yaml", "Recipe path")
	_ = viper.BindPFlag("recipe", cmd.Flags().Lookup("recipe"))
	addEnvironmentFlags(cmd, &opts.Environment)
	return cmd
}

func runResolve(ctx context.Context, cmd *cobra.Command, opts resolveOptions) error {
	service := newAppService()
	result, err := service.Resolve(ctx, app.ResolveRequest{
		RecipePath:  resolveString(cmd, opts.Recipe, "recipe", "recipe"),
		Environment: resolveEnvironment(cmd, opts.Environment),
	})
	if err != nil {
		return err
	}
	encoder := yaml.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent(2)
	if err := encoder.Encode(result.Profile); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode profile").
			WithCause(err)
	}
	return encoder.Close()
}

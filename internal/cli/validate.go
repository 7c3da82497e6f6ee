package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"variant-packager/internal/app"
)

type validateOptions struct {
	Recipe string
}

func newValidateCommand() *cobra.Command {
	opts := validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a recipe without building it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Recipe, "recipe", "recipe.yaml", "Recipe path")
	_ = viper.BindPFlag("recipe", cmd.Flags().Lookup("recipe"))
	return cmd
}

func runValidate(ctx context.Context, cmd *cobra.Command, opts validateOptions) error {
	service := newAppService()
	result, err := service.Validate(ctx, app.ValidateRequest{
		RecipePath: resolveString(cmd, opts.Recipe, "recipe", "recipe"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "validated: %s %s (%d dependencies)\n",
		result.Identity.Name, result.EVR, result.Dependencies)
	return nil
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveStrings(cmd *cobra.Command, values []string, key string, flagName string) []string {
	if cmd == nil {
		if len(values) > 0 {
			return values
		}
		return viper.GetStringSlice(key)
	}
	if flagChanged(cmd, flagName) {
		return values
	}
	return viper.GetStringSlice(key)
}

// resolveCommand splits a command flag on whitespace. A config file may
// give the command as a list instead.
func resolveCommand(cmd *cobra.Command, value string, key string, flagName string) []string {
	if flagChanged(cmd, flagName) || (cmd == nil && strings.TrimSpace(value) != "") {
		return strings.Fields(value)
	}
	return viper.GetStringSlice(key)
}

func resolveDuration(cmd *cobra.Command, value time.Duration, key string, flagName string) time.Duration {
	if cmd == nil || flagChanged(cmd, flagName) {
		return value
	}
	if configured := viper.GetDuration(key); configured > 0 {
		return configured
	}
	return value
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}

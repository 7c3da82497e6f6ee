package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"variant-packager/internal/app"
	"variant-packager/internal/types"
)

type environmentOptions struct {
	Probe             string
	TumbleweedVersion string
	EnterpriseVersion string
	Interpreter       string
}

func addEnvironmentFlags(cmd *cobra.Command, opts *environmentOptions) {
	cmd.Flags().StringVar(&opts.Probe, "probe", string(types.ProbeKindStatic), "Environment probe (static or rpm)")
	cmd.Flags().StringVar(&opts.TumbleweedVersion, "tumbleweed-version", "", "Tumbleweed distribution version number (static probe)")
	cmd.Flags().StringVar(&opts.EnterpriseVersion, "enterprise-version", "", "Enterprise distribution version number (static probe)")
	cmd.Flags().StringVar(&opts.Interpreter, "interpreter", "", "Interpreter version as MAJOR.MINOR")

	_ = viper.BindPFlag("probe", cmd.Flags().Lookup("probe"))
	_ = viper.BindPFlag("tumbleweed_version", cmd.Flags().Lookup("tumbleweed-version"))
	_ = viper.BindPFlag("enterprise_version", cmd.Flags().Lookup("enterprise-version"))
	_ = viper.BindPFlag("interpreter", cmd.Flags().Lookup("interpreter"))
}

func resolveEnvironment(cmd *cobra.Command, opts environmentOptions) app.EnvironmentRequest {
	return app.EnvironmentRequest{
		Probe:             resolveString(cmd, opts.Probe, "probe", "probe"),
		TumbleweedVersion: resolveString(cmd, opts.TumbleweedVersion, "tumbleweed_version", "tumbleweed-version"),
		EnterpriseVersion: resolveString(cmd, opts.EnterpriseVersion, "enterprise_version", "enterprise-version"),
		Interpreter:       resolveString(cmd, opts.Interpreter, "interpreter", "interpreter"),
	}
}

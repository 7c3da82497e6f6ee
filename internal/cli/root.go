package cli

import (
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"variant-packager/internal/types"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "VARIANT_PACKAGER"

type RootConfig struct {
	ConfigFile string
	LogLevel   string
}

func Execute() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:          "variant-packager",
		Short:        "Build one Python source package as the native variant for this distribution",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))

	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newClassifyCommand())
	cmd.AddCommand(newResolveCommand())
	cmd.AddCommand(newBuildCommand())
	cmd.AddCommand(newFinalizeCommand())
	cmd.AddCommand(newInspectCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return types.NewPipelineError(types.ErrorKindConfiguration, "",
				errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg("failed to read config file").
					WithCause(err))
		}
		return nil
	}

	viper.SetConfigName("variant-packager")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/variant-packager")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	return nil
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// exitCodeForError maps the pipeline error kind to a stable exit status.
// Errors raised outside the pipeline fall back to their errbuilder code.
func exitCodeForError(err error) int {
	if kind, ok := types.KindOf(err); ok {
		switch kind {
		case types.ErrorKindConfiguration:
			return 2
		case types.ErrorKindExtraction:
			return 3
		case types.ErrorKindBuild:
			return 4
		case types.ErrorKindInstall:
			return 5
		case types.ErrorKindCleanup, types.ErrorKindDuplicateResolution:
			return 6
		}
	}
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument, errbuilder.CodeAlreadyExists, errbuilder.CodeNotFound:
		return 2
	case errbuilder.CodeFailedPrecondition:
		return 2
	default:
		return 1
	}
}

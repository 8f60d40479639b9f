package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"boxwatch/tracking"
	"boxwatch/types"
)

// Exit codes of the boxwatch binary
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitBadConfig   = 2
	ExitInputFailed = 3
)

// RootCommand creates and returns the root command
func RootCommand() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "boxwatch",
		Short:         "Per-box visibility and session analysis of mask videos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML settings file")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress progress output")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := initViper(configFile); err != nil {
			return err
		}
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return fmt.Errorf("error binding flags: %w", err)
		}
		if viper.GetBool("quiet") {
			tracking.SetLogger(nil)
		}
		return nil
	}

	rootCmd.AddCommand(analyzeCommand())
	return rootCmd
}

// initViper loads defaults, the optional settings file and BOXWATCH_* variables
func initViper(configFile string) error {
	setDefaultConfig()
	viper.SetEnvPrefix("boxwatch")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if configFile == "" {
		return nil
	}
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("%w: failed to read settings file: %v", types.ErrInvalidConfig, err)
	}
	return nil
}

// ExitCode maps a command error to the process exit status
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, types.ErrInvalidConfig):
		return ExitBadConfig
	case errors.Is(err, types.ErrInputUnreadable):
		return ExitInputFailed
	default:
		return ExitFailure
	}
}

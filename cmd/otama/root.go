// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/otama-dev/otama-go/internal/config"
	otamaerr "github.com/otama-dev/otama-go/pkg/errors"
)

// NewRootCmd creates the root otama command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "otama",
		Short:         "otama: media fingerprint database",
		Long:          "otama stores media fingerprints in a native engine and answers nearest-neighbour similarity queries.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initViper(cmd); err != nil {
				return err
			}
			setupLogging(cmd)
			return nil
		},
	}

	// Global flags, mapped to viper keys in initViper.
	root.PersistentFlags().StringP("config", "c", "", "path to CLI config file")
	root.PersistentFlags().StringP("engine-config", "e", "", "path to engine config file")
	root.PersistentFlags().String("backend", "", "engine backend: auto, libotama or sqlite")
	root.PersistentFlags().StringP("output", "o", "", "output format: text or json")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newCreateDBCmd(),
		newDropDBCmd(),
		newPullCmd(),
		newInsertCmd(),
		newRemoveCmd(),
		newExistsCmd(),
		newCountCmd(),
		newSearchCmd(),
		newSearchIDCmd(),
		newDoctorCmd(),
	)

	return root
}

// initViper sets up a fresh Viper with defaults, env bindings, flag
// bindings, and optional config file so the standard precedence
// (flag > env > file > defaults) is handled uniformly. The instance is
// stored on the command context for subcommands.
func initViper(cmd *cobra.Command) error {
	v := viper.New()

	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return otamaerr.Errorf(otamaerr.CodeConfigLoadReadFailure, "reading config file: %w", err)
		}
	} else {
		// SetConfigType is omitted so the ./otama binary is never read as config.
		v.SetConfigName("otama")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/otama")
		v.AddConfigPath("/etc/otama")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return otamaerr.Errorf(otamaerr.CodeConfigLoadReadFailure, "reading config: %w", err)
			}
			if path := config.BootstrapConfig(); path != "" {
				v.SetConfigFile(path)
				if err := v.ReadInConfig(); err != nil {
					return otamaerr.Errorf(otamaerr.CodeConfigLoadReadFailure, "reading bootstrapped config: %w", err)
				}
			}
		}
	}
	config.WarnInsecurePermissions(v.ConfigFileUsed())

	flags := cmd.Root().PersistentFlags()
	for key, flag := range map[string]string{
		"engine.config":  "engine-config",
		"engine.backend": "backend",
		"output.format":  "output",
		"verbose":        "verbose",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return otamaerr.Errorf(otamaerr.CodeCLISetupFailure, "binding %s flag: %w", flag, err)
		}
	}

	setViper(cmd, v)
	return nil
}

// setupLogging installs a stderr text logger; --verbose lowers the level to
// debug so native call statuses are visible.
func setupLogging(cmd *cobra.Command) {
	level := slog.LevelWarn
	if cmdViper(cmd).GetBool("verbose") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
}

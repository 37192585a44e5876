// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/otama-dev/otama-go/internal/config"
	otamaerr "github.com/otama-dev/otama-go/pkg/errors"
	"github.com/otama-dev/otama-go/pkg/otama"
)

type viperKey struct{}

func setViper(cmd *cobra.Command, v *viper.Viper) {
	cmd.SetContext(context.WithValue(cmd.Context(), viperKey{}, v))
}

// cmdViper returns the Viper prepared by initViper, or a defaults-only one
// when the command runs without the root pre-run hook.
func cmdViper(cmd *cobra.Command) *viper.Viper {
	if v, ok := cmd.Context().Value(viperKey{}).(*viper.Viper); ok {
		return v
	}
	v := viper.New()
	config.SetDefaults(v)
	return v
}

// loadConfig decodes the command's effective CLI configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.FromViper(cmdViper(cmd))
}

// withSession opens the configured engine, runs fn and closes the session.
func withSession(cmd *cobra.Command, fn func(context.Context, *otama.Session, *config.Config) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	config.WarnInsecurePermissions(cfg.Engine.Config)

	s, err := otama.Open(cfg.Engine.Config, otama.WithBackend(cfg.Engine.Backend))
	if err != nil {
		return otamaerr.With(err, otamaerr.FieldBackend(cfg.Engine.Backend))
	}
	defer func() { _ = s.Close() }()

	return fn(cmd.Context(), s, cfg)
}

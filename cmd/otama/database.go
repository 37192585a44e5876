// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/otama-dev/otama-go/internal/config"
	"github.com/otama-dev/otama-go/pkg/otama"
)

func newCreateDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-db",
		Short: "Create the engine database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(ctx context.Context, s *otama.Session, cfg *config.Config) error {
				if err := s.CreateDatabase(ctx); err != nil {
					return err
				}
				return newPrinter(cmd.OutOrStdout(), cfg).done("create-db")
			})
		},
	}
}

func newDropDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop-db",
		Short: "Drop the engine database and every stored entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(ctx context.Context, s *otama.Session, cfg *config.Config) error {
				if err := s.DropDatabase(ctx); err != nil {
					return err
				}
				return newPrinter(cmd.OutOrStdout(), cfg).done("drop-db")
			})
		},
	}
}

func newPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Make pending insertions searchable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(ctx context.Context, s *otama.Session, cfg *config.Config) error {
				if err := s.Pull(ctx); err != nil {
					return err
				}
				return newPrinter(cmd.OutOrStdout(), cfg).done("pull")
			})
		},
	}
}

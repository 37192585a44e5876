// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/otama-dev/otama-go/internal/config"
	otamaerr "github.com/otama-dev/otama-go/pkg/errors"
	"github.com/otama-dev/otama-go/pkg/otama"
)

func newInsertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insert FILE...",
		Short: "Insert media files and print their identifiers",
		Long: "Insert media files and print their identifiers. Entries become " +
			"searchable after pull; pass --pull to do that in the same run.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pull, _ := cmd.Flags().GetBool("pull")
			return withSession(cmd, func(ctx context.Context, s *otama.Session, cfg *config.Config) error {
				results := make([]insertResult, 0, len(args))
				for _, path := range args {
					id, err := s.Insert(ctx, path)
					if err != nil {
						return err
					}
					results = append(results, insertResult{Path: path, ID: id})
				}
				if pull {
					if err := s.Pull(ctx); err != nil {
						return err
					}
				}
				return newPrinter(cmd.OutOrStdout(), cfg).inserted(results)
			})
		},
	}
	cmd.Flags().Bool("pull", false, "pull after inserting")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Remove every entry stored under an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *otama.Session, cfg *config.Config) error {
				if err := s.Remove(ctx, args[0]); err != nil {
					return err
				}
				return newPrinter(cmd.OutOrStdout(), cfg).done("remove")
			})
		},
	}
}

func newExistsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exists ID",
		Short: "Report whether an identifier is stored",
		Long:  "Report whether an identifier is stored. Exits with status 3 when it is not.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *otama.Session, cfg *config.Config) error {
				found, err := s.Exists(ctx, args[0])
				if err != nil {
					return err
				}
				if err := newPrinter(cmd.OutOrStdout(), cfg).value("exists", found); err != nil {
					return err
				}
				if !found {
					return otamaerr.New(otamaerr.CodeEngineNoData, "entry not found", otamaerr.Field("id", args[0]))
				}
				return nil
			})
		},
	}
}

func newCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(ctx context.Context, s *otama.Session, cfg *config.Config) error {
				n, err := s.Count(ctx)
				if err != nil {
					return err
				}
				return newPrinter(cmd.OutOrStdout(), cfg).value("count", n)
			})
		},
	}
}

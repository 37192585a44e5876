// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/otama-dev/otama-go/internal/config"
	"github.com/otama-dev/otama-go/pkg/otama"
)

// searchLimit prefers --limit over search.limit from config.
func searchLimit(cmd *cobra.Command, cfg *config.Config) int {
	if cmd.Flags().Changed("limit") {
		n, _ := cmd.Flags().GetInt("limit")
		return n
	}
	return cfg.Search.Limit
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search FILE",
		Short: "Find stored entries similar to a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *otama.Session, cfg *config.Config) error {
				hits, err := s.Search(ctx, searchLimit(cmd, cfg), args[0])
				if err != nil {
					return err
				}
				return newPrinter(cmd.OutOrStdout(), cfg).hits(hits)
			})
		},
	}
	cmd.Flags().IntP("limit", "n", 0, "maximum number of hits (default search.limit)")
	return cmd
}

func newSearchIDCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search-id ID",
		Short: "Find stored entries similar to a stored entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *otama.Session, cfg *config.Config) error {
				hits, err := s.SearchID(ctx, searchLimit(cmd, cfg), args[0])
				if err != nil {
					return err
				}
				return newPrinter(cmd.OutOrStdout(), cfg).hits(hits)
			})
		},
	}
	cmd.Flags().IntP("limit", "n", 0, "maximum number of hits (default search.limit)")
	return cmd
}

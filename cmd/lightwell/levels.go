// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holomush/lightwell/internal/command"
	"github.com/holomush/lightwell/internal/progress"
	"github.com/holomush/lightwell/internal/scoring"
)

type levelsConfig struct {
	filter string
}

func newLevelsCmd(a *app) *cobra.Command {
	cfg := &levelsConfig{}

	cmd := &cobra.Command{
		Use:   "levels",
		Short: "List the level catalog",
		Long: `List every level with its mode, move budget and your best result.
--filter takes a glob matched against level names and ids, for example
'--filter "*light*"' or '--filter "1?"'.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLevels(cmd, a, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.filter, "filter", "", "glob matched against level names and ids")

	return cmd
}

func runLevels(cmd *cobra.Command, a *app, cfg *levelsConfig) error {
	catalog, err := loadCatalog(a.cfg)
	if err != nil {
		return err
	}
	levels, err := catalog.Filter(cfg.filter)
	if err != nil {
		return err
	}
	if len(levels) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No levels match %q.\n", cfg.filter)
		return nil
	}

	command.RenderLevels(cmd.OutOrStdout(), levels, storedRecords(cmd.Context(), a))
	return nil
}

// storedRecords returns stored progress keyed by level id. Progress is
// decoration here, so failures are logged and yield no records.
func storedRecords(ctx context.Context, a *app) map[int]scoring.Record {
	out := make(map[int]scoring.Record)
	store, closer, err := a.deps.StoreOpener(ctx, a.cfg.ProgressOptions())
	if err != nil {
		a.logger.WarnContext(ctx, "progress unavailable", "error", err)
		return out
	}
	defer func() { _ = closer.Close() }() //nolint:errcheck // read-only use

	recs, _, err := progress.NewTracker(store, a.logger).Summary(ctx)
	if err != nil {
		a.logger.WarnContext(ctx, "progress unavailable", "error", err)
		return out
	}
	for _, r := range recs {
		out[r.LevelID] = r
	}
	return out
}

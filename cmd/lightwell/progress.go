// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/lightwell/internal/command"
	"github.com/holomush/lightwell/internal/progress"
	"github.com/holomush/lightwell/pkg/errutil"
)

func newProgressCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show stored level records and totals",
		Long: `Print the best result stored for each level and the cumulative
totals, read from the configured progress store.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProgress(cmd, a)
		},
	}
}

func runProgress(cmd *cobra.Command, a *app) error {
	ctx := cmd.Context()
	store, closer, err := a.deps.StoreOpener(ctx, a.cfg.ProgressOptions())
	if err != nil {
		errutil.LogErrorContext(ctx, a.logger, "failed to open progress store", err)
		return err
	}
	defer func() { _ = closer.Close() }() //nolint:errcheck // read-only use

	recs, totals, err := progress.NewTracker(store, a.logger).Summary(ctx)
	if err != nil {
		errutil.LogErrorContext(ctx, a.logger, "failed to read progress", err)
		return err
	}

	out := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintln(out, "No levels completed yet.")
		return nil
	}

	names := make(map[int]string)
	if catalog, catErr := loadCatalog(a.cfg); catErr == nil {
		for _, lvl := range catalog.All() {
			names[lvl.ID] = lvl.Name
		}
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LEVEL\tNAME\tBEST\tTIER\tSCORE")
	for _, r := range recs {
		name := names[r.LevelID]
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%d\n", r.LevelID, name, r.BestMoves, r.Tier, r.Score)
	}
	if err := tw.Flush(); err != nil {
		return oops.Code("OUTPUT_FAILED").Wrap(err)
	}
	command.RenderTotals(out, totals)
	return nil
}

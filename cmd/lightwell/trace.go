// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holomush/lightwell/internal/command"
	"github.com/holomush/lightwell/internal/puzzle"
	"github.com/holomush/lightwell/internal/wincond"
)

type traceConfig struct {
	level  int
	solved bool
}

func newTraceCmd(a *app) *cobra.Command {
	cfg := &traceConfig{}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Print the light paths of a level",
		Long: `Evaluate a level and print its beam segments (beam levels) or chain
links (chain levels). --solved applies the declared solution first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrace(cmd, a, cfg)
		},
	}

	cmd.Flags().IntVar(&cfg.level, "level", 0, "level id")
	cmd.Flags().BoolVar(&cfg.solved, "solved", false, "apply the declared solution before tracing")
	_ = cmd.MarkFlagRequired("level") //nolint:errcheck // flag is defined above

	return cmd
}

func runTrace(cmd *cobra.Command, a *app, cfg *traceConfig) error {
	catalog, err := loadCatalog(a.cfg)
	if err != nil {
		return err
	}
	lvl, err := catalog.Get(cfg.level)
	if err != nil {
		return err
	}

	var state *puzzle.State
	if cfg.solved {
		state, err = lvl.SolvedState()
	} else {
		state, err = lvl.NewState()
	}
	if err != nil {
		return err
	}

	outcome := wincond.For(lvl, a.cfg.EngineConfig().Evaluator).Evaluate(state)

	out := cmd.OutOrStdout()
	label := "initial"
	if cfg.solved {
		label = "solved"
	}
	fmt.Fprintf(out, "Level %d: %s [%s, %s]\n", lvl.ID, lvl.Name, lvl.Mode, label)
	command.RenderTrace(out, outcome)
	verdict := "not complete"
	if outcome.Complete {
		verdict = "complete"
	}
	fmt.Fprintf(out, "%d of %d required satisfied: %s\n", outcome.Satisfied, outcome.Required, verdict)
	return nil
}

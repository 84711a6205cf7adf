// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/lightwell/internal/config"
	"github.com/holomush/lightwell/internal/logging"
	"github.com/holomush/lightwell/pkg/errutil"
)

// app holds state shared by subcommands once the root command has loaded
// configuration.
type app struct {
	configFile string
	cfg        config.Config
	logger     *slog.Logger
	deps       *Deps
}

// NewRootCmd creates the root command for the Lightwell CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

func newRootCmd(deps *Deps) *cobra.Command {
	a := &app{deps: deps.withDefaults()}

	cmd := &cobra.Command{
		Use:   "lightwell",
		Short: "Lightwell - a light-routing puzzle game",
		Long: `Lightwell is a puzzle game about steering light. Rotate prisms, slide
blocks and collect bonuses until the beam reaches the rune.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file path")
	flags.String("log-format", "json", "log format (json or text)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("levels-dir", "", "directory of level packs (default: built-in levels)")
	flags.Bool("require-facing", true, "prisms only accept light arriving from the front")
	flags.String("progress-backend", "file", "progress store (file, postgres or none)")
	flags.String("progress-path", "", "progress file path (default: XDG data directory)")
	flags.String("database-url", "", "PostgreSQL URL for the postgres progress store")
	flags.String("metrics-addr", "", "serve metrics on this address while playing")

	cmd.AddCommand(newPlayCmd(a))
	cmd.AddCommand(newLevelsCmd(a))
	cmd.AddCommand(newValidateLevelsCmd(a))
	cmd.AddCommand(newTraceCmd(a))
	cmd.AddCommand(newProgressCmd(a))
	cmd.AddCommand(NewMigrateCmd(a))
	traceCommands(cmd)

	return cmd
}

var tracer = otel.Tracer("lightwell/cli")

// traceCommands wraps every runnable subcommand of cmd in a span.
func traceCommands(cmd *cobra.Command) {
	for _, sub := range cmd.Commands() {
		traceCommands(sub)
		if sub.RunE == nil {
			continue
		}
		run := sub.RunE
		sub.RunE = func(c *cobra.Command, args []string) error {
			ctx, span := tracer.Start(c.Context(), "cli.run",
				trace.WithAttributes(attribute.String("cli.command", c.CommandPath())),
			)
			defer span.End()
			c.SetContext(ctx)

			err := run(c, args)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return err
		}
	}
}

// load reads configuration and installs the default logger. cmd.Flags()
// includes the inherited persistent flags once cobra has parsed them.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configFile, cmd.Flags())
	if err != nil {
		errutil.LogError(slog.Default(), "configuration rejected", err)
		return err
	}
	a.cfg = cfg
	opts := cfg.LogOptions("lightwell", version)
	opts.Writer = cmd.ErrOrStderr()
	a.logger = logging.SetDefault(opts)
	return nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/lightwell/internal/command"
	"github.com/holomush/lightwell/internal/engine"
	"github.com/holomush/lightwell/internal/progress"
	"github.com/holomush/lightwell/pkg/errutil"
)

// shutdownTimeout bounds the observability server shutdown.
const shutdownTimeout = 5 * time.Second

type playConfig struct {
	level int
}

func newPlayCmd(a *app) *cobra.Command {
	cfg := &playConfig{}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play levels in an interactive session",
		Long: `Start a line-oriented game session on standard input. Type 'help' for
the command list. Completed levels are recorded in the progress store.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlay(cmd, a, cfg)
		},
	}

	cmd.Flags().IntVar(&cfg.level, "level", 0, "level to start on (default: first level)")

	return cmd
}

func runPlay(cmd *cobra.Command, a *app, cfg *playConfig) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	catalog, err := loadCatalog(a.cfg)
	if err != nil {
		errutil.LogErrorContext(ctx, a.logger, "failed to load levels", err)
		return err
	}

	start := cfg.level
	if start == 0 {
		first, ok := catalog.First()
		if !ok {
			return oops.Code("LEVEL_NOT_FOUND").Errorf("the catalog has no levels")
		}
		start = first
	}

	store, closer, err := a.deps.StoreOpener(ctx, a.cfg.ProgressOptions())
	if err != nil {
		errutil.LogErrorContext(ctx, a.logger, "failed to open progress store", err)
		return err
	}
	defer func() {
		if closeErr := closer.Close(); closeErr != nil {
			a.logger.Warn("failed to close progress store", "error", closeErr)
		}
	}()

	if addr := a.cfg.Metrics.Addr; addr != "" {
		var ready atomic.Bool
		srv := a.deps.ObservabilityServerFactory(addr, ready.Load, engine.RegisterMetrics, command.RegisterMetrics)
		errCh, startErr := srv.Start()
		if startErr != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").With("addr", addr).Wrap(startErr)
		}
		go func() {
			for serveErr := range errCh {
				a.logger.Error("observability server failed", "error", serveErr)
			}
		}()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if stopErr := srv.Stop(stopCtx); stopErr != nil {
				a.logger.Warn("failed to stop observability server", "error", stopErr)
			}
		}()

		metrics := srv.Metrics()
		store = &meteredStore{Store: store, backend: a.cfg.Progress.Backend, metrics: metrics}
		metrics.SessionsActive.Inc()
		defer metrics.SessionsActive.Dec()
		ready.Store(true)
	}

	broadcaster := engine.NewBroadcaster()
	engineCfg := a.cfg.EngineConfig()
	engineCfg.Broadcaster = broadcaster
	engineCfg.Logger = a.logger
	session := engine.NewSession(catalog, engineCfg)

	events := broadcaster.Subscribe(session.Stream())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range events {
			a.logger.Debug("session event",
				"event_type", ev.Type,
				"level_id", ev.LevelID,
				"elements", ev.ElementIDs,
				"moves_remaining", ev.MovesRemaining)
		}
	}()
	defer func() {
		broadcaster.Unsubscribe(session.Stream(), events)
		wg.Wait()
	}()

	tracker := progress.NewTracker(store, a.logger)
	dispatcher, err := command.NewDispatcher(session, catalog, out,
		command.WithTracker(tracker),
		command.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Welcome to Lightwell. Type 'help' for commands.")
	if _, err := dispatcher.Dispatch(ctx, fmt.Sprintf("load %d", start)); err != nil {
		return err
	}
	return repl(ctx, cmd.InOrStdin(), out, dispatcher, a.logger)
}

// repl feeds input lines to d until quit, end of input or cancellation.
func repl(ctx context.Context, in io.Reader, out io.Writer, d *command.Dispatcher, logger *slog.Logger) error {
	lines := make(chan string)
	var scanErr error
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr = scanner.Err()
	}()

	for {
		fmt.Fprint(out, "> ")
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(out)
			if scanErr != nil {
				return oops.Code("INPUT_READ_FAILED").Wrap(scanErr)
			}
			return nil
		}

		quit, err := d.Dispatch(ctx, line)
		if err != nil {
			if errutil.Code(err) == command.CodeParseFailed {
				logger.DebugContext(ctx, "unparsed input", "error", err)
			} else {
				errutil.LogErrorContext(ctx, logger, "command failed", err)
			}
		}
		if quit {
			fmt.Fprintln(out, "Goodbye.")
			return nil
		}
	}
}

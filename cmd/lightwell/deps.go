// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"io"

	"github.com/holomush/lightwell/internal/config"
	"github.com/holomush/lightwell/internal/level"
	"github.com/holomush/lightwell/internal/observability"
	"github.com/holomush/lightwell/internal/progress"
	"github.com/holomush/lightwell/internal/scoring"
)

// Deps contains injectable dependencies for the CLI commands.
// All fields with nil values will use their default implementations.
type Deps struct {
	// StoreOpener opens the configured progress store.
	// Default: progress.Open
	StoreOpener func(ctx context.Context, opts progress.Options) (progress.Store, io.Closer, error)

	// MigratorFactory creates a migrator for a database URL.
	// Default: progress.NewMigrator
	MigratorFactory func(databaseURL string) (Migrator, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, ready observability.ReadinessChecker, regs ...observability.Registration) ObservabilityServer
}

// Migrator wraps the methods the migrate command uses from progress.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (version uint, dirty bool, err error)
	Force(version int) error
	Pending() ([]uint, error)
	Close() error
}

// ObservabilityServer wraps the methods play uses from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}

func (d *Deps) withDefaults() *Deps {
	out := Deps{}
	if d != nil {
		out = *d
	}
	if out.StoreOpener == nil {
		out.StoreOpener = progress.Open
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(databaseURL string) (Migrator, error) {
			return progress.NewMigrator(databaseURL)
		}
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, ready observability.ReadinessChecker, regs ...observability.Registration) ObservabilityServer {
			return observability.NewServer(addr, ready, regs...)
		}
	}
	return &out
}

// loadCatalog returns the configured level catalog.
func loadCatalog(cfg config.Config) (*level.Catalog, error) {
	if cfg.Levels.Dir == "" {
		return level.Default()
	}
	return level.LoadDir(cfg.Levels.Dir)
}

// meteredStore counts progress writes by backend and outcome.
type meteredStore struct {
	progress.Store
	backend string
	metrics *observability.Metrics
}

func (s *meteredStore) Put(ctx context.Context, rec scoring.Record) error {
	err := s.Store.Put(ctx, rec)
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.ProgressSaves.WithLabelValues(s.backend, status).Inc()
	return err
}

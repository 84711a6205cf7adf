// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/lightwell/internal/progress"
)

// NewMigrateCmd creates the migrate subcommand. Run bare it applies every
// pending migration.
func NewMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run progress database migrations",
		Long: `Manage the PostgreSQL schema used by the postgres progress backend.
The database URL comes from --database-url, progress.database_url in the
config file, or the DATABASE_URL environment variable.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(a, func(m Migrator) error {
				return runMigrateUp(cmd.OutOrStdout(), m)
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(a, func(m Migrator) error {
				return runMigrateUp(cmd.OutOrStdout(), m)
			})
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (one step by default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(a, func(m Migrator) error {
				return runMigrateDown(cmd.OutOrStdout(), m, steps)
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back (0 rolls back all)")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current schema version and pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(a, func(m Migrator) error {
				return runMigrateStatus(cmd.OutOrStdout(), m)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Set the schema version without running migrations",
		Long: `Force the recorded schema version, clearing the dirty flag. Use this
after fixing a failed migration by hand.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := parseForceVersion(args[0])
			if err != nil {
				return err
			}
			return withMigrator(a, func(m Migrator) error {
				if err := m.Force(version); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Schema version forced to %d\n", version)
				return nil
			})
		},
	})

	return cmd
}

// getDatabaseURL returns the configured database URL, falling back to the
// DATABASE_URL environment variable.
func getDatabaseURL(a *app) (string, error) {
	if url := a.cfg.Progress.DatabaseURL; url != "" {
		return url, nil
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url, nil
	}
	return "", oops.Code("CONFIG_INVALID").
		Hint("pass --database-url or set DATABASE_URL").
		Errorf("a database URL is required")
}

func withMigrator(a *app, fn func(Migrator) error) error {
	url, err := getDatabaseURL(a)
	if err != nil {
		return err
	}
	m, err := a.deps.MigratorFactory(url)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			a.logger.Warn("failed to close migrator", "error", closeErr)
		}
	}()
	return fn(m)
}

func runMigrateUp(out io.Writer, m Migrator) error {
	pending, err := m.Pending()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(out, "Schema is up to date")
		return nil
	}
	fmt.Fprintf(out, "Applying %d migration(s)...\n", len(pending))
	if err := m.Up(); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}
	version, _, err := m.Version()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrations completed successfully (version %d)\n", version)
	return nil
}

func runMigrateDown(out io.Writer, m Migrator, steps int) error {
	var err error
	if steps <= 0 {
		err = m.Down()
	} else {
		err = m.Steps(-steps)
	}
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "roll back migrations").Wrap(err)
	}
	version, _, err := m.Version()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Rolled back to version %d\n", version)
	return nil
}

func runMigrateStatus(out io.Writer, m Migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	pending, err := m.Pending()
	if err != nil {
		return err
	}

	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(out, "Current version: %d (%s)\n", version, state)
	if len(pending) == 0 {
		fmt.Fprintln(out, "No pending migrations")
		return nil
	}
	names := make([]string, 0, len(pending))
	for _, v := range pending {
		name, err := progress.MigrationName(v)
		if err != nil || name == "" {
			name = fmt.Sprintf("%06d", v)
		}
		names = append(names, name)
	}
	fmt.Fprintf(out, "Pending: %s\n", strings.Join(names, ", "))
	return nil
}

// parseForceVersion reads the leading integer of s.
func parseForceVersion(s string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(s, "%d", &version); err != nil {
		return 0, oops.Code("INVALID_VERSION").With("input", s).Wrap(err)
	}
	return version, nil
}

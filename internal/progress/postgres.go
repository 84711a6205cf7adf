// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package progress

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/holomush/lightwell/internal/scoring"
)

// poolIface is the subset of pgxpool.Pool used by PostgresStore.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Connection retry defaults.
const (
	connectRetries = 5
	connectBackoff = 200 * time.Millisecond
)

// PostgresStore keeps records in the level_progress table.
type PostgresStore struct {
	pool  poolIface
	close func()
}

// NewPostgresStore wraps an existing pool.
func NewPostgresStore(pool poolIface) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Connect opens a pool for dsn and waits for the database to answer a ping.
// Transient ping failures are retried with exponential backoff.
func Connect(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "create pool").Wrap(err)
	}
	backoff := retry.WithMaxRetries(connectRetries, retry.NewExponential(connectBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "ping").Wrap(err)
	}
	return &PostgresStore{pool: pool, close: pool.Close}, nil
}

// Close releases the pool when the store owns it.
func (s *PostgresStore) Close() {
	if s.close != nil {
		s.close()
	}
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, levelID int) (scoring.Record, bool, error) {
	var (
		rec  scoring.Record
		tier string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT level_id, completed, best_moves, tier, score
		 FROM level_progress WHERE level_id = $1`,
		levelID).Scan(&rec.LevelID, &rec.Completed, &rec.BestMoves, &tier, &rec.Score)
	if errors.Is(err, pgx.ErrNoRows) {
		return scoring.Record{}, false, nil
	}
	if err != nil {
		return scoring.Record{}, false, wrapQueryErr(err, "get progress").With("level_id", levelID).Wrap(err)
	}
	rec.Tier = scoring.ParseTier(tier)
	return rec, true, nil
}

// Put implements Store.
func (s *PostgresStore) Put(ctx context.Context, rec scoring.Record) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO level_progress (level_id, completed, best_moves, tier, score, updated_at)
		 VALUES ($1, $2, $3, $4, $5, now())
		 ON CONFLICT (level_id) DO UPDATE
		 SET completed = $2, best_moves = $3, tier = $4, score = $5, updated_at = now()`,
		rec.LevelID, rec.Completed, rec.BestMoves, rec.Tier.String(), rec.Score)
	if err != nil {
		return wrapQueryErr(err, "put progress").With("level_id", rec.LevelID).Wrap(err)
	}
	return nil
}

// List implements Store.
func (s *PostgresStore) List(ctx context.Context) ([]scoring.Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT level_id, completed, best_moves, tier, score
		 FROM level_progress ORDER BY level_id`)
	if err != nil {
		return nil, wrapQueryErr(err, "list progress").Wrap(err)
	}
	defer rows.Close()

	var out []scoring.Record
	for rows.Next() {
		var (
			rec  scoring.Record
			tier string
		)
		if err := rows.Scan(&rec.LevelID, &rec.Completed, &rec.BestMoves, &tier, &rec.Score); err != nil {
			return nil, oops.With("operation", "scan progress row").Wrap(err)
		}
		rec.Tier = scoring.ParseTier(tier)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate progress").Wrap(err)
	}
	return out, nil
}

// wrapQueryErr tags a missing table so callers can suggest running migrations.
func wrapQueryErr(err error, operation string) oops.OopsErrorBuilder {
	b := oops.With("operation", operation)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
		return b.Code("PROGRESS_SCHEMA_MISSING").Hint("run `lightwell migrate up`")
	}
	return b
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package progress persists per-level best results across sessions.
package progress

import (
	"context"
	"log/slog"
	"sync"

	"github.com/holomush/lightwell/internal/scoring"
)

// Store persists level records keyed by level id.
type Store interface {
	// Get returns the record for levelID. ok is false when none is stored.
	Get(ctx context.Context, levelID int) (rec scoring.Record, ok bool, err error)
	// Put replaces the record for rec.LevelID.
	Put(ctx context.Context, rec scoring.Record) error
	// List returns every record ordered by level id.
	List(ctx context.Context) ([]scoring.Record, error)
}

// Tracker merges completions into a Store so stored records only improve.
type Tracker struct {
	store  Store
	logger *slog.Logger
}

// NewTracker creates a tracker over store. A nil logger uses slog.Default().
func NewTracker(store Store, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{store: store, logger: logger}
}

// Record merges rec with the stored record and saves the result when it
// improves. It returns the merged record.
func (t *Tracker) Record(ctx context.Context, rec scoring.Record) (scoring.Record, error) {
	prev, ok, err := t.store.Get(ctx, rec.LevelID)
	if err != nil {
		return scoring.Record{}, err
	}
	merged := scoring.Merge(prev, rec)
	if ok && merged == prev {
		t.logger.Debug("progress unchanged", "level_id", rec.LevelID)
		return merged, nil
	}
	if err := t.store.Put(ctx, merged); err != nil {
		return scoring.Record{}, err
	}
	t.logger.Info("progress saved",
		"level_id", merged.LevelID,
		"best_moves", merged.BestMoves,
		"tier", merged.Tier.String(),
		"score", merged.Score)
	return merged, nil
}

// Summary returns every stored record and their totals.
func (t *Tracker) Summary(ctx context.Context) ([]scoring.Record, scoring.Totals, error) {
	recs, err := t.store.List(ctx)
	if err != nil {
		return nil, scoring.Totals{}, err
	}
	return recs, scoring.Summarize(recs), nil
}

// MemoryStore keeps records for the life of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[int]scoring.Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[int]scoring.Record)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, levelID int) (scoring.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[levelID]
	return rec, ok, nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, rec scoring.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.LevelID] = rec
	return nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) ([]scoring.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]scoring.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	scoring.SortByLevel(out)
	return out, nil
}

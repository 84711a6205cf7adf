// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package engine

import (
	"github.com/oklog/ulid/v2"

	"github.com/holomush/lightwell/internal/level"
	"github.com/holomush/lightwell/internal/puzzle"
	"github.com/holomush/lightwell/internal/scoring"
	"github.com/holomush/lightwell/internal/wincond"
)

// Snapshot is a read-only view of a session for rendering.
type Snapshot struct {
	SessionID ulid.ULID
	Phase     Phase
	LevelID   int
	LevelName string
	Mode      level.Mode
	Ripple    bool
	MaxMoves  int
	// Elements are copies; mutating them does not affect the session.
	Elements        []puzzle.Element
	MovesRemaining  int
	MovesUsed       int
	BonusMoves      int
	JewelsCollected int
	CanUndo         bool
	// Outcome is the latest evaluation: beam segments in beam mode, chain
	// links and powered elements in chain mode.
	Outcome wincond.Outcome
	Tier    scoring.Tier
	Score   int
}

// Complete reports whether the level is solved.
func (s Snapshot) Complete() bool { return s.Phase == PhaseComplete }

// Failed reports whether the attempt ran out of moves.
func (s Snapshot) Failed() bool { return s.Phase == PhaseFailed }

// Element returns the element with id.
func (s Snapshot) Element(id string) (puzzle.Element, bool) {
	for _, el := range s.Elements {
		if el.ID() == id {
			return el, true
		}
	}
	return nil, false
}

// Snapshot returns the current observable state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID: s.id,
		Phase:     s.phase,
		Tier:      s.tier,
	}
	if s.lvl == nil {
		return snap
	}
	snap.LevelID = s.lvl.ID
	snap.LevelName = s.lvl.Name
	snap.Mode = s.lvl.Mode
	snap.Ripple = s.lvl.Ripple
	snap.MaxMoves = s.lvl.MaxMoves
	snap.Elements = s.state.Clone().Elements()
	snap.MovesRemaining = s.movesRemaining
	snap.MovesUsed = s.movesUsed
	snap.BonusMoves = s.bonusGranted
	snap.JewelsCollected = s.jewels
	snap.CanUndo = len(s.history) > 0 && s.phase != PhaseComplete
	snap.Outcome = s.outcome
	snap.Score = s.score
	return snap
}

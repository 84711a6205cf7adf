// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package engine

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/lightwell/internal/scoring"
)

// EventType identifies the kind of event.
type EventType string

// Session event types.
const (
	EventLevelLoaded    EventType = "level_loaded"
	EventElementRotated EventType = "element_rotated"
	EventBlockMoved     EventType = "block_moved"
	EventMoveUndone     EventType = "move_undone"
	EventBonusActivated EventType = "bonus_activated"
	EventLevelRestarted EventType = "level_restarted"
	EventLevelCompleted EventType = "level_completed"
	EventLevelFailed    EventType = "level_failed"
)

// Event records one applied session transition.
type Event struct {
	ID        ulid.ULID
	Stream    string // "session:<ulid>"
	Type      EventType
	Timestamp time.Time
	LevelID   int
	// ElementIDs lists the elements the transition changed; a rippled
	// rotation lists every affected prism.
	ElementIDs     []string
	MovesRemaining int
	MovesUsed      int
	// Tier and Score are set on level_completed.
	Tier  scoring.Tier
	Score int
}

// StreamFor returns the broadcast stream for a session.
func StreamFor(sessionID ulid.ULID) string {
	return "session:" + sessionID.String()
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package engine runs a play session: it applies rotations, block moves,
// undo and bonuses to a live element state, re-evaluates the level's win
// condition after every change and reports the rating on completion.
package engine

import (
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/lightwell/internal/geom"
	"github.com/holomush/lightwell/internal/level"
	"github.com/holomush/lightwell/internal/puzzle"
	"github.com/holomush/lightwell/internal/scoring"
	"github.com/holomush/lightwell/internal/wincond"
)

// DefaultRippleRadius is the adjacency radius of a rippled rotation.
const DefaultRippleRadius = 1.5

// Phase is the session's position in the play state machine.
type Phase string

// Session phases.
const (
	PhaseIdle     Phase = "idle"
	PhasePlaying  Phase = "playing"
	PhaseComplete Phase = "complete"
	PhaseFailed   Phase = "failed"
)

// Config configures a session.
type Config struct {
	Evaluator wincond.Options
	// RippleRadius applies to levels with ripple enabled. Zero uses
	// DefaultRippleRadius.
	RippleRadius float64
	// Broadcaster receives session events when set.
	Broadcaster *Broadcaster
	Logger      *slog.Logger
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		Evaluator:    wincond.DefaultOptions(),
		RippleRadius: DefaultRippleRadius,
	}
}

// frame is an immutable history entry.
type frame struct {
	state          *puzzle.State
	movesRemaining int
	movesUsed      int
	bonusGranted   int
	jewels         int
	activated      map[string]bool
}

// Session is one player's run through a level catalog. All methods are safe
// for concurrent use; mutations are applied one at a time.
type Session struct {
	mu      sync.Mutex
	id      ulid.ULID
	catalog *level.Catalog
	cfg     Config
	logger  *slog.Logger

	lvl            *level.Level
	eval           wincond.Evaluator
	state          *puzzle.State
	movesRemaining int
	movesUsed      int
	bonusGranted   int
	jewels         int
	activated      map[string]bool
	history        []frame
	phase          Phase
	outcome        wincond.Outcome
	tier           scoring.Tier
	score          int
}

// NewSession creates an idle session over catalog.
func NewSession(catalog *level.Catalog, cfg Config) *Session {
	if cfg.RippleRadius <= 0 {
		cfg.RippleRadius = DefaultRippleRadius
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := NewULID()
	logger = logger.With("session_id", id.String())
	cfg.Evaluator.Logger = logger
	return &Session{
		id:      id,
		catalog: catalog,
		cfg:     cfg,
		logger:  logger,
		phase:   PhaseIdle,
		tier:    scoring.TierNone,
	}
}

// ID returns the session id.
func (s *Session) ID() ulid.ULID {
	return s.id
}

// Stream returns the broadcast stream carrying this session's events.
func (s *Session) Stream() string {
	return StreamFor(s.id)
}

// LoadLevel seeds the session from the catalog level id. The initial
// evaluation is for display only: a level never starts complete.
func (s *Session) LoadLevel(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(id)
}

func (s *Session) load(id int) error {
	lvl, err := s.catalog.Get(id)
	if err != nil {
		return err
	}
	if _, err := lvl.NewState(); err != nil {
		return err
	}
	s.lvl = lvl
	s.eval = wincond.For(lvl, s.cfg.Evaluator)
	s.reset()
	s.logger.Info("level loaded", "level_id", lvl.ID, "mode", string(lvl.Mode), "max_moves", lvl.MaxMoves)
	s.emit(EventLevelLoaded, nil)
	return nil
}

// reset reinitializes the attempt from the authored level.
func (s *Session) reset() {
	// Build cannot fail here; load checked the level once.
	state, _ := s.lvl.NewState()
	s.state = state
	s.movesRemaining = s.lvl.MaxMoves
	s.movesUsed = 0
	s.bonusGranted = 0
	s.jewels = 0
	s.activated = make(map[string]bool)
	s.history = nil
	s.phase = PhasePlaying
	s.tier = scoring.TierNone
	s.score = 0
	s.outcome = s.measure()
	if s.outcome.Complete {
		s.logger.Warn("level is solved at start", "level_id", s.lvl.ID)
	}
}

// Rotate rotates a prism one 45° click; direction is +1 or -1. On ripple
// levels every unlocked prism within the ripple radius turns with it. It
// reports whether the move was applied.
func (s *Session) Rotate(id string, direction int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.canSpend() {
		return false
	}
	if direction != 1 && direction != -1 {
		s.logger.Debug("rotate ignored: bad direction", "element_id", id, "direction", direction)
		return false
	}
	el, ok := s.state.Get(id)
	if !ok {
		s.logger.Debug("rotate ignored: no such element", "element_id", id)
		return false
	}
	r, ok := el.(puzzle.Rotatable)
	if !ok || r.Locked() {
		s.logger.Debug("rotate ignored: not a rotatable element", "element_id", id)
		return false
	}

	affected := []puzzle.Rotatable{r}
	if s.lvl.Ripple {
		affected = append(affected, s.state.Within(r.Position(), s.cfg.RippleRadius, id)...)
	}

	s.push()
	ids := make([]string, 0, len(affected))
	for _, a := range affected {
		a.Rotate(direction)
		ids = append(ids, a.ID())
	}
	s.spend()
	recordMove(MoveRotate)
	s.emit(EventElementRotated, ids)
	s.evaluate()
	return true
}

// Move translates a block one unit along +x, -x, +z or -z. Moves onto
// another element's position are refused.
func (s *Session) Move(id string, delta geom.Vec3) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.canSpend() {
		return false
	}
	if !unitAxis(delta) {
		s.logger.Debug("move ignored: not a unit axis step", "element_id", id)
		return false
	}
	el, ok := s.state.Get(id)
	if !ok {
		s.logger.Debug("move ignored: no such element", "element_id", id)
		return false
	}
	m, ok := el.(puzzle.Movable)
	if !ok {
		s.logger.Debug("move ignored: not a movable element", "element_id", id)
		return false
	}
	if s.state.Occupied(el.Position().Add(delta), id) {
		s.logger.Debug("move ignored: destination occupied", "element_id", id)
		return false
	}

	s.push()
	m.Translate(delta)
	s.spend()
	recordMove(MoveTranslate)
	s.emit(EventBlockMoved, []string{id})
	s.evaluate()
	return true
}

// Undo restores the session as it was before the last rotation or move, at
// no cost. Bonuses collected since then are uncollected with it. Undo clears
// a failure but does nothing after completion.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lvl == nil || s.phase == PhaseComplete || len(s.history) == 0 {
		return false
	}
	f := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]

	s.state = f.state
	s.movesRemaining = f.movesRemaining
	s.movesUsed = f.movesUsed
	s.bonusGranted = f.bonusGranted
	s.jewels = f.jewels
	s.activated = f.activated
	if s.activated == nil {
		s.activated = make(map[string]bool)
	}
	s.phase = PhasePlaying
	recordMove(MoveUndo)
	s.emit(EventMoveUndone, nil)
	s.evaluate()
	return true
}

// Restart reinitializes the current level.
func (s *Session) Restart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lvl == nil {
		return false
	}
	s.reset()
	s.emit(EventLevelRestarted, nil)
	return true
}

// ActivateBonus collects a plate or jewel. It is free and one-shot. A plate
// rescues a failed attempt; a jewel cannot.
func (s *Session) ActivateBonus(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lvl == nil || s.phase == PhaseComplete {
		return false
	}
	el, ok := s.state.Get(id)
	if !ok {
		s.logger.Debug("activate ignored: no such element", "element_id", id)
		return false
	}
	a, ok := el.(puzzle.Activatable)
	if !ok || a.Activated() {
		s.logger.Debug("activate ignored: not an available bonus", "element_id", id)
		return false
	}
	isPlate := el.Kind() == puzzle.KindPlate
	if s.phase == PhaseFailed && !isPlate {
		s.logger.Debug("activate ignored: attempt failed", "element_id", id)
		return false
	}

	a.Activate()
	s.activated[id] = true
	s.movesRemaining += a.BonusMoves()
	s.bonusGranted += a.BonusMoves()
	if el.Kind() == puzzle.KindJewel {
		s.jewels++
	}
	if isPlate {
		s.phase = PhasePlaying
	}
	recordMove(MoveBonus)
	s.emit(EventBonusActivated, []string{id})
	s.evaluate()
	return true
}

// NextLevel loads the level after the current one, or the first level when
// none is loaded. It reports false at the end of the catalog.
func (s *Session) NextLevel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		next int
		ok   bool
	)
	if s.lvl == nil {
		next, ok = s.catalog.First()
	} else {
		next, ok = s.catalog.Next(s.lvl.ID)
	}
	if !ok {
		return false
	}
	if err := s.load(next); err != nil {
		s.logger.Warn("next level failed to load", "level_id", next, "error", err)
		return false
	}
	return true
}

// Level returns a copy of the current level, or nil when idle.
func (s *Session) Level() *level.Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lvl == nil {
		return nil
	}
	return s.lvl.Clone()
}

// Result returns the completion record of the current attempt. It reports
// false unless the level is complete.
func (s *Session) Result() (scoring.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseComplete {
		return scoring.Record{}, false
	}
	return scoring.Record{
		LevelID:   s.lvl.ID,
		Completed: true,
		BestMoves: s.movesUsed,
		Tier:      s.tier,
		Score:     s.score,
	}, true
}

func (s *Session) canSpend() bool {
	return s.lvl != nil && s.phase == PhasePlaying && s.movesRemaining > 0
}

func (s *Session) push() {
	s.history = append(s.history, frame{
		state:          s.state.Clone(),
		movesRemaining: s.movesRemaining,
		movesUsed:      s.movesUsed,
		bonusGranted:   s.bonusGranted,
		jewels:         s.jewels,
		activated:      maps.Clone(s.activated),
	})
}

func (s *Session) spend() {
	s.movesRemaining--
	s.movesUsed++
}

func (s *Session) measure() wincond.Outcome {
	start := time.Now()
	out := s.eval.Evaluate(s.state)
	recordEvaluation(string(s.eval.Mode()), time.Since(start))
	return out
}

// evaluate re-checks the win condition. Completion takes precedence over
// running out of moves.
func (s *Session) evaluate() {
	s.outcome = s.measure()
	switch {
	case s.outcome.Complete:
		s.phase = PhaseComplete
		s.tier = s.lvl.Rate(s.movesUsed)
		s.score = scoring.Score(scoring.Params{
			MovesUsed:       s.movesUsed,
			ParMoves:        s.lvl.Par(),
			JewelsCollected: s.jewels,
		})
		s.logger.Info("level completed",
			"level_id", s.lvl.ID,
			"moves_used", s.movesUsed,
			"tier", s.tier.String(),
			"score", s.score)
		recordFinished("completed", s.tier.String())
		s.emit(EventLevelCompleted, nil)
	case s.movesRemaining <= 0:
		s.phase = PhaseFailed
		s.logger.Info("level failed", "level_id", s.lvl.ID, "moves_used", s.movesUsed)
		recordFinished("failed", scoring.TierNone.String())
		s.emit(EventLevelFailed, nil)
	}
}

func (s *Session) emit(t EventType, ids []string) {
	if s.cfg.Broadcaster == nil {
		return
	}
	ev := Event{
		ID:             NewULID(),
		Stream:         s.Stream(),
		Type:           t,
		Timestamp:      time.Now(),
		LevelID:        s.lvl.ID,
		ElementIDs:     ids,
		MovesRemaining: s.movesRemaining,
		MovesUsed:      s.movesUsed,
	}
	if t == EventLevelCompleted {
		ev.Tier = s.tier
		ev.Score = s.score
	}
	s.cfg.Broadcaster.Broadcast(ev)
}

func unitAxis(d geom.Vec3) bool {
	if d.Y != 0 {
		return false
	}
	return (d.Z == 0 && (d.X == 1 || d.X == -1)) || (d.X == 0 && (d.Z == 1 || d.Z == -1))
}

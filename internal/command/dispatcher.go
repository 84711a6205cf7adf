// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package command parses REPL lines and runs them against a game session.
package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/lightwell/internal/engine"
	"github.com/holomush/lightwell/internal/geom"
	"github.com/holomush/lightwell/internal/level"
	"github.com/holomush/lightwell/internal/observability"
	"github.com/holomush/lightwell/internal/progress"
	"github.com/holomush/lightwell/internal/puzzle"
	"github.com/holomush/lightwell/internal/scoring"
)

var tracer = otel.Tracer("lightwell/command")

// Dispatcher executes REPL lines against one session and writes text output.
// It is not safe for concurrent use.
type Dispatcher struct {
	session *engine.Session
	catalog *level.Catalog
	out     io.Writer
	tracker *progress.Tracker // optional, can be nil
	logger  *slog.Logger
	current string
}

// DispatcherOption configures a Dispatcher during construction.
type DispatcherOption func(*Dispatcher)

// WithTracker records completed levels in t.
func WithTracker(t *progress.Tracker) DispatcherOption {
	return func(d *Dispatcher) {
		d.tracker = t
	}
}

// WithLogger sets the dispatcher logger. The default is slog.Default().
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher creates a dispatcher writing to out. catalog backs the
// levels listing and may be nil.
func NewDispatcher(session *engine.Session, catalog *level.Catalog, out io.Writer, opts ...DispatcherOption) (*Dispatcher, error) {
	if session == nil {
		return nil, ErrNilSession
	}
	d := &Dispatcher{
		session: session,
		catalog: catalog,
		out:     out,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

var axes = map[string]geom.Vec3{
	"+x": geom.V(1, 0, 0),
	"-x": geom.V(-1, 0, 0),
	"+z": geom.V(0, 0, 1),
	"-z": geom.V(0, 0, -1),
}

// Dispatch parses and runs one line. quit is true when the player asked to
// leave. Player-facing messages, including parse errors, are written to the
// output; the returned error is for logging.
func (d *Dispatcher) Dispatch(ctx context.Context, input string) (quit bool, err error) {
	start := time.Now()
	line, err := Parse(input)
	if err != nil {
		d.current = "parse"
		d.say("%s", PlayerMessage(err))
		RecordCommandExecution("parse", StatusError)
		return false, err
	}
	if line == nil {
		return false, nil
	}
	name := line.Name()
	d.current = name

	ctx, span := tracer.Start(ctx, "command.execute",
		trace.WithAttributes(
			attribute.String("command.name", name),
			attribute.String("session.id", d.session.ID().String()),
		),
	)
	status := StatusInfo
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			status = StatusError
		}
		span.SetAttributes(attribute.String("command.status", status))
		span.End()
		RecordCommandExecution(name, status)
		RecordCommandDuration(name, time.Since(start))
	}()

	before := d.session.Snapshot()
	mutating := false
	applied := false

	switch {
	case line.Rotate != nil:
		mutating = true
		dir := 1
		if strings.EqualFold(line.Rotate.Dir, "ccw") {
			dir = -1
		}
		applied = d.session.Rotate(line.Rotate.ID, dir)
		if !applied {
			d.say("%s", rejection(before, line.Rotate.ID, "rotate"))
		}
	case line.Move != nil:
		mutating = true
		applied = d.session.Move(line.Move.ID, axes[strings.ToLower(line.Move.Axis)])
		if !applied {
			d.say("%s", rejection(before, line.Move.ID, "move"))
		}
	case line.Activate != nil:
		mutating = true
		applied = d.session.ActivateBonus(line.Activate.ID)
		if !applied {
			d.say("%s", rejection(before, line.Activate.ID, "activate"))
		}
	case line.Load != nil:
		if err = d.session.LoadLevel(line.Load.ID); err != nil {
			d.say("%s", PlayerMessage(err))
			return false, err
		}
		RenderBoard(d.out, d.session.Snapshot())
	case line.Help != nil:
		RenderHelp(d.out, line.Help.Topic)
	default:
		switch name {
		case "undo":
			mutating = true
			applied = d.session.Undo()
			if !applied {
				d.say("Nothing to undo.")
			}
		case "restart":
			mutating = true
			applied = d.session.Restart()
			if !applied {
				d.say("%s", PlayerMessage(ErrNoLevel(name)))
			}
		case "next":
			if !d.session.NextLevel() {
				d.say("There are no more levels.")
				break
			}
			RenderBoard(d.out, d.session.Snapshot())
		case "show":
			RenderBoard(d.out, before)
		case "beams":
			if before.LevelID == 0 {
				d.say("%s", PlayerMessage(ErrNoLevel(name)))
				break
			}
			RenderTrace(d.out, before.Outcome)
		case "levels":
			err = d.listLevels(ctx)
		case "quit":
			return true, nil
		}
	}

	if mutating {
		status = StatusRejected
		if applied {
			status = StatusApplied
			after := d.session.Snapshot()
			RenderStatus(d.out, after)
			err = d.finished(ctx, before, after)
		}
	}
	return false, err
}

// finished reports phase transitions and records completions.
func (d *Dispatcher) finished(ctx context.Context, before, after engine.Snapshot) error {
	if after.Phase == before.Phase {
		return nil
	}
	switch after.Phase {
	case engine.PhaseComplete:
		d.say("The rune blazes with light! Tier %s, score %d. Type 'next' to continue.", after.Tier, after.Score)
		return d.record(ctx)
	case engine.PhaseFailed:
		d.say("The light fades. Type 'undo', 'restart' or step on a plate.")
	}
	return nil
}

func (d *Dispatcher) record(ctx context.Context) error {
	if d.tracker == nil {
		return nil
	}
	rec, ok := d.session.Result()
	if !ok {
		return nil
	}
	best, err := d.tracker.Record(ctx, rec)
	if err != nil {
		d.say("Your progress could not be saved.")
		return err
	}
	if best.BestMoves < rec.BestMoves {
		d.say("Your best is %d moves.", best.BestMoves)
	}
	return nil
}

func (d *Dispatcher) listLevels(ctx context.Context) error {
	if d.catalog == nil {
		d.say("No levels available.")
		return nil
	}
	records := make(map[int]scoring.Record)
	if d.tracker != nil {
		recs, _, err := d.tracker.Summary(ctx)
		if err != nil {
			d.logger.WarnContext(ctx, "progress unavailable", "error", err)
		}
		for _, r := range recs {
			records[r.LevelID] = r
		}
	}
	RenderLevels(d.out, d.catalog.All(), records)
	return nil
}

// rejection explains why an action on id did nothing.
func rejection(snap engine.Snapshot, id, verb string) string {
	switch {
	case snap.LevelID == 0:
		return PlayerMessage(ErrNoLevel(verb))
	case snap.Complete():
		return "The level is already solved."
	}
	el, ok := snap.Element(id)
	if !ok {
		return fmt.Sprintf("There is no %q here.", id)
	}
	switch verb {
	case "rotate":
		r, ok := el.(puzzle.Rotatable)
		if !ok {
			return fmt.Sprintf("%s cannot be rotated.", id)
		}
		if r.Locked() {
			return fmt.Sprintf("%s is locked in place.", id)
		}
	case "move":
		if _, ok := el.(puzzle.Movable); !ok {
			return fmt.Sprintf("%s cannot be moved.", id)
		}
		if snap.MovesRemaining > 0 && !snap.Failed() {
			return fmt.Sprintf("%s cannot move there.", id)
		}
	case "activate":
		a, ok := el.(puzzle.Activatable)
		if !ok {
			return fmt.Sprintf("%s cannot be activated.", id)
		}
		if a.Activated() {
			return fmt.Sprintf("%s is already collected.", id)
		}
		if snap.Failed() {
			return "Only a pressure plate can help now."
		}
	}
	if snap.Failed() || snap.MovesRemaining == 0 {
		return "You are out of moves."
	}
	return "Nothing happens."
}

func (d *Dispatcher) say(format string, args ...any) {
	if _, err := fmt.Fprintf(d.out, format+"\n", args...); err != nil {
		observability.RecordCommandOutputFailure(d.current)
		d.logger.Debug("command output failed", "command", d.current, "error", err)
	}
}

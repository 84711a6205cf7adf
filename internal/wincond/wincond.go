// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package wincond decides whether a level's win condition holds for an
// element state. Beam levels are ray-traced; chain levels check an authored
// list of links. Each level selects exactly one evaluator.
package wincond

import (
	"log/slog"

	"github.com/holomush/lightwell/internal/beam"
	"github.com/holomush/lightwell/internal/chain"
	"github.com/holomush/lightwell/internal/geom"
	"github.com/holomush/lightwell/internal/level"
	"github.com/holomush/lightwell/internal/puzzle"
)

// Outcome is the result of evaluating one state.
type Outcome struct {
	Complete bool
	Mode     level.Mode
	// Beams holds one trace per light source in beam mode.
	Beams []beam.Result
	// Chains holds one result per chain in chain mode.
	Chains []chain.Result
	// Lit marks elements struck by a beam.
	Lit map[string]bool
	// Powered marks chain elements light reaches.
	Powered map[string]bool
	// Satisfied counts beams reaching the target or valid chains.
	Satisfied int
	Required  int
}

// Evaluator evaluates a win condition against an element state.
type Evaluator interface {
	Mode() level.Mode
	Evaluate(state *puzzle.State) Outcome
}

// Options configure evaluators.
type Options struct {
	// Tracer holds the beam options. Its RequireFacing is the default the
	// level may override.
	Tracer beam.Options
	// Tolerance is the chain angle tolerance in degrees.
	Tolerance float64
	Logger    *slog.Logger
}

// DefaultOptions returns the standard evaluator options.
func DefaultOptions() Options {
	return Options{Tracer: beam.DefaultOptions(), Tolerance: geom.DefaultTolerance}
}

// For builds the evaluator the level's mode selects.
func For(lvl *level.Level, opts Options) Evaluator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("level_id", lvl.ID)

	if lvl.Mode == level.ModeChain {
		return NewChainEvaluator(lvl, opts.Tolerance, logger)
	}
	tracerOpts := opts.Tracer
	tracerOpts.RequireFacing = lvl.RequiresFacing(opts.Tracer.RequireFacing)
	return NewBeamEvaluator(lvl, tracerOpts, logger)
}

// BeamEvaluator traces every light source and counts beams that reach the
// target.
type BeamEvaluator struct {
	tracer    *beam.Tracer
	sources   []beam.Source
	target    geom.Vec3
	hasTarget bool
	obstacles []puzzle.Occluder
	required  int
}

// NewBeamEvaluator creates a beam evaluator for lvl.
func NewBeamEvaluator(lvl *level.Level, opts beam.Options, logger *slog.Logger) *BeamEvaluator {
	target, ok := lvl.Target()
	if !ok {
		logger.Warn("level has no target")
	}
	sources := make([]beam.Source, 0, len(lvl.LightSources))
	for _, s := range lvl.Sources() {
		sources = append(sources, beam.Source{Index: s.Index, Position: s.Position, Heading: s.Heading})
	}
	return &BeamEvaluator{
		tracer:    beam.NewTracer(opts, logger),
		sources:   sources,
		target:    target,
		hasTarget: ok,
		obstacles: lvl.DeclaredObstacles(),
		required:  lvl.Required(len(sources)),
	}
}

// Mode returns level.ModeBeam.
func (*BeamEvaluator) Mode() level.Mode { return level.ModeBeam }

// Evaluate traces the state.
func (e *BeamEvaluator) Evaluate(state *puzzle.State) Outcome {
	results := e.tracer.TraceAll(e.sources, beam.Scene{
		State:     state,
		Target:    e.target,
		HasTarget: e.hasTarget,
		Obstacles: e.obstacles,
	})
	reached := beam.Reached(results)
	return Outcome{
		Complete:  e.required > 0 && reached >= e.required,
		Mode:      level.ModeBeam,
		Beams:     results,
		Lit:       beam.Lit(results),
		Powered:   map[string]bool{},
		Satisfied: reached,
		Required:  e.required,
	}
}

// ChainEvaluator validates the primary and secondary chains and counts the
// valid ones.
type ChainEvaluator struct {
	validator *chain.Validator
	chains    [][]string
	target    *geom.Vec3
	obstacles []puzzle.Occluder
	required  int
}

// NewChainEvaluator creates a chain evaluator for lvl.
func NewChainEvaluator(lvl *level.Level, tolerance float64, logger *slog.Logger) *ChainEvaluator {
	var target *geom.Vec3
	if t, ok := lvl.Target(); ok {
		target = &t
	} else {
		logger.Warn("level has no target")
	}
	chains := lvl.Chains()
	return &ChainEvaluator{
		validator: chain.NewValidator(tolerance, logger),
		chains:    chains,
		target:    target,
		obstacles: lvl.DeclaredObstacles(),
		required:  lvl.Required(len(chains)),
	}
}

// Mode returns level.ModeChain.
func (*ChainEvaluator) Mode() level.Mode { return level.ModeChain }

// Evaluate validates every chain against the state. Blocks and obstacle
// elements in the state occlude links alongside the declared obstacles.
func (e *ChainEvaluator) Evaluate(state *puzzle.State) Outcome {
	var occluders []puzzle.Occluder
	if state != nil {
		occluders = state.Occluders(e.obstacles...)
	}
	results := e.validator.ValidateAll(e.chains, state, e.target, occluders)
	valid := chain.CountValid(results)
	return Outcome{
		Complete:  e.required > 0 && valid >= e.required,
		Mode:      level.ModeChain,
		Chains:    results,
		Lit:       map[string]bool{},
		Powered:   chain.PoweredUnion(results),
		Satisfied: valid,
		Required:  e.required,
	}
}

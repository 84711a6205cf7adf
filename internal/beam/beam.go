// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package beam ray-marches light from fixed sources through the prisms of a
// level and reports the segments it draws and whether it reaches the target.
package beam

import (
	"log/slog"
	"math"

	"github.com/holomush/lightwell/internal/geom"
	"github.com/holomush/lightwell/internal/puzzle"
)

// Default tracing parameters.
const (
	DefaultMaxBounces    = 20
	DefaultRange         = 10.0
	DefaultEscapeLength  = 5.0
	DefaultPrismRadius   = 0.5
	DefaultTargetRadius  = 0.8
	DefaultBlockCorridor = 0.5
	DefaultMaxBranches   = 16

	// facingCone is the half-angle within which a prism accepts a beam.
	facingCone = 45.0
	// selfSkip excludes the element the beam is leaving from.
	selfSkip = 0.1
)

// StopReason says why a branch of a beam ended.
type StopReason string

// Stop reasons.
const (
	StopTarget      StopReason = "target"
	StopEscaped     StopReason = "escaped"
	StopAbsorbed    StopReason = "absorbed"
	StopBlocked     StopReason = "blocked"
	StopBounceLimit StopReason = "bounce_limit"
	StopCycle       StopReason = "cycle"
)

// Options tune the tracer. Zero numeric fields take their defaults.
type Options struct {
	MaxBounces    int
	Range         float64
	EscapeLength  float64
	PrismRadius   float64
	TargetRadius  float64
	BlockCorridor float64
	MaxBranches   int
	// RequireFacing makes prisms absorb beams arriving outside their
	// receiving cone. When false every hit prism re-emits.
	RequireFacing bool
}

// DefaultOptions returns the standard tracing parameters.
func DefaultOptions() Options {
	return Options{
		MaxBounces:    DefaultMaxBounces,
		Range:         DefaultRange,
		EscapeLength:  DefaultEscapeLength,
		PrismRadius:   DefaultPrismRadius,
		TargetRadius:  DefaultTargetRadius,
		BlockCorridor: DefaultBlockCorridor,
		MaxBranches:   DefaultMaxBranches,
		RequireFacing: true,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxBounces <= 0 {
		o.MaxBounces = DefaultMaxBounces
	}
	if o.Range <= 0 {
		o.Range = DefaultRange
	}
	if o.EscapeLength <= 0 {
		o.EscapeLength = DefaultEscapeLength
	}
	if o.PrismRadius <= 0 {
		o.PrismRadius = DefaultPrismRadius
	}
	if o.TargetRadius <= 0 {
		o.TargetRadius = DefaultTargetRadius
	}
	if o.BlockCorridor <= 0 {
		o.BlockCorridor = DefaultBlockCorridor
	}
	if o.MaxBranches <= 0 {
		o.MaxBranches = DefaultMaxBranches
	}
	return o
}

// Source is a light emitter.
type Source struct {
	Index    int
	Position geom.Vec3
	Heading  float64
}

// Scene is the geometry a beam is traced through.
type Scene struct {
	State     *puzzle.State
	Target    geom.Vec3
	HasTarget bool
	// Obstacles are occluders declared outside the element list.
	Obstacles []puzzle.Occluder
}

// Segment is one straight piece of a beam.
type Segment struct {
	From       geom.Vec3
	To         geom.Vec3
	Branch     int
	HitsTarget bool
	Blocked    bool
	// ElementID is the element the segment ends on, if any.
	ElementID string
}

// Branch is one path of a beam. Splitters fork new branches.
type Branch struct {
	ID        int
	Stop      StopReason
	Bounces   int
	ElementID string
}

// Result is the trace of one source.
type Result struct {
	Source        Source
	Segments      []Segment
	Branches      []Branch
	ReachesTarget bool
}

// Tracer traces beams with fixed options.
type Tracer struct {
	opts   Options
	logger *slog.Logger
}

// NewTracer creates a tracer. A nil logger uses slog.Default().
func NewTracer(opts Options, logger *slog.Logger) *Tracer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracer{opts: opts.withDefaults(), logger: logger}
}

// Options returns the effective options.
func (t *Tracer) Options() Options {
	return t.opts
}

// TraceAll traces every source independently.
func (t *Tracer) TraceAll(sources []Source, scene Scene) []Result {
	out := make([]Result, 0, len(sources))
	for _, src := range sources {
		out = append(out, t.Trace(src, scene))
	}
	return out
}

type visitKey struct {
	id      string
	heading int64
}

func keyFor(id string, heading float64) visitKey {
	return visitKey{id: id, heading: int64(math.Round(geom.NormalizeAngle(heading) * 1000))}
}

type cursor struct {
	id      int
	pos     geom.Vec3
	heading float64
	bounces int
}

type hitKind int

const (
	hitNone hitKind = iota
	hitTarget
	hitPrism
	hitOccluder
)

type hit struct {
	kind     hitKind
	dist     float64
	prism    puzzle.Rotatable
	occluder puzzle.Occluder
}

// Trace follows one source until every branch stops. Termination is
// guaranteed by the per-branch bounce limit, a shared step budget and the
// branch cap.
func (t *Tracer) Trace(src Source, scene Scene) Result {
	res := Result{Source: src}
	if scene.State == nil {
		scene.State = puzzle.NewState()
	}
	if !scene.HasTarget {
		t.logger.Debug("tracing without a target", "source", src.Index)
	}

	prisms := scene.State.Prisms()
	occluders := scene.State.Occluders(scene.Obstacles...)
	visited := make(map[visitKey]bool)
	budget := t.opts.MaxBounces * 8

	queue := []cursor{{id: 0, pos: src.Position, heading: geom.NormalizeAngle(src.Heading)}}
	nextID := 1

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		branch := Branch{ID: c.id}

		for {
			if c.bounces >= t.opts.MaxBounces {
				branch.Stop = StopBounceLimit
				break
			}
			if budget <= 0 {
				branch.Stop = StopCycle
				break
			}

			dir := geom.Heading(c.heading)
			h := t.nearest(c.pos, c.heading, scene, prisms, occluders, visited)

			switch h.kind {
			case hitNone:
				res.Segments = append(res.Segments, Segment{
					From:   c.pos,
					To:     c.pos.Add(dir.Scale(t.opts.EscapeLength)),
					Branch: c.id,
				})
				branch.Stop = StopEscaped

			case hitTarget:
				res.Segments = append(res.Segments, Segment{
					From:       c.pos,
					To:         scene.Target,
					Branch:     c.id,
					HitsTarget: true,
				})
				branch.Stop = StopTarget
				res.ReachesTarget = true

			case hitOccluder:
				res.Segments = append(res.Segments, Segment{
					From:      c.pos,
					To:        c.pos.Add(dir.Scale(h.dist)),
					Branch:    c.id,
					Blocked:   true,
					ElementID: h.occluder.ID(),
				})
				branch.Stop = StopBlocked
				branch.ElementID = h.occluder.ID()

			case hitPrism:
				p := h.prism
				res.Segments = append(res.Segments, Segment{
					From:      c.pos,
					To:        p.Position(),
					Branch:    c.id,
					ElementID: p.ID(),
				})
				branch.ElementID = p.ID()

				visited[keyFor(p.ID(), c.heading)] = true
				c.bounces++
				budget--

				if t.opts.RequireFacing && !accepts(p, c.heading) {
					branch.Stop = StopAbsorbed
					break
				}

				outs := p.OutputAngles()
				for _, out := range outs[1:] {
					if nextID >= t.opts.MaxBranches {
						t.logger.Debug("branch cap reached", "source", src.Index, "element_id", p.ID())
						break
					}
					queue = append(queue, cursor{id: nextID, pos: p.Position(), heading: out, bounces: c.bounces})
					nextID++
				}
				c.pos = p.Position()
				c.heading = outs[0]
				continue
			}
			break
		}

		branch.Bounces = c.bounces
		res.Branches = append(res.Branches, branch)
	}

	return res
}

// accepts reports whether p faces into a beam travelling along heading: its
// rotation reversed must lie within the cone around the reversed beam.
func accepts(p puzzle.Rotatable, heading float64) bool {
	return geom.AngularDistance(float64(p.Rotation())+180, heading+180) <= facingCone
}

// nearest finds the first thing along heading from pos. A prism already
// entered along the same heading is passed through, so a loop between prisms
// falls through to whatever lies beyond them.
func (t *Tracer) nearest(pos geom.Vec3, heading float64, scene Scene, prisms []puzzle.Rotatable, occluders []puzzle.Occluder, visited map[visitKey]bool) hit {
	dir := geom.Heading(heading)
	best := hit{kind: hitNone, dist: math.Inf(1)}

	for _, p := range prisms {
		if p.Position().PlanarDistance(pos) < selfSkip {
			continue
		}
		if visited[keyFor(p.ID(), heading)] {
			continue
		}
		d, ok := geom.RayPointDistance(pos, dir, p.Position(), t.opts.PrismRadius)
		if !ok || d > t.opts.Range {
			continue
		}
		if d < best.dist {
			best = hit{kind: hitPrism, dist: d, prism: p}
		}
	}

	if scene.HasTarget {
		if scene.Target.PlanarDistance(pos) < geom.Epsilon {
			return hit{kind: hitTarget}
		}
		d, ok := geom.RayPointDistance(pos, dir, scene.Target, t.opts.TargetRadius)
		// Ties go to the target.
		if ok && d <= t.opts.Range && d <= best.dist+geom.Epsilon {
			best = hit{kind: hitTarget, dist: d}
		}
	}

	for _, o := range occluders {
		if o.Position().PlanarDistance(pos) < selfSkip {
			continue
		}
		radius := o.Radius()
		if _, isBlock := o.(*puzzle.Block); isBlock {
			radius = t.opts.BlockCorridor
		}
		d, ok := geom.RayPointDistance(pos, dir, o.Position(), radius)
		if !ok || d > t.opts.Range {
			continue
		}
		if d < best.dist {
			best = hit{kind: hitOccluder, dist: d, occluder: o}
		}
	}

	return best
}

// Reached counts the results whose beam reaches the target.
func Reached(results []Result) int {
	n := 0
	for _, r := range results {
		if r.ReachesTarget {
			n++
		}
	}
	return n
}

// Lit returns the ids of elements struck by any segment.
func Lit(results []Result) map[string]bool {
	out := make(map[string]bool)
	for _, r := range results {
		for _, s := range r.Segments {
			if s.ElementID != "" && !s.Blocked {
				out[s.ElementID] = true
			}
		}
	}
	return out
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package level loads authored level packs and exposes them as read-only
// records the engine seeds sessions from.
package level

import (
	"math"
	"strconv"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/holomush/lightwell/internal/geom"
	"github.com/holomush/lightwell/internal/puzzle"
	"github.com/holomush/lightwell/internal/scoring"
)

// Mode selects the win-condition strategy of a level.
type Mode string

// Level modes.
const (
	ModeBeam  Mode = "beam"
	ModeChain Mode = "chain"
)

// Point is a position in level space, written as [x, y, z].
type Point [3]float64

// Vec converts the point to a geometry vector.
func (p Point) Vec() geom.Vec3 {
	return geom.V(p[0], p[1], p[2])
}

// Heading is a direction in degrees. In YAML it may be written as a number
// of degrees or as a vector such as [1, 0, 0].
type Heading struct {
	Degrees float64
	// Degenerate is set when a vector with no horizontal extent was given.
	Degenerate bool
}

// UnmarshalYAML accepts a scalar or a two- or three-component sequence.
func (h *Heading) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var deg float64
		if err := node.Decode(&deg); err != nil {
			return err
		}
		*h = Heading{Degrees: geom.NormalizeAngle(deg)}
		return nil
	case yaml.SequenceNode:
		var comps []float64
		if err := node.Decode(&comps); err != nil {
			return err
		}
		var v geom.Vec3
		switch len(comps) {
		case 2:
			v = geom.V(comps[0], 0, comps[1])
		case 3:
			v = geom.V(comps[0], comps[1], comps[2])
		default:
			return oops.Code("PACK_PARSE_FAILED").
				With("line", node.Line).
				Errorf("direction vector must have 2 or 3 components, got %d", len(comps))
		}
		deg, ok := geom.HeadingOf(v)
		*h = Heading{Degrees: deg, Degenerate: !ok}
		return nil
	default:
		return oops.Code("PACK_PARSE_FAILED").
			With("line", node.Line).
			Errorf("direction must be a number or a vector")
	}
}

// MarshalYAML writes the heading as degrees.
func (h Heading) MarshalYAML() (any, error) {
	return h.Degrees, nil
}

// JSONSchema describes the number-or-vector form.
func (Heading) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "number"},
			{
				Type:     "array",
				Items:    &jsonschema.Schema{Type: "number"},
				MinItems: uintPtr(2),
				MaxItems: uintPtr(3),
			},
		},
	}
}

func uintPtr(v uint64) *uint64 { return &v }

// LightSource is a fixed beam emitter.
type LightSource struct {
	Position  Point   `yaml:"position" json:"position" jsonschema:"required"`
	Direction Heading `yaml:"direction" json:"direction" jsonschema:"required"`
}

// ObstacleSpec is a declared static occluder that is not an element.
type ObstacleSpec struct {
	ID       string              `yaml:"id,omitempty" json:"id,omitempty"`
	Kind     puzzle.ObstacleKind `yaml:"kind" json:"kind" jsonschema:"required,enum=pillar,enum=wall,enum=crystal"`
	Position Point               `yaml:"position" json:"position" jsonschema:"required"`
	Radius   float64             `yaml:"radius,omitempty" json:"radius,omitempty" jsonschema:"exclusiveMinimum=0"`
}

// ElementSpec is the authored form of an element.
type ElementSpec struct {
	ID           string              `yaml:"id" json:"id" jsonschema:"required,minLength=1"`
	Type         puzzle.Kind         `yaml:"type" json:"type" jsonschema:"required,enum=prism,enum=rune,enum=block,enum=plate,enum=jewel,enum=obstacle"`
	Position     Point               `yaml:"position" json:"position" jsonschema:"required"`
	Rotation     int                 `yaml:"rotation,omitempty" json:"rotation,omitempty" jsonschema:"minimum=0,maximum=315,multipleOf=45"`
	PrismKind    puzzle.PrismKind    `yaml:"prism_kind,omitempty" json:"prism_kind,omitempty" jsonschema:"enum=normal,enum=splitter,enum=mirror,enum=amplifier"`
	Locked       bool                `yaml:"locked,omitempty" json:"locked,omitempty"`
	Activated    bool                `yaml:"activated,omitempty" json:"activated,omitempty"`
	ObstacleKind puzzle.ObstacleKind `yaml:"obstacle_kind,omitempty" json:"obstacle_kind,omitempty" jsonschema:"enum=pillar,enum=wall,enum=crystal"`
	Radius       float64             `yaml:"radius,omitempty" json:"radius,omitempty" jsonschema:"exclusiveMinimum=0"`
}

// Build constructs the live element for the spec.
func (e ElementSpec) Build() (puzzle.Element, error) {
	pos := e.Position.Vec()
	switch e.Type {
	case puzzle.KindPrism:
		return puzzle.NewPrism(e.ID, pos, e.Rotation, e.PrismKind, e.Locked), nil
	case puzzle.KindRune:
		return puzzle.NewRune(e.ID, pos), nil
	case puzzle.KindBlock:
		return puzzle.NewBlock(e.ID, pos), nil
	case puzzle.KindPlate:
		return puzzle.NewPlate(e.ID, pos, e.Activated), nil
	case puzzle.KindJewel:
		return puzzle.NewJewel(e.ID, pos, e.Activated), nil
	case puzzle.KindObstacle:
		kind := e.ObstacleKind
		if kind == "" {
			kind = puzzle.ObstaclePillar
		}
		return puzzle.NewObstacle(e.ID, kind, pos, e.Radius), nil
	default:
		return nil, oops.Code("LEVEL_INVALID").
			With("element_id", e.ID).
			Errorf("unknown element type %q", e.Type)
	}
}

// Level is an authored puzzle.
type Level struct {
	ID              int            `yaml:"id" json:"id" jsonschema:"required,minimum=1"`
	Name            string         `yaml:"name" json:"name" jsonschema:"required,minLength=1"`
	Chamber         int            `yaml:"chamber,omitempty" json:"chamber,omitempty" jsonschema:"minimum=0"`
	Mode            Mode           `yaml:"mode" json:"mode" jsonschema:"required,enum=beam,enum=chain"`
	Ripple          bool           `yaml:"ripple,omitempty" json:"ripple,omitempty"`
	MaxMoves        int            `yaml:"max_moves" json:"max_moves" jsonschema:"required,minimum=1"`
	ParMoves        int            `yaml:"par_moves,omitempty" json:"par_moves,omitempty" jsonschema:"minimum=0"`
	RequireFacing   *bool          `yaml:"require_facing,omitempty" json:"require_facing,omitempty"`
	RequiredBeams   int            `yaml:"required_beams,omitempty" json:"required_beams,omitempty" jsonschema:"minimum=0"`
	RequiredChains  int            `yaml:"required_chains,omitempty" json:"required_chains,omitempty" jsonschema:"minimum=0"`
	LightSources    []LightSource  `yaml:"light_sources,omitempty" json:"light_sources,omitempty"`
	TargetPoint     *Point         `yaml:"target,omitempty" json:"target,omitempty"`
	Chain           []string       `yaml:"chain,omitempty" json:"chain,omitempty"`
	SecondaryChains [][]string     `yaml:"secondary_chains,omitempty" json:"secondary_chains,omitempty"`
	Solution        map[string]int `yaml:"solution,omitempty" json:"solution,omitempty"`
	// SolutionPositions holds the solved positions of movable blocks.
	SolutionPositions map[string]Point    `yaml:"solution_positions,omitempty" json:"solution_positions,omitempty"`
	StarThresholds    *scoring.Thresholds `yaml:"star_thresholds,omitempty" json:"star_thresholds,omitempty"`
	Obstacles         []ObstacleSpec      `yaml:"obstacles,omitempty" json:"obstacles,omitempty"`
	Elements          []ElementSpec       `yaml:"elements" json:"elements" jsonschema:"required,minItems=1"`
}

// NewState builds a fresh element state from the authored element list.
func (l *Level) NewState() (*puzzle.State, error) {
	els := make([]puzzle.Element, 0, len(l.Elements))
	for _, spec := range l.Elements {
		el, err := spec.Build()
		if err != nil {
			return nil, oops.With("level_id", l.ID).Wrap(err)
		}
		els = append(els, el)
	}
	return puzzle.NewState(els...), nil
}

// SolvedState builds the initial state and applies the declared solution
// rotations and block positions. Locked prisms keep their rotation.
func (l *Level) SolvedState() (*puzzle.State, error) {
	state, err := l.NewState()
	if err != nil {
		return nil, err
	}
	for id, rot := range l.Solution {
		el, ok := state.Get(id)
		if !ok {
			return nil, oops.Code("LEVEL_INVALID").With("level_id", l.ID).With("element_id", id).
				Errorf("solution references a missing element")
		}
		r, ok := el.(puzzle.Rotatable)
		if !ok {
			return nil, oops.Code("LEVEL_INVALID").With("level_id", l.ID).With("element_id", id).
				Errorf("solution rotates a %s", el.Kind())
		}
		if !r.Locked() {
			r.SetRotation(rot)
		}
	}
	for id, pos := range l.SolutionPositions {
		el, ok := state.Get(id)
		if !ok {
			return nil, oops.Code("LEVEL_INVALID").With("level_id", l.ID).With("element_id", id).
				Errorf("solution references a missing element")
		}
		m, ok := el.(puzzle.Movable)
		if !ok {
			return nil, oops.Code("LEVEL_INVALID").With("level_id", l.ID).With("element_id", id).
				Errorf("solution moves a %s", el.Kind())
		}
		m.Translate(pos.Vec().Sub(el.Position()))
	}
	return state, nil
}

// Target returns the win target: the explicit target when declared, else
// the first rune element.
func (l *Level) Target() (geom.Vec3, bool) {
	if l.TargetPoint != nil {
		return l.TargetPoint.Vec(), true
	}
	for _, e := range l.Elements {
		if e.Type == puzzle.KindRune {
			return e.Position.Vec(), true
		}
	}
	return geom.Vec3{}, false
}

// DeclaredObstacles builds the obstacles declared outside the element list.
func (l *Level) DeclaredObstacles() []puzzle.Occluder {
	out := make([]puzzle.Occluder, 0, len(l.Obstacles))
	for i, o := range l.Obstacles {
		id := o.ID
		if id == "" {
			id = "obstacle-" + strconv.Itoa(i+1)
		}
		out = append(out, puzzle.NewObstacle(id, o.Kind, o.Position.Vec(), o.Radius))
	}
	return out
}

// Chains returns the primary chain followed by the secondary chains.
func (l *Level) Chains() [][]string {
	var out [][]string
	if len(l.Chain) > 0 {
		out = append(out, l.Chain)
	}
	for _, c := range l.SecondaryChains {
		if len(c) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Source is a resolved light source.
type Source struct {
	Index    int
	Position geom.Vec3
	Heading  float64
}

// Sources resolves the declared light sources.
func (l *Level) Sources() []Source {
	out := make([]Source, 0, len(l.LightSources))
	for i, s := range l.LightSources {
		out = append(out, Source{Index: i, Position: s.Position.Vec(), Heading: s.Direction.Degrees})
	}
	return out
}

// RequiresFacing resolves the per-level facing override against def.
func (l *Level) RequiresFacing(def bool) bool {
	if l.RequireFacing != nil {
		return *l.RequireFacing
	}
	return def
}

// Required returns the number of successful beams or chains needed to win,
// of total available. Zero or out-of-range values mean all.
func (l *Level) Required(total int) int {
	n := l.RequiredBeams
	if l.Mode == ModeChain {
		n = l.RequiredChains
	}
	if n <= 0 || n > total {
		return total
	}
	return n
}

// Par returns the move count that earns no efficiency bonus.
func (l *Level) Par() int {
	return scoring.Par(l.ParMoves, l.StarThresholds, l.MaxMoves)
}

// Rate rates a completion in used moves.
func (l *Level) Rate(used int) scoring.Tier {
	return scoring.Rate(used, l.StarThresholds, l.MaxMoves)
}

// Clone returns a deep copy so callers cannot alter a catalog entry.
func (l *Level) Clone() *Level {
	c := *l
	if l.RequireFacing != nil {
		v := *l.RequireFacing
		c.RequireFacing = &v
	}
	if l.TargetPoint != nil {
		p := *l.TargetPoint
		c.TargetPoint = &p
	}
	if l.StarThresholds != nil {
		t := *l.StarThresholds
		c.StarThresholds = &t
	}
	c.LightSources = append([]LightSource(nil), l.LightSources...)
	c.Chain = append([]string(nil), l.Chain...)
	c.SecondaryChains = make([][]string, len(l.SecondaryChains))
	for i, s := range l.SecondaryChains {
		c.SecondaryChains[i] = append([]string(nil), s...)
	}
	if l.Solution != nil {
		c.Solution = make(map[string]int, len(l.Solution))
		for k, v := range l.Solution {
			c.Solution[k] = v
		}
	}
	if l.SolutionPositions != nil {
		c.SolutionPositions = make(map[string]Point, len(l.SolutionPositions))
		for k, v := range l.SolutionPositions {
			c.SolutionPositions[k] = v
		}
	}
	c.Obstacles = append([]ObstacleSpec(nil), l.Obstacles...)
	c.Elements = append([]ElementSpec(nil), l.Elements...)
	return &c
}

// degenerate reports whether a heading is unusable as a beam direction.
func (h Heading) degenerate() bool {
	return h.Degenerate || math.IsNaN(h.Degrees) || math.IsInf(h.Degrees, 0)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package puzzle

import (
	"github.com/holomush/lightwell/internal/geom"
)

// Bonus move grants.
const (
	PlateBonusMoves = 5
	JewelBonusMoves = 2
)

// PrismKind selects how a prism re-emits light.
type PrismKind string

// Prism kinds.
const (
	PrismNormal    PrismKind = "normal"
	PrismSplitter  PrismKind = "splitter"
	PrismMirror    PrismKind = "mirror"
	PrismAmplifier PrismKind = "amplifier"
)

// Valid reports whether k is a known prism kind.
func (k PrismKind) Valid() bool {
	switch k {
	case PrismNormal, PrismSplitter, PrismMirror, PrismAmplifier:
		return true
	}
	return false
}

// Offsets returns the output offsets, relative to the prism rotation.
func (k PrismKind) Offsets() []float64 {
	switch k {
	case PrismSplitter:
		return []float64{-45, 0, 45}
	case PrismMirror:
		return []float64{90}
	default:
		// Amplifiers only differ cosmetically.
		return []float64{0}
	}
}

// ObstacleKind selects the occlusion radius of an obstacle.
type ObstacleKind string

// Obstacle kinds.
const (
	ObstaclePillar  ObstacleKind = "pillar"
	ObstacleWall    ObstacleKind = "wall"
	ObstacleCrystal ObstacleKind = "crystal"
)

// Valid reports whether k is a known obstacle kind.
func (k ObstacleKind) Valid() bool {
	switch k {
	case ObstaclePillar, ObstacleWall, ObstacleCrystal:
		return true
	}
	return false
}

// Radius is the occlusion radius for the kind.
func (k ObstacleKind) Radius() float64 {
	switch k {
	case ObstaclePillar:
		return 0.5
	case ObstacleWall:
		return 1.0
	default:
		return 0.6
	}
}

// Prism redirects light along its rotation.
type Prism struct {
	base
	rotation  int
	prismKind PrismKind
	locked    bool
}

// NewPrism creates a prism. An empty kind means PrismNormal.
func NewPrism(id string, pos geom.Vec3, rotation int, kind PrismKind, locked bool) *Prism {
	if kind == "" {
		kind = PrismNormal
	}
	return &Prism{
		base:      base{id: id, pos: pos},
		rotation:  NormalizeRotation(rotation),
		prismKind: kind,
		locked:    locked,
	}
}

// Kind implements Element.
func (*Prism) Kind() Kind { return KindPrism }

// PrismKind returns the prism sub-variant.
func (p *Prism) PrismKind() PrismKind { return p.prismKind }

// Rotation implements Rotatable.
func (p *Prism) Rotation() int { return p.rotation }

// Locked implements Rotatable.
func (p *Prism) Locked() bool { return p.locked }

// Rotate implements Rotatable.
func (p *Prism) Rotate(direction int) {
	p.rotation = (p.rotation + geom.Step*direction + 360) % 360
}

// SetRotation implements Rotatable.
func (p *Prism) SetRotation(r int) {
	p.rotation = NormalizeRotation(r)
}

// OutputAngles implements Rotatable.
func (p *Prism) OutputAngles() []float64 {
	offsets := p.prismKind.Offsets()
	out := make([]float64, len(offsets))
	for i, off := range offsets {
		out[i] = geom.NormalizeAngle(float64(p.rotation) + off)
	}
	return out
}

// Clone implements Element.
func (p *Prism) Clone() Element {
	c := *p
	return &c
}

// Rune is the target the light must reach.
type Rune struct {
	base
}

// NewRune creates a rune.
func NewRune(id string, pos geom.Vec3) *Rune {
	return &Rune{base: base{id: id, pos: pos}}
}

// Kind implements Element.
func (*Rune) Kind() Kind { return KindRune }

// IsGoal implements GoalMarker.
func (*Rune) IsGoal() bool { return true }

// Clone implements Element.
func (r *Rune) Clone() Element {
	c := *r
	return &c
}

// blockRadius is the half-width of the corridor a block occludes.
const blockRadius = 0.5

// Block is a movable occluder.
type Block struct {
	base
}

// NewBlock creates a block.
func NewBlock(id string, pos geom.Vec3) *Block {
	return &Block{base: base{id: id, pos: pos}}
}

// Kind implements Element.
func (*Block) Kind() Kind { return KindBlock }

// Translate implements Movable.
func (b *Block) Translate(delta geom.Vec3) {
	b.pos = b.pos.Add(delta)
}

// Radius implements Occluder.
func (*Block) Radius() float64 { return blockRadius }

// Clone implements Element.
func (b *Block) Clone() Element {
	c := *b
	return &c
}

// Plate is a pressure plate that restores moves once.
type Plate struct {
	base
	activated bool
}

// NewPlate creates a pressure plate.
func NewPlate(id string, pos geom.Vec3, activated bool) *Plate {
	return &Plate{base: base{id: id, pos: pos}, activated: activated}
}

// Kind implements Element.
func (*Plate) Kind() Kind { return KindPlate }

// Activated implements Activatable.
func (p *Plate) Activated() bool { return p.activated }

// Activate implements Activatable.
func (p *Plate) Activate() bool {
	if p.activated {
		return false
	}
	p.activated = true
	return true
}

// BonusMoves implements Activatable.
func (*Plate) BonusMoves() int { return PlateBonusMoves }

// Clone implements Element.
func (p *Plate) Clone() Element {
	c := *p
	return &c
}

// Jewel is a collectible that grants moves and score once.
type Jewel struct {
	base
	activated bool
}

// NewJewel creates a jewel.
func NewJewel(id string, pos geom.Vec3, activated bool) *Jewel {
	return &Jewel{base: base{id: id, pos: pos}, activated: activated}
}

// Kind implements Element.
func (*Jewel) Kind() Kind { return KindJewel }

// Activated implements Activatable.
func (j *Jewel) Activated() bool { return j.activated }

// Activate implements Activatable.
func (j *Jewel) Activate() bool {
	if j.activated {
		return false
	}
	j.activated = true
	return true
}

// BonusMoves implements Activatable.
func (*Jewel) BonusMoves() int { return JewelBonusMoves }

// Clone implements Element.
func (j *Jewel) Clone() Element {
	c := *j
	return &c
}

// Obstacle is a static occluder such as a pillar or wall.
type Obstacle struct {
	base
	obstacleKind ObstacleKind
	radius       float64
}

// NewObstacle creates an obstacle. A non-positive radius uses the kind default.
func NewObstacle(id string, kind ObstacleKind, pos geom.Vec3, radius float64) *Obstacle {
	if radius <= 0 {
		radius = kind.Radius()
	}
	return &Obstacle{base: base{id: id, pos: pos}, obstacleKind: kind, radius: radius}
}

// Kind implements Element.
func (*Obstacle) Kind() Kind { return KindObstacle }

// ObstacleKind returns the obstacle sub-variant.
func (o *Obstacle) ObstacleKind() ObstacleKind { return o.obstacleKind }

// Radius implements Occluder.
func (o *Obstacle) Radius() float64 { return o.radius }

// Clone implements Element.
func (o *Obstacle) Clone() Element {
	c := *o
	return &c
}

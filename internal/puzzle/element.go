// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package puzzle contains the element model: one concrete type per element
// kind, with capability interfaces used for dispatch instead of field checks.
package puzzle

import (
	"github.com/holomush/lightwell/internal/geom"
)

// Kind identifies the kind of an element.
type Kind string

// Element kinds.
const (
	KindPrism    Kind = "prism"
	KindRune     Kind = "rune"
	KindBlock    Kind = "block"
	KindPlate    Kind = "plate"
	KindJewel    Kind = "jewel"
	KindObstacle Kind = "obstacle"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindPrism, KindRune, KindBlock, KindPlate, KindJewel, KindObstacle:
		return true
	}
	return false
}

// Element is any object placed in a level.
type Element interface {
	ID() string
	Kind() Kind
	Position() geom.Vec3
	// Clone returns a deep copy that shares no mutable state with the receiver.
	Clone() Element
}

// Rotatable elements turn in 45° clicks.
type Rotatable interface {
	Element
	Rotation() int
	// Rotate turns the element by one click in direction (+1 or -1).
	Rotate(direction int)
	// SetRotation snaps r to the nearest click and stores it.
	SetRotation(r int)
	// Locked elements are pre-solved and refuse player rotation.
	Locked() bool
	// OutputAngles returns the headings the element re-emits light along.
	OutputAngles() []float64
}

// Movable elements translate by whole grid units.
type Movable interface {
	Element
	Translate(delta geom.Vec3)
}

// Activatable elements are one-shot bonuses.
type Activatable interface {
	Element
	Activated() bool
	// Activate marks the element used and reports whether it changed.
	Activate() bool
	// BonusMoves is the number of moves granted on activation.
	BonusMoves() int
}

// GoalMarker marks the win target.
type GoalMarker interface {
	Element
	IsGoal() bool
}

// Occluder blocks light passing within Radius of its position.
type Occluder interface {
	ID() string
	Position() geom.Vec3
	Radius() float64
}

// NormalizeRotation reduces r to [0,360) and snaps it to the nearest click.
func NormalizeRotation(r int) int {
	snapped := ((r % 360) + 360) % 360
	rem := snapped % geom.Step
	if rem != 0 {
		if rem*2 >= geom.Step {
			snapped += geom.Step - rem
		} else {
			snapped -= rem
		}
	}
	return snapped % 360
}

// base holds the fields common to every element.
type base struct {
	id  string
	pos geom.Vec3
}

func (b base) ID() string          { return b.id }
func (b base) Position() geom.Vec3 { return b.pos }

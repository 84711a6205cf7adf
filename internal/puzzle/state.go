// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package puzzle

import (
	"github.com/holomush/lightwell/internal/geom"
)

// State is the live, ordered element set of a session.
type State struct {
	elements []Element
	index    map[string]int
}

// NewState builds a state from elements. Elements are cloned so the caller's
// values are never aliased. Later duplicates of an id are dropped.
func NewState(elements ...Element) *State {
	s := &State{
		elements: make([]Element, 0, len(elements)),
		index:    make(map[string]int, len(elements)),
	}
	for _, el := range elements {
		if el == nil {
			continue
		}
		if _, dup := s.index[el.ID()]; dup {
			continue
		}
		s.index[el.ID()] = len(s.elements)
		s.elements = append(s.elements, el.Clone())
	}
	return s
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	// NewState clones each element.
	return NewState(s.elements...)
}

// Len returns the number of elements.
func (s *State) Len() int {
	return len(s.elements)
}

// Elements returns the live elements in authored order. Callers that only
// read may use them directly; mutate through the engine.
func (s *State) Elements() []Element {
	out := make([]Element, len(s.elements))
	copy(out, s.elements)
	return out
}

// Get returns the element with id.
func (s *State) Get(id string) (Element, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.elements[i], true
}

// Prisms returns the rotatable elements in authored order.
func (s *State) Prisms() []Rotatable {
	var out []Rotatable
	for _, el := range s.elements {
		if r, ok := el.(Rotatable); ok {
			out = append(out, r)
		}
	}
	return out
}

// Goal returns the first goal marker, if any.
func (s *State) Goal() (GoalMarker, bool) {
	for _, el := range s.elements {
		if g, ok := el.(GoalMarker); ok && g.IsGoal() {
			return g, true
		}
	}
	return nil, false
}

// Occluders returns the elements that block light, followed by extra.
func (s *State) Occluders(extra ...Occluder) []Occluder {
	var out []Occluder
	for _, el := range s.elements {
		if o, ok := el.(Occluder); ok {
			out = append(out, o)
		}
	}
	return append(out, extra...)
}

// Occupied reports whether an element other than except sits at pos.
func (s *State) Occupied(pos geom.Vec3, except string) bool {
	for _, el := range s.elements {
		if el.ID() == except {
			continue
		}
		if el.Position().PlanarDistance(pos) < geom.Epsilon {
			return true
		}
	}
	return false
}

// Within returns the unlocked rotatable elements whose full three-component
// distance from center is at most radius, excluding the element except.
func (s *State) Within(center geom.Vec3, radius float64, except string) []Rotatable {
	var out []Rotatable
	for _, r := range s.Prisms() {
		if r.ID() == except || r.Locked() {
			continue
		}
		if r.Position().Distance(center) <= radius {
			out = append(out, r)
		}
	}
	return out
}

// Equal reports whether two states hold the same ids with the same observable
// values in the same order.
func (s *State) Equal(o *State) bool {
	if s.Len() != o.Len() {
		return false
	}
	for i, a := range s.elements {
		if !sameElement(a, o.elements[i]) {
			return false
		}
	}
	return true
}

func sameElement(a, b Element) bool {
	if a.ID() != b.ID() || a.Kind() != b.Kind() || a.Position() != b.Position() {
		return false
	}
	switch av := a.(type) {
	case Rotatable:
		bv, ok := b.(Rotatable)
		return ok && av.Rotation() == bv.Rotation() && av.Locked() == bv.Locked()
	case Activatable:
		bv, ok := b.(Activatable)
		return ok && av.Activated() == bv.Activated()
	}
	return true
}

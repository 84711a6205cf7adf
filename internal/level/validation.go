// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package level

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samber/oops"

	"github.com/holomush/lightwell/internal/puzzle"
)

// ValidationError describes one problem with an authored level.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the semantic rules a level must satisfy before the engine
// can load it. All problems are reported, joined, under code LEVEL_INVALID.
func (l *Level) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if l.ID <= 0 {
		add("id", "must be positive, got %d", l.ID)
	}
	if l.Name == "" {
		add("name", "cannot be empty")
	}
	if l.MaxMoves <= 0 {
		add("max_moves", "must be positive, got %d", l.MaxMoves)
	}
	if l.ParMoves < 0 {
		add("par_moves", "cannot be negative")
	}
	switch l.Mode {
	case ModeBeam, ModeChain:
	default:
		add("mode", "must be %q or %q, got %q", ModeBeam, ModeChain, l.Mode)
	}

	byID := make(map[string]ElementSpec, len(l.Elements))
	for i, e := range l.Elements {
		field := fmt.Sprintf("elements[%d]", i)
		if e.ID == "" {
			add(field+".id", "cannot be empty")
			continue
		}
		if _, dup := byID[e.ID]; dup {
			add(field+".id", "duplicate element id %q", e.ID)
			continue
		}
		byID[e.ID] = e
		if !e.Type.Valid() {
			add(field+".type", "unknown element type %q", e.Type)
		}
		if e.Type == puzzle.KindPrism {
			if !validRotation(e.Rotation) {
				add(field+".rotation", "must be a multiple of 45 in [0,360), got %d", e.Rotation)
			}
			if e.PrismKind != "" && !e.PrismKind.Valid() {
				add(field+".prism_kind", "unknown prism kind %q", e.PrismKind)
			}
		}
		if e.Type == puzzle.KindObstacle && e.ObstacleKind != "" && !e.ObstacleKind.Valid() {
			add(field+".obstacle_kind", "unknown obstacle kind %q", e.ObstacleKind)
		}
		if e.Radius < 0 {
			add(field+".radius", "cannot be negative")
		}
	}

	for i, o := range l.Obstacles {
		if !o.Kind.Valid() {
			add(fmt.Sprintf("obstacles[%d].kind", i), "unknown obstacle kind %q", o.Kind)
		}
		if o.Radius < 0 {
			add(fmt.Sprintf("obstacles[%d].radius", i), "cannot be negative")
		}
	}

	if _, ok := l.Target(); !ok {
		add("target", "level needs a target or a rune element")
	}

	switch l.Mode {
	case ModeBeam:
		if len(l.LightSources) == 0 {
			add("light_sources", "beam levels need at least one light source")
		}
		for i, s := range l.LightSources {
			if s.Direction.degenerate() {
				add(fmt.Sprintf("light_sources[%d].direction", i), "direction has no horizontal extent")
			}
		}
		if l.RequiredBeams < 0 || l.RequiredBeams > len(l.LightSources) {
			add("required_beams", "must be between 0 and %d, got %d", len(l.LightSources), l.RequiredBeams)
		}
	case ModeChain:
		if len(l.Chain) == 0 {
			add("chain", "chain levels need a chain")
		}
		chains := l.Chains()
		for ci, c := range chains {
			field := "chain"
			if ci > 0 {
				field = fmt.Sprintf("secondary_chains[%d]", ci-1)
			}
			for j, id := range c {
				e, ok := byID[id]
				switch {
				case !ok:
					add(fmt.Sprintf("%s[%d]", field, j), "references unknown element %q", id)
				case e.Type != puzzle.KindPrism:
					add(fmt.Sprintf("%s[%d]", field, j), "element %q is a %s, not a prism", id, e.Type)
				}
			}
		}
		if l.RequiredChains < 0 || l.RequiredChains > len(chains) {
			add("required_chains", "must be between 0 and %d, got %d", len(chains), l.RequiredChains)
		}
	}

	if t := l.StarThresholds; t != nil {
		bronze := t.Bronze
		if bronze == 0 {
			bronze = l.MaxMoves
		}
		if t.Gold <= 0 {
			add("star_thresholds.gold", "must be positive")
		}
		if t.Gold > t.Silver || t.Silver > bronze || bronze > l.MaxMoves {
			add("star_thresholds", "must satisfy gold <= silver <= bronze <= max_moves, got %d/%d/%d of %d",
				t.Gold, t.Silver, bronze, l.MaxMoves)
		}
	}

	keys := make([]string, 0, len(l.Solution))
	for k := range l.Solution {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, id := range keys {
		field := "solution." + id
		e, ok := byID[id]
		switch {
		case !ok:
			add(field, "references unknown element %q", id)
		case e.Type != puzzle.KindPrism:
			add(field, "element %q is not a prism", id)
		}
		if !validRotation(l.Solution[id]) {
			add(field, "must be a multiple of 45 in [0,360), got %d", l.Solution[id])
		}
	}

	keys = keys[:0]
	for k := range l.SolutionPositions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, id := range keys {
		e, ok := byID[id]
		switch {
		case !ok:
			add("solution_positions."+id, "references unknown element %q", id)
		case e.Type != puzzle.KindBlock:
			add("solution_positions."+id, "element %q is not a block", id)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return oops.Code("LEVEL_INVALID").
		With("level_id", l.ID).
		With("problems", len(errs)).
		Wrap(errors.Join(errs...))
}

func validRotation(r int) bool {
	return r >= 0 && r < 360 && r%45 == 0
}

// ValidationErrors extracts the individual problems from a Validate error.
func ValidationErrors(err error) []*ValidationError {
	var out []*ValidationError
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if ve, ok := e.(*ValidationError); ok {
			out = append(out, ve)
			return
		}
		if j, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range j.Unwrap() {
				walk(inner)
			}
			return
		}
		walk(errors.Unwrap(e))
	}
	walk(err)
	return out
}

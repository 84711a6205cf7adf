// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package chain validates authored element chains: every prism in the chain
// must aim at its successor, and the last one at the target.
package chain

import (
	"log/slog"

	"github.com/holomush/lightwell/internal/geom"
	"github.com/holomush/lightwell/internal/puzzle"
)

// TargetID names the final target in link reports.
const TargetID = "target"

// Fault explains why a link is not satisfied.
type Fault string

// Link faults.
const (
	FaultNone       Fault = ""
	FaultMissing    Fault = "missing"
	FaultNotPrism   Fault = "not_prism"
	FaultMisaligned Fault = "misaligned"
	FaultOccluded   Fault = "occluded"
	FaultDegenerate Fault = "degenerate"
	FaultNoTarget   Fault = "no_target"
)

// Link is the evaluation of one consecutive pair.
type Link struct {
	From      string
	To        string
	Required  float64
	Satisfied bool
	Fault     Fault
	// Blocker is the occluder id when Fault is FaultOccluded.
	Blocker string
}

// Result is the evaluation of a whole chain.
type Result struct {
	Valid bool
	Links []Link
	// Powered holds the chain elements light reaches, in order up to the
	// first broken link.
	Powered map[string]bool
	// BrokenAt is the index of the first unsatisfied link, or -1.
	BrokenAt int
}

// Validator checks chains against the live element state.
type Validator struct {
	tolerance float64
	logger    *slog.Logger
}

// NewValidator creates a validator. A non-positive tolerance uses
// geom.DefaultTolerance; a nil logger uses slog.Default().
func NewValidator(tolerance float64, logger *slog.Logger) *Validator {
	if tolerance <= 0 {
		tolerance = geom.DefaultTolerance
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{tolerance: tolerance, logger: logger}
}

// Validate evaluates chain in order. final is the position the last element
// must aim at; nil means the level has no target and the chain cannot
// complete. Every link is evaluated for reporting, but power stops at the
// first broken link.
func (v *Validator) Validate(chain []string, state *puzzle.State, final *geom.Vec3, occluders []puzzle.Occluder) Result {
	res := Result{Powered: make(map[string]bool), BrokenAt: -1}
	if len(chain) == 0 || state == nil {
		return res
	}

	resolve := func(i int, id string) (puzzle.Rotatable, Fault) {
		el, ok := state.Get(id)
		if !ok {
			v.logger.Warn("chain references missing element", "element_id", id, "index", i)
			return nil, FaultMissing
		}
		r, ok := el.(puzzle.Rotatable)
		if !ok {
			v.logger.Warn("chain references non-prism element", "element_id", id, "kind", el.Kind().String(), "index", i)
			return nil, FaultNotPrism
		}
		return r, FaultNone
	}

	first, fault := resolve(0, chain[0])
	if fault == FaultNone {
		res.Powered[first.ID()] = true
	}

	for i, id := range chain {
		link := Link{From: id}
		cur, curFault := resolve(i, id)

		var (
			nextPos   geom.Vec3
			nextFault Fault
		)
		if i+1 < len(chain) {
			link.To = chain[i+1]
			next, f := resolve(i+1, chain[i+1])
			nextFault = f
			if f == FaultNone {
				nextPos = next.Position()
			}
		} else {
			link.To = TargetID
			if final == nil {
				v.logger.Warn("chain has no target", "element_id", id)
				nextFault = FaultNoTarget
			} else {
				nextPos = *final
			}
		}

		switch {
		case curFault != FaultNone:
			link.Fault = curFault
		case nextFault != FaultNone:
			link.Fault = nextFault
		case cur.Position().PlanarDistance(nextPos) < geom.Epsilon:
			link.Fault = FaultDegenerate
		default:
			link.Required = geom.AngleBetween(cur.Position(), nextPos)
			switch {
			case !v.aims(cur, link.Required):
				link.Fault = FaultMisaligned
			default:
				if blocker := occludedBy(cur.Position(), nextPos, occluders, id, link.To); blocker != "" {
					link.Fault = FaultOccluded
					link.Blocker = blocker
				}
			}
		}
		link.Satisfied = link.Fault == FaultNone

		if link.Satisfied && res.BrokenAt < 0 && link.To != TargetID {
			res.Powered[link.To] = true
		}
		if !link.Satisfied && res.BrokenAt < 0 {
			res.BrokenAt = i
		}
		res.Links = append(res.Links, link)
	}

	res.Valid = res.BrokenAt < 0
	return res
}

// IsChainValid reports whether every link of chain is satisfied.
func (v *Validator) IsChainValid(chain []string, state *puzzle.State, final *geom.Vec3, occluders []puzzle.Occluder) bool {
	return v.Validate(chain, state, final, occluders).Valid
}

// ValidateAll evaluates each chain independently.
func (v *Validator) ValidateAll(chains [][]string, state *puzzle.State, final *geom.Vec3, occluders []puzzle.Occluder) []Result {
	out := make([]Result, 0, len(chains))
	for _, c := range chains {
		out = append(out, v.Validate(c, state, final, occluders))
	}
	return out
}

// CountValid returns how many results are valid.
func CountValid(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Valid {
			n++
		}
	}
	return n
}

// PoweredUnion merges the powered sets of several results.
func PoweredUnion(results []Result) map[string]bool {
	out := make(map[string]bool)
	for _, r := range results {
		for id := range r.Powered {
			out[id] = true
		}
	}
	return out
}

func (v *Validator) aims(r puzzle.Rotatable, required float64) bool {
	for _, out := range r.OutputAngles() {
		if geom.AnglesMatch(out, required, v.tolerance) {
			return true
		}
	}
	return false
}

// occludedBy returns the id of the first occluder touching the segment,
// ignoring occluders that are the link's own endpoints.
func occludedBy(from, to geom.Vec3, occluders []puzzle.Occluder, fromID, toID string) string {
	for _, o := range occluders {
		if o.ID() == fromID || o.ID() == toID {
			continue
		}
		if geom.SegmentCircleIntersect(from, to, o.Position(), o.Radius()) {
			return o.ID()
		}
	}
	return ""
}

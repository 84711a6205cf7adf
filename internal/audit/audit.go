// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package audit verifies authored levels: it applies each level's declared
// solution and checks it with the same evaluator play uses, then reports
// link angles, click counts and move-budget problems.
package audit

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/holomush/lightwell/internal/chain"
	"github.com/holomush/lightwell/internal/geom"
	"github.com/holomush/lightwell/internal/level"
	"github.com/holomush/lightwell/internal/puzzle"
	"github.com/holomush/lightwell/internal/wincond"
)

// Severity grades a finding.
type Severity string

// Finding severities. Errors fail validation; warnings do not.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one problem with a level.
type Finding struct {
	Severity  Severity
	ElementID string
	Message   string
}

func (f Finding) String() string {
	if f.ElementID == "" {
		return fmt.Sprintf("%s: %s", f.Severity, f.Message)
	}
	return fmt.Sprintf("%s: %s: %s", f.Severity, f.ElementID, f.Message)
}

// LinkReport describes one chain link under the declared solution.
type LinkReport struct {
	chain.Link
	Chain int
	// Solution is the rotation the solution gives the link's source.
	Solution int
	Locked   bool
}

// Report is the audit of one level.
type Report struct {
	LevelID int
	Name    string
	Links   []LinkReport
	// Clicks is the sum of shortest click counts from each prism's initial
	// rotation to its solution rotation.
	Clicks int
	// BlockSteps is the number of unit moves the solution positions need.
	BlockSteps    int
	SolvedAtStart bool
	Solved        bool
	Findings      []Finding
}

// OK reports whether the report has no error findings.
func (r Report) OK() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Errors returns the error findings.
func (r Report) Errors() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// Auditor audits levels with fixed evaluator options.
type Auditor struct {
	opts   wincond.Options
	logger *slog.Logger
}

// New creates an auditor. A nil logger uses slog.Default().
func New(opts wincond.Options, logger *slog.Logger) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	opts.Logger = logger
	return &Auditor{opts: opts, logger: logger}
}

// Catalog audits every level of cat in id order.
func (a *Auditor) Catalog(cat *level.Catalog) []Report {
	levels := cat.All()
	out := make([]Report, 0, len(levels))
	for _, lvl := range levels {
		out = append(out, a.Level(lvl))
	}
	return out
}

// Level audits one level.
func (a *Auditor) Level(lvl *level.Level) Report {
	rep := Report{LevelID: lvl.ID, Name: lvl.Name}
	add := func(sev Severity, id, format string, args ...any) {
		rep.Findings = append(rep.Findings, Finding{Severity: sev, ElementID: id, Message: fmt.Sprintf(format, args...)})
	}

	initial, err := lvl.NewState()
	if err != nil {
		add(SeverityError, "", "elements do not build: %v", err)
		return rep
	}
	eval := wincond.For(lvl, a.opts)
	rep.SolvedAtStart = eval.Evaluate(initial).Complete
	if rep.SolvedAtStart {
		add(SeverityError, "", "level is already solved at start")
	}

	if len(lvl.Solution) == 0 && len(lvl.SolutionPositions) == 0 {
		add(SeverityWarning, "", "no solution declared")
		return rep
	}

	solved := initial.Clone()
	for _, id := range sortedKeys(lvl.Solution) {
		want := lvl.Solution[id]
		el, ok := solved.Get(id)
		if !ok {
			add(SeverityError, id, "solution references a missing element")
			continue
		}
		r, ok := el.(puzzle.Rotatable)
		if !ok {
			add(SeverityError, id, "solution rotates a %s", el.Kind())
			continue
		}
		if r.Locked() {
			if r.Rotation() != want {
				add(SeverityError, id, "locked prism is fixed at %d but the solution needs %d", r.Rotation(), want)
			}
			continue
		}
		rep.Clicks += geom.ClicksBetween(float64(r.Rotation()), float64(want))
		r.SetRotation(want)
	}
	for _, id := range sortedKeys(lvl.SolutionPositions) {
		el, ok := solved.Get(id)
		if !ok {
			add(SeverityError, id, "solution references a missing element")
			continue
		}
		m, ok := el.(puzzle.Movable)
		if !ok {
			add(SeverityError, id, "solution moves a %s", el.Kind())
			continue
		}
		delta := lvl.SolutionPositions[id].Vec().Sub(el.Position())
		rep.BlockSteps += int(math.Round(math.Abs(delta.X) + math.Abs(delta.Z)))
		m.Translate(delta)
	}

	out := eval.Evaluate(solved)
	rep.Solved = out.Complete
	if !rep.Solved {
		add(SeverityError, "", "declared solution does not complete the level (%d of %d satisfied)", out.Satisfied, out.Required)
	}

	for ci, res := range out.Chains {
		for _, l := range res.Links {
			lr := LinkReport{Link: l, Chain: ci}
			if el, ok := solved.Get(l.From); ok {
				if r, ok := el.(puzzle.Rotatable); ok {
					lr.Solution = r.Rotation()
					lr.Locked = r.Locked()
				}
			}
			rep.Links = append(rep.Links, lr)
			if !l.Satisfied {
				sev := SeverityError
				if rep.Solved {
					sev = SeverityWarning
				}
				add(sev, l.From, "link to %s is not satisfied: %s", l.To, l.Fault)
			}
		}
	}

	needed := rep.Clicks + rep.BlockSteps
	// Ripple rotations turn several prisms per click, so click sums only
	// bound the move count from above.
	sev := SeverityError
	if lvl.Ripple {
		sev = SeverityWarning
	}
	if needed > lvl.MaxMoves {
		add(sev, "", "solution needs %d moves but max_moves is %d", needed, lvl.MaxMoves)
	}
	if t := lvl.StarThresholds; t != nil && !lvl.Ripple && needed > t.Gold {
		add(SeverityWarning, "", "gold threshold %d is below the %d moves the solution needs", t.Gold, needed)
	}

	if !rep.OK() {
		a.logger.Warn("level audit failed", "level_id", lvl.ID, "problems", len(rep.Errors()))
	}
	return rep
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/holomush/lightwell/internal/engine"
	"github.com/holomush/lightwell/internal/geom"
	"github.com/holomush/lightwell/internal/level"
	"github.com/holomush/lightwell/internal/puzzle"
	"github.com/holomush/lightwell/internal/scoring"
	"github.com/holomush/lightwell/internal/wincond"
)

func point(v geom.Vec3) string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Z)
}

// RenderStatus writes the one-line move counter for snap.
func RenderStatus(w io.Writer, snap engine.Snapshot) {
	if snap.LevelID == 0 {
		fmt.Fprintln(w, "No level loaded.")
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Moves left %d (used %d)", snap.MovesRemaining, snap.MovesUsed)
	if snap.BonusMoves > 0 {
		fmt.Fprintf(&b, ", +%d bonus", snap.BonusMoves)
	}
	fmt.Fprintf(&b, ", %d of %d lit", snap.Outcome.Satisfied, snap.Outcome.Required)
	switch snap.Phase {
	case engine.PhaseComplete:
		fmt.Fprintf(&b, ". Solved: %s, score %d", snap.Tier, snap.Score)
	case engine.PhaseFailed:
		b.WriteString(". Out of moves")
	}
	fmt.Fprintln(w, b.String())
}

// RenderBoard writes the level header and every element.
func RenderBoard(w io.Writer, snap engine.Snapshot) {
	if snap.LevelID == 0 {
		fmt.Fprintln(w, "No level loaded.")
		return
	}
	variant := string(snap.Mode)
	if snap.Ripple {
		variant += ", ripple"
	}
	fmt.Fprintf(w, "Level %d: %s [%s]\n", snap.LevelID, snap.LevelName, variant)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, el := range snap.Elements {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", el.ID(), el.Kind(), point(el.Position()), describe(el, snap.Outcome))
	}
	_ = tw.Flush() //nolint:errcheck // display is best-effort
	RenderStatus(w, snap)
}

func describe(el puzzle.Element, out wincond.Outcome) string {
	var parts []string
	switch e := el.(type) {
	case puzzle.Rotatable:
		parts = append(parts, fmt.Sprintf("rot %d", e.Rotation()))
		if p, ok := el.(*puzzle.Prism); ok && p.PrismKind() != puzzle.PrismNormal && p.PrismKind() != "" {
			parts = append(parts, string(p.PrismKind()))
		}
		if e.Locked() {
			parts = append(parts, "locked")
		}
	case puzzle.Activatable:
		if e.Activated() {
			parts = append(parts, "collected")
		} else {
			parts = append(parts, fmt.Sprintf("+%d moves", e.BonusMoves()))
		}
	}
	if out.Powered[el.ID()] {
		parts = append(parts, "powered")
	} else if out.Lit[el.ID()] {
		parts = append(parts, "lit")
	}
	return strings.Join(parts, ", ")
}

// RenderTrace writes beam segments in beam mode or chain links in chain mode.
func RenderTrace(w io.Writer, out wincond.Outcome) {
	if out.Mode == level.ModeChain {
		for ci, res := range out.Chains {
			state := "broken"
			if res.Valid {
				state = "valid"
			}
			fmt.Fprintf(w, "Chain %d: %s\n", ci, state)
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			for _, l := range res.Links {
				status := "ok"
				if !l.Satisfied {
					status = string(l.Fault)
					if l.Blocker != "" {
						status += " by " + l.Blocker
					}
				}
				fmt.Fprintf(tw, "  %s -> %s\tneeds %g\t%s\n", l.From, l.To, l.Required, status)
			}
			_ = tw.Flush() //nolint:errcheck // display is best-effort
		}
		return
	}

	for _, res := range out.Beams {
		verdict := "misses the target"
		if res.ReachesTarget {
			verdict = "reaches the target"
		}
		fmt.Fprintf(w, "Beam %d from %s heading %g: %s\n", res.Source.Index, point(res.Source.Position), res.Source.Heading, verdict)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, seg := range res.Segments {
			end := seg.ElementID
			switch {
			case seg.HitsTarget:
				end = "target"
			case seg.Blocked:
				end += " (blocked)"
			case end == "":
				end = "-"
			}
			fmt.Fprintf(tw, "  [%d]\t%s -> %s\t%s\n", seg.Branch, point(seg.From), point(seg.To), end)
		}
		_ = tw.Flush() //nolint:errcheck // display is best-effort
		for _, br := range res.Branches {
			fmt.Fprintf(w, "  branch %d stopped: %s after %d bounces\n", br.ID, br.Stop, br.Bounces)
		}
	}
}

// RenderLevels writes the catalog with stored progress.
func RenderLevels(w io.Writer, levels []*level.Level, records map[int]scoring.Record) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCHAMBER\tMODE\tMAX\tBEST")
	for _, lvl := range levels {
		mode := string(lvl.Mode)
		if lvl.Ripple {
			mode += "+ripple"
		}
		best := "-"
		if rec, ok := records[lvl.ID]; ok && rec.Completed {
			best = fmt.Sprintf("%d (%s, %d)", rec.BestMoves, rec.Tier, rec.Score)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%d\t%s\n", lvl.ID, lvl.Name, lvl.Chamber, mode, lvl.MaxMoves, best)
	}
	_ = tw.Flush() //nolint:errcheck // display is best-effort
}

// RenderTotals writes cumulative progress.
func RenderTotals(w io.Writer, t scoring.Totals) {
	fmt.Fprintf(w, "Completed %d, jewels %d, score %d\n", t.LevelsCompleted, t.TotalJewels, t.TotalScore)
}

type helpEntry struct {
	name, usage, text string
}

var helpEntries = []helpEntry{
	{"rotate", "rotate ID [cw|ccw]", "Turn a prism 45 degrees. Costs one move."},
	{"move", "move ID +x|-x|+z|-z", "Slide a block one unit. Costs one move."},
	{"activate", "activate ID", "Collect a pressure plate or jewel. Free."},
	{"undo", "undo", "Take back the last move. Collected bonuses stay collected."},
	{"restart", "restart", "Reset the level."},
	{"next", "next", "Go to the next level."},
	{"load", "load N", "Go to level N."},
	{"show", "show", "Describe the board."},
	{"beams", "beams", "Show beam paths or chain links."},
	{"levels", "levels", "List levels and your best results."},
	{"help", "help [COMMAND]", "Show help."},
	{"quit", "quit", "Leave the game."},
}

// RenderHelp writes the command list, or the entry for topic.
func RenderHelp(w io.Writer, topic string) {
	topic = strings.ToLower(topic)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer func() { _ = tw.Flush() }() //nolint:errcheck // display is best-effort
	for _, e := range helpEntries {
		if topic == "" || topic == e.name {
			fmt.Fprintf(tw, "%s\t%s\n", e.usage, e.text)
		}
	}
	if topic != "" && !knownTopic(topic) {
		fmt.Fprintf(tw, "No help for %q.\n", topic)
	}
}

func knownTopic(topic string) bool {
	for _, e := range helpEntries {
		if e.name == topic {
			return true
		}
	}
	return false
}

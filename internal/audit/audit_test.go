// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package audit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/lightwell/internal/level"
	"github.com/holomush/lightwell/internal/puzzle"
	"github.com/holomush/lightwell/internal/wincond"
)

func builtin(t *testing.T, id int) *level.Level {
	t.Helper()
	cat, err := level.Default()
	require.NoError(t, err)
	lvl, err := cat.Get(id)
	require.NoError(t, err)
	return lvl
}

func hasFinding(r Report, sev Severity, fragment string) bool {
	for _, f := range r.Findings {
		if f.Severity == sev && strings.Contains(f.Message, fragment) {
			return true
		}
	}
	return false
}

func TestCatalog_BuiltinLevelsAreSolvable(t *testing.T) {
	cat, err := level.Default()
	require.NoError(t, err)

	reports := New(wincond.DefaultOptions(), nil).Catalog(cat)
	require.Len(t, reports, cat.Len())
	for _, r := range reports {
		assert.True(t, r.OK(), "level %d %s: %v", r.LevelID, r.Name, r.Findings)
		assert.True(t, r.Solved, "level %d", r.LevelID)
		assert.False(t, r.SolvedAtStart, "level %d", r.LevelID)

		lvl, err := cat.Get(r.LevelID)
		require.NoError(t, err)
		if !lvl.Ripple {
			assert.Empty(t, r.Findings, "level %d", r.LevelID)
			assert.LessOrEqual(t, r.Clicks+r.BlockSteps, lvl.MaxMoves)
		}
	}
}

func TestLevel_ChainLinks(t *testing.T) {
	r := New(wincond.DefaultOptions(), nil).Level(builtin(t, 11))

	require.Len(t, r.Links, 5, "three primary links and two secondary")
	for _, l := range r.Links {
		assert.True(t, l.Satisfied, "%s -> %s", l.From, l.To)
	}
	assert.Equal(t, 1, r.Links[3].Chain)
	assert.Equal(t, "prism2", r.Links[3].From)
	assert.InDelta(t, 135, r.Links[3].Required, 1e-9)
	assert.Equal(t, 135, r.Links[3].Solution)
	assert.Equal(t, 9, r.Clicks)
}

func TestLevel_ClicksAndBlockSteps(t *testing.T) {
	r := New(wincond.DefaultOptions(), nil).Level(builtin(t, 12))
	assert.Equal(t, 2, r.Clicks)
	assert.Equal(t, 1, r.BlockSteps)
	assert.Empty(t, r.Links)
}

func TestLevel_Problems(t *testing.T) {
	a := New(wincond.DefaultOptions(), nil)

	t.Run("wrong solution", func(t *testing.T) {
		lvl := builtin(t, 1)
		lvl.Solution["prism2"] = 45
		r := a.Level(lvl)
		assert.False(t, r.OK())
		assert.False(t, r.Solved)
		assert.True(t, hasFinding(r, SeverityError, "does not complete"))
		assert.True(t, hasFinding(r, SeverityError, "misaligned"))
	})

	t.Run("locked prism disagrees", func(t *testing.T) {
		lvl := builtin(t, 2)
		lvl.Solution["prism1"] = 0
		r := a.Level(lvl)
		assert.True(t, hasFinding(r, SeverityError, "locked prism is fixed at 90"))
	})

	t.Run("over budget", func(t *testing.T) {
		lvl := builtin(t, 5)
		lvl.MaxMoves = 8
		lvl.StarThresholds = nil
		r := a.Level(lvl)
		assert.True(t, hasFinding(r, SeverityError, "needs 9 moves but max_moves is 8"))
	})

	t.Run("gold out of reach", func(t *testing.T) {
		lvl := builtin(t, 1)
		lvl.StarThresholds.Gold = 3
		r := a.Level(lvl)
		assert.True(t, r.OK())
		assert.True(t, hasFinding(r, SeverityWarning, "gold threshold 3"))
	})

	t.Run("ripple budgets only warn", func(t *testing.T) {
		lvl := builtin(t, 7)
		lvl.MaxMoves = 3
		r := a.Level(lvl)
		assert.True(t, r.OK())
		assert.True(t, hasFinding(r, SeverityWarning, "max_moves is 3"))
	})

	t.Run("solved at start", func(t *testing.T) {
		lvl := builtin(t, 1)
		for i := range lvl.Elements {
			if lvl.Elements[i].Type == puzzle.KindPrism {
				lvl.Elements[i].Rotation = 90
			}
		}
		r := a.Level(lvl)
		assert.True(t, r.SolvedAtStart)
		assert.True(t, hasFinding(r, SeverityError, "already solved"))
	})

	t.Run("no solution", func(t *testing.T) {
		lvl := builtin(t, 1)
		lvl.Solution = nil
		r := a.Level(lvl)
		assert.True(t, r.OK())
		assert.True(t, hasFinding(r, SeverityWarning, "no solution"))
	})

	t.Run("solution moves a prism", func(t *testing.T) {
		lvl := builtin(t, 12)
		lvl.SolutionPositions["prism1"] = level.Point{0, 0, 1}
		r := a.Level(lvl)
		assert.True(t, hasFinding(r, SeverityError, "solution moves a prism"))
	})
}

func TestFinding_String(t *testing.T) {
	assert.Equal(t, "error: p1: off", Finding{Severity: SeverityError, ElementID: "p1", Message: "off"}.String())
	assert.Equal(t, "warning: off", Finding{Severity: SeverityWarning, Message: "off"}.String())
}

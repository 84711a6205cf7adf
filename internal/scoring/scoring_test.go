// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRate(t *testing.T) {
	th := &Thresholds{Gold: 2, Silver: 4, Bronze: 6}
	tests := []struct {
		used int
		want Tier
	}{
		{0, TierGold},
		{2, TierGold},
		{3, TierSilver},
		{4, TierSilver},
		{5, TierBronze},
		{6, TierBronze},
		{7, TierBronze},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Rate(tt.used, th, 10), "Rate(%d)", tt.used)
	}
}

func TestRate_BronzeDefaultsToMaxMoves(t *testing.T) {
	th := &Thresholds{Gold: 2, Silver: 4}
	assert.Equal(t, TierBronze, Rate(8, th, 8))
	assert.Equal(t, TierBronze, Rate(9, th, 8), "clamped")
	assert.Equal(t, TierBronze, Rate(1, nil, 8))
}

func TestTier(t *testing.T) {
	assert.Equal(t, 0, TierNone.Rank())
	assert.Equal(t, 3, TierGold.Rank())
	assert.True(t, TierSilver.Better(TierBronze))
	assert.False(t, TierSilver.Better(TierSilver))
	assert.Equal(t, TierGold, ParseTier(" Gold "))
	assert.Equal(t, TierNone, ParseTier("platinum"))
	assert.Equal(t, "none", Tier("").String())
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		want int
	}{
		{"at par", Params{MovesUsed: 6, ParMoves: 6}, 1000},
		{"under par", Params{MovesUsed: 4, ParMoves: 6}, 1200},
		{"over par", Params{MovesUsed: 9, ParMoves: 6}, 1000},
		{"jewels", Params{MovesUsed: 5, ParMoves: 6, JewelsCollected: 2}, 1200},
		{"no par", Params{MovesUsed: 5}, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.p))
		})
	}
}

func TestPar(t *testing.T) {
	assert.Equal(t, 3, Par(3, &Thresholds{Gold: 1, Silver: 5}, 10))
	assert.Equal(t, 5, Par(0, &Thresholds{Gold: 1, Silver: 5}, 10))
	assert.Equal(t, 10, Par(0, nil, 10))
}

func TestMerge_Monotonic(t *testing.T) {
	first := Record{LevelID: 1, Completed: true, BestMoves: 6, Tier: TierSilver, Score: 1000}

	got := Merge(Record{LevelID: 1}, first)
	assert.Equal(t, first, got, "first completion replaces empty record")

	worse := Record{LevelID: 1, Completed: true, BestMoves: 9, Tier: TierBronze, Score: 900}
	assert.Equal(t, first, Merge(first, worse))

	mixed := Record{LevelID: 1, Completed: true, BestMoves: 4, Tier: TierBronze, Score: 1100}
	got = Merge(first, mixed)
	assert.Equal(t, 4, got.BestMoves)
	assert.Equal(t, TierSilver, got.Tier)
	assert.Equal(t, 1100, got.Score)

	assert.Equal(t, first, Merge(first, Record{LevelID: 1}), "incomplete result ignored")
}

func TestSummarize(t *testing.T) {
	recs := []Record{
		{LevelID: 2, Completed: true, BestMoves: 3, Tier: TierGold, Score: 1300},
		{LevelID: 1, Completed: true, BestMoves: 6, Tier: TierBronze, Score: 1000},
		{LevelID: 3, Completed: false, Tier: TierNone},
	}
	tot := Summarize(recs)
	assert.Equal(t, Totals{LevelsCompleted: 2, TotalJewels: 4, TotalScore: 2300}, tot)

	SortByLevel(recs)
	assert.Equal(t, []int{1, 2, 3}, []int{recs[0].LevelID, recs[1].LevelID, recs[2].LevelID})
}

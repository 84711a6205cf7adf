// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package scoring

import "sort"

// Record is the best result achieved on one level.
type Record struct {
	LevelID   int  `yaml:"level_id" json:"level_id"`
	Completed bool `yaml:"completed" json:"completed"`
	BestMoves int  `yaml:"best_moves" json:"best_moves"`
	Tier      Tier `yaml:"tier" json:"tier"`
	Score     int  `yaml:"score" json:"score"`
}

// Merge combines an existing record with a new result. Each field only ever
// improves: fewer moves, higher tier, higher score.
func Merge(prev, next Record) Record {
	if !prev.Completed {
		if next.Tier == "" {
			next.Tier = TierNone
		}
		return next
	}
	if !next.Completed {
		return prev
	}
	out := prev
	if next.BestMoves < out.BestMoves {
		out.BestMoves = next.BestMoves
	}
	if next.Tier.Better(out.Tier) {
		out.Tier = next.Tier
	}
	if next.Score > out.Score {
		out.Score = next.Score
	}
	return out
}

// Totals are cumulative figures across levels.
type Totals struct {
	LevelsCompleted int `yaml:"levels_completed" json:"levels_completed"`
	TotalJewels     int `yaml:"total_jewels" json:"total_jewels"`
	TotalScore      int `yaml:"total_score" json:"total_score"`
}

// Summarize totals completed records: jewels are the sum of tier ranks and
// score is the sum of best scores.
func Summarize(records []Record) Totals {
	var t Totals
	for _, r := range records {
		if !r.Completed {
			continue
		}
		t.LevelsCompleted++
		t.TotalJewels += r.Tier.Rank()
		t.TotalScore += r.Score
	}
	return t
}

// SortByLevel orders records by level id.
func SortByLevel(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].LevelID < records[j].LevelID
	})
}

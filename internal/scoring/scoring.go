// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package scoring converts moves used into completion tiers and numeric
// scores, and merges results into cross-level best records.
package scoring

import (
	"log/slog"
	"strings"
)

// Score constants.
const (
	BaseScore       = 1000
	EfficiencyBonus = 100
	JewelBonus      = 50
)

// Tier is a discrete completion rating.
type Tier string

// Tiers, lowest first.
const (
	TierNone   Tier = "none"
	TierBronze Tier = "bronze"
	TierSilver Tier = "silver"
	TierGold   Tier = "gold"
)

// Rank orders tiers: none 0, bronze 1, silver 2, gold 3.
func (t Tier) Rank() int {
	switch t {
	case TierBronze:
		return 1
	case TierSilver:
		return 2
	case TierGold:
		return 3
	default:
		return 0
	}
}

// Better reports whether t ranks strictly above o.
func (t Tier) Better(o Tier) bool {
	return t.Rank() > o.Rank()
}

// String returns the string representation of the tier.
func (t Tier) String() string {
	if t == "" {
		return string(TierNone)
	}
	return string(t)
}

// ParseTier parses a tier name. Unknown names yield TierNone.
func ParseTier(s string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierBronze:
		return TierBronze
	case TierSilver:
		return TierSilver
	case TierGold:
		return TierGold
	default:
		return TierNone
	}
}

// Thresholds are inclusive move counts per tier. A zero Bronze means the
// level's max moves.
type Thresholds struct {
	Gold   int `yaml:"gold" json:"gold" jsonschema:"required,minimum=1"`
	Silver int `yaml:"silver" json:"silver" jsonschema:"required,minimum=1"`
	Bronze int `yaml:"bronze,omitempty" json:"bronze,omitempty" jsonschema:"minimum=1"`
}

// Rate returns the tier earned by completing in used moves. A completed level
// never rates below bronze: counts beyond the bronze threshold clamp to
// bronze and log a warning. Nil thresholds rate bronze.
func Rate(used int, t *Thresholds, maxMoves int) Tier {
	if t == nil {
		return TierBronze
	}
	bronze := t.Bronze
	if bronze <= 0 {
		bronze = maxMoves
	}
	switch {
	case used <= t.Gold:
		return TierGold
	case used <= t.Silver:
		return TierSilver
	case used <= bronze:
		return TierBronze
	}
	slog.Warn("moves used exceed bronze threshold, clamping",
		"moves_used", used,
		"bronze", bronze)
	return TierBronze
}

// Params are the inputs to Score.
type Params struct {
	MovesUsed int
	// ParMoves is the move count that earns no efficiency bonus. Zero
	// disables the bonus.
	ParMoves        int
	JewelsCollected int
}

// Score computes base + efficiency + jewel bonuses.
func Score(p Params) int {
	saved := p.ParMoves - p.MovesUsed
	if saved < 0 {
		saved = 0
	}
	jewels := p.JewelsCollected
	if jewels < 0 {
		jewels = 0
	}
	return BaseScore + EfficiencyBonus*saved + JewelBonus*jewels
}

// Par returns the par move count for a level: explicit par, else the silver
// threshold, else max moves.
func Par(par int, t *Thresholds, maxMoves int) int {
	if par > 0 {
		return par
	}
	if t != nil && t.Silver > 0 {
		return t.Silver
	}
	return maxMoves
}

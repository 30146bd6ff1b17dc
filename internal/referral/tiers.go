package referral

import (
	"fmt"
)

// Tier is a named reward level gated by minimum referral count AND minimum
// point balance. Both thresholds must be met.
type Tier struct {
	ID           int64
	Name         string
	MinReferrals int
	MinPoints    int
}

// ValidateTable rejects a malformed tier table up front: negative thresholds,
// or tiers not ordered ascending by their gates.
func ValidateTable(table []Tier) error {
	for i, t := range table {
		if t.MinReferrals < 0 || t.MinPoints < 0 {
			return fmt.Errorf("tier %q: thresholds must be non-negative (referrals=%d points=%d)",
				t.Name, t.MinReferrals, t.MinPoints)
		}
		if i > 0 {
			prev := table[i-1]
			if t.MinReferrals < prev.MinReferrals || t.MinPoints < prev.MinPoints {
				return fmt.Errorf("tier %q: table must be ascending, %q comes before it with higher thresholds",
					t.Name, prev.Name)
			}
		}
	}
	return nil
}

// EligibleTiers returns every tier whose referral and point thresholds are
// both satisfied, in table order. Pure: same inputs, same output, no I/O.
func EligibleTiers(referrals, points int, table []Tier) []Tier {
	var out []Tier
	for _, t := range table {
		if referrals >= t.MinReferrals && points >= t.MinPoints {
			out = append(out, t)
		}
	}
	return out
}

// Level ladder from the points balance alone; used for display, not gating.
var levels = []struct {
	Min   int
	Name  string
	Emoji string
}{
	{0, "مبتدی", "🌱"},
	{50, "برنزی", "🥉"},
	{100, "نقره‌ای", "🥈"},
	{200, "طلایی", "🥇"},
	{500, "پلاتینی", "💎"},
	{1000, "الماسی", "💠"},
}

func Level(points int) (name, emoji string) {
	name, emoji = levels[0].Name, levels[0].Emoji
	for _, l := range levels {
		if points >= l.Min {
			name, emoji = l.Name, l.Emoji
		}
	}
	return name, emoji
}

// LevelProgress reports progress inside the current level band: points gained
// since the band start and the band width. done == need at the top level.
func LevelProgress(points int) (done, need int) {
	cur := 0
	for i, l := range levels {
		if points >= l.Min {
			cur = i
		}
	}
	if cur >= len(levels)-1 {
		return 1, 1
	}
	start := levels[cur].Min
	next := levels[cur+1].Min
	return points - start, next - start
}

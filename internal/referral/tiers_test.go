package referral

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable() []Tier {
	return []Tier{
		{ID: 1, Name: "bronze", MinReferrals: 0, MinPoints: 0},
		{ID: 2, Name: "silver", MinReferrals: 5, MinPoints: 50},
		{ID: 3, Name: "gold", MinReferrals: 10, MinPoints: 100},
	}
}

func TestValidateTable(t *testing.T) {
	require.NoError(t, ValidateTable(testTable()))
	require.NoError(t, ValidateTable(nil))

	require.Error(t, ValidateTable([]Tier{{Name: "bad", MinReferrals: -1}}))
	require.Error(t, ValidateTable([]Tier{{Name: "bad", MinPoints: -5}}))

	descending := []Tier{
		{Name: "high", MinReferrals: 10, MinPoints: 100},
		{Name: "low", MinReferrals: 5, MinPoints: 50},
	}
	require.Error(t, ValidateTable(descending))
}

func TestEligibleTiers(t *testing.T) {
	table := testTable()

	tests := []struct {
		name      string
		referrals int
		points    int
		want      []string
	}{
		{"nothing earned", 0, 0, []string{"bronze"}},
		{"referrals without points", 10, 0, []string{"bronze"}},
		{"points without referrals", 0, 500, []string{"bronze"}},
		{"both thresholds met", 5, 50, []string{"bronze", "silver"}},
		{"all tiers", 10, 100, []string{"bronze", "silver", "gold"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EligibleTiers(tt.referrals, tt.points, table)
			var names []string
			for _, tier := range got {
				names = append(names, tier.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestEligibleTiersMonotonic(t *testing.T) {
	// More referrals or points can only ever grow the eligible set.
	table := testTable()
	prev := 0
	for points := 0; points <= 120; points += 10 {
		got := len(EligibleTiers(10, points, table))
		require.GreaterOrEqual(t, got, prev, "points=%d", points)
		prev = got
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		points int
		name   string
	}{
		{0, "مبتدی"},
		{49, "مبتدی"},
		{50, "برنزی"},
		{100, "نقره‌ای"},
		{200, "طلایی"},
		{500, "پلاتینی"},
		{1000, "الماسی"},
		{99999, "الماسی"},
	}
	for _, tt := range tests {
		name, emoji := Level(tt.points)
		assert.Equal(t, tt.name, name, "points=%d", tt.points)
		assert.NotEmpty(t, emoji)
	}
}

func TestLevelProgress(t *testing.T) {
	done, need := LevelProgress(0)
	assert.Equal(t, 0, done)
	assert.Equal(t, 50, need)

	done, need = LevelProgress(75)
	assert.Equal(t, 25, done)
	assert.Equal(t, 50, need)

	// Top of the ladder reports as complete.
	done, need = LevelProgress(5000)
	assert.Equal(t, done, need)
}

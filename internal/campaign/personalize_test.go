package campaign

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Armin-kho/channel-growth-bot/internal/analytics"
)

func TestPersonalizeKeepsBase(t *testing.T) {
	base := "پیام کمپین"
	signals := []analytics.Signal{
		{},
		{EngagementScore: 100},
		{EngagementScore: 5},
		{EngagementScore: 50, Interests: []string{analytics.InterestReferrals}},
	}
	for _, sig := range signals {
		got := Personalize(base, sig)
		require.True(t, strings.HasPrefix(got, base), "score=%d", sig.EngagementScore)
		assert.GreaterOrEqual(t, len(got), len(base))
	}
}

func TestPersonalizeDeterministic(t *testing.T) {
	sig := analytics.Signal{EngagementScore: 90, Interests: []string{analytics.InterestReferrals}}
	first := Personalize("سلام", sig)
	second := Personalize("سلام", sig)
	assert.Equal(t, first, second)
}

func TestPersonalizeBands(t *testing.T) {
	base := "متن"

	high := Personalize(base, analytics.Signal{EngagementScore: 80})
	assert.Contains(t, high, highEngagementLine)
	assert.NotContains(t, high, winBackLine)

	low := Personalize(base, analytics.Signal{EngagementScore: 29})
	assert.Contains(t, low, winBackLine)
	assert.NotContains(t, low, highEngagementLine)

	mid := Personalize(base, analytics.Signal{EngagementScore: 50})
	assert.Equal(t, base, mid)

	referrer := Personalize(base, analytics.Signal{
		EngagementScore: 50,
		Interests:       []string{analytics.InterestReferrals},
	})
	assert.Contains(t, referrer, referralCTALine)
}

package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name   string
		counts map[string]int
		want   int
	}{
		{"no events", nil, 0},
		{"light usage", map[string]int{EventButtonClick: 10}, 3},
		{"shares weigh most", map[string]int{EventReferralShare: 10}, 5},
		{"unknown event counts as one", map[string]int{"weird_event": 20}, 2},
		{"capped at 100", map[string]int{EventReferralShare: 10000}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.counts))
		})
	}
}

func TestScoreDeterministic(t *testing.T) {
	counts := map[string]int{
		EventButtonClick:   7,
		EventReferralShare: 3,
		EventContentView:   12,
	}
	first := Score(counts)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Score(counts))
	}
}

func TestInterests(t *testing.T) {
	assert.Empty(t, Interests(nil))
	assert.Empty(t, Interests(map[string]int{EventReferralShare: 5}))

	got := Interests(map[string]int{EventReferralShare: 6})
	assert.Equal(t, []string{InterestReferrals}, got)

	got = Interests(map[string]int{EventContentView: 6, EventContentClaim: 5})
	assert.Equal(t, []string{InterestContent}, got)

	got = Interests(map[string]int{EventReferralShare: 10, EventContentView: 20})
	assert.Equal(t, []string{InterestReferrals, InterestContent}, got)
}

func TestHasInterest(t *testing.T) {
	s := Signal{Interests: []string{InterestReferrals}}
	assert.True(t, s.HasInterest(InterestReferrals))
	assert.False(t, s.HasInterest(InterestContent))
	assert.False(t, Signal{}.HasInterest(InterestReferrals))
}

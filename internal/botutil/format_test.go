package botutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPersianDigits(t *testing.T) {
	assert.Equal(t, "۱۲۳", ToPersianDigits("123"))
	assert.Equal(t, "بدون عدد", ToPersianDigits("بدون عدد"))
	assert.Equal(t, "۵۰٪ off", ToPersianDigits("۵0٪ off"))
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "۰", FormatCount(0))
	assert.Equal(t, "۱۲", FormatCount(12))
	assert.Equal(t, "۱,۲۳۴", FormatCount(1234))
	assert.Equal(t, "۱,۲۳۴,۵۶۷", FormatCount(1234567))
	assert.Equal(t, "-۱,۰۰۰", FormatCount(-1000))
}

func TestRankEmoji(t *testing.T) {
	assert.Equal(t, "🥇", RankEmoji(1))
	assert.Equal(t, "🥈", RankEmoji(2))
	assert.Equal(t, "🥉", RankEmoji(3))
	assert.Equal(t, "👤", RankEmoji(4))
	assert.Equal(t, "👤", RankEmoji(100))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("⬜", 10), ProgressBar(0, 100))
	assert.Equal(t, strings.Repeat("🟩", 3)+strings.Repeat("⬜", 7), ProgressBar(30, 100))
	assert.Equal(t, strings.Repeat("🟩", 10), ProgressBar(100, 100))

	// Out-of-range inputs clamp instead of panicking.
	assert.Equal(t, strings.Repeat("🟩", 10), ProgressBar(500, 100))
	assert.Equal(t, strings.Repeat("⬜", 10), ProgressBar(-5, 100))
	assert.Equal(t, strings.Repeat("⬜", 10), ProgressBar(5, 0))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "کوتاه", Truncate("کوتاه", 10))
	assert.Equal(t, "یک م…", Truncate("یک متن بلند فارسی", 5))
	assert.Equal(t, "…", Truncate("anything long", 1))
}

func TestParseHHMM(t *testing.T) {
	m, ok := ParseHHMM("18:30")
	assert.True(t, ok)
	assert.Equal(t, 18*60+30, m)

	m, ok = ParseHHMM("00:00")
	assert.True(t, ok)
	assert.Zero(t, m)

	for _, bad := range []string{"", "1830", "25:00", "12:75", "ab:cd", "7:30"} {
		_, ok := ParseHHMM(bad)
		assert.False(t, ok, "input=%q", bad)
	}
}

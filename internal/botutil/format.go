package botutil

import (
	"fmt"
	"strings"
)

var persianDigits = map[rune]rune{
	'0': '۰',
	'1': '۱',
	'2': '۲',
	'3': '۳',
	'4': '۴',
	'5': '۵',
	'6': '۶',
	'7': '۷',
	'8': '۸',
	'9': '۹',
}

func ToPersianDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		if pr, ok := persianDigits[r]; ok {
			b.WriteRune(pr)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatCount renders an integer with thousands separators in Persian digits.
func FormatCount(n int) string {
	return ToPersianDigits(formatIntWithCommas(int64(n)))
}

func formatIntWithCommas(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	b.Grow(len(s) + len(s)/3)
	rem := len(s) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(sign)
	b.WriteString(s[:rem])
	for i := rem; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// RankEmoji returns medal emoji for the top three leaderboard positions
// (1-based) and a plain marker past the podium.
func RankEmoji(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return "👤"
	}
}

// ProgressBar renders a ten-segment bar, e.g. 🟩🟩🟩⬜⬜⬜⬜⬜⬜⬜ for 30%.
// done/total outside [0, total] clamps rather than panicking.
func ProgressBar(done, total int) string {
	const segments = 10
	filled := 0
	if total > 0 {
		filled = done * segments / total
	}
	if filled < 0 {
		filled = 0
	}
	if filled > segments {
		filled = segments
	}
	return strings.Repeat("🟩", filled) + strings.Repeat("⬜", segments-filled)
}

// Truncate cuts s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}

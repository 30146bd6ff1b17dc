package campaign

import (
	"strings"

	"github.com/Armin-kho/channel-growth-bot/internal/analytics"
)

const (
	highEngagementLine = "🌟 شما یکی از فعال‌ترین اعضای ما هستید! ممنون که همراه مایید"
	winBackLine        = "💭 دلمون براتون تنگ شده! برگردید و از مطالب جدید استفاده کنید"
	referralCTALine    = "🔗 دوستاتون رو دعوت کنید و امتیاز بگیرید!"
)

// Personalize appends audience-specific lines to the base message. The base
// text always survives intact at the front; the result only ever grows.
func Personalize(base string, sig analytics.Signal) string {
	var b strings.Builder
	b.WriteString(base)

	switch {
	case sig.EngagementScore >= 80:
		b.WriteString("\n\n")
		b.WriteString(highEngagementLine)
	case sig.EngagementScore < 30:
		b.WriteString("\n\n")
		b.WriteString(winBackLine)
	}

	if sig.HasInterest(analytics.InterestReferrals) {
		b.WriteString("\n\n")
		b.WriteString(referralCTALine)
	}

	return b.String()
}

package analytics

// Signal is the per-user engagement view campaigns personalize against.
type Signal struct {
	EngagementScore int // 0..100
	Interests       []string
}

// Event types the bot records. Scoring weights favor actions that indicate
// real engagement over plain navigation.
const (
	EventStart          = "start_command"
	EventButtonClick    = "button_click"
	EventReferralShare  = "referral_share"
	EventContentView    = "content_view"
	EventContentClaim   = "content_claim"
	EventMenuNavigation = "menu_navigation"
	EventMembershipOK   = "membership_confirmed"
)

var scoreWeights = map[string]int{
	EventButtonClick:    3,
	EventReferralShare:  5,
	EventContentView:    2,
	EventMenuNavigation: 1,
}

// Score folds 30 days of event counts into a 0..100 engagement score.
// Deterministic for the same counts.
func Score(counts map[string]int) int {
	total := 0
	for typ, n := range counts {
		w, ok := scoreWeights[typ]
		if !ok {
			w = 1
		}
		total += n * w
	}
	score := total / 10
	if score > 100 {
		score = 100
	}
	return score
}

// Interest buckets derived from behavior; order is fixed so the result is
// deterministic for identical counts.
const (
	InterestReferrals = "referral_enthusiast"
	InterestContent   = "content_consumer"
)

func Interests(counts map[string]int) []string {
	var out []string
	if counts[EventReferralShare] > 5 {
		out = append(out, InterestReferrals)
	}
	if counts[EventContentView]+counts[EventContentClaim] > 10 {
		out = append(out, InterestContent)
	}
	return out
}

func (s Signal) HasInterest(name string) bool {
	for _, i := range s.Interests {
		if i == name {
			return true
		}
	}
	return false
}

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SendsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "growthbot_sends_total",
		Help: "Messages delivered to users by campaign and broadcast runs.",
	})
	SendFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "growthbot_send_failures_total",
		Help: "Per-user delivery failures tallied by campaign runs.",
	})
	ReferralsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "growthbot_referrals_total",
		Help: "Referral edges recorded.",
	})
	ClaimsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "growthbot_reward_claims_total",
		Help: "Reward claims recorded.",
	})
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "growthbot_campaign_runs_total",
		Help: "Campaign runs finalized, labeled by terminal status.",
	}, []string{"status"})
)

// Serve exposes /metrics on addr in a background goroutine. Errors after
// startup only lose metrics, never the bot, so they are dropped.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() { _ = srv.ListenAndServe() }()
}

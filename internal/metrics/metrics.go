// Package metrics holds the Prometheus collectors for the auth flow.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Verification results
const (
	ResultSuccess   = "success"
	ResultMissing   = "missing_or_expired"
	ResultMalformed = "malformed"
	ResultMismatch  = "mismatch"
	ResultDirectory = "directory_unavailable"
)

var (
	challengesIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "walletauth_challenges_issued_total",
			Help: "Total number of challenges issued.",
		},
	)

	verifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletauth_verifications_total",
			Help: "Total number of verification attempts, by result.",
		},
		[]string{"result"},
	)

	sessionsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "walletauth_sessions_issued_total",
			Help: "Total number of session tokens issued.",
		},
	)

	challengesReaped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "walletauth_challenges_reaped_total",
			Help: "Total number of expired challenges removed by the reaper.",
		},
	)

	challengesPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "walletauth_challenges_pending",
			Help: "Number of outstanding challenges.",
		},
	)
)

// IncChallengeIssued increments the challenge issuance counter
func IncChallengeIssued() {
	challengesIssued.Inc()
}

// IncVerification increments the verification counter for result
func IncVerification(result string) {
	verifications.WithLabelValues(result).Inc()
}

// IncSessionIssued increments the session issuance counter
func IncSessionIssued() {
	sessionsIssued.Inc()
}

// AddReaped adds n to the reaped challenges counter
func AddReaped(n int) {
	challengesReaped.Add(float64(n))
}

// SetPending records the number of outstanding challenges
func SetPending(n int) {
	challengesPending.Set(float64(n))
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

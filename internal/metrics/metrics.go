package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "helping_hands"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	GatewayDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "auth_gateway_decisions_total", Help: "Auth gateway outcomes (allowed, refreshed, unauthenticated, forbidden)."},
		[]string{"outcome"},
	)
	TokenRotations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "refresh_rotations_total", Help: "Refresh token rotations by result."},
		[]string{"result"},
	)
	CleanupDeleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "token_cleanup_deleted_total", Help: "Ledger rows removed by token cleanup."},
		[]string{"table"},
	)
	CleanupFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "token_cleanup_failures_total", Help: "Failed token cleanup runs."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(GatewayDecisions)
	reg.MustRegister(TokenRotations)
	reg.MustRegister(CleanupDeleted)
	reg.MustRegister(CleanupFailures)
}

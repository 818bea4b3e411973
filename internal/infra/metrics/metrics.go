// Package metrics provides Prometheus metrics for habitforge:
// counters for the log ledger, XP economy, badges, HTTP traffic and health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "habitforge"

// ─── Logs ───────────────────────────────────────────────────────────────────

// LogsSubmitted counts created habit logs by status.
var LogsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "logs_submitted_total",
	Help:      "Total habit logs created, by status.",
}, []string{"status"})

// LogsRevised counts log updates and deletions.
var LogsRevised = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "logs_revised_total",
	Help:      "Total habit log updates and deletions.",
}, []string{"op"})

// ─── Ledger ─────────────────────────────────────────────────────────────────

// XPAwarded counts XP paid out, split by source (log, badge).
var XPAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "xp_awarded_total",
	Help:      "Total experience points awarded.",
}, []string{"source"})

// XPRetracted counts XP taken back by log updates and deletions.
var XPRetracted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "xp_retracted_total",
	Help:      "Total experience points retracted.",
})

// LevelUps counts level transitions.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "level_ups_total",
	Help:      "Total level-ups across all users.",
})

// ─── Badges ─────────────────────────────────────────────────────────────────

// BadgesUnlocked counts unlocks by badge id.
var BadgesUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "badges_unlocked_total",
	Help:      "Total badge unlocks, by badge.",
}, []string{"badge"})

// ClaimRejections counts explicit claims that did not unlock, by reason.
var ClaimRejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "badge_claim_rejections_total",
	Help:      "Total rejected badge claims, by reason.",
}, []string{"reason"})

// ─── HTTP ───────────────────────────────────────────────────────────────────

// RequestLatency tracks API request duration in seconds.
var RequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "http_request_duration_seconds",
	Help:      "API request duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "status"})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus is 1 for healthy, 0 for unhealthy, per check.
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "health_check_status",
	Help:      "Health check status (1=healthy, 0=unhealthy).",
}, []string{"check"})

// HealthRecoveries counts automatic recovery attempts per check.
var HealthRecoveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "health_recoveries_total",
	Help:      "Total recovery attempts by health check.",
}, []string{"check"})

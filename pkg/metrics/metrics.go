package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	AlertsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enforcer_alerts_received_total",
			Help: "Total number of inbound alerts by ingestion status (count)",
		},
		[]string{"status"},
	)

	AlertsMatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enforcer_alerts_matched_total",
			Help: "Total number of alerts matched per policy (count)",
		},
		[]string{"policy"},
	)

	AlertsExcludedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "enforcer_alerts_excluded_total",
			Help: "Total number of alerts skipped because the container is excluded (count)",
		},
	)

	ActionsExecutedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enforcer_actions_executed_total",
			Help: "Total number of enforcement actions per kind and outcome status (count)",
		},
		[]string{"action", "status"},
	)

	CooldownSuppressedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enforcer_cooldown_suppressed_total",
			Help: "Total number of actions suppressed by per-target cooldown (count)",
		},
		[]string{"policy"},
	)

	CooldownEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "enforcer_cooldown_entries",
			Help: "Current number of tracked (policy, container) cooldown entries (count)",
		},
	)

	DispatchQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "enforcer_dispatch_queue_depth",
			Help: "Current number of actions waiting in the dispatch queue (count)",
		},
	)

	DispatchDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "enforcer_dispatch_dropped_total",
			Help: "Total number of actions dropped because the dispatch queue was full (count)",
		},
	)

	ActionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "enforcer_action_duration_ms",
			Help:    "Enforcement action duration in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"action"},
	)

	WebhookRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "enforcer_webhook_retries_total",
			Help: "Total number of webhook delivery retry attempts (count)",
		},
	)

	PoliciesLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "enforcer_policies_loaded",
			Help: "Number of policies in the active snapshot (count)",
		},
	)

	SnapshotReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enforcer_snapshot_reloads_total",
			Help: "Total number of policy snapshot reload attempts by result (count)",
		},
		[]string{"result"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "enforcer_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enforcer_rate_limit_requests_total",
			Help: "Total number of ingestion requests checked against the rate limit (count)",
		},
		[]string{"status"},
	)
)

func RegisterEngineMetrics() {
	prometheus.MustRegister(AlertsReceivedTotal)
	prometheus.MustRegister(AlertsMatchedTotal)
	prometheus.MustRegister(AlertsExcludedTotal)
	prometheus.MustRegister(CooldownSuppressedTotal)
	prometheus.MustRegister(CooldownEntries)
	prometheus.MustRegister(PoliciesLoaded)
	prometheus.MustRegister(SnapshotReloadsTotal)
}

func RegisterDispatchMetrics() {
	prometheus.MustRegister(ActionsExecutedTotal)
	prometheus.MustRegister(DispatchQueueDepth)
	prometheus.MustRegister(DispatchDroppedTotal)
	prometheus.MustRegister(ActionDuration)
	prometheus.MustRegister(WebhookRetriesTotal)
	prometheus.MustRegister(CircuitBreakerState)
}

func RegisterServerMetrics() {
	prometheus.MustRegister(RateLimitRequestsTotal)
}

func IncAlertReceived(status string) {
	AlertsReceivedTotal.WithLabelValues(status).Inc()
}

func IncAlertMatched(policy string) {
	AlertsMatchedTotal.WithLabelValues(policy).Inc()
}

func IncActionExecuted(action, status string) {
	ActionsExecutedTotal.WithLabelValues(action, status).Inc()
}

func IncCooldownSuppressed(policy string) {
	CooldownSuppressedTotal.WithLabelValues(policy).Inc()
}

func ObserveActionDuration(action string, duration time.Duration) {
	ActionDuration.WithLabelValues(action).Observe(float64(duration.Milliseconds()))
}

func SetPoliciesLoaded(count int) {
	PoliciesLoaded.Set(float64(count))
}

func SetCooldownEntries(count int) {
	CooldownEntries.Set(float64(count))
}

func SetDispatchQueueDepth(depth int) {
	DispatchQueueDepth.Set(float64(depth))
}

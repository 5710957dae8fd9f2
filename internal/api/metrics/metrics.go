// Package metrics defines and registers all custom Prometheus metrics of the
// requirements API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at package init;
// /metrics exposes them next to echoprometheus' request metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "requirements"

// ── Session metrics ───────────────────────────────────────────────────────────

// AuthDecisionsTotal counts access guard outcomes.
// Label:
//   - outcome: "authenticated", "unauthenticated", "invalid_token", "error"
//     (session check) or "allowed", "forbidden" (role check)
var AuthDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_decisions_total",
		Help:      "Total number of access guard decisions, by outcome.",
	},
	[]string{"outcome"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokensRenewedTotal counts sliding re-issuances performed by the guard.
var TokensRenewedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_renewed_total",
		Help:      "Total number of session tokens re-issued before expiry.",
	},
)

// TokensSweptTotal counts cached account tokens cleared by the sweep job.
var TokensSweptTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_swept_total",
		Help:      "Total number of expired cached tokens cleared from accounts.",
	},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of auth events pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)

// AuditDroppedTotal counts events discarded because their shard was full.
var AuditDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_dropped_total",
		Help:      "Total number of auth events dropped because the audit queue was full.",
	},
)

// AuditErrorsTotal counts events that failed to persist.
var AuditErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_errors_total",
		Help:      "Total number of auth events that failed to persist.",
	},
)

// ── Record metrics ────────────────────────────────────────────────────────────

// RecordsCreatedTotal counts created records.
// Label:
//   - kind: "document", "agent_output", "requirement", "account"
var RecordsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_created_total",
		Help:      "Total number of records created, by kind.",
	},
	[]string{"kind"},
)

// RecordsDeletedTotal counts deleted records.
// Label:
//   - kind: "document", "agent_output", "requirement"
var RecordsDeletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_deleted_total",
		Help:      "Total number of records deleted, by kind.",
	},
	[]string{"kind"},
)

// UploadBytesTotal sums the size of uploaded files.
var UploadBytesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upload_bytes_total",
		Help:      "Total number of bytes stored by document uploads.",
	},
)

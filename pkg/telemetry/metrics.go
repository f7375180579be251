// Package telemetry exposes the engine's operational counters as
// Prometheus metrics, served on /metrics by the HTTP layer.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CyclesTotal counts completed processing cycles, including deferred
	// ones.
	CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "curatord_cycles_total",
		Help: "Processing cycles run.",
	})

	// CyclesDeferred counts cycles skipped for lack of active
	// participants.
	CyclesDeferred = promauto.NewCounter(prometheus.CounterOpts{
		Name: "curatord_cycles_deferred_total",
		Help: "Cycles deferred because no participant was active.",
	})

	// MessagesAdmitted counts messages persisted into the curated record.
	MessagesAdmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "curatord_messages_admitted_total",
		Help: "Messages admitted and persisted.",
	})

	// MessagesRejected counts inadmissible messages by rejection reason.
	MessagesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "curatord_messages_rejected_total",
		Help: "Messages rejected by the admissibility contract.",
	}, []string{"reason"})

	// AlertsRaised counts alerts handed to the notifier.
	AlertsRaised = promauto.NewCounter(prometheus.CounterOpts{
		Name: "curatord_alerts_total",
		Help: "Alerts raised by the pipeline.",
	})

	// DocumentsArchived counts long texts stored in the archive.
	DocumentsArchived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "curatord_documents_archived_total",
		Help: "Documents written to the archive.",
	})

	// SealFallbacks counts messages stored in plaintext after a seal
	// failure.
	SealFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "curatord_seal_fallback_total",
		Help: "Messages persisted unsealed after a seal failure.",
	})

	// ActiveParticipants is the count observed in the last cycle.
	ActiveParticipants = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "curatord_participants_active",
		Help: "Participants observed active in the last cycle.",
	})

	// QueueDepth is the number of raw messages waiting for curation.
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "curatord_ingest_queue_depth",
		Help: "Raw messages waiting in the ingest queue.",
	})

	// WALBytes is the size of the storage write-ahead log.
	WALBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "curatord_storage_wal_bytes",
		Help: "Size of the pebble write-ahead log in bytes.",
	})
)

// Rejection reason labels.
const (
	ReasonForbidden = "forbidden"
	ReasonImpure    = "impure"
	ReasonDuplicate = "duplicate"
	ReasonLowValue  = "low_value"
	ReasonOffTopic  = "off_topic"
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Activity session metrics
var (
	// ActivitySessionsStartedTotal counts successfully requested glance sessions
	ActivitySessionsStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_sessions_started_total",
			Help: "Total glance sessions successfully requested",
		},
	)

	// ActivitySessionRequestFailuresTotal counts rejected session requests
	ActivitySessionRequestFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_session_request_failures_total",
			Help: "Total glance session requests rejected by the gateway",
		},
	)

	// ActivitySessionsEndedTotal counts ended glance sessions
	ActivitySessionsEndedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_sessions_ended_total",
			Help: "Total glance sessions ended",
		},
	)

	// ActivityContentUpdatesTotal counts content replacements on a live session
	ActivityContentUpdatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_content_updates_total",
			Help: "Total content replacements applied to a live glance session",
		},
	)

	// ActivityUnauthorizedDropsTotal counts updates dropped because the
	// glance capability was not authorized
	ActivityUnauthorizedDropsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_unauthorized_drops_total",
			Help: "Total updates dropped because the glance capability was not authorized",
		},
	)

	// ActivityCommandQueueDepth tracks the controller command channel depth
	ActivityCommandQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "activity_command_queue_depth",
			Help: "Current depth of the activity controller command queue",
		},
	)
)

// Reading pipeline metrics
var (
	// ReadingsIngestedTotal counts readings accepted by the pipeline
	ReadingsIngestedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "readings_ingested_total",
			Help: "Total heart rate readings accepted by the pipeline",
		},
	)

	// ReadingsRejectedTotal counts readings rejected by validation
	ReadingsRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "readings_rejected_total",
			Help: "Total heart rate readings rejected as implausible",
		},
	)

	// IngestClientsConnected tracks connected websocket reading producers
	IngestClientsConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingest_clients_connected",
			Help: "Currently connected websocket ingest clients",
		},
	)
)

// Gateway metrics
var (
	// CapabilityCacheHitsTotal counts capability checks answered from cache
	CapabilityCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "capability_cache_hits_total",
			Help: "Capability checks answered from the TTL cache",
		},
	)

	// CapabilityCacheMissesTotal counts capability checks that hit the gateway
	CapabilityCacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "capability_cache_misses_total",
			Help: "Capability checks that required a gateway round trip",
		},
	)

	// GatewayCallDuration tracks gateway call latency by operation
	GatewayCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_call_duration_seconds",
			Help:    "Glance gateway call duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"operation"},
	)
)

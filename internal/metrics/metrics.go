package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TxSubmitted tracks transactions handed to the wallet per kind
	TxSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nftclient_tx_submitted_total",
			Help: "Total number of transactions sent to the wallet",
		},
		[]string{"kind"},
	)

	// TxOutcomes tracks terminal transaction states
	TxOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nftclient_tx_outcomes_total",
			Help: "Total number of transactions by terminal status",
		},
		[]string{"kind", "status", "error_kind"},
	)

	// TxConfirmationLatency tracks time from submission to terminal receipt
	TxConfirmationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nftclient_tx_confirmation_seconds",
			Help:    "Time from submission until the confirmation threshold is met",
			Buckets: []float64{1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"kind"},
	)

	// ReconcileTotal tracks chain reconciliation attempts by result
	ReconcileTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nftclient_reconcile_total",
			Help: "Total number of chain reconciliations",
		},
		[]string{"result"},
	)

	// RPCCallsTotal tracks provider requests per method
	RPCCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nftclient_rpc_calls_total",
			Help: "Total number of provider requests",
		},
		[]string{"provider", "method"},
	)

	// RPCErrorsTotal tracks failed provider requests
	RPCErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nftclient_rpc_errors_total",
			Help: "Total number of failed provider requests",
		},
		[]string{"provider", "method"},
	)

	// RPCLatency tracks provider request latency
	RPCLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nftclient_rpc_latency_seconds",
			Help:    "Provider request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "method"},
	)

	// ErrorsClassified tracks failures surfaced to callers by kind
	ErrorsClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nftclient_errors_classified_total",
			Help: "Total number of classified errors",
		},
		[]string{"kind"},
	)

	// SessionConnected is 1 while the wallet session is connected
	SessionConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nftclient_session_connected",
			Help: "Whether the wallet session is connected",
		},
	)

	// SessionChainID tracks the chain the wallet reports
	SessionChainID = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nftclient_session_chain_id",
			Help: "Chain id reported by the connected wallet, 0 when unknown",
		},
	)

	// MonitorFieldFailures tracks contract reads degraded to unavailable
	MonitorFieldFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nftclient_monitor_field_failures_total",
			Help: "Total number of contract info reads that failed",
		},
		[]string{"field"},
	)
)

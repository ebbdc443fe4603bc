package metrics

import (
	"net/http"

	"github.com/cuemby/syncd/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "syncd_sessions_active",
			Help: "Number of currently connected sync sessions",
		},
	)

	SessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncd_sessions_total",
			Help: "Total sessions by terminal outcome",
		},
		[]string{"outcome"},
	)

	BroadcastMessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "syncd_broadcast_messages_total",
			Help: "Total broadcast messages relayed to subscribers",
		},
	)

	BroadcastLaggedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "syncd_broadcast_lagged_total",
			Help: "Total times a subscriber's receiver overflowed and dropped buffered updates",
		},
	)

	EditsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncd_edits_total",
			Help: "Total edits recorded by classified type",
		},
		[]string{"edit_type"},
	)

	FrameErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "syncd_frame_errors_total",
			Help: "Total malformed frames dropped",
		},
	)
)

func init() {
	prometheus.MustRegister(
		SessionsActive,
		SessionsTotal,
		BroadcastMessagesTotal,
		BroadcastLaggedTotal,
		EditsTotal,
		FrameErrorsTotal,
	)
}

// Handler returns the Prometheus scrape handler, mounted at GET /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Recorder implements session.Metrics against the package-level collectors
// above. It holds no state of its own; every call forwards straight to the
// matching Prometheus collector, so a Recorder is cheap to construct and
// safe to share across sessions.
type Recorder struct{}

func NewRecorder() Recorder { return Recorder{} }

func (Recorder) SessionConnected() {
	SessionsActive.Inc()
	SessionsTotal.WithLabelValues("connected").Inc()
}

func (Recorder) SessionDenied() {
	SessionsTotal.WithLabelValues("denied").Inc()
}

func (Recorder) SessionClosed() {
	SessionsActive.Dec()
	SessionsTotal.WithLabelValues("closed").Inc()
}

func (Recorder) BroadcastMessage() {
	BroadcastMessagesTotal.Inc()
}

func (Recorder) BroadcastLagged() {
	BroadcastLaggedTotal.Inc()
}

func (Recorder) EditRecorded(editType types.EditType) {
	EditsTotal.WithLabelValues(string(editType)).Inc()
}

func (Recorder) FrameError() {
	FrameErrorsTotal.Inc()
}

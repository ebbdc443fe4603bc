// Package metrics defines and registers the Prometheus collectors exposed
// on GET /metrics, and the Recorder adapter that lets pkg/session observe
// session lifecycle, broadcast, and edit events without importing
// Prometheus directly.
//
// Metrics catalog:
//
//	syncd_sessions_active                      gauge
//	syncd_sessions_total{outcome}               counter   outcome ∈ {connected, denied, closed}
//	syncd_broadcast_messages_total              counter
//	syncd_broadcast_lagged_total                counter
//	syncd_edits_total{edit_type}                counter
//	syncd_frame_errors_total                    counter
//
// Label sets are fixed-size by construction — no per-tenant or per-document
// cardinality.
package metrics

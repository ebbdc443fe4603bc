// Package api wires the net/http front door: the /ws/{doc} upgrade
// endpoint that hands a verified connection off to a session, the
// /documents/{guid}/edits and /documents/{guid}/snapshots audit read
// endpoints, and the ambient /healthz and /metrics mounts.
//
// The sync hub's transport is an HTTP upgrade to a websocket, not a typed
// RPC service, so Server is a plain net/http.Server wrapping an
// http.ServeMux with a Start/Stop lifecycle.
package api

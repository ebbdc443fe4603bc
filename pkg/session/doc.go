// Package session implements the per-connection session state machine
// (C5): the cooperative, single-threaded loop that drives the handshake,
// incremental updates, keep-alive, and fan-out relay for one upgraded
// connection, from Connected through Closing.
package session

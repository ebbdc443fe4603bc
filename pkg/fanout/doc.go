// Package fanout implements the per-document broadcast registry (C4): a
// lazily-created, multi-producer/multi-consumer channel per document GUID.
// Subscribers that fall behind the fixed capacity drop the oldest buffered
// message and observe a Lagged signal; the registry never blocks a
// broadcaster on a slow receiver.
package fanout

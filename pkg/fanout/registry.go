package fanout

import "sync"

// Capacity is the fixed buffer size of every broadcast channel.
const Capacity = 100

// Event is one item delivered to a Receiver. Lagged is non-zero when the
// registry had to drop older buffered messages to make room for Payload;
// Payload is always the newest available value in that case.
type Event struct {
	Payload []byte
	Lagged  int
}

// Receiver is a per-subscription handle onto one document's broadcast
// channel. It is not safe to read from two goroutines at once, but the
// registry may push to it concurrently from any number of broadcasters.
type Receiver struct {
	ch chan Event
	mu sync.Mutex
}

func newReceiver() *Receiver {
	return &Receiver{ch: make(chan Event, Capacity)}
}

// push enqueues payload, dropping the oldest buffered event and stamping
// the delivered event with the drop count if the channel is full.
func (r *Receiver) push(payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := 0
	for {
		select {
		case r.ch <- Event{Payload: payload, Lagged: dropped}:
			return
		default:
		}
		select {
		case <-r.ch:
			dropped++
		default:
			// The consumer drained a slot between our two selects; retry
			// the send immediately without counting a drop.
		}
	}
}

// TryRecv returns the next buffered event without blocking. The second
// return value is false when nothing is currently available.
func (r *Receiver) TryRecv() (Event, bool) {
	select {
	case ev, ok := <-r.ch:
		return ev, ok
	default:
		return Event{}, false
	}
}

// Registry is the fan-out registry (C4): a lazily-populated map from
// document GUID to a broadcast channel shared by every subscriber of that
// document.
type Registry struct {
	mu   sync.RWMutex
	docs map[string]*broadcastChannel
}

type broadcastChannel struct {
	mu        sync.Mutex
	receivers map[*Receiver]struct{}
}

func NewRegistry() *Registry {
	return &Registry{docs: make(map[string]*broadcastChannel)}
}

// Subscribe returns a fresh Receiver for guid, creating the underlying
// channel on first use.
func (reg *Registry) Subscribe(guid string) *Receiver {
	reg.mu.Lock()
	bc, ok := reg.docs[guid]
	if !ok {
		bc = &broadcastChannel{receivers: make(map[*Receiver]struct{})}
		reg.docs[guid] = bc
	}
	reg.mu.Unlock()

	r := newReceiver()
	bc.mu.Lock()
	bc.receivers[r] = struct{}{}
	bc.mu.Unlock()
	return r
}

// Unsubscribe detaches r from guid's broadcast channel. It is a no-op if
// guid has no channel or r was never subscribed to it.
func (reg *Registry) Unsubscribe(guid string, r *Receiver) {
	reg.mu.RLock()
	bc, ok := reg.docs[guid]
	reg.mu.RUnlock()
	if !ok {
		return
	}

	bc.mu.Lock()
	_, present := bc.receivers[r]
	delete(bc.receivers, r)
	bc.mu.Unlock()
	if present {
		close(r.ch)
	}
}

// Broadcast enqueues payload for every live subscriber of guid. It reports
// false ("NoSubscribers") when no channel has ever been created for guid;
// that is not an error and callers should log and proceed.
func (reg *Registry) Broadcast(guid string, payload []byte) bool {
	reg.mu.RLock()
	bc, ok := reg.docs[guid]
	reg.mu.RUnlock()
	if !ok {
		return false
	}

	bc.mu.Lock()
	targets := make([]*Receiver, 0, len(bc.receivers))
	for r := range bc.receivers {
		targets = append(targets, r)
	}
	bc.mu.Unlock()

	for _, r := range targets {
		r.push(payload)
	}
	return true
}

// SubscriberCount reports how many receivers are currently attached to
// guid's broadcast channel.
func (reg *Registry) SubscriberCount(guid string) int {
	reg.mu.RLock()
	bc, ok := reg.docs[guid]
	reg.mu.RUnlock()
	if !ok {
		return 0
	}
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return len(bc.receivers)
}

package crdt

import (
	"sort"
	"sync"
)

// replica is the reference Doc implementation: a deduplicated set of
// tuples plus a per-actor max-clock index used as the state vector. Reads
// that must be deterministic across replicas (TextSample, Encode, Diff)
// always iterate tuples in (actor, clock) order rather than apply order,
// so two replicas that applied the same set of updates in different
// orders converge to byte-identical output — the commutativity the CRDT
// is relied on for.
type replica struct {
	mu    sync.Mutex
	byKey map[key]tuple
	clock map[uint64]uint64 // actor -> highest clock applied
}

func (d *replica) record(t tuple) bool {
	k := key{t.actor, t.clock}
	if _, dup := d.byKey[k]; dup {
		return false
	}
	d.byKey[k] = t
	if t.clock > d.clock[t.actor] {
		d.clock[t.actor] = t.clock
	}
	return true
}

// sorted returns every applied tuple ordered by (actor, clock), the
// replica's canonical order.
func (d *replica) sorted() []tuple {
	tuples := make([]tuple, 0, len(d.byKey))
	for _, t := range d.byKey {
		tuples = append(tuples, t)
	}
	sort.Slice(tuples, func(i, j int) bool {
		if tuples[i].actor != tuples[j].actor {
			return tuples[i].actor < tuples[j].actor
		}
		return tuples[i].clock < tuples[j].clock
	})
	return tuples
}

func (d *replica) StateVector() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	tuples := make([]tuple, 0, len(d.clock))
	for actor, clock := range d.clock {
		tuples = append(tuples, tuple{actor: actor, clock: clock})
	}
	return encodeTuples(tuples)
}

func (d *replica) Diff(remoteSV []byte) ([]byte, error) {
	remote, err := decodeTuples(remoteSV)
	if err != nil {
		return nil, err
	}
	known := make(map[uint64]uint64, len(remote))
	for _, t := range remote {
		known[t.actor] = t.clock
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	missing := make([]tuple, 0)
	for _, t := range d.sorted() {
		if t.clock > known[t.actor] {
			missing = append(missing, t)
		}
	}
	return encodeTuples(missing), nil
}

func (d *replica) Apply(update []byte) error {
	tuples, err := decodeTuples(update)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range tuples {
		d.record(t)
	}
	return nil
}

func (d *replica) TextSample(fragment string, n int) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var found bool
	var runes []rune
	for _, t := range d.sorted() {
		if t.fragment != fragment {
			continue
		}
		found = true
		runes = append(runes, []rune(t.text)...)
	}
	if !found {
		return "", false
	}
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes), true
}

func (d *replica) Encode() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return encodeTuples(d.sorted())
}

// NewUpdate encodes a single-op update for fragment, suitable for feeding
// to Apply — used by clients (and tests) to construct an incremental
// change without reaching into the unexported tuple representation.
func NewUpdate(actor, clock uint64, fragment, text string) []byte {
	return encodeTuples([]tuple{{actor: actor, clock: clock, fragment: fragment, text: text}})
}

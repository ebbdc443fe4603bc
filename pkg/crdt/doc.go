// Package crdt is the narrow adapter boundary through which the sync hub
// invokes its CRDT collaborator: encode a state vector, encode a diff
// against a remote state vector, decode and apply an incremental update,
// and sample a rich-text fragment.
//
// The client-side CRDT runtime (e.g. Yjs) is out of scope for this core;
// Doc is a reference implementation good enough to exercise the store,
// session, and audit packages without a custom merge algorithm. It is not
// a production CRDT — it exists so this module has a concrete, swappable
// collaborator behind the Doc interface.
package crdt

// Doc is the interface the sync hub depends on. A real deployment would
// back it with bindings to the client's CRDT library; Factory lets callers
// substitute one without touching pkg/store or pkg/session.
type Doc interface {
	// StateVector encodes a compact summary of what this replica knows.
	StateVector() []byte
	// Diff encodes the update that brings a peer holding remoteSV forward
	// to this replica's current state.
	Diff(remoteSV []byte) ([]byte, error)
	// Apply merges an incoming update into this replica. Applying the same
	// update twice is a no-op.
	Apply(update []byte) error
	// TextSample returns the first n runes of the named rich-text
	// fragment, or ("", false) if the fragment has never been written to.
	TextSample(fragment string, n int) (string, bool)
	// Encode returns the full current state, suitable for persisting and
	// later passed to New to reconstruct this replica.
	Encode() []byte
}

// Factory constructs a Doc from persisted state bytes (nil/empty for a
// fresh document).
type Factory func(state []byte) (Doc, error)

// New is the default Factory, backed by the reference implementation.
func New(state []byte) (Doc, error) {
	d := &replica{
		byKey: make(map[key]tuple),
		clock: make(map[uint64]uint64),
	}
	if len(state) == 0 {
		return d, nil
	}
	tuples, err := decodeTuples(state)
	if err != nil {
		return nil, err
	}
	for _, tp := range tuples {
		d.record(tp)
	}
	return d, nil
}

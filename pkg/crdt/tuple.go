package crdt

import "github.com/cuemby/syncd/pkg/wire"

// tuple is one causally-ordered op in the reference CRDT: actor/clock
// identify it for deduplication, fragment names the rich-text region it
// belongs to, and text is the (already-merged) content it contributes.
type tuple struct {
	actor   uint64
	clock   uint64
	fragment string
	text    string
}

type key struct {
	actor uint64
	clock uint64
}

// encodeTuples serializes tuples in order using the wire package's varuint
// primitives, reusing the same length-prefixing convention as the frame
// codec so a dump of document state is trivially inspectable.
func encodeTuples(tuples []tuple) []byte {
	var buf []byte
	buf = wire.WriteVaruint(buf, uint64(len(tuples)))
	for _, t := range tuples {
		buf = wire.WriteVaruint(buf, t.actor)
		buf = wire.WriteVaruint(buf, t.clock)
		buf = wire.WriteVaruint(buf, uint64(len(t.fragment)))
		buf = append(buf, t.fragment...)
		buf = wire.WriteVaruint(buf, uint64(len(t.text)))
		buf = append(buf, t.text...)
	}
	return buf
}

// ValidateStateVector reports whether raw decodes as a well-formed state
// vector without building a Doc — used by the handshake to reject a
// malformed client state vector before touching the document store.
func ValidateStateVector(raw []byte) error {
	_, err := decodeTuples(raw)
	return err
}

func decodeTuples(buf []byte) ([]tuple, error) {
	count, rest, err := wire.ReadVaruint(buf)
	if err != nil {
		return nil, err
	}
	tuples := make([]tuple, 0, count)
	for i := uint64(0); i < count; i++ {
		var t tuple
		t.actor, rest, err = wire.ReadVaruint(rest)
		if err != nil {
			return nil, err
		}
		t.clock, rest, err = wire.ReadVaruint(rest)
		if err != nil {
			return nil, err
		}
		var fragLen uint64
		fragLen, rest, err = wire.ReadVaruint(rest)
		if err != nil {
			return nil, err
		}
		if uint64(len(rest)) < fragLen {
			return nil, wire.ErrTruncated
		}
		t.fragment = string(rest[:fragLen])
		rest = rest[fragLen:]

		var textLen uint64
		textLen, rest, err = wire.ReadVaruint(rest)
		if err != nil {
			return nil, err
		}
		if uint64(len(rest)) < textLen {
			return nil, wire.ErrTruncated
		}
		t.text = string(rest[:textLen])
		rest = rest[textLen:]

		tuples = append(tuples, t)
	}
	return tuples, nil
}

// Package wire implements the bespoke length-prefixed, variable-integer
// framing protocol the sync hub speaks over the upgraded connection:
//
//	FRAME   := PROTO MSG LEN PAYLOAD
//	PROTO   := varuint   ; 0=sync, 1=awareness, 2=metadata
//	MSG     := varuint   ; sync: 0=step1, 1=step2, 2=update
//	LEN     := varuint
//	PAYLOAD := byte[LEN]
//
// Varuint encoding is 7-bit little-endian with a continuation flag on the
// high bit of every byte but the last. The decode path never allocates
// beyond the slices it returns into the caller's buffer.
package wire

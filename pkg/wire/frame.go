package wire

// Frame is one decoded protocol frame: a (PROTO, MSG) pair and its payload.
type Frame struct {
	Proto   uint64
	Msg     uint64
	Payload []byte
}

// Protocol byte values.
const (
	ProtoSync      uint64 = 0
	ProtoAwareness uint64 = 1
	ProtoMetadata  uint64 = 2
)

// Sync message byte values.
const (
	MsgSyncStep1 uint64 = 0
	MsgSyncStep2 uint64 = 1
	MsgUpdate    uint64 = 2
)

// MsgMetadataPayload is the message byte the metadata channel multiplexes
// the JSON DocumentMetadata payload on.
const MsgMetadataPayload uint64 = 1

// Decode reads one frame from the front of buf and returns it along with
// the remaining bytes. It returns ErrTruncated if buf ends mid-varuint or
// the declared length exceeds what remains — callers must treat this as a
// ProtocolError and drop the frame, never close the session on it alone.
func Decode(buf []byte) (Frame, []byte, error) {
	proto, rest, err := ReadVaruint(buf)
	if err != nil {
		return Frame{}, nil, err
	}
	msg, rest, err := ReadVaruint(rest)
	if err != nil {
		return Frame{}, nil, err
	}
	length, rest, err := ReadVaruint(rest)
	if err != nil {
		return Frame{}, nil, err
	}
	if uint64(len(rest)) < length {
		return Frame{}, nil, ErrTruncated
	}
	payload := rest[:length]
	return Frame{Proto: proto, Msg: msg, Payload: payload}, rest[length:], nil
}

// Encode appends the wire encoding of (proto, msg, payload) to buf.
func Encode(buf []byte, proto, msg uint64, payload []byte) []byte {
	buf = WriteVaruint(buf, proto)
	buf = WriteVaruint(buf, msg)
	buf = WriteVaruint(buf, uint64(len(payload)))
	return append(buf, payload...)
}

// EncodeFrame is a convenience wrapper over Encode for a single frame,
// returning a freshly allocated byte slice ready to send on the wire.
func EncodeFrame(proto, msg uint64, payload []byte) []byte {
	return Encode(make([]byte, 0, len(payload)+3), proto, msg, payload)
}

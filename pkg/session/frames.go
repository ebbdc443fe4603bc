package session

import "github.com/cuemby/syncd/pkg/wire"

// Protocol and message bytes reproduced from the wire package's frame
// constants for readability at call sites in this package.
const (
	protoSync      = wire.ProtoSync
	protoAwareness = wire.ProtoAwareness
	protoMetadata  = wire.ProtoMetadata

	msgSyncStep1 = wire.MsgSyncStep1
	msgSyncStep2 = wire.MsgSyncStep2
	msgUpdate    = wire.MsgUpdate

	msgMetadataPayload = wire.MsgMetadataPayload
)

type decodedFrame = wire.Frame

// readPump translates raw transport messages into decoded frames. A single
// transport message may contain more than one frame back-to-back; every
// frame found is forwarded independently. It is the only goroutine besides
// Run itself, and it never touches session state directly.
func (s *Session) readPump(out chan<- inboundItem) {
	defer close(out)

	for {
		messageType, payload, err := s.cfg.Transport.ReadMessage()
		if err != nil {
			return
		}
		if messageType == CloseMessage {
			return
		}
		if messageType != BinaryMessage {
			continue
		}

		buf := payload
		for len(buf) > 0 {
			frame, rest, err := wire.Decode(buf)
			if err != nil {
				out <- inboundItem{err: err}
				break
			}
			out <- inboundItem{frame: frame}
			buf = rest
		}
	}
}

func (s *Session) writeFrame(proto, msg uint64, payload []byte) error {
	return s.cfg.Transport.WriteMessage(BinaryMessage, wire.EncodeFrame(proto, msg, payload))
}

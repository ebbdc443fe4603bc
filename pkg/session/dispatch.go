package session

import (
	"github.com/cuemby/syncd/pkg/audit"
	"github.com/cuemby/syncd/pkg/crdt"
	"github.com/cuemby/syncd/pkg/types"
	"github.com/cuemby/syncd/pkg/wire"
)

// dispatch routes one decoded frame to its handler. It returns false when
// the session must terminate (teardown requested or an unrecoverable
// transport error), true otherwise.
func (s *Session) dispatch(f decodedFrame) bool {
	switch f.Proto {
	case protoSync:
		switch f.Msg {
		case msgSyncStep1:
			if !s.handleSyncStep1(f.Payload) {
				return false
			}
		case msgSyncStep2:
			s.logger.Warn().Msg("sync step 2 received from client, a server-only direction, dropping")
		case msgUpdate:
			s.handleUpdate(f.Payload)
		default:
			s.logger.Warn().Uint64("msg", f.Msg).Msg("unknown sync message byte, dropping")
		}
	case protoAwareness:
		// Accepted and ignored: no state change, no fan-out, so a future
		// awareness broadcast feature can land without a protocol break.
		s.logger.Debug().Int("bytes", len(f.Payload)).Msg("awareness frame received, logged only")
	case protoMetadata:
		s.logger.Warn().Msg("metadata frame received from client, a server-only direction, dropping")
	default:
		s.logger.Warn().Uint64("proto", f.Proto).Msg("unknown protocol byte, dropping")
	}
	return true
}

// handleSyncStep1 implements the handshake: it loads or creates the
// path-bound document, replies with the diff the client is missing plus
// its metadata, and subscribes the session to the document's broadcast
// channel on first handshake. It returns false only when writing a reply
// to the peer fails.
func (s *Session) handleSyncStep1(clientSV []byte) bool {
	if s.cfg.PathGUID == "" {
		s.logger.Warn().Msg("sync step 1 with no path-bound document, dropping frame")
		return true
	}
	if err := crdt.ValidateStateVector(clientSV); err != nil {
		s.logger.Warn().Err(err).Msg("malformed client state vector, dropping frame")
		return true
	}

	doc, meta, err := s.cfg.Store.LoadOrCreate(s.cfg.PathGUID, s.cfg.VaultID, s.cfg.DocFactory)
	if err != nil {
		s.logger.Error().Err(err).Msg("load_or_create failed during handshake")
		return true
	}

	diff, err := doc.Diff(clientSV)
	if err != nil {
		s.logger.Warn().Err(err).Msg("diff against client state vector failed, dropping frame")
		return true
	}
	if err := s.writeFrame(protoSync, msgSyncStep2, diff); err != nil {
		s.logger.Debug().Err(err).Msg("failed to write sync step 2, closing")
		return false
	}
	if err := s.writeFrame(protoMetadata, msgMetadataPayload, toMetadataPayload(meta).marshal()); err != nil {
		s.logger.Debug().Err(err).Msg("failed to write metadata frame, closing")
		return false
	}

	if _, subscribed := s.subs[s.cfg.PathGUID]; !subscribed {
		recv := s.cfg.Registry.Subscribe(s.cfg.PathGUID)
		s.subs[s.cfg.PathGUID] = &subscription{guid: s.cfg.PathGUID, recv: recv}
		s.state = StateSubscribed
	}
	return true
}

// handleUpdate implements the incremental-update path: apply, classify,
// persist (the document first, then the edit record), and fan out, in that
// order, with the store commit and the broadcast enqueue happening inside
// this single dispatch call so ordering within one document is never
// interleaved with another update to it. A failed save aborts the update:
// no edit record is written and nothing is broadcast.
func (s *Session) handleUpdate(update []byte) {
	if !s.cfg.Capability.CanWrite() {
		return // Viewer: silently drop, read-only.
	}
	if s.cfg.PathGUID == "" {
		s.logger.Warn().Msg("update with no path-bound document, dropping frame")
		return
	}

	doc, _, err := s.cfg.Store.LoadOrCreate(s.cfg.PathGUID, s.cfg.VaultID, s.cfg.DocFactory)
	if err != nil {
		s.logger.Error().Err(err).Msg("load_or_create failed before applying update")
		return
	}

	var before *string
	if sample, ok := doc.TextSample(textFragment, textSampleChars); ok {
		before = &sample
	}

	if err := doc.Apply(update); err != nil {
		s.logger.Warn().Err(err).Msg("malformed update, dropping frame")
		return
	}

	var after *string
	if sample, ok := doc.TextSample(textFragment, textSampleChars); ok {
		after = &sample
	}

	editType := audit.Classify(before, after, len(update))

	if err := s.cfg.Store.Save(s.cfg.PathGUID, s.cfg.VaultID, doc); err != nil {
		s.logger.Error().Err(err).Msg("failed to save document, dropping update")
		return
	}

	if err := s.cfg.Store.RecordEdit(&types.EditRecord{
		DocumentGUID:  s.cfg.PathGUID,
		PrincipalID:   s.cfg.Principal.ID,
		SessionID:     s.id,
		RawUpdate:     update,
		EditType:      editType,
		BlockType:     textFragment,
		ContentBefore: before,
		ContentAfter:  after,
	}); err != nil {
		s.logger.Error().Err(err).Msg("failed to record edit, continuing")
	} else {
		s.cfg.Metrics.EditRecorded(editType)
	}

	frame := wire.EncodeFrame(protoSync, msgUpdate, update)
	if !s.cfg.Registry.Broadcast(s.cfg.PathGUID, frame) {
		s.logger.Debug().Msg("broadcast had no subscribers")
	}
}

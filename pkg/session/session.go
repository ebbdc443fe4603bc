package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cuemby/syncd/pkg/crdt"
	"github.com/cuemby/syncd/pkg/fanout"
	"github.com/cuemby/syncd/pkg/log"
	"github.com/cuemby/syncd/pkg/store"
	"github.com/cuemby/syncd/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// State names the session's position in the Authenticated -> Connected ->
// Subscribed -> Closing lifecycle. Authenticated precedes session
// construction (C6 owns it); Subscribed is entered when the first
// handshake subscribes the session to its document's broadcast channel.
type State int

const (
	StateConnected State = iota
	StateSubscribed
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateSubscribed:
		return "subscribed"
	case StateClosing:
		return "closing"
	default:
		return "connected"
	}
}

const (
	defaultKeepAlive   = 5 * time.Second
	defaultIdleBackoff = 10 * time.Millisecond
	textFragment       = "prosemirror"
	textSampleChars    = 500
)

// Config assembles everything one session needs. Principal, VaultID, and
// Capability are resolved by the upgrade handler (C6) before the session
// is constructed; PathGUID is the optional document GUID bound to the
// connection's URL path.
type Config struct {
	Transport  Transport
	Principal  types.Principal
	VaultID    string
	PathGUID   string
	Capability types.Capability
	Store      store.Store
	Registry   *fanout.Registry
	DocFactory crdt.Factory
	Metrics    Metrics
	Logger     zerolog.Logger

	KeepAlive   time.Duration
	IdleBackoff time.Duration
}

type subscription struct {
	guid string
	recv *fanout.Receiver
}

// Session is one connection's state machine. It is not safe for concurrent
// use; Run owns it for its entire lifetime.
type Session struct {
	cfg Config

	id    string
	state State

	subs map[string]*subscription

	keepAlive   time.Duration
	idleBackoff time.Duration
	logger      zerolog.Logger
}

// New constructs a session. Capability must already reflect C2's
// resolution for (Config.VaultID, Config.Principal).
func New(cfg Config) *Session {
	if cfg.Metrics == nil {
		cfg.Metrics = NopMetrics{}
	}
	keepAlive := cfg.KeepAlive
	if keepAlive == 0 {
		keepAlive = defaultKeepAlive
	}
	idleBackoff := cfg.IdleBackoff
	if idleBackoff == 0 {
		idleBackoff = defaultIdleBackoff
	}

	id := uuid.New().String()
	sessionLogger := log.WithVaultID(log.WithDocGUID(log.WithSessionID(cfg.Logger, id), cfg.PathGUID), cfg.VaultID)
	return &Session{
		cfg:         cfg,
		id:          id,
		state:       StateConnected,
		subs:        make(map[string]*subscription),
		keepAlive:   keepAlive,
		idleBackoff: idleBackoff,
		logger:      sessionLogger,
	}
}

// ID returns the session's fresh UUID, minted at construction.
func (s *Session) ID() string { return s.id }

// State reports the session's current lifecycle state.
func (s *Session) State() State { return s.state }

type inboundItem struct {
	frame decodedFrame
	err   error
}

// Run drives the session to completion: it returns once the peer
// disconnects, the context is cancelled, or an unrecoverable transport
// error occurs. It never panics on malformed input — frame-level errors
// are logged and the offending frame is dropped.
func (s *Session) Run(ctx context.Context) error {
	if !s.cfg.Capability.CanRead() {
		s.cfg.Metrics.SessionDenied()
		s.writeClose()
		return nil
	}
	s.cfg.Metrics.SessionConnected()
	defer func() {
		s.state = StateClosing
		s.teardown()
		s.cfg.Metrics.SessionClosed()
	}()

	inbound := make(chan inboundItem, 8)
	go s.readPump(inbound)

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case item, ok := <-inbound:
			if !ok {
				return nil
			}
			if item.err != nil {
				s.cfg.Metrics.FrameError()
				s.logger.Warn().Err(item.err).Msg("dropping malformed frame")
				continue
			}
			if !s.dispatch(item.frame) {
				return nil
			}
		case <-ticker.C:
			if err := s.cfg.Transport.WriteMessage(PingMessage, nil); err != nil {
				s.logger.Debug().Err(err).Msg("keep-alive ping failed, closing")
				return nil
			}
		default:
			if len(s.subs) == 0 {
				// No subscriptions: mask the broadcast arm entirely and
				// block on inbound/timer/ctx so we don't spin.
				select {
				case <-ctx.Done():
					return nil
				case item, ok := <-inbound:
					if !ok {
						return nil
					}
					if item.err != nil {
						s.cfg.Metrics.FrameError()
						s.logger.Warn().Err(item.err).Msg("dropping malformed frame")
						continue
					}
					if !s.dispatch(item.frame) {
						return nil
					}
				case <-ticker.C:
					if err := s.cfg.Transport.WriteMessage(PingMessage, nil); err != nil {
						s.logger.Debug().Err(err).Msg("keep-alive ping failed, closing")
						return nil
					}
				}
				continue
			}

			if s.pollBroadcasts() {
				continue
			}
			time.Sleep(s.idleBackoff)
		}
	}
}

// pollBroadcasts yields the first available payload across every
// subscription receiver, relaying it to the peer. It returns true if any
// receiver had something buffered.
func (s *Session) pollBroadcasts() bool {
	for guid, sub := range s.subs {
		ev, ok := sub.recv.TryRecv()
		if !ok {
			continue
		}
		if ev.Lagged > 0 {
			s.cfg.Metrics.BroadcastLagged()
			s.logger.Info().Str("doc_guid", guid).Int("lagged", ev.Lagged).
				Msg("receiver lagged, resuming at newest broadcast value")
		}
		s.cfg.Metrics.BroadcastMessage()
		// ev.Payload is already a fully-encoded (0, 2, update_bytes) frame,
		// built byte-for-byte by the publishing session — relay it verbatim.
		if err := s.cfg.Transport.WriteMessage(BinaryMessage, ev.Payload); err != nil {
			s.logger.Debug().Err(err).Msg("relay to peer failed")
		}
		return true
	}
	return false
}

func (s *Session) teardown() {
	for guid, sub := range s.subs {
		s.cfg.Registry.Unsubscribe(guid, sub.recv)
	}
	s.subs = nil
	s.cfg.Transport.Close()
}

func (s *Session) writeClose() {
	s.cfg.Transport.WriteMessage(CloseMessage, nil)
	s.cfg.Transport.Close()
}

// metadataPayload is the JSON body multiplexed on the metadata channel
// (protocol byte 2, message byte 1) alongside Sync Step 2.
type metadataPayload struct {
	Title       string   `json:"title"`
	Icon        string   `json:"icon,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	DocType     string   `json:"doc_type"`
	ModifiedAt  string   `json:"modified_at"`
}

func toMetadataPayload(m *types.DocumentMetadata) metadataPayload {
	return metadataPayload{
		Title:       m.Title,
		Icon:        m.Icon,
		Description: m.Description,
		Tags:        m.Tags,
		DocType:     string(m.DocType),
		ModifiedAt:  m.ModifiedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (m metadataPayload) marshal() []byte {
	b, err := json.Marshal(m)
	if err != nil {
		return []byte("{}")
	}
	return b
}

package session

import "time"

// Transport is the minimal connection surface the session loop drives.
// *websocket.Conn from gorilla/websocket satisfies it directly; tests
// supply a channel-backed fake.
type Transport interface {
	ReadMessage() (messageType int, payload []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	Close() error
}

// Message types mirror gorilla/websocket's constants so callers don't need
// to import it just to pass a message type through this package's API.
const (
	BinaryMessage = 2
	CloseMessage  = 8
	PingMessage   = 9
	PongMessage   = 10
)

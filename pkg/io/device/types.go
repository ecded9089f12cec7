package device

import (
	"time"

	"github.com/google/uuid"
)

type Transport string

const (
	TransportWS Transport = "ws"
)

type Capabilities struct {
	AudioSink bool // receives per-line audio payloads
	TextSink  bool // receives line text/viseme events
}

type EndpointID uuid.UUID

// Endpoint is one delivery channel to a viewer client.
type Endpoint interface {
	// Identity
	ID() EndpointID
	Caps() Capabilities
	Transport() Transport
	// abstraction for publisher
	SendLine(sessionID uuid.UUID, seq int, line any) error
	SendAudioFrame(sessionID uuid.UUID, seq int, frame []byte) error
	SendEvent(sessionID uuid.UUID, name string, payload any) error
	Touch()
	// lifecycle
	IsAlive() bool
	Close() error
	LastActive() time.Time
}

// Viewer is one connected audience member of a broadcast session. A viewer
// can hold multiple endpoints (e.g. separate text and audio sockets).
type Viewer struct {
	SessionID  uuid.UUID
	ViewerID   uuid.UUID
	Caps       Capabilities
	LastActive time.Time
	Endpoints  map[EndpointID]Endpoint
}

package websocket

import (
	"sync"
	"time"

	"github.com/cryptocast/cryptocast/pkg/io/device"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type wsEndpoint struct {
	id         uuid.UUID
	client     *websocket.Conn
	caps       device.Capabilities
	lastActive time.Time
	writeMu    sync.Mutex
}

func New(client *websocket.Conn, caps device.Capabilities) device.Endpoint {
	return &wsEndpoint{
		id:         uuid.New(),
		client:     client,
		caps:       caps,
		lastActive: time.Now(),
	}
}

// ID implements device.Endpoint.
func (w *wsEndpoint) ID() device.EndpointID {
	return device.EndpointID(w.id)
}

// Caps implements device.Endpoint.
func (w *wsEndpoint) Caps() device.Capabilities {
	return w.caps
}

// Transport implements device.Endpoint.
func (w *wsEndpoint) Transport() device.Transport {
	return device.TransportWS
}

// SendLine implements device.Endpoint.
func (w *wsEndpoint) SendLine(sessionID uuid.UUID, seq int, line any) error {
	msg := struct {
		Name    string `json:"name"`
		Seq     int    `json:"seq"`
		Payload any    `json:"payload"`
	}{Name: "line", Seq: seq, Payload: line}
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	return w.client.WriteJSON(msg)
}

// SendAudioFrame implements device.Endpoint.
func (w *wsEndpoint) SendAudioFrame(sessionID uuid.UUID, seq int, frame []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	return w.client.WriteMessage(websocket.BinaryMessage, frame)
}

// SendEvent implements device.Endpoint.
func (w *wsEndpoint) SendEvent(sessionID uuid.UUID, name string, payload any) error {
	msg := struct {
		Name    string `json:"name"`
		Payload any    `json:"payload"`
	}{Name: name, Payload: payload}
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	return w.client.WriteJSON(msg)
}

func (w *wsEndpoint) Touch() {
	w.lastActive = time.Now()
}

// IsAlive implements device.Endpoint.
func (w *wsEndpoint) IsAlive() bool {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	err := w.client.WriteMessage(websocket.PingMessage, []byte("ping"))
	return err == nil
}

// LastActive implements device.Endpoint.
func (w *wsEndpoint) LastActive() time.Time {
	return w.lastActive
}

// Close implements device.Endpoint.
func (w *wsEndpoint) Close() error {
	return w.client.Close()
}

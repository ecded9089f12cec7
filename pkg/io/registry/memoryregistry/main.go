package memoryregistry

import (
	"fmt"
	"sync"

	"github.com/cryptocast/cryptocast/pkg/io/device"
	"github.com/cryptocast/cryptocast/pkg/io/registry"
	"github.com/google/uuid"
)

type mmrRegistry struct {
	mu sync.RWMutex
	// sessionID -> viewerID -> viewer
	vwMap map[uuid.UUID]map[uuid.UUID]*device.Viewer
}

func New() registry.Registry {
	return &mmrRegistry{
		vwMap: make(map[uuid.UUID]map[uuid.UUID]*device.Viewer),
	}
}

// UpsertViewer implements registry.Registry.
func (m *mmrRegistry) UpsertViewer(sessionID uuid.UUID, v device.Viewer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.vwMap[sessionID] == nil {
		m.vwMap[sessionID] = make(map[uuid.UUID]*device.Viewer)
	}
	m.vwMap[sessionID][v.ViewerID] = &v
	return nil
}

// RemoveViewer implements registry.Registry.
func (m *mmrRegistry) RemoveViewer(sessionID uuid.UUID, viewerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sessionMap := m.vwMap[sessionID]
	if sessionMap == nil {
		return nil
	}
	if v := sessionMap[viewerID]; v != nil {
		for _, ep := range v.Endpoints {
			_ = ep.Close()
		}
	}
	delete(sessionMap, viewerID)
	if len(sessionMap) == 0 {
		delete(m.vwMap, sessionID)
	}
	return nil
}

// AttachEndpoint implements registry.Registry.
func (m *mmrRegistry) AttachEndpoint(sessionID uuid.UUID, viewerID uuid.UUID, ep device.Endpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sessionMap := m.vwMap[sessionID]; sessionMap != nil {
		if v := sessionMap[viewerID]; v != nil {
			if v.Endpoints == nil {
				v.Endpoints = make(map[device.EndpointID]device.Endpoint)
			}
			v.Endpoints[ep.ID()] = ep
			return nil
		}
	}
	return fmt.Errorf("couldn't attach endpoint: unknown viewer")
}

// DetachEndpoint implements registry.Registry.
func (m *mmrRegistry) DetachEndpoint(sessionID uuid.UUID, viewerID uuid.UUID, ep device.Endpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sessionMap := m.vwMap[sessionID]; sessionMap != nil {
		if v := sessionMap[viewerID]; v != nil {
			delete(v.Endpoints, ep.ID())
			return nil
		}
	}
	return fmt.Errorf("couldn't detach endpoint: unknown viewer")
}

// ListSessionViewers implements registry.Registry.
func (m *mmrRegistry) ListSessionViewers(sessionID uuid.UUID) []device.Viewer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []device.Viewer
	for _, v := range m.vwMap[sessionID] {
		out = append(out, *v)
	}
	return out
}

// ListSessionEndpoints implements registry.Registry.
func (m *mmrRegistry) ListSessionEndpoints(sessionID uuid.UUID) []device.Endpoint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []device.Endpoint
	for _, v := range m.vwMap[sessionID] {
		for _, ep := range v.Endpoints {
			out = append(out, ep)
		}
	}
	return out
}

package registry

import (
	"github.com/cryptocast/cryptocast/pkg/io/device"
	"github.com/google/uuid"
)

// Registry tracks which viewers are attached to which broadcast session.
type Registry interface {
	// viewer lifecycle
	UpsertViewer(sessionID uuid.UUID, v device.Viewer) error
	RemoveViewer(sessionID uuid.UUID, viewerID uuid.UUID) error
	// endpoint lifecycle
	AttachEndpoint(sessionID uuid.UUID, viewerID uuid.UUID, ep device.Endpoint) error
	DetachEndpoint(sessionID uuid.UUID, viewerID uuid.UUID, ep device.Endpoint) error
	// queries
	ListSessionViewers(sessionID uuid.UUID) []device.Viewer
	ListSessionEndpoints(sessionID uuid.UUID) []device.Endpoint
}

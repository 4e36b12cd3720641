package pipeline

import (
	"context"
	"time"

	"github.com/banshee-data/roomscan/internal/scan/hypothesis"
	"github.com/banshee-data/roomscan/internal/scan/mesh"
)

// MeshEventHandler receives the mesh lifecycle events of a scan session.
// Session implements it; production code adapts the platform scan
// session to these calls at the boundary.
type MeshEventHandler interface {
	// MeshAdded is delivered when the session anchors a new surface cluster.
	MeshAdded(u *mesh.MeshUpdate)
	// MeshUpdated is delivered when an anchored cluster's geometry changes.
	// Processed identically to MeshAdded.
	MeshUpdated(u *mesh.MeshUpdate)
	// MeshRemoved is delivered when the session retracts an anchor. It has
	// no effect on the accepted hypothesis set: hypotheses are not tied to
	// mesh anchor lifetime.
	MeshRemoved(meshID string)
}

// MeshEventSource drives a handler with mesh events until the context is
// cancelled or the source is exhausted. Implemented by replay readers
// and platform adapters.
type MeshEventSource interface {
	Run(ctx context.Context, h MeshEventHandler) error
}

// PersistenceSink records accepted hypotheses and session lifecycle
// events to storage. It is an adapter, not a domain layer, so
// implementations live outside the mesh/classify/hypothesis packages.
type PersistenceSink interface {
	PersistHypothesis(sessionID string, h hypothesis.Hypothesis) error
	PersistSessionEvent(sessionID, kind, detail string, ts time.Time) error
}

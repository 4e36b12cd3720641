package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/roomscan/internal/scan/classify"
	"github.com/banshee-data/roomscan/internal/scan/hypothesis"
	"github.com/banshee-data/roomscan/internal/scan/mesh"
)

// SessionState represents the lifecycle state of a scanning session.
type SessionState string

const (
	SessionIdle    SessionState = "idle"    // Not accepting events
	SessionRunning SessionState = "running" // Processing mesh updates
)

// Session event kinds recorded through the persistence sink.
const (
	EventSessionStarted = "session_started"
	EventSessionStopped = "session_stopped"
	EventSessionFailed  = "session_failed"
	EventSetCleared     = "set_cleared"
	EventMeshRemoved    = "mesh_removed"
)

// SessionConfig holds dependencies for a scanning session.
type SessionConfig struct {
	SessionID  string                  // Generated when empty
	Classifier *classify.Classifier    // Defaults to NewClassifier()
	Tracker    *hypothesis.Tracker     // Defaults to a tracker with default policy
	Sink       PersistenceSink         // Optional: records hypotheses and lifecycle events
	Notify     hypothesis.Notify       // Optional: renderer change notifications
	Clock      func() time.Time        // Defaults to time.Now; tests inject a fake

	// MinConfidence, when > 0, drops classified candidates whose
	// confidence is below the floor before they reach the tracker.
	MinConfidence float64
}

// Session runs the extractor → classifier → tracker pipeline for one
// scanning session. Each mesh event is processed synchronously to
// completion; the tracker provides the single synchronization point, so
// events for different mesh anchors may be delivered concurrently.
type Session struct {
	id         string
	classifier *classify.Classifier
	tracker    *hypothesis.Tracker
	sink       PersistenceSink
	renderer   hypothesis.Notify
	clock      func() time.Time
	minConf    float64
	stats      *SessionStats

	mu    sync.Mutex
	state SessionState
}

// NewSession creates an idle session, filling zero-valued dependencies
// with defaults.
func NewSession(cfg SessionConfig) *Session {
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	if cfg.Classifier == nil {
		cfg.Classifier = classify.NewClassifier()
	}
	if cfg.Tracker == nil {
		cfg.Tracker = hypothesis.NewTracker(hypothesis.DefaultTrackerConfig())
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	s := &Session{
		id:         cfg.SessionID,
		classifier: cfg.Classifier,
		tracker:    cfg.Tracker,
		sink:       cfg.Sink,
		renderer:   cfg.Notify,
		clock:      cfg.Clock,
		minConf:    cfg.MinConfidence,
		stats:      NewSessionStats(),
		state:      SessionIdle,
	}
	s.tracker.SetNotify((*sessionNotify)(s))
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Tracker exposes the hypothesis set owner for snapshot reads.
func (s *Session) Tracker() *hypothesis.Tracker { return s.tracker }

// Stats exposes the session counters.
func (s *Session) Stats() *SessionStats { return s.stats }

// Start transitions Idle → Running. Starting a running session is a
// no-op.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SessionRunning {
		return
	}
	s.state = SessionRunning
	diagf("session %s started", s.id)
	s.persistEvent(EventSessionStarted, "")
}

// Stop transitions Running → Idle and discards the accepted set. No
// state persists across sessions; every new scan starts empty.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SessionIdle {
		return
	}
	s.state = SessionIdle
	s.tracker.Reset()
	diagf("session %s stopped", s.id)
	s.persistEvent(EventSessionStopped, "")
}

// Fail handles a "session failed/interrupted" signal from the scan
// collaborator: stop accepting events without unwinding anything beyond
// the normal session-end discard.
func (s *Session) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SessionIdle {
		return
	}
	s.state = SessionIdle
	s.tracker.Reset()
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	opsf("session %s failed: %s", s.id, detail)
	s.persistEvent(EventSessionFailed, detail)
}

// MeshAdded implements MeshEventHandler.
func (s *Session) MeshAdded(u *mesh.MeshUpdate) { s.process(u) }

// MeshUpdated implements MeshEventHandler. Added and updated meshes run
// the identical pipeline.
func (s *Session) MeshUpdated(u *mesh.MeshUpdate) { s.process(u) }

// MeshRemoved implements MeshEventHandler. The accepted set is left
// untouched; the removal is only counted and recorded.
func (s *Session) MeshRemoved(meshID string) {
	if s.State() != SessionRunning {
		s.stats.add(func(c *SessionCounts) { c.DroppedIdle++ })
		return
	}
	s.stats.add(func(c *SessionCounts) { c.MeshRemovals++ })
	tracef("mesh %s removed; hypotheses retained", meshID)
	s.mu.Lock()
	s.persistEvent(EventMeshRemoved, meshID)
	s.mu.Unlock()
}

// process runs one mesh update through the full pipeline. Every branch
// has a defined non-error outcome; malformed frames and negative
// classifications are expected, frequent occurrences during scanning.
func (s *Session) process(u *mesh.MeshUpdate) {
	if s.State() != SessionRunning {
		s.stats.add(func(c *SessionCounts) { c.DroppedIdle++ })
		return
	}
	s.stats.add(func(c *SessionCounts) { c.Updates++ })

	stats, ok := mesh.ExtractStats(u)
	if !ok {
		s.stats.add(func(c *SessionCounts) { c.RejectedGeometry++ })
		tracef("mesh %s: degenerate update rejected", meshID(u))
		return
	}

	result, ok := s.classifier.Classify(stats)
	if !ok {
		s.stats.add(func(c *SessionCounts) { c.NoMatch++ })
		return
	}
	if s.minConf > 0 && result.Confidence < s.minConf {
		s.stats.add(func(c *SessionCounts) { c.BelowConfidence++ })
		return
	}

	if _, accepted := s.tracker.Offer(result.Class, result.Confidence, stats, s.clock()); !accepted {
		s.stats.add(func(c *SessionCounts) { c.OfferRejected++ })
	}
}

func meshID(u *mesh.MeshUpdate) string {
	if u == nil {
		return "<nil>"
	}
	return u.MeshID
}

// persistEvent records a lifecycle event through the sink. Callers hold
// s.mu; sink errors are logged, never propagated.
func (s *Session) persistEvent(kind, detail string) {
	if s.sink == nil {
		return
	}
	if err := s.sink.PersistSessionEvent(s.id, kind, detail, s.clock()); err != nil {
		opsf("session %s: persist %s: %v", s.id, kind, err)
	}
}

// sessionNotify adapts tracker change events onto the session: counters,
// logging, persistence, and fan-out to the renderer callback. It runs
// under the tracker lock, so it must not read the tracker back.
type sessionNotify Session

func (n *sessionNotify) HypothesisAccepted(h hypothesis.Hypothesis) {
	s := (*Session)(n)
	s.stats.add(func(c *SessionCounts) { c.Accepted++ })
	diagf("session %s: accepted %s %s conf=%.2f at (%.2f, %.2f, %.2f)",
		s.id, h.Class, h.ID, h.Confidence, h.Position.X, h.Position.Y, h.Position.Z)
	if s.sink != nil {
		if err := s.sink.PersistHypothesis(s.id, h); err != nil {
			opsf("session %s: persist hypothesis %s: %v", s.id, h.ID, err)
		}
	}
	if s.renderer != nil {
		s.renderer.HypothesisAccepted(h)
	}
}

func (n *sessionNotify) HypothesesCleared(reason hypothesis.ClearReason) {
	s := (*Session)(n)
	if reason == hypothesis.ClearCapacity {
		s.stats.add(func(c *SessionCounts) { c.CapacityResets++ })
	}
	diagf("session %s: hypothesis set cleared (%s)", s.id, reason)
	if s.sink != nil {
		if err := s.sink.PersistSessionEvent(s.id, EventSetCleared, string(reason), s.clock()); err != nil {
			opsf("session %s: persist clear: %v", s.id, err)
		}
	}
	if s.renderer != nil {
		s.renderer.HypothesesCleared(reason)
	}
}

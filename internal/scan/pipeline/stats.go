package pipeline

import "sync"

// SessionCounts is a point-in-time copy of the session counters. The
// cooldown/duplicate split for rejected offers lives in the tracker's
// own counters; the session only sees the combined outcome.
type SessionCounts struct {
	Updates          int64 // mesh updates delivered while running
	DroppedIdle      int64 // events delivered while not running
	RejectedGeometry int64 // empty or non-finite updates
	NoMatch          int64 // stats that matched no classification rule
	BelowConfidence  int64 // candidates under the configured confidence floor
	OfferRejected    int64 // candidates rejected by a tracker gate
	Accepted         int64
	CapacityResets   int64
	MeshRemovals     int64
}

// SessionStats tracks per-session pipeline counters with thread-safe
// operations.
type SessionStats struct {
	mu     sync.Mutex
	counts SessionCounts
}

// NewSessionStats creates an empty counter set.
func NewSessionStats() *SessionStats {
	return &SessionStats{}
}

func (s *SessionStats) add(f func(*SessionCounts)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(&s.counts)
}

// Snapshot returns a copy of the current counters.
func (s *SessionStats) Snapshot() SessionCounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts
}

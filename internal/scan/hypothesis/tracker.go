package hypothesis

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/roomscan/internal/scan/classify"
	"github.com/banshee-data/roomscan/internal/scan/mesh"
)

// ClearReason distinguishes why the accepted set was emptied.
type ClearReason string

const (
	// ClearCapacity means the set hit its cap and was reset before a new accept
	ClearCapacity ClearReason = "capacity"
	// ClearSessionEnd means the owning session stopped and discarded its state
	ClearSessionEnd ClearReason = "session_end"
)

// Hypothesis is an accepted, labelled furniture guess. It is immutable
// after creation; removal only ever happens as a whole-set clear.
//
// SourceMeshID is kept for traceability and debug display only. It is
// never an identity key: the same physical object can be re-detected
// from a different mesh anchor after the session rebuilds its surfaces.
type Hypothesis struct {
	ID           string // fresh uuid assigned at acceptance
	Class        classify.FurnitureClass
	Position     r3.Vec // world-space center at acceptance time
	Dimensions   r3.Vec
	Confidence   float64
	SourceMeshID string
	AcceptedAt   time.Time
}

// Notify receives change events from the tracker. Callbacks run on the
// offering goroutine with the tracker locked, which preserves event
// ordering (a capacity clear is always delivered before the accept that
// triggered it); implementations must not call back into the tracker.
type Notify interface {
	// HypothesisAccepted is delivered once per accepted hypothesis.
	HypothesisAccepted(h Hypothesis)
	// HypothesesCleared is delivered when the whole set is discarded.
	HypothesesCleared(reason ClearReason)
}

// TrackerConfig holds the lifecycle policy parameters.
type TrackerConfig struct {
	Cooldown      time.Duration // minimum time between two accepts, session-global
	DedupRadius   float64       // meters; centers closer than this are one object
	MaxHypotheses int           // full-reset threshold for the accepted set
}

// DefaultTrackerConfig returns the production lifecycle policy.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		Cooldown:      2 * time.Second,
		DedupRadius:   0.5,
		MaxHypotheses: 10,
	}
}

// TrackerCounts reports gate outcomes since the tracker was created.
type TrackerCounts struct {
	Accepted          int64
	RejectedCooldown  int64
	RejectedDuplicate int64
	CapacityResets    int64
}

// Tracker owns the evolving hypothesis set for one scanning session.
type Tracker struct {
	mu           sync.RWMutex
	config       TrackerConfig
	accepted     []Hypothesis
	lastAccepted time.Time // zero value = never
	notify       Notify
	counts       TrackerCounts
}

// NewTracker creates a tracker with the specified policy. Zero-valued
// config fields fall back to the defaults.
func NewTracker(config TrackerConfig) *Tracker {
	defaults := DefaultTrackerConfig()
	if config.Cooldown <= 0 {
		config.Cooldown = defaults.Cooldown
	}
	if config.DedupRadius <= 0 {
		config.DedupRadius = defaults.DedupRadius
	}
	if config.MaxHypotheses <= 0 {
		config.MaxHypotheses = defaults.MaxHypotheses
	}
	return &Tracker{config: config}
}

// SetNotify installs the change-notification sink. Pass nil to disable.
func (t *Tracker) SetNotify(n Notify) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notify = n
}

// Offer runs a classified candidate through the lifecycle gates and
// returns the accepted hypothesis, or false when a gate rejected it.
// Gate order: cooldown, spatial dedup, capacity reset, accept. The
// capacity reset and the subsequent accept happen in one critical
// section so readers never observe a partially cleared set.
func (t *Tracker) Offer(class classify.FurnitureClass, confidence float64, stats *mesh.GeometryStats, now time.Time) (*Hypothesis, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Cooldown gate: throttle bursty mesh updates while a scan settles.
	if !t.lastAccepted.IsZero() && now.Sub(t.lastAccepted) < t.config.Cooldown {
		t.counts.RejectedCooldown++
		return nil, false
	}

	// Spatial dedup gate: a nearby center is the same physical object
	// re-observed, possibly from a different mesh anchor.
	for i := range t.accepted {
		if r3.Norm(r3.Sub(t.accepted[i].Position, stats.WorldCenter)) < t.config.DedupRadius {
			t.counts.RejectedDuplicate++
			return nil, false
		}
	}

	// Capacity gate: past the cap the session is almost certainly
	// producing noise, so restart the whole set rather than evict.
	if len(t.accepted) >= t.config.MaxHypotheses {
		t.accepted = t.accepted[:0]
		t.counts.CapacityResets++
		if t.notify != nil {
			t.notify.HypothesesCleared(ClearCapacity)
		}
	}

	h := Hypothesis{
		ID:           uuid.NewString(),
		Class:        class,
		Position:     stats.WorldCenter,
		Dimensions:   stats.Dimensions,
		Confidence:   confidence,
		SourceMeshID: stats.MeshID,
		AcceptedAt:   now,
	}
	t.accepted = append(t.accepted, h)
	t.lastAccepted = now
	t.counts.Accepted++
	if t.notify != nil {
		t.notify.HypothesisAccepted(h)
	}
	return &h, true
}

// Hypotheses returns a snapshot copy of the accepted set in acceptance
// order.
func (t *Tracker) Hypotheses() []Hypothesis {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Hypothesis, len(t.accepted))
	copy(out, t.accepted)
	return out
}

// Count returns the current size of the accepted set.
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.accepted)
}

// Counts returns gate outcome counters.
func (t *Tracker) Counts() TrackerCounts {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.counts
}

// Reset discards the accepted set and re-arms the cooldown. Called on
// session end; every new scan starts empty.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	hadAny := len(t.accepted) > 0
	t.accepted = nil
	t.lastAccepted = time.Time{}
	if hadAny && t.notify != nil {
		t.notify.HypothesesCleared(ClearSessionEnd)
	}
}

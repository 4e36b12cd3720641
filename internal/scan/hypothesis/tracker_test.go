package hypothesis

import (
	"fmt"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/roomscan/internal/scan/classify"
	"github.com/banshee-data/roomscan/internal/scan/mesh"
)

func statsAt(center r3.Vec) *mesh.GeometryStats {
	return &mesh.GeometryStats{
		MeshID:      "anchor_test",
		WorldCenter: center,
		Dimensions:  r3.Vec{X: 1.0, Y: 0.75, Z: 1.0},
		VertexCount: 500,
		FaceCount:   250,
	}
}

// notifyRecorder captures change events in delivery order.
type notifyRecorder struct {
	events []string
}

func (r *notifyRecorder) HypothesisAccepted(h Hypothesis) {
	r.events = append(r.events, "accepted:"+string(h.Class))
}

func (r *notifyRecorder) HypothesesCleared(reason ClearReason) {
	r.events = append(r.events, "cleared:"+string(reason))
}

func TestOffer_FirstAccept(t *testing.T) {
	tracker := NewTracker(DefaultTrackerConfig())
	now := time.Now()

	h, ok := tracker.Offer(classify.ClassTable, 0.8, statsAt(r3.Vec{X: 1, Y: 0.5, Z: 1}), now)
	if !ok {
		t.Fatal("expected first offer to be accepted")
	}
	if h.ID == "" {
		t.Error("expected a fresh hypothesis ID")
	}
	if h.Class != classify.ClassTable {
		t.Errorf("class = %s, want table", h.Class)
	}
	if h.SourceMeshID != "anchor_test" {
		t.Errorf("source mesh = %s, want anchor_test", h.SourceMeshID)
	}
	if !h.AcceptedAt.Equal(now) {
		t.Errorf("accepted at = %v, want %v", h.AcceptedAt, now)
	}
	if tracker.Count() != 1 {
		t.Errorf("set size = %d, want 1", tracker.Count())
	}
}

func TestOffer_CooldownGate(t *testing.T) {
	tracker := NewTracker(DefaultTrackerConfig())
	base := time.Now()

	if _, ok := tracker.Offer(classify.ClassTable, 0.8, statsAt(r3.Vec{X: 0, Y: 0, Z: 0}), base); !ok {
		t.Fatal("expected first offer accepted")
	}
	// 0.5s later, 5m away: inside the cooldown window.
	if _, ok := tracker.Offer(classify.ClassChair, 0.8, statsAt(r3.Vec{X: 5, Y: 0, Z: 0}), base.Add(500*time.Millisecond)); ok {
		t.Error("expected cooldown rejection at 0.5s")
	}
	// 3s later: cooldown elapsed.
	if _, ok := tracker.Offer(classify.ClassChair, 0.8, statsAt(r3.Vec{X: 5, Y: 0, Z: 0}), base.Add(3*time.Second)); !ok {
		t.Error("expected acceptance after cooldown elapsed")
	}

	counts := tracker.Counts()
	if counts.Accepted != 2 || counts.RejectedCooldown != 1 {
		t.Errorf("counts = %+v, want 2 accepted / 1 cooldown reject", counts)
	}
}

func TestOffer_SpatialDedupGate(t *testing.T) {
	tracker := NewTracker(DefaultTrackerConfig())
	base := time.Now()

	if _, ok := tracker.Offer(classify.ClassTable, 0.8, statsAt(r3.Vec{X: 0, Y: 0, Z: 0}), base); !ok {
		t.Fatal("expected first offer accepted")
	}
	// 0.2m away, well past the cooldown: same physical object.
	if _, ok := tracker.Offer(classify.ClassTable, 0.9, statsAt(r3.Vec{X: 0.2, Y: 0, Z: 0}), base.Add(3*time.Second)); ok {
		t.Error("expected dedup rejection at 0.2m")
	}
	// 1.0m away: a distinct object.
	if _, ok := tracker.Offer(classify.ClassTable, 0.9, statsAt(r3.Vec{X: 1.0, Y: 0, Z: 0}), base.Add(6*time.Second)); !ok {
		t.Error("expected acceptance at 1.0m")
	}

	counts := tracker.Counts()
	if counts.RejectedDuplicate != 1 {
		t.Errorf("duplicate rejects = %d, want 1", counts.RejectedDuplicate)
	}
}

func TestOffer_CapacityReset(t *testing.T) {
	tracker := NewTracker(DefaultTrackerConfig())
	recorder := &notifyRecorder{}
	tracker.SetNotify(recorder)
	base := time.Now()

	// 11 accept-eligible offers, spaced past both gates.
	var last *Hypothesis
	for i := 0; i < 11; i++ {
		h, ok := tracker.Offer(
			classify.ClassTable, 0.8,
			statsAt(r3.Vec{X: float64(i) * 2, Y: 0, Z: 0}),
			base.Add(time.Duration(i)*3*time.Second),
		)
		if !ok {
			t.Fatalf("offer %d: expected acceptance", i+1)
		}
		if i == 9 && tracker.Count() != 10 {
			t.Fatalf("after 10th accept: set size = %d, want 10", tracker.Count())
		}
		last = h
	}

	// The 11th accept clears the full set first, then lands alone.
	if tracker.Count() != 1 {
		t.Errorf("final set size = %d, want 1", tracker.Count())
	}
	remaining := tracker.Hypotheses()
	if len(remaining) != 1 || remaining[0].ID != last.ID {
		t.Errorf("expected only the 11th hypothesis to remain")
	}
	if counts := tracker.Counts(); counts.CapacityResets != 1 {
		t.Errorf("capacity resets = %d, want 1", counts.CapacityResets)
	}

	// Clear notification must precede the accept that triggered it.
	if len(recorder.events) != 12 {
		t.Fatalf("notification count = %d, want 12", len(recorder.events))
	}
	if recorder.events[10] != "cleared:capacity" {
		t.Errorf("event 11 = %s, want cleared:capacity", recorder.events[10])
	}
	if recorder.events[11] != "accepted:table" {
		t.Errorf("event 12 = %s, want accepted:table", recorder.events[11])
	}
}

func TestHypotheses_SnapshotIsolation(t *testing.T) {
	tracker := NewTracker(DefaultTrackerConfig())
	base := time.Now()
	tracker.Offer(classify.ClassTable, 0.8, statsAt(r3.Vec{X: 0, Y: 0, Z: 0}), base)

	snapshot := tracker.Hypotheses()
	tracker.Offer(classify.ClassChair, 0.7, statsAt(r3.Vec{X: 5, Y: 0, Z: 0}), base.Add(3*time.Second))

	if len(snapshot) != 1 {
		t.Errorf("snapshot grew after later accept: len = %d", len(snapshot))
	}

	// Mutating the snapshot must not reach the tracker.
	snapshot[0].Confidence = 0
	if tracker.Hypotheses()[0].Confidence != 0.8 {
		t.Error("snapshot mutation leaked into the tracker")
	}
}

func TestOffer_FreshIDs(t *testing.T) {
	tracker := NewTracker(DefaultTrackerConfig())
	base := time.Now()

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		h, ok := tracker.Offer(
			classify.ClassTable, 0.8,
			statsAt(r3.Vec{X: float64(i) * 2, Y: 0, Z: 0}),
			base.Add(time.Duration(i)*3*time.Second),
		)
		if !ok {
			t.Fatalf("offer %d rejected", i)
		}
		if seen[h.ID] {
			t.Fatalf("duplicate hypothesis ID %s", h.ID)
		}
		seen[h.ID] = true
	}
}

func TestReset_DiscardsAndRearms(t *testing.T) {
	tracker := NewTracker(DefaultTrackerConfig())
	recorder := &notifyRecorder{}
	tracker.SetNotify(recorder)
	base := time.Now()

	tracker.Offer(classify.ClassTable, 0.8, statsAt(r3.Vec{X: 0, Y: 0, Z: 0}), base)
	tracker.Reset()

	if tracker.Count() != 0 {
		t.Errorf("set size after reset = %d, want 0", tracker.Count())
	}
	if got := recorder.events[len(recorder.events)-1]; got != "cleared:session_end" {
		t.Errorf("last event = %s, want cleared:session_end", got)
	}

	// The cooldown sentinel is re-armed: an immediate offer is accepted.
	if _, ok := tracker.Offer(classify.ClassTable, 0.8, statsAt(r3.Vec{X: 0, Y: 0, Z: 0}), base.Add(time.Millisecond)); !ok {
		t.Error("expected acceptance right after reset")
	}
}

func TestReset_EmptySetNoNotification(t *testing.T) {
	tracker := NewTracker(DefaultTrackerConfig())
	recorder := &notifyRecorder{}
	tracker.SetNotify(recorder)

	tracker.Reset()
	if len(recorder.events) != 0 {
		t.Errorf("expected no notification for empty reset, got %v", recorder.events)
	}
}

func TestNewTracker_ZeroConfigDefaults(t *testing.T) {
	tracker := NewTracker(TrackerConfig{})
	base := time.Now()

	tracker.Offer(classify.ClassTable, 0.8, statsAt(r3.Vec{X: 0, Y: 0, Z: 0}), base)
	// Default 2s cooldown applies.
	if _, ok := tracker.Offer(classify.ClassTable, 0.8, statsAt(r3.Vec{X: 5, Y: 0, Z: 0}), base.Add(time.Second)); ok {
		t.Error("expected default cooldown to reject")
	}
}

func TestOffer_ConcurrentOffersLinearized(t *testing.T) {
	tracker := NewTracker(TrackerConfig{
		Cooldown:      time.Nanosecond,
		DedupRadius:   0.5,
		MaxHypotheses: 1000,
	})
	base := time.Now()

	done := make(chan struct{})
	for g := 0; g < 4; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 50; i++ {
				center := r3.Vec{X: float64(g*50+i) * 2, Y: 0, Z: 0}
				tracker.Offer(classify.ClassTable, 0.8, statsAt(center), base.Add(time.Duration(g*50+i)*time.Second))
			}
		}(g)
	}
	for g := 0; g < 4; g++ {
		<-done
	}

	counts := tracker.Counts()
	total := counts.Accepted + counts.RejectedCooldown + counts.RejectedDuplicate
	if total != 200 {
		t.Errorf("gate outcomes = %d, want 200", total)
	}
	if int64(tracker.Count()) != counts.Accepted {
		t.Errorf("set size %d != accepted count %d", tracker.Count(), counts.Accepted)
	}
}

func ExampleTracker_Offer() {
	tracker := NewTracker(DefaultTrackerConfig())
	now := time.Unix(1700000000, 0)

	h, ok := tracker.Offer(classify.ClassTable, 0.8, statsAt(r3.Vec{X: 1, Y: 0.5, Z: 1}), now)
	fmt.Println(ok, h.Class)
	// Output: true table
}

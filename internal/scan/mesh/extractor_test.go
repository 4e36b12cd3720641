package mesh

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/spatial/r3"
)

func cubeUpdate() *MeshUpdate {
	return &MeshUpdate{
		MeshID:       "anchor_1",
		LocalToWorld: IdentityPose(),
		Vertices: []r3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 2, Z: 0},
			{X: 0, Y: 0, Z: 3},
			{X: 1, Y: 2, Z: 3},
		},
		Faces: [][3]uint32{{0, 1, 2}, {1, 2, 3}, {2, 3, 4}},
	}
}

func TestExtractStats_BoundingBox(t *testing.T) {
	stats, ok := ExtractStats(cubeUpdate())
	if !ok {
		t.Fatal("expected stats for valid update")
	}

	want := &GeometryStats{
		MeshID:      "anchor_1",
		WorldCenter: r3.Vec{X: 0.5, Y: 1, Z: 1.5},
		Dimensions:  r3.Vec{X: 1, Y: 2, Z: 3},
		VertexCount: 5,
		FaceCount:   3,
	}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractStats_Deterministic(t *testing.T) {
	u := cubeUpdate()
	first, ok := ExtractStats(u)
	if !ok {
		t.Fatal("expected stats")
	}
	second, ok := ExtractStats(u)
	if !ok {
		t.Fatal("expected stats")
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated extraction differs (-first +second):\n%s", diff)
	}
}

func TestExtractStats_AppliesTransform(t *testing.T) {
	u := cubeUpdate()
	u.LocalToWorld = TranslationPose(10, -5, 2)

	stats, ok := ExtractStats(u)
	if !ok {
		t.Fatal("expected stats")
	}
	wantCenter := r3.Vec{X: 10.5, Y: -4, Z: 3.5}
	if diff := cmp.Diff(wantCenter, stats.WorldCenter); diff != "" {
		t.Errorf("world center mismatch (-want +got):\n%s", diff)
	}
	// Translation must not change the extents.
	wantDims := r3.Vec{X: 1, Y: 2, Z: 3}
	if diff := cmp.Diff(wantDims, stats.Dimensions); diff != "" {
		t.Errorf("dimensions mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractStats_EmptyUpdate(t *testing.T) {
	u := &MeshUpdate{MeshID: "empty", LocalToWorld: IdentityPose()}
	if _, ok := ExtractStats(u); ok {
		t.Error("expected rejection for zero-vertex update")
	}
	if _, ok := ExtractStats(nil); ok {
		t.Error("expected rejection for nil update")
	}
}

func TestExtractStats_NonFiniteVertex(t *testing.T) {
	for name, bad := range map[string]r3.Vec{
		"nan": {X: math.NaN(), Y: 0, Z: 0},
		"inf": {X: 0, Y: math.Inf(1), Z: 0},
	} {
		u := cubeUpdate()
		u.Vertices = append(u.Vertices, bad)
		if _, ok := ExtractStats(u); ok {
			t.Errorf("%s: expected rejection for non-finite vertex", name)
		}
	}
}

func TestExtractStats_NonFiniteTransform(t *testing.T) {
	u := cubeUpdate()
	u.LocalToWorld[3] = math.NaN()
	if _, ok := ExtractStats(u); ok {
		t.Error("expected rejection for non-finite transform")
	}
}

func TestExtractStats_SingleVertex(t *testing.T) {
	u := &MeshUpdate{
		MeshID:       "point",
		LocalToWorld: IdentityPose(),
		Vertices:     []r3.Vec{{X: 2, Y: 3, Z: 4}},
	}
	stats, ok := ExtractStats(u)
	if !ok {
		t.Fatal("expected stats for single-vertex update")
	}
	if stats.Dimensions != (r3.Vec{}) {
		t.Errorf("expected zero dimensions, got %+v", stats.Dimensions)
	}
	if stats.WorldCenter != (r3.Vec{X: 2, Y: 3, Z: 4}) {
		t.Errorf("expected center at the vertex, got %+v", stats.WorldCenter)
	}
}

func TestApplyPose_Identity(t *testing.T) {
	v := r3.Vec{X: 1.5, Y: -2, Z: 0.25}
	if got := ApplyPose(v, IdentityPose()); got != v {
		t.Errorf("identity pose moved point: %+v", got)
	}
}

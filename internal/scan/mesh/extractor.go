package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ExtractStats reduces one mesh update to world-space bounding-box
// statistics. The second return value is false for empty updates and
// for updates containing non-finite coordinates; both are normal
// transient scan states, not errors, and must not reach the classifier.
// Pure function of its input.
func ExtractStats(u *MeshUpdate) (*GeometryStats, bool) {
	if u == nil || len(u.Vertices) == 0 {
		return nil, false
	}
	for _, t := range u.LocalToWorld {
		if !finite(t) {
			return nil, false
		}
	}

	minPt := r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	maxPt := r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, v := range u.Vertices {
		if !finiteVec(v) {
			return nil, false
		}
		w := ApplyPose(v, u.LocalToWorld)
		minPt.X = math.Min(minPt.X, w.X)
		minPt.Y = math.Min(minPt.Y, w.Y)
		minPt.Z = math.Min(minPt.Z, w.Z)
		maxPt.X = math.Max(maxPt.X, w.X)
		maxPt.Y = math.Max(maxPt.Y, w.Y)
		maxPt.Z = math.Max(maxPt.Z, w.Z)
	}

	return &GeometryStats{
		MeshID:      u.MeshID,
		WorldCenter: r3.Scale(0.5, r3.Add(minPt, maxPt)),
		Dimensions:  r3.Sub(maxPt, minPt),
		VertexCount: len(u.Vertices),
		FaceCount:   len(u.Faces),
	}, true
}

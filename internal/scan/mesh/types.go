package mesh

import "gonum.org/v1/gonum/spatial/r3"

// MeshUpdate is one geometry delta delivered by the scan session for a
// tracked surface cluster. MeshID is stable across updates to the same
// physical surface; it changes only when the session creates or removes
// an anchor. Vertices are in mesh-local coordinates.
type MeshUpdate struct {
	MeshID       string
	LocalToWorld [16]float64 // 4x4 row-major
	Vertices     []r3.Vec
	Faces        [][3]uint32 // triangle index triples into Vertices
}

// GeometryStats is the numeric reduction of a single MeshUpdate:
// world-space axis-aligned bounding box plus buffer sizes. Created fresh
// per update and never persisted.
type GeometryStats struct {
	MeshID      string
	WorldCenter r3.Vec // midpoint of the world-space bounding box
	Dimensions  r3.Vec // bounding-box extents along world X/Y/Z (Y is up)
	VertexCount int
	FaceCount   int
}

// Volume returns the bounding-box volume in cubic meters.
func (s *GeometryStats) Volume() float64 {
	return s.Dimensions.X * s.Dimensions.Y * s.Dimensions.Z
}

// Package mesh owns the geometry layer of the scanning data model.
//
// Responsibilities: mesh-update input types, local-to-world pose
// transforms, and reduction of raw vertex/face buffers into world-space
// bounding-box statistics. No classification or session state lives here.
// Key types: MeshUpdate, GeometryStats.
package mesh

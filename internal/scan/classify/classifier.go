package classify

import (
	"math"

	"github.com/banshee-data/roomscan/internal/scan/mesh"
)

// FurnitureClass represents the classification of a scanned surface cluster.
type FurnitureClass string

const (
	// ClassTable indicates a table-height slab with a wide top
	ClassTable FurnitureClass = "table"
	// ClassChair indicates a seat-sized box
	ClassChair FurnitureClass = "chair"
	// ClassBed indicates a low, long platform
	ClassBed FurnitureClass = "bed"
	// ClassCabinet indicates a tall storage box
	ClassCabinet FurnitureClass = "cabinet"
	// ClassFurniture is the generic fallback for plausible furniture-sized clusters
	ClassFurniture FurnitureClass = "furniture"
)

// Classification thresholds (meters unless noted)
const (
	// Size gate: smaller clusters are scan noise, not furniture
	MinVertexCount = 100
	MinFaceCount   = 50
	// MaxDimension rejects room-structure clusters (walls, floors)
	MaxDimension = 3.0

	// Table: waist-height surface with a broad top
	TableHeightMin = 0.6
	TableHeightMax = 1.2
	TableSpanMin   = 0.8

	// Chair: seat-height box with a narrow footprint
	ChairHeightMin = 0.6
	ChairHeightMax = 1.1
	ChairSpanMin   = 0.4
	ChairSpanMax   = 0.8

	// Bed: low platform, longer than it is wide
	BedHeightMin = 0.3
	BedHeightMax = 0.8
	BedWidthMin  = 1.2
	BedDepthMin  = 1.8

	// Cabinet: tall box
	CabinetHeightMin = 0.8
	CabinetWidthMin  = 0.6
	CabinetDepthMin  = 0.4

	// Generic fallback: anything half a meter on every side with a dense mesh
	GenericSpanMin   = 0.5
	GenericVertexMin = 200

	// Confidence scoring
	VertexDensityScale = 1000.0
	VertexTermCap      = 0.5
	PlausibleVolumeMin = 0.05 // m³
	PlausibleVolumeMax = 10.0 // m³
	VolumeBonus        = 0.5
)

// Result holds the outcome of classifying one geometry-stats sample.
type Result struct {
	Class      FurnitureClass
	Confidence float64 // [0, 1]
	Model      string  // rule version used
}

// Classifier performs rule-based furniture classification over bounding-box
// statistics. This can be replaced with an ML model in future iterations.
type Classifier struct {
	ModelVersion string
}

// NewClassifier creates a classifier with the current rule version.
func NewClassifier() *Classifier {
	return &Classifier{
		ModelVersion: "rule-based-v1.0",
	}
}

// Classify determines the furniture class for one stats sample. The second
// return value is false when the sample fails the size gate or matches no
// rule; a negative result is normal during active scanning, not an error.
//
// Rules are first-match-wins: tighter bounding boxes (table, chair) are
// tested before looser ones (cabinet, generic) so an object matching
// several rules is labelled by its most distinctive shape.
func (c *Classifier) Classify(stats *mesh.GeometryStats) (Result, bool) {
	if stats == nil {
		return Result{}, false
	}
	if stats.VertexCount <= MinVertexCount || stats.FaceCount <= MinFaceCount {
		return Result{}, false
	}

	w := stats.Dimensions.X
	h := stats.Dimensions.Y
	d := stats.Dimensions.Z
	if w > MaxDimension || h > MaxDimension || d > MaxDimension {
		return Result{}, false
	}

	class, ok := matchClass(w, h, d, stats.VertexCount)
	if !ok {
		return Result{}, false
	}

	return Result{
		Class:      class,
		Confidence: c.confidence(stats),
		Model:      c.ModelVersion,
	}, true
}

// matchClass applies the ordered dimension rules.
func matchClass(w, h, d float64, vertexCount int) (FurnitureClass, bool) {
	switch {
	case h > TableHeightMin && h < TableHeightMax &&
		w > TableSpanMin && d > TableSpanMin:
		return ClassTable, true
	case h > ChairHeightMin && h < ChairHeightMax &&
		w > ChairSpanMin && w < ChairSpanMax &&
		d > ChairSpanMin && d < ChairSpanMax:
		return ClassChair, true
	case h > BedHeightMin && h < BedHeightMax &&
		w > BedWidthMin && d > BedDepthMin:
		return ClassBed, true
	case h > CabinetHeightMin && w > CabinetWidthMin && d > CabinetDepthMin:
		return ClassCabinet, true
	case h > GenericSpanMin && w > GenericSpanMin && d > GenericSpanMin &&
		vertexCount > GenericVertexMin:
		return ClassFurniture, true
	}
	return "", false
}

// confidence rewards dense meshes and plausible real-world volumes. It is
// a coarse quality signal surfaced to the consumer, not a calibrated
// probability.
func (c *Classifier) confidence(stats *mesh.GeometryStats) float64 {
	conf := math.Min(float64(stats.VertexCount)/VertexDensityScale, VertexTermCap)
	if vol := stats.Volume(); vol > PlausibleVolumeMin && vol < PlausibleVolumeMax {
		conf += VolumeBonus
	}
	return clampConfidence(conf, 0, 1)
}

// clampConfidence clamps a confidence value to the range [min, max].
func clampConfidence(value, min, max float64) float64 {
	if value > max {
		return max
	}
	if value < min {
		return min
	}
	return value
}

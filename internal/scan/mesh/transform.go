package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// IdentityPose returns the 4x4 identity transform.
func IdentityPose() [16]float64 {
	return [16]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// TranslationPose returns a transform that translates by (tx, ty, tz).
func TranslationPose(tx, ty, tz float64) [16]float64 {
	return [16]float64{
		1, 0, 0, tx,
		0, 1, 0, ty,
		0, 0, 1, tz,
		0, 0, 0, 1,
	}
}

// ApplyPose applies a 4x4 row-major transform T to point v as a
// homogeneous point (w=1).
func ApplyPose(v r3.Vec, T [16]float64) r3.Vec {
	return r3.Vec{
		X: T[0]*v.X + T[1]*v.Y + T[2]*v.Z + T[3],
		Y: T[4]*v.X + T[5]*v.Y + T[6]*v.Z + T[7],
		Z: T[8]*v.X + T[9]*v.Y + T[10]*v.Z + T[11],
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finiteVec(v r3.Vec) bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

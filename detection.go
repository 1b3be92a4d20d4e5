package dyntrack

import (
	"math"
	"time"
)

// Point3 is a position or velocity vector in the fixed world/robot frame,
// in meters (or meters per second).  Planar 2D sources leave Z at zero.
type Point3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Distance returns the euclidean distance to another point
func (p Point3) Distance(other Point3) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	dz := p.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// IsFinite reports whether all components are finite numbers
func (p Point3) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y) && isFinite(p.Z)
}

// Extent is the axis-aligned bounding size of a detected object in meters.
// A detector reporting only a radius maps it to a square extent.
type Extent struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// IsValid reports whether the extent is finite and non-negative
func (e Extent) IsValid() bool {
	return isFinite(e.X) && isFinite(e.Y) && isFinite(e.Z) &&
		e.X >= 0 && e.Y >= 0 && e.Z >= 0
}

// ClassUnknown is the class label of a detection the detector did not
// classify
const ClassUnknown = -1

// Detection is one frame's raw, identity-less observation from the external
// detector.  Identity across frames is entirely the tracker's construction.
type Detection struct {
	// Position is the object center in the world/robot frame
	Position Point3 `json:"position"`
	// Extent is the object bounding size
	Extent Extent `json:"extent"`
	// Class is the detector class label, or ClassUnknown
	Class int `json:"class"`
	// Confidence is the detection confidence in [0,1]
	Confidence float64 `json:"confidence"`
}

// Frame is one detector frame.  Detections are unordered and carry no
// identity.  Frames must be delivered in non-decreasing timestamp order.
type Frame struct {
	// Stamp is the sensor timestamp of the frame, not its arrival time
	Stamp time.Time `json:"stamp"`
	// Detections is the detector output for this frame
	Detections []Detection `json:"detections"`
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

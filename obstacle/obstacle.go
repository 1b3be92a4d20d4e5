// Package obstacle defines the dynamic-obstacle records the tracking engine
// emits for a costmap layer, and the planar footprint geometry behind them.
package obstacle

import (
	"time"

	"github.com/google/uuid"

	dyntrack "github.com/navsense/go-dyntrack"
)

// TrajectoryPoint is one predicted future position of an obstacle
type TrajectoryPoint struct {
	Stamp    time.Time       `json:"stamp"`
	Position dyntrack.Point3 `json:"position"`
}

// Obstacle is a read-only projection of one confirmed or coasting track at
// emission time.  A new set replaces the previous frame's set entirely;
// records are never mutated after emission.
type Obstacle struct {
	// UUID identifies the underlying track for external consumers and is
	// stable for the track's lifetime
	UUID uuid.UUID `json:"uuid"`
	// TrackNum is the engine's monotonic track number, never reused
	TrackNum int64 `json:"track_num"`
	// Class is the detector class label, or dyntrack.ClassUnknown
	Class int `json:"class"`
	// Confidence is the confidence of the last matched detection
	Confidence float64 `json:"confidence"`
	// Coasting reports that the track is currently unmatched and the
	// state is prediction only
	Coasting bool `json:"coasting"`
	// Position is the filtered object center
	Position dyntrack.Point3 `json:"position"`
	// Velocity is the filtered velocity vector in m/s
	Velocity dyntrack.Point3 `json:"velocity"`
	// Extent is the smoothed bounding size
	Extent dyntrack.Extent `json:"extent"`
	// Footprint is the planar outline to insert into the costmap,
	// including any configured padding
	Footprint Footprint `json:"footprint"`
	// Trajectory is the optional short-horizon predicted motion
	Trajectory []TrajectoryPoint `json:"trajectory,omitempty"`
}

package tracker

import (
	"time"

	"github.com/google/uuid"

	dyntrack "github.com/navsense/go-dyntrack"
)

// State identifies a track's lifecycle stage.  A track is in exactly one
// state at a time.
type State int

const (
	// Tentative is a newly spawned track awaiting sustained evidence
	Tentative State = iota
	// Confirmed is a track with sustained evidence of a real object
	Confirmed
	// Coasting is a confirmed track currently unmatched, carried on
	// prediction alone pending re-acquisition
	Coasting
	// Removed is terminal; the track is evicted from the live set
	Removed
)

// String returns the state name
func (s State) String() string {
	switch s {
	case Tentative:
		return "tentative"
	case Confirmed:
		return "confirmed"
	case Coasting:
		return "coasting"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// Track is one persistently identified hypothesis of a real-world dynamic
// obstacle.  The engine owns all live tracks; components other than the
// per-frame cycle must not retain references across frames.
type Track struct {
	// num is the monotonic track number, assigned once and never reused
	num int64
	// uuid is the externally visible identity of the track
	uuid uuid.UUID
	// state is the lifecycle stage
	state State
	// filter holds the estimated position, velocity and uncertainty
	filter *kalmanFilter
	// class is the detector class label, or dyntrack.ClassUnknown
	class int
	// confidence is the confidence of the last matched detection
	confidence float64
	// extent is the EMA-smoothed bounding size
	extent dyntrack.Extent
	// hits counts consecutive matched frames, the spawning detection
	// included
	hits int
	// misses counts consecutive unmatched frames
	misses int
	// age counts frames since creation
	age int
	// lastUpdate is the stamp of the last matched frame
	lastUpdate time.Time
	// suspect marks a track whose filter needed a numerical reset
	suspect bool
}

// newTrack spawns a tentative track from an unmatched detection
func newTrack(num int64, det dyntrack.Detection, stamp time.Time, accelNoise, measNoise float64) *Track {
	return &Track{
		num:        num,
		uuid:       uuid.New(),
		state:      Tentative,
		filter:     newKalmanFilter(accelNoise, measNoise, det.Position),
		class:      det.Class,
		confidence: det.Confidence,
		extent:     det.Extent,
		hits:       1,
		lastUpdate: stamp,
	}
}

// Num returns the monotonic track number
func (t *Track) Num() int64 { return t.num }

// UUID returns the externally visible track identity
func (t *Track) UUID() uuid.UUID { return t.uuid }

// State returns the lifecycle stage
func (t *Track) State() State { return t.state }

// Class returns the detector class label, or dyntrack.ClassUnknown
func (t *Track) Class() int { return t.class }

// Position returns the filtered position
func (t *Track) Position() dyntrack.Point3 { return t.filter.Position() }

// Velocity returns the filtered velocity in m/s
func (t *Track) Velocity() dyntrack.Point3 { return t.filter.Velocity() }

// Extent returns the smoothed bounding size
func (t *Track) Extent() dyntrack.Extent { return t.extent }

// Age returns the number of frames since the track was created
func (t *Track) Age() int { return t.age }

// LastUpdate returns the stamp of the last matched frame
func (t *Track) LastUpdate() time.Time { return t.lastUpdate }

// predict advances the track state by dt seconds without correction.
// Returns true when the filter had to be reset due to numerical degeneracy.
func (t *Track) predict(dt float64) bool {
	t.filter.Predict(dt)

	if !t.filter.Healthy() {
		t.filter.resetCovariance()
		t.suspect = true
		return true
	}

	return false
}

// applyMatch corrects the track with a matched detection and advances the
// lifecycle.  A degenerate correction resets the covariance and retries once;
// the returned flag reports that recovery for logging.
func (t *Track) applyMatch(det dyntrack.Detection, stamp time.Time, confirmHits int, extentSmoothing float64) bool {
	recovered := false

	if err := t.filter.Update(det.Position); err != nil {
		t.filter.resetCovariance()
		t.suspect = true
		recovered = true

		if err := t.filter.Update(det.Position); err != nil {
			// state untouched, count the evidence anyway
			t.filter.resetCovariance()
		}
	}

	a := extentSmoothing
	t.extent = dyntrack.Extent{
		X: a*t.extent.X + (1-a)*det.Extent.X,
		Y: a*t.extent.Y + (1-a)*det.Extent.Y,
		Z: a*t.extent.Z + (1-a)*det.Extent.Z,
	}

	if det.Class != dyntrack.ClassUnknown {
		t.class = det.Class
	}

	t.confidence = det.Confidence
	t.hits++
	t.misses = 0
	t.lastUpdate = stamp

	switch t.state {
	case Tentative:
		if t.hits >= confirmHits {
			t.state = Confirmed
		}
	case Coasting:
		t.state = Confirmed
	}

	return recovered
}

// applyMiss ages an unmatched track: the miss counter advances, confirmed
// tracks start coasting, and tracks past their miss or staleness budget move
// to Removed.  Returns true when the track was removed.
func (t *Track) applyMiss(tentativeMaxMisses, tentativeMaxAge, coastingMaxMisses int) bool {
	t.misses++
	t.hits = 0

	switch t.state {
	case Tentative:
		if t.misses >= tentativeMaxMisses || t.age > tentativeMaxAge {
			t.state = Removed
		}

	case Confirmed:
		t.state = Coasting

	case Coasting:
		// survives exactly coastingMaxMisses misses, removed on the next
		if t.misses > coastingMaxMisses {
			t.state = Removed
		}
	}

	return t.state == Removed
}

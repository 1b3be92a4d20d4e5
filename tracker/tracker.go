// Package tracker converts a noisy, identity-less stream of per-frame object
// detections into persistent dynamic-obstacle tracks with filtered position,
// velocity and lifecycle state, and projects them as costmap obstacle
// records.
//
// The engine is frame-synchronous: one Update call processes one detector
// frame to completion, and the caller must not run concurrent cycles.  All
// timing derives from frame stamps, never from wall-clock arrival.
package tracker

import (
	"fmt"
	"log/slog"
	"time"

	dyntrack "github.com/navsense/go-dyntrack"
	"github.com/navsense/go-dyntrack/obstacle"
)

// FrameStats summarizes one frame cycle for logging and diagnostics.  It is
// advisory only and not part of the functional contract.
type FrameStats struct {
	// Stamp is the frame timestamp
	Stamp time.Time `json:"stamp"`
	// Confirmed, Tentative and Coasting count live tracks after the cycle
	Confirmed int `json:"confirmed"`
	Tentative int `json:"tentative"`
	Coasting  int `json:"coasting"`
	// Matched counts detections matched to existing tracks
	Matched int `json:"matched"`
	// Spawned counts new tentative tracks created this frame
	Spawned int `json:"spawned"`
	// Removed counts tracks evicted this frame
	Removed int `json:"removed"`
	// UnmatchedDetections counts detections left unmatched after
	// association, before spawn suppression
	UnmatchedDetections int `json:"unmatched_detections"`
	// DroppedDetections counts detections discarded during ingest
	DroppedDetections int `json:"dropped_detections"`
}

// Result is the outcome of one frame cycle.  The obstacle list replaces the
// previous frame's list entirely.
type Result struct {
	Obstacles []obstacle.Obstacle `json:"obstacles"`
	Stats     FrameStats          `json:"stats"`
}

// Tracker is the dynamic-obstacle tracking engine.  It owns the authoritative
// set of live tracks; no other component retains track references across
// frames.  Not safe for concurrent use.
type Tracker struct {
	cfg dyntrack.Config
	log *slog.Logger
	ing *ingestor

	// tracks is the live set in ascending track-number order
	tracks []*Track
	// nextNum is the next track number; it never rewinds, so numbers are
	// never reused after removal
	nextNum int64
	frames  int64
	dropped int64
}

// Option adjusts a Tracker at construction
type Option func(*Tracker)

// WithLogger routes engine diagnostics to the given logger
func WithLogger(log *slog.Logger) Option {
	return func(t *Tracker) {
		t.log = log
	}
}

// WithInitialStamp sets the stamp watermark before the first frame, so frames
// recorded before a known start time are rejected as stale
func WithInitialStamp(stamp time.Time) Option {
	return func(t *Tracker) {
		t.ing.lastStamp = stamp
		t.ing.accepted = true
	}
}

// New builds a tracking engine.  An invalid configuration is fatal here;
// nothing later in the engine's life re-validates parameters.
func New(cfg dyntrack.Config, opts ...Option) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("tracker configuration rejected: %w", err)
	}

	t := &Tracker{
		cfg: cfg,
		log: slog.Default(),
		ing: &ingestor{
			confThreshold: cfg.ConfidenceThreshold,
			dupRadius:     cfg.DuplicateRadius,
		},
		nextNum: 1,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// Update runs one frame cycle: ingest, predict, associate, update lifecycle,
// project.  A frame-level input error (stale stamp, missing stamp) drops the
// frame with the track set unchanged and is returned for the caller to
// inspect; it is never fatal.  Matches are applied before spawns and spawns
// before prunes, so a detection cannot both match a track and fork a
// duplicate in the same frame.
func (t *Tracker) Update(frame dyntrack.Frame) (*Result, error) {
	dets, dt, dropped, err := t.ing.normalize(frame)
	if err != nil {
		t.dropped++
		t.log.Warn("dropping detector frame",
			"stamp", frame.Stamp, "err", err)
		return nil, err
	}

	t.frames++

	// predict all live tracks forward to the frame stamp
	for _, trk := range t.tracks {
		if trk.predict(dt) {
			t.log.Warn("track filter reset after numerical degeneracy",
				"track", trk.num)
		}
	}

	stats := FrameStats{
		Stamp:             frame.Stamp,
		DroppedDetections: dropped,
	}

	assoc, err := associate(t.buildCostMatrix(dets), len(t.tracks), len(dets), t.cfg.GatingDistance)
	if err != nil {
		// solver failure degrades to a miss for every live track; the
		// frame's detections are discarded
		t.log.Error("association failed, treating frame as all-miss",
			"stamp", frame.Stamp, "err", err)

		assoc = association{}
		for i := range t.tracks {
			assoc.unmatchedTracks = append(assoc.unmatchedTracks, i)
		}
	}

	// matches first
	for _, m := range assoc.matches {
		trk := t.tracks[m[0]]
		if trk.applyMatch(dets[m[1]], frame.Stamp, t.cfg.ConfirmHits, t.cfg.ExtentSmoothing) {
			t.log.Warn("track filter reset during correction", "track", trk.num)
		}
		stats.Matched++
	}

	// then spawns from unmatched detections
	stats.UnmatchedDetections = len(assoc.unmatchedDets)

	for _, di := range assoc.unmatchedDets {
		det := dets[di]

		if t.suppressSpawn(det) {
			continue
		}

		trk := newTrack(t.nextNum, det, frame.Stamp,
			t.cfg.ProcessNoiseAccel, t.cfg.MeasurementNoise)
		t.nextNum++

		t.tracks = append(t.tracks, trk)
		stats.Spawned++
	}

	// misses and prunes last
	for _, ti := range assoc.unmatchedTracks {
		if t.tracks[ti].applyMiss(t.cfg.TentativeMaxMisses, t.cfg.TentativeMaxAge, t.cfg.CoastingMaxMisses) {
			stats.Removed++
		}
	}

	live := t.tracks[:0]
	for _, trk := range t.tracks {
		trk.age++
		if trk.state != Removed {
			live = append(live, trk)
		}
	}
	t.tracks = live

	for _, trk := range t.tracks {
		switch trk.state {
		case Confirmed:
			stats.Confirmed++
		case Tentative:
			stats.Tentative++
		case Coasting:
			stats.Coasting++
		}
	}

	res := &Result{
		Obstacles: t.project(frame.Stamp),
		Stats:     stats,
	}

	t.log.Debug("frame cycle complete",
		"stamp", frame.Stamp,
		"confirmed", stats.Confirmed,
		"tentative", stats.Tentative,
		"coasting", stats.Coasting,
		"matched", stats.Matched,
		"spawned", stats.Spawned,
		"removed", stats.Removed,
		"unmatched_detections", stats.UnmatchedDetections,
		"dropped_detections", stats.DroppedDetections,
	)

	return res, nil
}

// Tracks returns the live tracks for inspection.  The slice is a copy but
// the tracks are the engine's own; callers must not hold them across frames.
func (t *Tracker) Tracks() []*Track {
	out := make([]*Track, len(t.tracks))
	copy(out, t.tracks)
	return out
}

// Frames returns the number of accepted frames processed
func (t *Tracker) Frames() int64 {
	return t.frames
}

// DroppedFrames returns the number of whole frames rejected at ingest
func (t *Tracker) DroppedFrames() int64 {
	return t.dropped
}

// Reset drops all live tracks and the stamp watermark.  The track number
// counter keeps counting so identifiers stay unique across a reset.
func (t *Tracker) Reset() {
	t.tracks = nil
	t.frames = 0
	t.ing.accepted = false
	t.ing.lastStamp = time.Time{}
}

// suppressSpawn reports whether an unmatched detection falls too close to an
// existing tentative or confirmed track to start a new one.  Coasting tracks
// deliberately do not suppress, so an object lost past the gate re-acquires
// as a fresh tentative track instead of vanishing.
func (t *Tracker) suppressSpawn(det dyntrack.Detection) bool {
	for _, trk := range t.tracks {
		if trk.state != Tentative && trk.state != Confirmed {
			continue
		}

		if trk.filter.Position().Distance(det.Position) < t.cfg.SpawnSuppressionRadius {
			return true
		}

		if t.cfg.SpawnSuppressionOverlap > 0 {
			iou := obstacle.IoU(
				obstacle.BoxFootprint(trk.filter.Position(), trk.extent),
				obstacle.BoxFootprint(det.Position, det.Extent),
			)
			if iou > t.cfg.SpawnSuppressionOverlap {
				return true
			}
		}
	}

	return false
}

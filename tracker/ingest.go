package tracker

import (
	"errors"
	"math"
	"sort"
	"time"

	dyntrack "github.com/navsense/go-dyntrack"
)

var (
	// ErrStaleFrame reports a frame whose stamp precedes the previously
	// accepted frame.  The frame is dropped and the track set unchanged.
	ErrStaleFrame = errors.New("frame stamp precedes previously accepted frame")
	// ErrNoStamp reports a frame without a timestamp
	ErrNoStamp = errors.New("frame has no timestamp")
)

// ingestor normalizes raw detector frames before association: it enforces
// non-decreasing frame stamps, drops malformed and low-confidence detections
// and collapses duplicates within the frame.
type ingestor struct {
	confThreshold float64
	dupRadius     float64

	lastStamp time.Time
	accepted  bool
}

// normalize validates one frame and returns the detections that survive
// filtering, the elapsed seconds since the previously accepted frame (zero
// for the first), and the number of detections dropped.  A frame-level error
// means the whole frame must be discarded; the ingestor state is then
// unchanged.
func (ing *ingestor) normalize(frame dyntrack.Frame) ([]dyntrack.Detection, float64, int, error) {
	if frame.Stamp.IsZero() {
		return nil, 0, 0, ErrNoStamp
	}

	if ing.accepted && frame.Stamp.Before(ing.lastStamp) {
		return nil, 0, 0, ErrStaleFrame
	}

	dt := 0.0
	if ing.accepted {
		dt = frame.Stamp.Sub(ing.lastStamp).Seconds()
	}

	kept := make([]dyntrack.Detection, 0, len(frame.Detections))
	dropped := 0

	for _, det := range frame.Detections {
		if !det.Position.IsFinite() || !det.Extent.IsValid() ||
			math.IsNaN(det.Confidence) || math.IsInf(det.Confidence, 0) {
			dropped++
			continue
		}

		if det.Confidence < ing.confThreshold {
			dropped++
			continue
		}

		kept = append(kept, det)
	}

	if ing.dupRadius > 0 {
		before := len(kept)
		kept = dedupe(kept, ing.dupRadius)
		dropped += before - len(kept)
	}

	ing.lastStamp = frame.Stamp
	ing.accepted = true

	return kept, dt, dropped, nil
}

// dedupe collapses detections whose centers lie within radius of an already
// kept detection, keeping the higher-confidence one.  Counts are tens per
// frame, so the quadratic scan is fine.
func dedupe(dets []dyntrack.Detection, radius float64) []dyntrack.Detection {
	if len(dets) < 2 {
		return dets
	}

	order := make([]int, len(dets))
	for i := range order {
		order[i] = i
	}

	// confidence descending, input order breaking ties
	sort.SliceStable(order, func(a, b int) bool {
		return dets[order[a]].Confidence > dets[order[b]].Confidence
	})

	kept := make([]dyntrack.Detection, 0, len(dets))

	for _, idx := range order {
		det := dets[idx]

		duplicate := false
		for _, k := range kept {
			if det.Position.Distance(k.Position) < radius {
				duplicate = true
				break
			}
		}

		if !duplicate {
			kept = append(kept, det)
		}
	}

	return kept
}

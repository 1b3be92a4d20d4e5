package tracker

import (
	"time"

	"github.com/navsense/go-dyntrack/obstacle"
)

// project renders every confirmed or coasting track into an obstacle record
// for the costmap layer.  Tentative tracks are never emitted.  Projection is
// read-only: the short-horizon trajectory comes from predicting a copy of the
// track's filter, so emitting is idempotent within a frame.
func (t *Tracker) project(stamp time.Time) []obstacle.Obstacle {
	out := make([]obstacle.Obstacle, 0, len(t.tracks))

	for _, trk := range t.tracks {
		if trk.state != Confirmed && trk.state != Coasting {
			continue
		}

		pos := trk.filter.Position()

		ob := obstacle.Obstacle{
			UUID:       trk.uuid,
			TrackNum:   trk.num,
			Class:      trk.class,
			Confidence: trk.confidence,
			Coasting:   trk.state == Coasting,
			Position:   pos,
			Velocity:   trk.filter.Velocity(),
			Extent:     trk.extent,
			Footprint: obstacle.BoxFootprint(pos, trk.extent).
				Inflate(t.cfg.FootprintPadding),
			Trajectory: t.projectTrajectory(trk, stamp),
		}

		out = append(out, ob)
	}

	return out
}

// projectTrajectory predicts a track's motion over the configured horizon by
// repeatedly applying the motion model without correction.  Track state is
// untouched.
func (t *Tracker) projectTrajectory(trk *Track, stamp time.Time) []obstacle.TrajectoryPoint {
	if t.cfg.ProjectionHorizon <= 0 {
		return nil
	}

	steps := int(t.cfg.ProjectionHorizon / t.cfg.ProjectionStep)
	if steps == 0 {
		return nil
	}

	filter := trk.filter.Clone()
	stepDur := time.Duration(t.cfg.ProjectionStep * float64(time.Second))

	points := make([]obstacle.TrajectoryPoint, 0, steps)

	for i := 1; i <= steps; i++ {
		filter.Predict(t.cfg.ProjectionStep)

		points = append(points, obstacle.TrajectoryPoint{
			Stamp:    stamp.Add(time.Duration(i) * stepDur),
			Position: filter.Position(),
		})
	}

	return points
}

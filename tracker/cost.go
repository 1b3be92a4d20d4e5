package tracker

import (
	"fmt"

	dyntrack "github.com/navsense/go-dyntrack"
	"github.com/navsense/go-dyntrack/obstacle"
)

// association is the ephemeral per-frame outcome of matching predicted
// tracks against detections.  Indices refer to the engine's live track slice
// and the normalized detection slice; nothing here outlives the frame.
type association struct {
	// matches pairs a track index with a detection index
	matches [][2]int
	// unmatchedTracks lists track indices left without a detection
	unmatchedTracks []int
	// unmatchedDets lists detection indices left without a track
	unmatchedDets []int
}

// buildCostMatrix computes the gated association cost between every
// predicted track and every detection.  The cost combines the Mahalanobis
// position distance under the track's predicted covariance, a class-mismatch
// penalty, and an extent-dissimilarity penalty from footprint overlap.  Any
// pairing whose position distance alone exceeds the gate is forbidden, so a
// clearly wrong pairing can never be forced by total-cost optimality.
func (t *Tracker) buildCostMatrix(dets []dyntrack.Detection) [][]float64 {
	gate := t.cfg.GatingDistance
	forbidden := gate * 2

	cost := make([][]float64, len(t.tracks))

	for i, trk := range t.tracks {
		row := make([]float64, len(dets))

		for j, det := range dets {
			d, err := trk.filter.GateDistance(det.Position)
			if err != nil || d > gate {
				row[j] = forbidden
				continue
			}

			c := d

			if trk.class != dyntrack.ClassUnknown &&
				det.Class != dyntrack.ClassUnknown &&
				trk.class != det.Class {
				c += t.cfg.ClassMismatchPenalty
			}

			if t.cfg.ExtentPenaltyWeight > 0 {
				iou := obstacle.IoU(
					obstacle.BoxFootprint(trk.filter.Position(), trk.extent),
					obstacle.BoxFootprint(det.Position, det.Extent),
				)
				c += t.cfg.ExtentPenaltyWeight * (1 - iou)
			}

			row[j] = c
		}

		cost[i] = row
	}

	return cost
}

// associate solves the minimum-cost one-to-one assignment between tracks and
// detections, restricted to pairs cheaper than the gate.  The cost matrix is
// extended to a square one with dummy slots priced at half the gate, so a
// real pairing wins exactly when its cost is below the gate and the solver
// prefers assignments that match more pairs.  Track rows are already in
// ascending track-number order, keeping equal-cost solutions reproducible.
func associate(cost [][]float64, nTracks, nDets int, gate float64) (association, error) {
	var res association

	if nTracks == 0 || nDets == 0 {
		for i := 0; i < nTracks; i++ {
			res.unmatchedTracks = append(res.unmatchedTracks, i)
		}
		for j := 0; j < nDets; j++ {
			res.unmatchedDets = append(res.unmatchedDets, j)
		}
		return res, nil
	}

	n := nTracks + nDets
	extended := make([][]float64, n)

	for i := range extended {
		row := make([]float64, n)
		for j := range row {
			row[j] = gate / 2
		}
		extended[i] = row
	}

	for i := nTracks; i < n; i++ {
		for j := nDets; j < n; j++ {
			extended[i][j] = 0
		}
	}

	for i := 0; i < nTracks; i++ {
		copy(extended[i], cost[i])
	}

	rowTo := make([]int, n)
	colTo := make([]int, n)

	if err := solveLAP(n, extended, rowTo, colTo); err != nil {
		return res, fmt.Errorf("assignment solve failed: %w", err)
	}

	for i := 0; i < nTracks; i++ {
		if j := rowTo[i]; j >= 0 && j < nDets {
			res.matches = append(res.matches, [2]int{i, j})
		} else {
			res.unmatchedTracks = append(res.unmatchedTracks, i)
		}
	}

	for j := 0; j < nDets; j++ {
		if i := colTo[j]; i < 0 || i >= nTracks {
			res.unmatchedDets = append(res.unmatchedDets, j)
		}
	}

	return res, nil
}

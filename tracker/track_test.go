package tracker

import (
	"testing"
	"time"

	"github.com/google/uuid"

	dyntrack "github.com/navsense/go-dyntrack"
)

func newTestTrack(num int64) *Track {
	return newTrack(num, det(0, 0), testBase, 2.0, 0.1)
}

func TestNewTrackIsTentative(t *testing.T) {
	trk := newTestTrack(1)

	if trk.State() != Tentative {
		t.Errorf("expected new track tentative, got %v", trk.State())
	}
	if trk.hits != 1 {
		t.Errorf("expected spawning detection counted as hit 1, got %d", trk.hits)
	}
	if trk.UUID() == uuid.Nil {
		t.Error("expected a non-zero uuid")
	}
}

func TestTrackConfirmsAtThreshold(t *testing.T) {
	trk := newTestTrack(1)

	// hit 2 of 3: still tentative
	trk.applyMatch(det(0, 0), testBase.Add(time.Second), 3, 0.9)
	if trk.State() != Tentative {
		t.Errorf("expected tentative at hits=2 with threshold 3, got %v", trk.State())
	}

	// hit 3 of 3: confirmed
	trk.applyMatch(det(0, 0), testBase.Add(2*time.Second), 3, 0.9)
	if trk.State() != Confirmed {
		t.Errorf("expected confirmed at hits=3, got %v", trk.State())
	}
}

func TestTrackMissResetsHitStreak(t *testing.T) {
	trk := newTestTrack(1)

	trk.applyMatch(det(0, 0), testBase.Add(time.Second), 3, 0.9)
	trk.applyMiss(5, 20, 8)

	if trk.hits != 0 {
		t.Errorf("expected a miss to break the consecutive-hit streak, got %d", trk.hits)
	}
	if trk.State() != Tentative {
		t.Errorf("expected track still tentative, got %v", trk.State())
	}

	// confirmation now needs a fresh streak
	trk.applyMatch(det(0, 0), testBase.Add(2*time.Second), 3, 0.9)
	trk.applyMatch(det(0, 0), testBase.Add(3*time.Second), 3, 0.9)
	if trk.State() != Confirmed {
		t.Errorf("expected confirmation only after a fresh streak, got state %v hits %d",
			trk.State(), trk.hits)
	}
}

func TestTrackStaleTentativeRemoved(t *testing.T) {
	trk := newTestTrack(1)
	trk.age = 11

	// one miss past the age budget removes it even below the miss budget
	if removed := trk.applyMiss(5, 10, 8); !removed {
		t.Errorf("expected stale tentative track removed, got %v", trk.State())
	}
}

func TestTrackCoastingReacquired(t *testing.T) {
	trk := newTestTrack(1)
	trk.applyMatch(det(0, 0), testBase.Add(time.Second), 2, 0.9)

	trk.applyMiss(2, 10, 8)
	if trk.State() != Coasting {
		t.Fatalf("expected confirmed track to coast on a miss, got %v", trk.State())
	}

	// a single match restores Confirmed regardless of the confirm threshold
	trk.applyMatch(det(0, 0), testBase.Add(3*time.Second), 5, 0.9)
	if trk.State() != Confirmed {
		t.Errorf("expected coasting track re-confirmed on match, got %v", trk.State())
	}
}

func TestTrackExtentSmoothing(t *testing.T) {
	trk := newTestTrack(1) // extent 0.5 cube-ish

	wide := det(0, 0)
	wide.Extent = dyntrack.Extent{X: 1.5, Y: 0.5, Z: 1.7}

	trk.applyMatch(wide, testBase.Add(time.Second), 3, 0.9)

	// 0.9*0.5 + 0.1*1.5 = 0.6
	if !almostEqual(trk.Extent().X, 0.6, 1e-9) {
		t.Errorf("expected smoothed extent x=0.6, got %v", trk.Extent().X)
	}
	if !almostEqual(trk.Extent().Y, 0.5, 1e-9) {
		t.Errorf("expected unchanged extent y=0.5, got %v", trk.Extent().Y)
	}
}

func TestTrackClassAdoption(t *testing.T) {
	unknown := det(0, 0)
	unknown.Class = dyntrack.ClassUnknown

	trk := newTrack(1, unknown, testBase, 2.0, 0.1)

	labelled := det(0, 0)
	labelled.Class = 7
	trk.applyMatch(labelled, testBase.Add(time.Second), 3, 0.9)

	if trk.Class() != 7 {
		t.Errorf("expected track to adopt detector class 7, got %d", trk.Class())
	}

	// an unknown label never erases a known one
	trk.applyMatch(unknown, testBase.Add(2*time.Second), 3, 0.9)
	if trk.Class() != 7 {
		t.Errorf("expected class retained over an unlabelled match, got %d", trk.Class())
	}
}

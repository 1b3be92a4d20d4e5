package tracker

import (
	"testing"
)

const testGate = 3.0

func TestAssociateEmptySides(t *testing.T) {
	res, err := associate(nil, 0, 3, testGate)
	if err != nil {
		t.Fatalf("associate failed: %v", err)
	}
	if len(res.matches) != 0 || len(res.unmatchedTracks) != 0 {
		t.Errorf("expected no matches without tracks, got %+v", res)
	}
	if len(res.unmatchedDets) != 3 {
		t.Errorf("expected 3 unmatched detections, got %v", res.unmatchedDets)
	}

	res, err = associate(nil, 2, 0, testGate)
	if err != nil {
		t.Fatalf("associate failed: %v", err)
	}
	if len(res.unmatchedTracks) != 2 || len(res.unmatchedDets) != 0 {
		t.Errorf("expected 2 unmatched tracks, got %+v", res)
	}
}

func TestAssociateObviousPairs(t *testing.T) {
	cost := [][]float64{
		{0.1, 2.5},
		{2.5, 0.1},
	}

	res, err := associate(cost, 2, 2, testGate)
	if err != nil {
		t.Fatalf("associate failed: %v", err)
	}

	if len(res.matches) != 2 {
		t.Fatalf("expected 2 matches, got %+v", res)
	}

	for _, m := range res.matches {
		if m[0] != m[1] {
			t.Errorf("expected diagonal matches, got %v", m)
		}
	}
}

func TestAssociateCrossedPairs(t *testing.T) {
	// the globally minimal assignment crosses over
	cost := [][]float64{
		{2.9, 0.1},
		{0.1, 2.9},
	}

	res, err := associate(cost, 2, 2, testGate)
	if err != nil {
		t.Fatalf("associate failed: %v", err)
	}

	if len(res.matches) != 2 {
		t.Fatalf("expected 2 matches, got %+v", res)
	}

	for _, m := range res.matches {
		if m[0] == m[1] {
			t.Errorf("expected crossed matches, got %v", m)
		}
	}
}

func TestAssociateRespectsGate(t *testing.T) {
	// both pairings beyond the gate: nothing may match, even though the
	// assignment would be "optimal" with them
	forbidden := testGate * 2
	cost := [][]float64{
		{forbidden, forbidden},
		{forbidden, forbidden},
	}

	res, err := associate(cost, 2, 2, testGate)
	if err != nil {
		t.Fatalf("associate failed: %v", err)
	}

	if len(res.matches) != 0 {
		t.Errorf("expected no matches past the gate, got %+v", res.matches)
	}
	if len(res.unmatchedTracks) != 2 || len(res.unmatchedDets) != 2 {
		t.Errorf("expected everything unmatched, got %+v", res)
	}
}

func TestAssociatePartialGating(t *testing.T) {
	// track 0 can only take detection 0; track 1 is out of range entirely
	forbidden := testGate * 2
	cost := [][]float64{
		{0.4, forbidden},
		{forbidden, forbidden},
	}

	res, err := associate(cost, 2, 2, testGate)
	if err != nil {
		t.Fatalf("associate failed: %v", err)
	}

	if len(res.matches) != 1 || res.matches[0] != [2]int{0, 0} {
		t.Fatalf("expected single match (0,0), got %+v", res.matches)
	}
	if len(res.unmatchedTracks) != 1 || res.unmatchedTracks[0] != 1 {
		t.Errorf("expected track 1 unmatched, got %v", res.unmatchedTracks)
	}
	if len(res.unmatchedDets) != 1 || res.unmatchedDets[0] != 1 {
		t.Errorf("expected detection 1 unmatched, got %v", res.unmatchedDets)
	}
}

func TestAssociateOneDetectionTwoTracks(t *testing.T) {
	// two detections far apart from a single track's prediction can never
	// both claim it; assignment is one-to-one by construction
	cost := [][]float64{
		{0.3},
		{0.2},
	}

	res, err := associate(cost, 2, 1, testGate)
	if err != nil {
		t.Fatalf("associate failed: %v", err)
	}

	if len(res.matches) != 1 || res.matches[0] != [2]int{1, 0} {
		t.Fatalf("expected cheaper track 1 to win, got %+v", res.matches)
	}
	if len(res.unmatchedTracks) != 1 || res.unmatchedTracks[0] != 0 {
		t.Errorf("expected track 0 unmatched, got %v", res.unmatchedTracks)
	}
}

func TestAssociatePrefersMoreMatches(t *testing.T) {
	// matching both pairs costs 2.8 total; matching only the cheap pair
	// and paying two dummy slots costs 0.1 + gate = 3.1, so the solver
	// must keep both real matches
	cost := [][]float64{
		{0.1, 2.9},
		{2.9, 2.7},
	}

	res, err := associate(cost, 2, 2, testGate)
	if err != nil {
		t.Fatalf("associate failed: %v", err)
	}

	if len(res.matches) != 2 {
		t.Errorf("expected both pairs matched, got %+v", res)
	}
}

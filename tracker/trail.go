package tracker

import (
	"sync"

	dyntrack "github.com/navsense/go-dyntrack"
)

// trailHistory holds the recent positions of one track
type trailHistory struct {
	points []dyntrack.Point3
}

// Trail keeps a bounded history of track positions keyed by track number,
// for diagnostics and replay output.  It is advisory only and safe to read
// from a goroutine other than the one running frame cycles.
type Trail struct {
	// size is the maximum number of most recent points kept per track
	size int
	// history of tracked positions
	history map[int64]*trailHistory
	sync.Mutex
}

// NewTrail returns a trail history keeping the given number of most recent
// positions per track
func NewTrail(size int) *Trail {
	return &Trail{
		size:    size,
		history: make(map[int64]*trailHistory),
	}
}

// Reset clears all history
func (t *Trail) Reset() {
	t.Lock()
	defer t.Unlock()

	t.history = make(map[int64]*trailHistory)
}

// Add appends a track's current position to its history
func (t *Trail) Add(trk *Track) {
	t.Lock()
	defer t.Unlock()

	h, exists := t.history[trk.Num()]
	if !exists {
		h = &trailHistory{}
		t.history[trk.Num()] = h
	}

	h.points = append(h.points, trk.Position())

	if len(h.points) > t.size {
		h.points = h.points[1:]
	}
}

// Drop discards the history of a single track
func (t *Trail) Drop(num int64) {
	t.Lock()
	defer t.Unlock()

	delete(t.history, num)
}

// Points returns the position history for a track, oldest first
func (t *Trail) Points(num int64) []dyntrack.Point3 {
	t.Lock()
	defer t.Unlock()

	h, exists := t.history[num]
	if !exists {
		return nil
	}

	out := make([]dyntrack.Point3, len(h.points))
	copy(out, h.points)

	return out
}

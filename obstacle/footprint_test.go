package obstacle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dyntrack "github.com/navsense/go-dyntrack"
)

func box(cx, cy, w, h float64) Footprint {
	return BoxFootprint(
		dyntrack.Point3{X: cx, Y: cy},
		dyntrack.Extent{X: w, Y: h, Z: 1},
	)
}

func TestBoxFootprint(t *testing.T) {
	fp := box(2, 3, 0.6, 0.4)

	require.Len(t, fp, 4)
	assert.InDelta(t, 0.24, fp.Area(), 1e-9)

	for _, v := range fp {
		assert.InDelta(t, 2, v.X, 0.3+1e-9)
		assert.InDelta(t, 3, v.Y, 0.2+1e-9)
	}
}

func TestAreaDegenerate(t *testing.T) {
	assert.Zero(t, Footprint{}.Area())
	assert.Zero(t, Footprint{{0, 0}, {1, 1}}.Area())
}

func TestIoUIdentical(t *testing.T) {
	a := box(0, 0, 1, 1)
	assert.InDelta(t, 1.0, IoU(a, a), 1e-3)
}

func TestIoUDisjoint(t *testing.T) {
	a := box(0, 0, 1, 1)
	b := box(10, 0, 1, 1)
	assert.Zero(t, IoU(a, b))
}

func TestIoUHalfOverlap(t *testing.T) {
	// unit boxes offset by half a side: intersection 0.5, union 1.5
	a := box(0, 0, 1, 1)
	b := box(0.5, 0, 1, 1)
	assert.InDelta(t, 1.0/3.0, IoU(a, b), 1e-3)
}

func TestIoUDegenerate(t *testing.T) {
	a := box(0, 0, 1, 1)
	assert.Zero(t, IoU(a, nil))
	assert.Zero(t, IoU(nil, a))
}

func TestInflateGrowsArea(t *testing.T) {
	fp := box(0, 0, 1, 1)

	grown := fp.Inflate(0.25)

	// a 0.25m pad around a unit square adds at least the four side strips
	assert.Greater(t, grown.Area(), 1.5)
	// rounded corners keep it below the full padded bounding box
	assert.Less(t, grown.Area(), 2.25)

	// original untouched
	assert.InDelta(t, 1.0, fp.Area(), 1e-9)
}

func TestInflateNoop(t *testing.T) {
	fp := box(0, 0, 1, 1)

	assert.Equal(t, fp, fp.Inflate(0))
	assert.Equal(t, fp, fp.Inflate(-1))
}

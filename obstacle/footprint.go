package obstacle

import (
	"math"

	clipper "github.com/ctessum/go.clipper"

	dyntrack "github.com/navsense/go-dyntrack"
)

// clipperScale converts meters to the integer coordinates the clipper
// library computes on.  1mm resolution is far below detector noise.
const clipperScale = 1000.0

// Vertex is one corner of a planar footprint, in meters
type Vertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Footprint is a closed polygon in the world frame's ground plane,
// counter-clockwise, vertices in meters
type Footprint []Vertex

// BoxFootprint builds the axis-aligned rectangular footprint of an object
// at the given center with the given extent
func BoxFootprint(center dyntrack.Point3, ext dyntrack.Extent) Footprint {
	hx := ext.X / 2
	hy := ext.Y / 2
	return Footprint{
		{X: center.X - hx, Y: center.Y - hy},
		{X: center.X + hx, Y: center.Y - hy},
		{X: center.X + hx, Y: center.Y + hy},
		{X: center.X - hx, Y: center.Y + hy},
	}
}

// Area returns the enclosed area in square meters
func (f Footprint) Area() float64 {
	if len(f) < 3 {
		return 0
	}

	// shoelace formula
	sum := 0.0
	for i := range f {
		j := (i + 1) % len(f)
		sum += f[i].X*f[j].Y - f[j].X*f[i].Y
	}

	return math.Abs(sum) / 2
}

// Inflate grows the footprint outward by pad meters on all sides, rounding
// corners.  A non-positive pad returns the footprint unchanged.
func (f Footprint) Inflate(pad float64) Footprint {
	if pad <= 0 || len(f) < 3 {
		return f
	}

	co := clipper.NewClipperOffset()
	co.AddPath(f.toPath(), clipper.JtRound, clipper.EtClosedPolygon)

	solution := co.Execute(pad * clipperScale)

	// offsetting a simple closed polygon outward yields one polygon, but
	// keep the largest should the input self-intersect
	best := largestPath(solution)
	if best == nil {
		return f
	}

	return fromPath(best)
}

// IoU returns the intersection-over-union of two footprints in [0,1]
func IoU(a, b Footprint) float64 {
	if len(a) < 3 || len(b) < 3 {
		return 0
	}

	inter := intersectionArea(a, b)
	if inter <= 0 {
		return 0
	}

	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}

	return inter / union
}

// intersectionArea returns the overlap area of two footprints in square
// meters
func intersectionArea(a, b Footprint) float64 {
	c := clipper.NewClipper(clipper.IoNone)
	c.AddPath(a.toPath(), clipper.PtSubject, true)
	c.AddPath(b.toPath(), clipper.PtClip, true)

	solution, ok := c.Execute1(clipper.CtIntersection, clipper.PftNonZero, clipper.PftNonZero)
	if !ok {
		return 0
	}

	area := 0.0
	for _, path := range solution {
		area += fromPath(path).Area()
	}

	return area
}

func (f Footprint) toPath() clipper.Path {
	path := make(clipper.Path, 0, len(f))

	for _, v := range f {
		path = append(path, &clipper.IntPoint{
			X: clipper.CInt(math.Round(v.X * clipperScale)),
			Y: clipper.CInt(math.Round(v.Y * clipperScale)),
		})
	}

	return path
}

func fromPath(path clipper.Path) Footprint {
	f := make(Footprint, 0, len(path))

	for _, pt := range path {
		f = append(f, Vertex{
			X: float64(pt.X) / clipperScale,
			Y: float64(pt.Y) / clipperScale,
		})
	}

	return f
}

func largestPath(paths clipper.Paths) clipper.Path {
	var best clipper.Path
	bestArea := 0.0

	for _, path := range paths {
		if a := fromPath(path).Area(); a > bestArea {
			bestArea = a
			best = path
		}
	}

	return best
}

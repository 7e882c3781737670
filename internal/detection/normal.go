package detection

import "math"

// Normal is a detected line in normal form: x*cos(Theta) + y*sin(Theta) = Rho.
type Normal struct {
	// Rho is the signed distance from the origin in pixels.
	Rho float64 `json:"rho"`

	// Theta is the angle of the line's normal from the x-axis in degrees.
	Theta float64 `json:"theta"`

	// Votes is the accumulator count behind this line. Zero when the line
	// did not come from an accumulator (decoded stream words, centroids).
	Votes int `json:"votes"`
}

// Point is a pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Direction returns the angle of the line itself in degrees, in [0, 180).
// The normal of y = x sits at 135 degrees; the line runs at 45.
func (n Normal) Direction() float64 {
	d := math.Mod(n.Theta+90, 180)
	if d < 0 {
		d += 180
	}
	return d
}

// Segment clips the line to a width x height frame and returns its two end
// points. ok is false when the line misses the frame.
func (n Normal) Segment(width, height int) (a, b Point, ok bool) {
	const eps = 1e-9

	rad := n.Theta * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	maxX, maxY := float64(width-1), float64(height-1)

	var hits [][2]float64
	if math.Abs(sin) > eps {
		for _, x := range []float64{0, maxX} {
			y := (n.Rho - x*cos) / sin
			if y >= -eps && y <= maxY+eps {
				hits = append(hits, [2]float64{x, y})
			}
		}
	}
	if math.Abs(cos) > eps {
		for _, y := range []float64{0, maxY} {
			x := (n.Rho - y*sin) / cos
			if x >= -eps && x <= maxX+eps {
				hits = append(hits, [2]float64{x, y})
			}
		}
	}
	if len(hits) == 0 {
		return Point{}, Point{}, false
	}

	// A line through a corner hits two borders at the same spot; keep the
	// pair furthest apart.
	bi, bj, best := 0, 0, -1.0
	for i := range hits {
		for j := i; j < len(hits); j++ {
			d := math.Hypot(hits[i][0]-hits[j][0], hits[i][1]-hits[j][1])
			if d > best {
				bi, bj, best = i, j, d
			}
		}
	}

	toPoint := func(h [2]float64) Point {
		return Point{X: int(math.Round(h[0])), Y: int(math.Round(h[1]))}
	}
	return toPoint(hits[bi]), toPoint(hits[bj]), true
}

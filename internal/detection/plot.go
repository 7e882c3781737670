package detection

import (
	"math"

	"github.com/ironsheep/lane-tools-mcp/internal/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Visualize renders the accumulator as a grayscale image of
// RhoBuckets x ThetaBuckets pixels: x is the rho bucket, y the angle row.
//
// Votes map linearly onto [0, 255] with the fewest votes at 0 and the most at
// 255. An accumulator where every cell holds the same count renders black.
func Visualize(s *Space) (*imaging.Gray, error) {
	out, err := imaging.NewGray(s.RhoBuckets, s.ThetaBuckets)
	if err != nil {
		return nil, err
	}

	min, max := s.Range()
	if max == min {
		return out, nil
	}

	scale := 255 / float64(max-min)
	for i, v := range s.Votes {
		out.Pix[i] = uint8(math.Round(float64(v-min) * scale))
	}
	return out, nil
}

// heatmapStops runs from black through purple and red to pale yellow.
var heatmapStops = []colorful.Color{
	{R: 0.000, G: 0.000, B: 0.016},
	{R: 0.231, G: 0.059, B: 0.439},
	{R: 0.549, G: 0.161, B: 0.506},
	{R: 0.871, G: 0.286, B: 0.408},
	{R: 0.996, G: 0.624, B: 0.427},
	{R: 0.988, G: 0.992, B: 0.749},
}

// Heatmap renders the accumulator like Visualize but colour-maps the
// normalized votes, which makes faint secondary peaks easier to see than in
// the grayscale rendering.
func Heatmap(s *Space) (*imaging.RGB, error) {
	gray, err := Visualize(s)
	if err != nil {
		return nil, err
	}
	out, err := imaging.NewRGB(gray.Width, gray.Height)
	if err != nil {
		return nil, err
	}

	var palette [256]imaging.Pixel
	for i := range palette {
		palette[i] = heatColor(float64(i) / 255)
	}
	for i, v := range gray.Pix {
		out.Pix[i] = palette[v]
	}
	return out, nil
}

// heatColor blends between the two stops surrounding t in Lab space.
func heatColor(t float64) imaging.Pixel {
	segments := float64(len(heatmapStops) - 1)
	pos := t * segments
	i := int(pos)
	if i >= len(heatmapStops)-1 {
		i = len(heatmapStops) - 2
	}
	c := heatmapStops[i].BlendLab(heatmapStops[i+1], pos-float64(i)).Clamped()
	r, g, b := c.RGB255()
	return imaging.Pixel{R: r, G: g, B: b}
}

// Overlay draws each line across a copy of frame in the given colour.
// Lines that miss the frame are skipped.
func Overlay(frame *imaging.RGB, lines []Normal, p imaging.Pixel) *imaging.RGB {
	out := frame.Clone()
	for _, n := range lines {
		a, b, ok := n.Segment(out.Width, out.Height)
		if !ok {
			continue
		}
		drawLine(out, a, b, p)
	}
	return out
}

func drawLine(img *imaging.RGB, a, b Point, p imaging.Pixel) {
	dx, dy := b.X-a.X, b.Y-a.Y
	steps := int(math.Max(math.Abs(float64(dx)), math.Abs(float64(dy))))
	if steps == 0 {
		_ = img.Set(a.Y, a.X, p)
		return
	}
	for i := 0; i <= steps; i++ {
		x := a.X + int(math.Round(float64(dx*i)/float64(steps)))
		y := a.Y + int(math.Round(float64(dy*i)/float64(steps)))
		_ = img.Set(y, x, p)
	}
}

package detection

import (
	stderrors "errors"
	"math"
	"testing"

	apperrors "github.com/ironsheep/lane-tools-mcp/internal/errors"
	"github.com/ironsheep/lane-tools-mcp/internal/imaging"
)

// newBinaryImage returns a width x height image with the given pixels set
// to 255.
func newBinaryImage(t *testing.T, width, height int, on []Point) *imaging.Gray {
	t.Helper()
	img, err := imaging.NewGray(width, height)
	if err != nil {
		t.Fatalf("NewGray failed: %v", err)
	}
	for _, p := range on {
		if err := img.Set(p.Y, p.X, 255); err != nil {
			t.Fatalf("Set(%d,%d) failed: %v", p.Y, p.X, err)
		}
	}
	return img
}

func diagonalPoints(n int) []Point {
	points := make([]Point, n)
	for i := range points {
		points[i] = Point{X: i, Y: i}
	}
	return points
}

func rowPoints(width, y int) []Point {
	points := make([]Point, width)
	for x := range points {
		points[x] = Point{X: x, Y: y}
	}
	return points
}

func testParams(threshold int) Params {
	p := DefaultParams()
	p.Threshold = threshold
	return p
}

func findPeak(peaks []Normal, match func(Normal) bool) (Normal, bool) {
	for _, p := range peaks {
		if match(p) {
			return p, true
		}
	}
	return Normal{}, false
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{"default", DefaultParams(), false},
		{"hardware range", Params{ThetaMin: 5, ThetaMax: 175, AngleSamples: 8}, false},
		{"negative start", Params{ThetaMin: -90, ThetaMax: 90, AngleSamples: 180}, false},
		{"equal bounds", Params{ThetaMin: 30, ThetaMax: 30, AngleSamples: 8}, true},
		{"inverted", Params{ThetaMin: 180, ThetaMax: 0, AngleSamples: 8}, true},
		{"zero samples", Params{ThetaMin: 0, ThetaMax: 180, AngleSamples: 0}, true},
		{"negative samples", Params{ThetaMin: 0, ThetaMax: 180, AngleSamples: -1}, true},
		{"NaN bound", Params{ThetaMin: math.NaN(), ThetaMax: 180, AngleSamples: 8}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr {
				if !stderrors.Is(err, apperrors.ErrInvalidAngleRange) {
					t.Errorf("got %v, want InvalidAngleRange", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestParams_Angle(t *testing.T) {
	p := Params{ThetaMin: 0, ThetaMax: 180, AngleSamples: 8}
	want := []float64{0, 22.5, 45, 67.5, 90, 112.5, 135, 157.5}
	for i, w := range want {
		if got := p.Angle(i); got != w {
			t.Errorf("Angle(%d): got %v, want %v", i, got, w)
		}
	}
}

func TestAccumulate_InvalidAngleRange(t *testing.T) {
	img := newBinaryImage(t, 8, 8, diagonalPoints(8))

	_, err := Accumulate(img, Params{ThetaMin: 90, ThetaMax: 10, AngleSamples: 4})
	if !apperrors.IsKind(err, apperrors.KindInvalidAngleRange) {
		t.Errorf("inverted range: got %v, want InvalidAngleRange", err)
	}

	_, _, err = Hough(img, Params{ThetaMin: 0, ThetaMax: 180, AngleSamples: 0})
	if !apperrors.IsKind(err, apperrors.KindInvalidAngleRange) {
		t.Errorf("zero samples: got %v, want InvalidAngleRange", err)
	}
}

func TestAccumulate_VoteConservation(t *testing.T) {
	scenes := []struct {
		name string
		on   []Point
	}{
		{"empty", nil},
		{"single pixel", []Point{{X: 3, Y: 4}}},
		{"diagonal", diagonalPoints(32)},
		{"row", rowPoints(32, 10)},
		{"corners", []Point{{0, 0}, {31, 0}, {0, 31}, {31, 31}}},
	}
	paramSets := []Params{
		DefaultParams(),
		{ThetaMin: 5, ThetaMax: 175, AngleSamples: 8, RhoResolution: 2},
		{ThetaMin: -90, ThetaMax: 90, AngleSamples: 37, RhoResolution: 0.5},
	}

	for _, sc := range scenes {
		for _, p := range paramSets {
			img := newBinaryImage(t, 32, 32, sc.on)
			s, err := Accumulate(img, p)
			if err != nil {
				t.Fatalf("Accumulate failed: %v", err)
			}

			want := img.CountNonZero() * p.AngleSamples
			if got := s.Total(); got != want {
				t.Errorf("%s with %d samples: total votes %d, want %d", sc.name, p.AngleSamples, got, want)
			}
			for i, v := range s.Votes {
				if v < 0 {
					t.Fatalf("cell %d negative: %d", i, v)
				}
			}
		}
	}
}

func TestAccumulate_Dimensions(t *testing.T) {
	img := newBinaryImage(t, 30, 40, nil)
	p := Params{ThetaMin: 0, ThetaMax: 180, AngleSamples: 12, RhoResolution: 2}

	s, err := Accumulate(img, p)
	if err != nil {
		t.Fatalf("Accumulate failed: %v", err)
	}

	// Diagonal of 30x40 is 50; 100/2 + 1 buckets
	if s.Diagonal != 50 {
		t.Errorf("Diagonal: got %v, want 50", s.Diagonal)
	}
	if s.RhoBuckets != 51 {
		t.Errorf("RhoBuckets: got %d, want 51", s.RhoBuckets)
	}
	if s.ThetaBuckets != 12 {
		t.Errorf("ThetaBuckets: got %d, want 12", s.ThetaBuckets)
	}
	if len(s.Votes) != 51*12 {
		t.Errorf("len(Votes): got %d, want %d", len(s.Votes), 51*12)
	}
}

func TestAccumulate_ZeroResolutionDefaultsToOne(t *testing.T) {
	img := newBinaryImage(t, 3, 4, nil)
	s, err := Accumulate(img, Params{ThetaMin: 0, ThetaMax: 180, AngleSamples: 4})
	if err != nil {
		t.Fatalf("Accumulate failed: %v", err)
	}
	if s.Params.RhoResolution != 1 {
		t.Errorf("RhoResolution: got %v, want 1", s.Params.RhoResolution)
	}
	if s.RhoBuckets != 11 {
		t.Errorf("RhoBuckets: got %d, want 11", s.RhoBuckets)
	}
}

func TestHough_DiagonalLine(t *testing.T) {
	img := newBinaryImage(t, 32, 32, diagonalPoints(32))

	s, peaks, err := Hough(img, testParams(24))
	if err != nil {
		t.Fatalf("Hough failed: %v", err)
	}
	if len(peaks) == 0 {
		t.Fatal("no peaks for diagonal line")
	}

	bucket := s.Params.RhoResolution
	peak, ok := findPeak(peaks, func(n Normal) bool {
		return math.Abs(n.Direction()-45) < 1 && math.Abs(n.Rho) <= bucket
	})
	if !ok {
		t.Fatalf("no peak with direction 45 and rho 0 among %v", peaks)
	}

	// The normal of y = x points at 135 degrees
	if peak.Theta != 135 {
		t.Errorf("Theta: got %v, want 135", peak.Theta)
	}
	if peak.Votes != 32 {
		t.Errorf("Votes: got %d, want 32", peak.Votes)
	}
}

func TestHough_HorizontalLine(t *testing.T) {
	img := newBinaryImage(t, 32, 32, rowPoints(32, 10))

	s, peaks, err := Hough(img, testParams(24))
	if err != nil {
		t.Fatalf("Hough failed: %v", err)
	}

	bucket := s.Params.RhoResolution
	_, ok := findPeak(peaks, func(n Normal) bool {
		return math.Abs(n.Theta-90) < 1 && math.Abs(n.Rho-10) <= bucket
	})
	if !ok {
		t.Fatalf("no peak at theta 90, rho 10 among %v", peaks)
	}

	for _, p := range peaks {
		if p.Votes <= 24 {
			t.Errorf("peak %+v does not exceed threshold", p)
		}
	}
}

func TestHough_VerticalLine(t *testing.T) {
	on := make([]Point, 32)
	for y := range on {
		on[y] = Point{X: 7, Y: y}
	}
	img := newBinaryImage(t, 32, 32, on)

	_, peaks, err := Hough(img, testParams(24))
	if err != nil {
		t.Fatalf("Hough failed: %v", err)
	}

	_, ok := findPeak(peaks, func(n Normal) bool {
		return n.Theta == 0 && math.Abs(n.Rho-7) <= 1
	})
	if !ok {
		t.Fatalf("no peak at theta 0, rho 7 among %v", peaks)
	}
}

func TestHough_ThresholdIsStrict(t *testing.T) {
	img := newBinaryImage(t, 32, 32, rowPoints(32, 10))

	// Best cell holds exactly 32 votes; "exceeds 32" finds nothing.
	_, peaks, err := Hough(img, testParams(32))
	if err != nil {
		t.Fatalf("Hough failed: %v", err)
	}
	if len(peaks) != 0 {
		t.Errorf("expected no peaks at threshold 32, got %d", len(peaks))
	}

	_, peaks, err = Hough(img, testParams(31))
	if err != nil {
		t.Fatalf("Hough failed: %v", err)
	}
	if len(peaks) == 0 {
		t.Error("expected peaks at threshold 31")
	}
}

func TestHough_TiesAreAllEmitted(t *testing.T) {
	// Two parallel rows of equal length tie on votes.
	on := append(rowPoints(20, 4), rowPoints(20, 15)...)
	img := newBinaryImage(t, 20, 20, on)

	_, peaks, err := Hough(img, testParams(19))
	if err != nil {
		t.Fatalf("Hough failed: %v", err)
	}

	var at90 []Normal
	for _, p := range peaks {
		if p.Theta == 90 {
			at90 = append(at90, p)
		}
	}
	if len(at90) != 2 {
		t.Fatalf("expected both rows at theta 90, got %v", at90)
	}
	if at90[0].Votes != at90[1].Votes {
		t.Errorf("expected a tie, got %d and %d votes", at90[0].Votes, at90[1].Votes)
	}
	if at90[0].Rho >= at90[1].Rho {
		t.Errorf("peaks not in rho order: %v", at90)
	}
}

func TestHough_EmptyImage(t *testing.T) {
	img := newBinaryImage(t, 16, 16, nil)

	s, peaks, err := Hough(img, testParams(0))
	if err != nil {
		t.Fatalf("Hough failed: %v", err)
	}
	if s.Total() != 0 {
		t.Errorf("total votes: got %d, want 0", s.Total())
	}
	if len(peaks) != 0 {
		t.Errorf("peaks: got %d, want 0", len(peaks))
	}
}

func TestSpace_RhoIndexRoundTrip(t *testing.T) {
	s, err := NewSpace(64, 48, Params{ThetaMin: 0, ThetaMax: 180, AngleSamples: 4, RhoResolution: 3})
	if err != nil {
		t.Fatalf("NewSpace failed: %v", err)
	}

	for _, rho := range []float64{-s.Diagonal, -17.2, 0, 0.4, 25, s.Diagonal} {
		idx := s.RhoIndex(rho)
		if idx < 0 || idx >= s.RhoBuckets {
			t.Fatalf("RhoIndex(%v) = %d out of range", rho, idx)
		}
		if d := math.Abs(s.RhoValue(idx) - rho); d > s.Params.RhoResolution {
			t.Errorf("rho %v: bucket centre %v is %v away", rho, s.RhoValue(idx), d)
		}
	}

	// Out-of-range values clamp to the end buckets
	if s.RhoIndex(-1e9) != 0 || s.RhoIndex(1e9) != s.RhoBuckets-1 {
		t.Error("out-of-range rho not clamped")
	}
}

func TestSpace_StrongestAndReset(t *testing.T) {
	img := newBinaryImage(t, 32, 32, rowPoints(32, 10))
	p := Params{ThetaMin: 0, ThetaMax: 180, AngleSamples: 8, RhoResolution: 1}
	s, err := Accumulate(img, p)
	if err != nil {
		t.Fatalf("Accumulate failed: %v", err)
	}

	// Row 4 is 90 degrees
	idx, votes := s.Strongest(4)
	if votes != 32 {
		t.Errorf("Strongest votes: got %d, want 32", votes)
	}
	if math.Abs(s.RhoValue(idx)-10) > 1 {
		t.Errorf("Strongest rho: got %v, want ~10", s.RhoValue(idx))
	}

	s.Reset()
	if s.Total() != 0 {
		t.Errorf("Reset left %d votes", s.Total())
	}
}

func TestNewSpace_InvalidDimensions(t *testing.T) {
	_, err := NewSpace(0, 10, DefaultParams())
	if !apperrors.IsKind(err, apperrors.KindInvalidDimensions) {
		t.Errorf("got %v, want InvalidDimensions", err)
	}
}

func TestNewSpace_TooManyCells(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"tiny resolution", func(p *Params) { p.RhoResolution = 1e-300 }},
		{"fine resolution", func(p *Params) { p.RhoResolution = 1e-6 }},
		{"too many samples", func(p *Params) { p.AngleSamples = imaging.MaxPixels + 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			img := newBinaryImage(t, 4, 4, []Point{{X: 1, Y: 2}})
			s, err := Accumulate(img, p)
			if !apperrors.IsKind(err, apperrors.KindAllocationFailure) {
				t.Errorf("got %v, want AllocationFailure", err)
			}
			if s != nil {
				t.Error("no space should be returned on error")
			}
		})
	}
}

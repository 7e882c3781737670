package detection

import (
	"math"

	apperrors "github.com/ironsheep/lane-tools-mcp/internal/errors"
	"github.com/ironsheep/lane-tools-mcp/internal/imaging"
)

// Params configures the Hough accumulator.
type Params struct {
	// ThetaMin is the first sampled angle in degrees (inclusive).
	ThetaMin float64 `json:"theta_min"`

	// ThetaMax ends the angle range in degrees (exclusive).
	ThetaMax float64 `json:"theta_max"`

	// AngleSamples is how many angles are sampled evenly across
	// [ThetaMin, ThetaMax).
	AngleSamples int `json:"angle_samples"`

	// RhoResolution is the width of one rho bucket in pixels.
	// Values <= 0 mean 1.
	RhoResolution float64 `json:"rho_resolution"`

	// Threshold is the vote count a cell must exceed to become a peak.
	Threshold int `json:"threshold"`
}

// DefaultParams returns the parameters the vehicle runs with: one-degree
// steps over [0, 180), one-pixel rho buckets and 150 votes.
func DefaultParams() Params {
	return Params{
		ThetaMin:      0,
		ThetaMax:      180,
		AngleSamples:  180,
		RhoResolution: 1,
		Threshold:     150,
	}
}

// Validate checks the angle range. An empty or inverted range, or zero
// samples, is an InvalidAngleRange error.
func (p Params) Validate() error {
	if math.IsNaN(p.ThetaMin) || math.IsNaN(p.ThetaMax) || p.ThetaMin >= p.ThetaMax {
		return apperrors.New(apperrors.KindInvalidAngleRange, "Params.Validate",
			"theta range [%g, %g) is empty", p.ThetaMin, p.ThetaMax)
	}
	if p.AngleSamples <= 0 {
		return apperrors.New(apperrors.KindInvalidAngleRange, "Params.Validate",
			"angle samples %d must be > 0", p.AngleSamples)
	}
	return nil
}

// Angle returns sampled angle i in degrees.
func (p Params) Angle(i int) float64 {
	return p.ThetaMin + float64(i)*(p.ThetaMax-p.ThetaMin)/float64(p.AngleSamples)
}

// Space is a Hough accumulator: one row per sampled angle, one column per
// rho bucket.
//
// Rho spans [-Diagonal, Diagonal]. Bucket i covers
// [-Diagonal + i*res, -Diagonal + (i+1)*res) and is represented by its
// centre. A Space belongs to a single pipeline invocation; nothing else may
// vote into it.
type Space struct {
	// RhoBuckets is the accumulator width.
	RhoBuckets int

	// ThetaBuckets is the accumulator height, equal to Params.AngleSamples.
	ThetaBuckets int

	// Votes holds RhoBuckets*ThetaBuckets counts, row-major by angle.
	Votes []int

	// Diagonal is the largest |rho| any pixel can produce.
	Diagonal float64

	// Params are the parameters the space was built with, resolution
	// normalized.
	Params Params

	cos, sin []float64
}

// NewSpace allocates an all-zero accumulator able to hold votes from any
// pixel of a width x height frame.
func NewSpace(width, height int, p Params) (*Space, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, apperrors.New(apperrors.KindInvalidDimensions, "NewSpace",
			"width=%d height=%d must both be > 0", width, height)
	}
	if !(p.RhoResolution > 0) {
		p.RhoResolution = 1
	}

	diag := math.Hypot(float64(width), float64(height))
	// Checked as a float: a tiny resolution overflows int.
	buckets := math.Ceil(2*diag/p.RhoResolution) + 1
	if buckets > float64(imaging.MaxPixels/p.AngleSamples) {
		return nil, apperrors.New(apperrors.KindAllocationFailure, "NewSpace",
			"%g x %d cells exceeds %d", buckets, p.AngleSamples, imaging.MaxPixels)
	}
	rhoBuckets := int(buckets)

	s := &Space{
		RhoBuckets:   rhoBuckets,
		ThetaBuckets: p.AngleSamples,
		Votes:        make([]int, rhoBuckets*p.AngleSamples),
		Diagonal:     diag,
		Params:       p,
		cos:          make([]float64, p.AngleSamples),
		sin:          make([]float64, p.AngleSamples),
	}
	for i := 0; i < p.AngleSamples; i++ {
		rad := p.Angle(i) * math.Pi / 180
		s.cos[i] = math.Cos(rad)
		s.sin[i] = math.Sin(rad)
	}
	return s, nil
}

// Reset zeroes every cell.
func (s *Space) Reset() {
	for i := range s.Votes {
		s.Votes[i] = 0
	}
}

// Vote casts exactly one vote per sampled angle for the pixel at (x, y).
func (s *Space) Vote(x, y int) {
	fx, fy := float64(x), float64(y)
	for t := 0; t < s.ThetaBuckets; t++ {
		rho := fx*s.cos[t] + fy*s.sin[t]
		s.Votes[t*s.RhoBuckets+s.RhoIndex(rho)]++
	}
}

// RhoIndex quantizes rho into its bucket. Values outside the range land in
// the nearest end bucket.
func (s *Space) RhoIndex(rho float64) int {
	idx := int(math.Floor((rho + s.Diagonal) / s.Params.RhoResolution))
	if idx < 0 {
		return 0
	}
	if idx >= s.RhoBuckets {
		return s.RhoBuckets - 1
	}
	return idx
}

// RhoValue returns the centre of bucket idx.
func (s *Space) RhoValue(idx int) float64 {
	return -s.Diagonal + (float64(idx)+0.5)*s.Params.RhoResolution
}

// ThetaValue returns the angle of row idx in degrees.
func (s *Space) ThetaValue(idx int) float64 {
	return s.Params.Angle(idx)
}

// At returns the votes in cell (rhoIdx, thetaIdx).
func (s *Space) At(rhoIdx, thetaIdx int) int {
	return s.Votes[thetaIdx*s.RhoBuckets+rhoIdx]
}

// Total returns the sum of all votes.
func (s *Space) Total() int {
	total := 0
	for _, v := range s.Votes {
		total += v
	}
	return total
}

// Range returns the smallest and largest cell values.
func (s *Space) Range() (min, max int) {
	if len(s.Votes) == 0 {
		return 0, 0
	}
	min, max = s.Votes[0], s.Votes[0]
	for _, v := range s.Votes[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// Peaks returns every cell whose votes exceed Params.Threshold.
//
// Cells are scanned angle by angle, rho ascending. Equal vote counts never
// suppress one another and neighbouring cells of one physical line are all
// reported; ClusterLines merges them.
func (s *Space) Peaks() []Normal {
	peaks := make([]Normal, 0)
	for t := 0; t < s.ThetaBuckets; t++ {
		row := s.Votes[t*s.RhoBuckets : (t+1)*s.RhoBuckets]
		for r, votes := range row {
			if votes > s.Params.Threshold {
				peaks = append(peaks, Normal{
					Rho:   s.RhoValue(r),
					Theta: s.ThetaValue(t),
					Votes: votes,
				})
			}
		}
	}
	return peaks
}

// Strongest returns the rho bucket with the most votes in angle row t.
// The lowest index wins ties.
func (s *Space) Strongest(t int) (rhoIdx, votes int) {
	row := s.Votes[t*s.RhoBuckets : (t+1)*s.RhoBuckets]
	for r, v := range row {
		if v > votes {
			rhoIdx, votes = r, v
		}
	}
	return rhoIdx, votes
}

// Accumulate builds the Hough space of a binarized image. Every non-zero
// pixel is an on-pixel and casts one vote per sampled angle, so
// Total() == img.CountNonZero() * p.AngleSamples.
func Accumulate(img *imaging.Gray, p Params) (*Space, error) {
	if len(img.Pix) != img.Width*img.Height {
		return nil, apperrors.New(apperrors.KindInvalidDimensions, "Accumulate",
			"buffer holds %d pixels, want %dx%d", len(img.Pix), img.Width, img.Height)
	}
	s, err := NewSpace(img.Width, img.Height, p)
	if err != nil {
		return nil, err
	}

	for y := 0; y < img.Height; y++ {
		row := img.Pix[y*img.Width : (y+1)*img.Width]
		for x, v := range row {
			if v != 0 {
				s.Vote(x, y)
			}
		}
	}
	return s, nil
}

// Hough runs Accumulate and Peaks in one call.
func Hough(img *imaging.Gray, p Params) (*Space, []Normal, error) {
	s, err := Accumulate(img, p)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Peaks(), nil
}

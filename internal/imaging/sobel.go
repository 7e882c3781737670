package imaging

import (
	"math"

	apperrors "github.com/ironsheep/lane-tools-mcp/internal/errors"
)

var (
	sobelX = [3][3]int{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [3][3]int{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// Sobel computes the gradient magnitude of src and returns it as a new image.
//
// # Algorithm
//
//  1. Gx and Gy are computed with the 3x3 Sobel operators. Borders use
//     clamped (replicated) edge values, as in GaussianBlur.
//  2. magnitude = round(sqrt(Gx² + Gy²)), clamped to 255.
//
// Each gradient lies in [-1020, 1020], so Gx² + Gy² needs 21 bits. The sum is
// kept in an int and only converted to float64 for the square root.
func Sobel(src *Gray) (*Gray, error) {
	out, err := NewGray(src.Width, src.Height)
	if err != nil {
		return nil, err
	}
	if len(src.Pix) != src.Width*src.Height {
		return nil, malformed("Sobel", src.Width, src.Height, len(src.Pix))
	}

	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			gx, gy := gradient(src, x, y)
			mag := math.Sqrt(float64(gx*gx + gy*gy))
			out.Pix[y*src.Width+x] = clampByte(math.Round(mag))
		}
	}
	return out, nil
}

// gradient returns the Sobel Gx and Gy at (x, y).
func gradient(src *Gray, x, y int) (gx, gy int) {
	for ky := -1; ky <= 1; ky++ {
		py := clamp(y+ky, 0, src.Height-1)
		for kx := -1; kx <= 1; kx++ {
			px := clamp(x+kx, 0, src.Width-1)
			v := int(src.Pix[py*src.Width+px])
			gx += v * sobelX[ky+1][kx+1]
			gy += v * sobelY[ky+1][kx+1]
		}
	}
	return gx, gy
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// clampByte saturates v into [0, 255].
func clampByte(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func malformed(op string, width, height, n int) error {
	return apperrors.New(apperrors.KindInvalidDimensions, op,
		"buffer holds %d pixels, want %dx%d", n, width, height)
}

package imaging

import (
	"math"

	apperrors "github.com/ironsheep/lane-tools-mcp/internal/errors"
)

// Kernel is a square convolution kernel of odd size, stored row-major.
type Kernel struct {
	Size    int
	Weights []float64
}

// At returns the weight at kernel offset (ky, kx), both in [-Size/2, Size/2].
func (k *Kernel) At(ky, kx int) float64 {
	r := k.Size / 2
	return k.Weights[(ky+r)*k.Size+(kx+r)]
}

// GaussianKernel builds a size x size kernel from the 2D Gaussian
//
//	G(x, y) = exp(-(x² + y²) / (2σ²)) / (2πσ²)
//
// and normalizes it so the weights sum to 1. A size of 1 yields the single
// weight 1.
//
// Parameters:
//   - size: Kernel width and height. Must be odd and >= 1.
//   - variance: σ². Must be > 0.
//
// Returns an InvalidKernelParameters error otherwise, and an AllocationFailure
// error if size x size exceeds MaxPixels.
func GaussianKernel(size int, variance float64) (*Kernel, error) {
	if size < 1 || size%2 == 0 {
		return nil, apperrors.New(apperrors.KindInvalidKernelParameters, "GaussianKernel",
			"size %d must be odd and >= 1", size)
	}
	if size > MaxPixels/size {
		return nil, apperrors.New(apperrors.KindAllocationFailure, "GaussianKernel",
			"%dx%d kernel exceeds %d weights", size, size, MaxPixels)
	}
	if !(variance > 0) || math.IsInf(variance, 0) {
		return nil, apperrors.New(apperrors.KindInvalidKernelParameters, "GaussianKernel",
			"variance %g must be > 0", variance)
	}

	weights := make([]float64, size*size)
	center := size / 2
	sum := 0.0
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			y := float64(i - center)
			x := float64(j - center)
			w := math.Exp(-(x*x+y*y)/(2*variance)) / (2 * math.Pi * variance)
			weights[i*size+j] = w
			sum += w
		}
	}
	for i := range weights {
		weights[i] /= sum
	}

	return &Kernel{Size: size, Weights: weights}, nil
}

// GaussianBlur smooths src with a size x size Gaussian kernel of the given
// variance and returns a new image.
//
// Pixels outside the image take the value of the nearest edge pixel, so
// borders are neither darkened (zero padding) nor mixed with the opposite
// side (wrapping). With size 1 the output equals the input.
func GaussianBlur(src *Gray, size int, variance float64) (*Gray, error) {
	kernel, err := GaussianKernel(size, variance)
	if err != nil {
		return nil, err
	}
	out, err := NewGray(src.Width, src.Height)
	if err != nil {
		return nil, err
	}
	if len(src.Pix) != src.Width*src.Height {
		return nil, malformed("GaussianBlur", src.Width, src.Height, len(src.Pix))
	}

	r := size / 2
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			var sum float64
			for ky := -r; ky <= r; ky++ {
				py := clamp(y+ky, 0, src.Height-1)
				row := py * src.Width
				for kx := -r; kx <= r; kx++ {
					px := clamp(x+kx, 0, src.Width-1)
					sum += float64(src.Pix[row+px]) * kernel.At(ky, kx)
				}
			}
			out.Pix[y*src.Width+x] = clampByte(math.Round(sum))
		}
	}
	return out, nil
}

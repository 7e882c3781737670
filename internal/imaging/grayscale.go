package imaging

import (
	"math"

	apperrors "github.com/ironsheep/lane-tools-mcp/internal/errors"
)

// Luma weights from ITU-R BT.601. They are fixed; the pipeline exposes no
// way to change them.
const (
	LumaRed   = 0.299
	LumaGreen = 0.587
	LumaBlue  = 0.114
)

// Luma returns round(0.299*r + 0.587*g + 0.114*b) clamped to [0,255].
func Luma(r, g, b uint8) uint8 {
	v := math.Round(LumaRed*float64(r) + LumaGreen*float64(g) + LumaBlue*float64(b))
	return clampByte(v)
}

// Grayscale reduces an RGB image to a new single-channel image of the same
// size. The input is not modified.
//
// Returns an error only if src is malformed (nil, zero dimensions or a buffer
// that does not match them).
func Grayscale(src *RGB) (*Gray, error) {
	if src == nil {
		return nil, apperrors.New(apperrors.KindInvalidDimensions, "Grayscale", "nil image")
	}
	out, err := NewGray(src.Width, src.Height)
	if err != nil {
		return nil, err
	}
	if len(src.Pix) != src.Width*src.Height {
		return nil, malformed("Grayscale", src.Width, src.Height, len(src.Pix))
	}

	for i, p := range src.Pix {
		out.Pix[i] = Luma(p.R, p.G, p.B)
	}
	return out, nil
}

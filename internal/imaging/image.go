package imaging

import (
	"image"
	"image/color"

	apperrors "github.com/ironsheep/lane-tools-mcp/internal/errors"
)

// MaxPixels is the largest buffer NewRGB and NewGray will allocate.
// Frames are addressed with 16-bit dimensions on the vehicle side, so
// 65535x65535 would fit the wire format but not a sane amount of memory.
const MaxPixels = 1 << 26

// Pixel is a dot with a mixture of red, green, and blue.
type Pixel struct {
	R, G, B uint8
}

// RGB is a three-channel image stored row-major.
//
// RGB owns Pix exclusively. Stages that read an RGB never write to it.
type RGB struct {
	Width  int
	Height int
	Pix    []Pixel
}

// Gray is a single-channel 8-bit image stored row-major.
type Gray struct {
	Width  int
	Height int
	Pix    []uint8
}

func checkDimensions(op string, width, height int) error {
	if width <= 0 || height <= 0 {
		return apperrors.New(apperrors.KindInvalidDimensions, op,
			"width=%d height=%d must both be > 0", width, height)
	}
	if width > MaxPixels/height {
		return apperrors.New(apperrors.KindAllocationFailure, op,
			"%dx%d exceeds %d pixels", width, height, MaxPixels)
	}
	return nil
}

// NewRGB allocates a zeroed RGB image.
//
// Returns an InvalidDimensions error if either dimension is not positive and
// an AllocationFailure error if the buffer would exceed MaxPixels. No image is
// returned on error.
func NewRGB(width, height int) (*RGB, error) {
	if err := checkDimensions("NewRGB", width, height); err != nil {
		return nil, err
	}
	return &RGB{
		Width:  width,
		Height: height,
		Pix:    make([]Pixel, width*height),
	}, nil
}

// NewGray allocates a zeroed grayscale image.
func NewGray(width, height int) (*Gray, error) {
	if err := checkDimensions("NewGray", width, height); err != nil {
		return nil, err
	}
	return &Gray{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}, nil
}

func outOfBounds(op string, row, col, width, height int) error {
	return apperrors.New(apperrors.KindOutOfBounds, op,
		"(row=%d, col=%d) outside %dx%d", row, col, width, height)
}

// Get returns the pixel at (row, col).
func (m *RGB) Get(row, col int) (Pixel, error) {
	if row < 0 || row >= m.Height || col < 0 || col >= m.Width {
		return Pixel{}, outOfBounds("RGB.Get", row, col, m.Width, m.Height)
	}
	return m.Pix[row*m.Width+col], nil
}

// Set writes the pixel at (row, col).
func (m *RGB) Set(row, col int, p Pixel) error {
	if row < 0 || row >= m.Height || col < 0 || col >= m.Width {
		return outOfBounds("RGB.Set", row, col, m.Width, m.Height)
	}
	m.Pix[row*m.Width+col] = p
	return nil
}

// Release drops the pixel buffer. Any later access reports OutOfBounds.
func (m *RGB) Release() {
	m.Pix = nil
	m.Width, m.Height = 0, 0
}

// Clone returns a deep copy that shares no memory with m.
func (m *RGB) Clone() *RGB {
	pix := make([]Pixel, len(m.Pix))
	copy(pix, m.Pix)
	return &RGB{Width: m.Width, Height: m.Height, Pix: pix}
}

// ColorModel, Bounds and At let an RGB be handed to image encoders.
func (m *RGB) ColorModel() color.Model { return color.RGBAModel }

func (m *RGB) Bounds() image.Rectangle { return image.Rect(0, 0, m.Width, m.Height) }

func (m *RGB) At(x, y int) color.Color {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return color.RGBA{}
	}
	p := m.Pix[y*m.Width+x]
	return color.RGBA{R: p.R, G: p.G, B: p.B, A: 255}
}

// Get returns the intensity at (row, col).
func (m *Gray) Get(row, col int) (uint8, error) {
	if row < 0 || row >= m.Height || col < 0 || col >= m.Width {
		return 0, outOfBounds("Gray.Get", row, col, m.Width, m.Height)
	}
	return m.Pix[row*m.Width+col], nil
}

// Set writes the intensity at (row, col).
func (m *Gray) Set(row, col int, v uint8) error {
	if row < 0 || row >= m.Height || col < 0 || col >= m.Width {
		return outOfBounds("Gray.Set", row, col, m.Width, m.Height)
	}
	m.Pix[row*m.Width+col] = v
	return nil
}

// Release drops the pixel buffer. Any later access reports OutOfBounds.
func (m *Gray) Release() {
	m.Pix = nil
	m.Width, m.Height = 0, 0
}

// Clone returns a deep copy that shares no memory with m.
func (m *Gray) Clone() *Gray {
	pix := make([]uint8, len(m.Pix))
	copy(pix, m.Pix)
	return &Gray{Width: m.Width, Height: m.Height, Pix: pix}
}

// CountNonZero returns how many pixels hold a non-zero value.
func (m *Gray) CountNonZero() int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

func (m *Gray) ColorModel() color.Model { return color.GrayModel }

func (m *Gray) Bounds() image.Rectangle { return image.Rect(0, 0, m.Width, m.Height) }

func (m *Gray) At(x, y int) color.Color {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return color.Gray{}
	}
	return color.Gray{Y: m.Pix[y*m.Width+x]}
}

// FromImage copies any decoded image into a new RGB buffer.
//
// 16-bit channels are reduced to 8 bits by dropping the low byte. Alpha is
// ignored; the vehicle camera never produces it.
func FromImage(img image.Image) (*RGB, error) {
	bounds := img.Bounds()
	out, err := NewRGB(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			out.Pix[i] = Pixel{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
			i++
		}
	}
	return out, nil
}

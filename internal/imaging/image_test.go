package imaging

import (
	stderrors "errors"
	"image/color"
	"testing"

	apperrors "github.com/ironsheep/lane-tools-mcp/internal/errors"
)

// newGrayFrom builds a Gray image from rows of intensities.
func newGrayFrom(t *testing.T, rows [][]uint8) *Gray {
	t.Helper()
	img, err := NewGray(len(rows[0]), len(rows))
	if err != nil {
		t.Fatalf("NewGray failed: %v", err)
	}
	for y, row := range rows {
		copy(img.Pix[y*img.Width:], row)
	}
	return img
}

// newUniformRGB builds a width x height RGB image of a single colour.
func newUniformRGB(t *testing.T, width, height int, p Pixel) *RGB {
	t.Helper()
	img, err := NewRGB(width, height)
	if err != nil {
		t.Fatalf("NewRGB failed: %v", err)
	}
	for i := range img.Pix {
		img.Pix[i] = p
	}
	return img
}

func TestNewRGB_ZeroInitialized(t *testing.T) {
	sizes := []struct{ w, h int }{{1, 1}, {3, 7}, {64, 48}}

	for _, s := range sizes {
		img, err := NewRGB(s.w, s.h)
		if err != nil {
			t.Fatalf("NewRGB(%d,%d) failed: %v", s.w, s.h, err)
		}
		if len(img.Pix) != s.w*s.h {
			t.Errorf("buffer length: got %d, want %d", len(img.Pix), s.w*s.h)
		}
		for i, p := range img.Pix {
			if p != (Pixel{}) {
				t.Fatalf("pixel %d not zero: %+v", i, p)
			}
		}
	}
}

func TestNewGray_ZeroInitialized(t *testing.T) {
	img, err := NewGray(9, 5)
	if err != nil {
		t.Fatalf("NewGray failed: %v", err)
	}
	if img.CountNonZero() != 0 {
		t.Errorf("new image has %d non-zero pixels", img.CountNonZero())
	}
}

func TestNew_InvalidDimensions(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"zero width", 0, 10},
		{"zero height", 10, 0},
		{"both zero", 0, 0},
		{"negative", -3, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rgb, err := NewRGB(tt.w, tt.h)
			if !stderrors.Is(err, apperrors.ErrInvalidDimensions) {
				t.Errorf("NewRGB: got %v, want InvalidDimensions", err)
			}
			if rgb != nil {
				t.Error("NewRGB returned a partial image on error")
			}

			gray, err := NewGray(tt.w, tt.h)
			if !stderrors.Is(err, apperrors.ErrInvalidDimensions) {
				t.Errorf("NewGray: got %v, want InvalidDimensions", err)
			}
			if gray != nil {
				t.Error("NewGray returned a partial image on error")
			}
		})
	}
}

func TestNew_AllocationFailure(t *testing.T) {
	_, err := NewGray(MaxPixels, 2)
	if !stderrors.Is(err, apperrors.ErrAllocationFailure) {
		t.Errorf("got %v, want AllocationFailure", err)
	}

	// Exactly MaxPixels still fits
	if err := checkDimensions("test", MaxPixels/4, 4); err != nil {
		t.Errorf("MaxPixels rejected: %v", err)
	}
}

func TestRGB_GetSet(t *testing.T) {
	img, _ := NewRGB(4, 3)
	want := Pixel{R: 10, G: 20, B: 30}

	if err := img.Set(2, 3, want); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := img.Get(2, 3)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	// Row-major layout
	if img.Pix[2*4+3] != want {
		t.Error("pixel not stored at row*width+col")
	}

	// image.Image view uses (x, y) = (col, row)
	c := img.At(3, 2).(color.RGBA)
	if c.R != 10 || c.G != 20 || c.B != 30 || c.A != 255 {
		t.Errorf("At(3,2): got %+v", c)
	}
}

func TestGetSet_OutOfBounds(t *testing.T) {
	rgb, _ := NewRGB(4, 3)
	gray, _ := NewGray(4, 3)

	coords := []struct{ row, col int }{
		{-1, 0}, {0, -1}, {3, 0}, {0, 4}, {3, 4},
	}

	for _, c := range coords {
		if _, err := rgb.Get(c.row, c.col); !apperrors.IsKind(err, apperrors.KindOutOfBounds) {
			t.Errorf("RGB.Get(%d,%d): got %v, want OutOfBounds", c.row, c.col, err)
		}
		if err := rgb.Set(c.row, c.col, Pixel{}); !apperrors.IsKind(err, apperrors.KindOutOfBounds) {
			t.Errorf("RGB.Set(%d,%d): got %v, want OutOfBounds", c.row, c.col, err)
		}
		if _, err := gray.Get(c.row, c.col); !apperrors.IsKind(err, apperrors.KindOutOfBounds) {
			t.Errorf("Gray.Get(%d,%d): got %v, want OutOfBounds", c.row, c.col, err)
		}
		if err := gray.Set(c.row, c.col, 1); !apperrors.IsKind(err, apperrors.KindOutOfBounds) {
			t.Errorf("Gray.Set(%d,%d): got %v, want OutOfBounds", c.row, c.col, err)
		}
	}
}

func TestRelease(t *testing.T) {
	gray, _ := NewGray(5, 5)
	gray.Release()

	if gray.Pix != nil {
		t.Error("Release did not drop the buffer")
	}
	if _, err := gray.Get(0, 0); !apperrors.IsKind(err, apperrors.KindOutOfBounds) {
		t.Errorf("Get after Release: got %v, want OutOfBounds", err)
	}

	rgb, _ := NewRGB(5, 5)
	rgb.Release()
	if err := rgb.Set(0, 0, Pixel{}); !apperrors.IsKind(err, apperrors.KindOutOfBounds) {
		t.Errorf("Set after Release: got %v, want OutOfBounds", err)
	}
}

func TestClone_NoAliasing(t *testing.T) {
	src := newGrayFrom(t, [][]uint8{{1, 2}, {3, 4}})
	dup := src.Clone()
	dup.Set(0, 0, 99)

	if v, _ := src.Get(0, 0); v != 1 {
		t.Errorf("source modified through clone: got %d", v)
	}
}

func TestFromImage(t *testing.T) {
	src := newUniformRGB(t, 6, 4, Pixel{R: 1, G: 2, B: 3})

	// Round-trip through the image.Image interface
	out, err := FromImage(src)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if out.Width != 6 || out.Height != 4 {
		t.Fatalf("dimensions: got %dx%d, want 6x4", out.Width, out.Height)
	}
	for i, p := range out.Pix {
		if p != (Pixel{R: 1, G: 2, B: 3}) {
			t.Fatalf("pixel %d: got %+v", i, p)
		}
	}
}

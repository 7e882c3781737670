package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
	apperrors "github.com/ironsheep/lane-tools-mcp/internal/errors"
)

// Region represents a rectangular region within a frame.
//
// (X1, Y1) is inclusive and (X2, Y2) is exclusive.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Empty reports whether the region is the zero value, meaning "whole frame".
func (r Region) Empty() bool {
	return r == Region{}
}

// CropRegion extracts a region of interest from src into a new frame.
//
// Lane markings sit in the lower part of a forward-facing camera frame, so
// callers typically crop away the horizon before running the pipeline.
func CropRegion(src *RGB, r Region) (*RGB, error) {
	if r.X1 < 0 || r.Y1 < 0 || r.X2 > src.Width || r.Y2 > src.Height {
		return nil, apperrors.New(apperrors.KindOutOfBounds, "CropRegion",
			"region (%d,%d)-(%d,%d) outside %dx%d", r.X1, r.Y1, r.X2, r.Y2, src.Width, src.Height)
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return nil, apperrors.New(apperrors.KindInvalidDimensions, "CropRegion",
			"x1 must be < x2 and y1 must be < y2")
	}

	cropped := imaging.Crop(src, image.Rect(r.X1, r.Y1, r.X2, r.Y2))
	return FromImage(cropped)
}

// FitFrame scales src down so it fits within maxWidth x maxHeight, keeping
// the aspect ratio. Frames that already fit are returned as a copy.
func FitFrame(src *RGB, maxWidth, maxHeight int) (*RGB, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, apperrors.New(apperrors.KindInvalidDimensions, "FitFrame",
			"bounds %dx%d must both be > 0", maxWidth, maxHeight)
	}
	if src.Width <= maxWidth && src.Height <= maxHeight {
		return src.Clone(), nil
	}

	fitted := imaging.Fit(src, maxWidth, maxHeight, imaging.Linear)
	return FromImage(fitted)
}

// EncodePNG encodes img as a base64 PNG.
func EncodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

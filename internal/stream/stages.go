package stream

import (
	"context"

	"github.com/ironsheep/lane-tools-mcp/internal/detection"
	apperrors "github.com/ironsheep/lane-tools-mcp/internal/errors"
	"github.com/ironsheep/lane-tools-mcp/internal/imaging"
)

// grayBeat is a Beat after luma conversion.
type grayBeat struct {
	Value      uint8
	EndOfRow   bool
	EndOfFrame bool
}

// send blocks until out accepts v. It gives up only when another stage has
// already failed.
func send[T any](ctx context.Context, out chan<- T, v T) error {
	select {
	case out <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// source writes the frame row by row, one beat per pixel.
func source(ctx context.Context, frame *imaging.RGB, out chan<- Beat) error {
	defer close(out)
	last := len(frame.Pix) - 1
	for i, p := range frame.Pix {
		b := Beat{
			Pixel:      p,
			EndOfRow:   (i+1)%frame.Width == 0,
			EndOfFrame: i == last,
		}
		if err := send(ctx, out, b); err != nil {
			return err
		}
	}
	return nil
}

// grayscale converts each beat to luma and forwards its sidebands.
func grayscale(ctx context.Context, in <-chan Beat, out chan<- grayBeat) error {
	defer close(out)
	for b := range in {
		g := grayBeat{
			Value:      imaging.Luma(b.Pixel.R, b.Pixel.G, b.Pixel.B),
			EndOfRow:   b.EndOfRow,
			EndOfFrame: b.EndOfFrame,
		}
		if err := send(ctx, out, g); err != nil {
			return err
		}
	}
	return nil
}

// hough tracks the pixel position from the sidebands, votes for every
// non-zero beat and, at end of frame, reports the strongest cell of each
// angle. Angles whose strongest cell does not exceed the threshold report
// the zero Normal.
func hough(ctx context.Context, in <-chan grayBeat, space *detection.Space, cfg Config, out chan<- []detection.Normal) error {
	defer close(out)
	x, y := 0, 0
	for b := range in {
		if x >= cfg.MaxWidth || y >= cfg.MaxHeight {
			return apperrors.New(apperrors.KindInvalidDimensions, "stream.hough",
				"pixel (%d,%d) outside %dx%d", x, y, cfg.MaxWidth, cfg.MaxHeight)
		}
		if b.Value != 0 {
			space.Vote(x, y)
		}

		switch {
		case b.EndOfFrame:
			lines := make([]detection.Normal, space.ThetaBuckets)
			for t := range lines {
				r, votes := space.Strongest(t)
				if votes > cfg.Threshold {
					lines[t] = detection.Normal{
						Rho:   space.RhoValue(r),
						Theta: space.ThetaValue(t),
						Votes: votes,
					}
				}
			}
			if err := send(ctx, out, lines); err != nil {
				return err
			}
			space.Reset()
			x, y = 0, 0
		case b.EndOfRow:
			x = 0
			y++
		default:
			x++
		}
	}
	return nil
}

// emit writes each frame's lines as a burst of rho words followed by theta
// words.
func emit(ctx context.Context, in <-chan []detection.Normal, out chan<- Word) error {
	defer close(out)
	for lines := range in {
		for _, w := range Encode(lines) {
			if err := send(ctx, out, w); err != nil {
				return err
			}
		}
	}
	return nil
}

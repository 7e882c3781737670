// Package stream is the streaming form of the lane detector: the
// accelerator's datapath expressed as goroutine stages joined by channels.
//
// A frame enters as a sequence of pixel beats with end-of-row and
// end-of-frame sidebands. Stages are connected by channels of capacity one,
// so a slow stage stalls every stage upstream of it. The Hough stage votes
// into an accumulator sized for the largest supported frame and, once the
// frame ends, the emitter writes the strongest line at each sampled angle as
// a burst of 16.16 words: all rho words, then all theta words, with Last set
// on the final word.
//
// A frame is never cancelled once it has started; cancellation is checked
// between frames.
package stream

import (
	"context"
	"fmt"

	"github.com/ironsheep/lane-tools-mcp/internal/detection"
	apperrors "github.com/ironsheep/lane-tools-mcp/internal/errors"
	"github.com/ironsheep/lane-tools-mcp/internal/imaging"
	"github.com/ironsheep/lane-tools-mcp/internal/logger"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Beat is one pixel on the input stream.
type Beat struct {
	Pixel imaging.Pixel

	// EndOfRow marks the last pixel of a row.
	EndOfRow bool

	// EndOfFrame marks the last pixel of the frame.
	EndOfFrame bool
}

// Word is one 32-bit word of the output burst.
type Word struct {
	Data uint32 `json:"data"`
	Last bool   `json:"last"`
}

// Config bounds the stream and sets its Hough parameters.
type Config struct {
	// MaxWidth and MaxHeight size the accumulator. Larger frames are
	// rejected.
	MaxWidth  int `json:"max_width"`
	MaxHeight int `json:"max_height"`

	// AngleSamples is the number of angles voted on, and the length of each
	// half of the burst.
	AngleSamples int     `json:"angle_samples"`
	ThetaMin     float64 `json:"theta_min"`
	ThetaMax     float64 `json:"theta_max"`

	// Threshold is the vote count the strongest cell of an angle must
	// exceed to be reported.
	Threshold int `json:"threshold"`
}

// DefaultConfig matches the accelerator build: 640x480 frames, eight angles
// over [0, 180) and a vote threshold of 5.
func DefaultConfig() Config {
	return Config{
		MaxWidth:     640,
		MaxHeight:    480,
		AngleSamples: 8,
		ThetaMin:     0,
		ThetaMax:     180,
		Threshold:    5,
	}
}

// Params converts the config into accumulator parameters.
func (c Config) Params() detection.Params {
	return detection.Params{
		ThetaMin:      c.ThetaMin,
		ThetaMax:      c.ThetaMax,
		AngleSamples:  c.AngleSamples,
		RhoResolution: 1,
		Threshold:     c.Threshold,
	}
}

// Validate checks the frame bound and the angle range.
func (c Config) Validate() error {
	if c.MaxWidth <= 0 || c.MaxHeight <= 0 {
		return apperrors.New(apperrors.KindInvalidDimensions, "stream.Config",
			"max frame %dx%d must be positive", c.MaxWidth, c.MaxHeight)
	}
	return c.Params().Validate()
}

// BurstLen is the number of words Process emits per frame.
func (c Config) BurstLen() int {
	return 2 * c.AngleSamples
}

// Process streams one frame through the stages and returns its burst.
//
// The frame must fit within MaxWidth x MaxHeight; a larger frame is an
// InvalidDimensions error. ctx is consulted once before the frame starts.
func Process(ctx context.Context, frame *imaging.RGB, cfg Config) ([]Word, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if frame == nil {
		return nil, apperrors.New(apperrors.KindInvalidDimensions, "stream.Process", "nil frame")
	}
	if frame.Width <= 0 || frame.Height <= 0 || len(frame.Pix) != frame.Width*frame.Height {
		return nil, apperrors.New(apperrors.KindInvalidDimensions, "stream.Process",
			"frame %dx%d with %d pixels", frame.Width, frame.Height, len(frame.Pix))
	}
	if frame.Width > cfg.MaxWidth || frame.Height > cfg.MaxHeight {
		return nil, apperrors.New(apperrors.KindInvalidDimensions, "stream.Process",
			"frame %dx%d exceeds stream maximum %dx%d",
			frame.Width, frame.Height, cfg.MaxWidth, cfg.MaxHeight)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The accumulator is allocated per invocation and owned by the Hough
	// stage alone.
	space, err := detection.NewSpace(cfg.MaxWidth, cfg.MaxHeight, cfg.Params())
	if err != nil {
		return nil, fmt.Errorf("stream accumulator: %w", err)
	}

	g, gctx := errgroup.WithContext(context.Background())
	beats := make(chan Beat, 1)
	grays := make(chan grayBeat, 1)
	lines := make(chan []detection.Normal, 1)
	words := make(chan Word, 1)

	g.Go(func() error { return source(gctx, frame, beats) })
	g.Go(func() error { return grayscale(gctx, beats, grays) })
	g.Go(func() error { return hough(gctx, grays, space, cfg, lines) })
	g.Go(func() error { return emit(gctx, lines, words) })

	burst := make([]Word, 0, cfg.BurstLen())
	g.Go(func() error {
		for w := range words {
			burst = append(burst, w)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"width":  frame.Width,
		"height": frame.Height,
		"votes":  space.Total(),
		"words":  len(burst),
	}).Debug("stream frame complete")

	return burst, nil
}

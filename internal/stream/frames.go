package stream

import (
	"context"
	"runtime"

	"github.com/ironsheep/lane-tools-mcp/internal/imaging"
	"golang.org/x/sync/errgroup"
)

// ProcessFrames runs Process over frames with at most workers frames in
// flight. Each frame gets its own accumulator, so frames never share state.
// Bursts are returned in frame order.
//
// workers <= 0 uses one worker per CPU. The first failure stops frames that
// have not started yet and is returned; frames already running finish.
func ProcessFrames(ctx context.Context, frames []*imaging.RGB, cfg Config, workers int) ([][]Word, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	bursts := make([][]Word, len(frames))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, frame := range frames {
		i, frame := i, frame // per-iteration copies (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			burst, err := Process(gctx, frame, cfg)
			if err != nil {
				return err
			}
			bursts[i] = burst
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bursts, nil
}

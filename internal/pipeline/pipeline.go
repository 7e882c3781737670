// Package pipeline runs the full software lane detector on one frame:
// grayscale, Gaussian blur, Sobel, threshold, Hough voting, peak extraction,
// optional clustering and accumulator visualization.
//
// A Run is synchronous and owns every buffer it creates. Intermediates that
// are not part of the Result are released before Run returns.
package pipeline

import (
	"fmt"
	"time"

	"github.com/ironsheep/lane-tools-mcp/internal/detection"
	apperrors "github.com/ironsheep/lane-tools-mcp/internal/errors"
	"github.com/ironsheep/lane-tools-mcp/internal/imaging"
	"github.com/ironsheep/lane-tools-mcp/internal/logger"
	"github.com/sirupsen/logrus"
)

// Config holds the tunables of every stage.
type Config struct {
	// GaussianSize is the odd side length of the smoothing kernel.
	GaussianSize int `json:"gaussian_size"`

	// GaussianVariance is σ² of the smoothing kernel.
	GaussianVariance float64 `json:"gaussian_variance"`

	// Edge magnitudes >= Cutoff become High, the rest Low.
	Cutoff uint8 `json:"cutoff"`
	High   uint8 `json:"high"`
	Low    uint8 `json:"low"`

	Hough detection.Params `json:"hough"`

	// Clusters is the k of the k-means stage. Zero skips clustering.
	Clusters int `json:"clusters"`
}

// DefaultConfig returns the values the lane camera was tuned with.
func DefaultConfig() Config {
	return Config{
		GaussianSize:     5,
		GaussianVariance: 2,
		Cutoff:           210,
		High:             255,
		Low:              0,
		Hough:            detection.DefaultParams(),
		Clusters:         2,
	}
}

// Result is everything a Run produces.
type Result struct {
	// Edges is the binarized gradient magnitude fed to the Hough stage.
	Edges *imaging.Gray

	Space   *detection.Space
	Normals []detection.Normal

	// Clusters is nil when clustering was skipped.
	Clusters []detection.Cluster

	// Visualization is Space rendered by detection.Visualize.
	Visualization *imaging.Gray

	Timings map[string]time.Duration
}

// Lines returns the cluster centroids when clustering ran and the raw
// normals otherwise.
func (r *Result) Lines() []detection.Normal {
	if r.Clusters == nil {
		return r.Normals
	}
	lines := make([]detection.Normal, len(r.Clusters))
	for i, c := range r.Clusters {
		lines[i] = c.Normal()
	}
	return lines
}

// Run processes frame with cfg. frame is not modified.
//
// The first failing stage aborts the run; its error is returned wrapped with
// the stage name as Op and the stage's kind preserved.
func Run(frame *imaging.RGB, cfg Config) (*Result, error) {
	res := &Result{Timings: make(map[string]time.Duration)}
	timed := func(stage string, start time.Time) {
		res.Timings[stage] = time.Since(start)
	}

	edges, err := edgeStages(frame, cfg, timed)
	if err != nil {
		return nil, err
	}
	res.Edges = edges

	start := time.Now()
	space, normals, err := detection.Hough(edges, cfg.Hough)
	if err != nil {
		return nil, stageError("hough", err)
	}
	res.Space = space
	res.Normals = normals
	timed("hough", start)

	if cfg.Clusters != 0 {
		start = time.Now()
		clusters, err := detection.ClusterLines(normals, cfg.Clusters)
		if err != nil {
			return nil, stageError("cluster", err)
		}
		res.Clusters = clusters
		timed("cluster", start)
	}

	start = time.Now()
	vis, err := detection.Visualize(space)
	if err != nil {
		return nil, stageError("visualize", err)
	}
	res.Visualization = vis
	timed("visualize", start)

	fields := logrus.Fields{
		"width":    frame.Width,
		"height":   frame.Height,
		"edges":    edges.CountNonZero(),
		"normals":  len(normals),
		"clusters": len(res.Clusters),
	}
	for stage, d := range res.Timings {
		fields[stage+"_ms"] = float64(d.Microseconds()) / 1000
	}
	logger.WithFields(fields).Debug("pipeline complete")

	return res, nil
}

// Edges runs only the stages up to and including the threshold and returns
// the binarized edge map.
func Edges(frame *imaging.RGB, cfg Config) (*imaging.Gray, error) {
	return edgeStages(frame, cfg, func(string, time.Time) {})
}

func stageError(stage string, err error) error {
	kind, ok := apperrors.KindOf(err)
	if !ok {
		return fmt.Errorf("%s: %w", stage, err)
	}
	logger.WithError(err).WithField("stage", stage).Debug("pipeline aborted")
	return apperrors.Wrap(kind, stage, err)
}

func edgeStages(frame *imaging.RGB, cfg Config, timed func(string, time.Time)) (*imaging.Gray, error) {
	start := time.Now()
	gray, err := imaging.Grayscale(frame)
	if err != nil {
		return nil, stageError("grayscale", err)
	}
	timed("grayscale", start)

	start = time.Now()
	blurred, err := imaging.GaussianBlur(gray, cfg.GaussianSize, cfg.GaussianVariance)
	gray.Release()
	if err != nil {
		return nil, stageError("gaussian", err)
	}
	timed("gaussian", start)

	start = time.Now()
	edges, err := imaging.Sobel(blurred)
	blurred.Release()
	if err != nil {
		return nil, stageError("sobel", err)
	}
	timed("sobel", start)

	start = time.Now()
	imaging.Threshold(edges, cfg.Cutoff, cfg.High, cfg.Low)
	timed("threshold", start)

	return edges, nil
}

// Package config loads pipeline and stream settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ironsheep/lane-tools-mcp/internal/detection"
	"github.com/ironsheep/lane-tools-mcp/internal/pipeline"
	"github.com/ironsheep/lane-tools-mcp/internal/stream"
)

// Config is the full tunable surface of the detector.
type Config struct {
	Pipeline pipeline.Config
	Stream   stream.Config
}

// LoadFromEnv starts from the built-in defaults and overrides any value whose
// variable is set. A variable that does not parse, or a combination that
// cannot run, is an error.
func LoadFromEnv() (*Config, error) {
	def := pipeline.DefaultConfig()
	sdef := stream.DefaultConfig()
	var p parser

	cfg := &Config{
		Pipeline: pipeline.Config{
			GaussianSize:     p.intVar("LANE_GAUSSIAN_SIZE", def.GaussianSize),
			GaussianVariance: p.floatVar("LANE_GAUSSIAN_VARIANCE", def.GaussianVariance),
			Cutoff:           p.byteVar("LANE_THRESHOLD_CUTOFF", def.Cutoff),
			High:             p.byteVar("LANE_THRESHOLD_HIGH", def.High),
			Low:              p.byteVar("LANE_THRESHOLD_LOW", def.Low),
			Hough: detection.Params{
				ThetaMin:      p.floatVar("LANE_HOUGH_THETA_MIN", def.Hough.ThetaMin),
				ThetaMax:      p.floatVar("LANE_HOUGH_THETA_MAX", def.Hough.ThetaMax),
				AngleSamples:  p.intVar("LANE_HOUGH_SAMPLES", def.Hough.AngleSamples),
				RhoResolution: p.floatVar("LANE_HOUGH_RHO_RESOLUTION", def.Hough.RhoResolution),
				Threshold:     p.intVar("LANE_HOUGH_THRESHOLD", def.Hough.Threshold),
			},
			Clusters: p.intVar("LANE_CLUSTERS", def.Clusters),
		},
		Stream: stream.Config{
			MaxWidth:     p.intVar("LANE_STREAM_MAX_WIDTH", sdef.MaxWidth),
			MaxHeight:    p.intVar("LANE_STREAM_MAX_HEIGHT", sdef.MaxHeight),
			AngleSamples: sdef.AngleSamples,
			ThetaMin:     sdef.ThetaMin,
			ThetaMax:     sdef.ThetaMax,
			Threshold:    p.intVar("LANE_STREAM_THRESHOLD", sdef.Threshold),
		},
	}
	if p.err != nil {
		return nil, p.err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every value the stages would otherwise reject mid-run.
func (c *Config) Validate() error {
	pc := c.Pipeline
	if pc.GaussianSize < 1 || pc.GaussianSize%2 == 0 {
		return fmt.Errorf("LANE_GAUSSIAN_SIZE must be odd and >= 1 (got %d)", pc.GaussianSize)
	}
	if !(pc.GaussianVariance > 0) {
		return fmt.Errorf("LANE_GAUSSIAN_VARIANCE must be > 0 (got %g)", pc.GaussianVariance)
	}
	if pc.Low >= pc.Cutoff || pc.Cutoff > pc.High {
		return fmt.Errorf("threshold must satisfy low < cutoff <= high (got low=%d cutoff=%d high=%d)",
			pc.Low, pc.Cutoff, pc.High)
	}
	if err := pc.Hough.Validate(); err != nil {
		return fmt.Errorf("hough: %w", err)
	}
	if pc.Hough.RhoResolution <= 0 {
		return fmt.Errorf("LANE_HOUGH_RHO_RESOLUTION must be > 0 (got %g)", pc.Hough.RhoResolution)
	}
	if pc.Hough.Threshold < 0 {
		return fmt.Errorf("LANE_HOUGH_THRESHOLD must be >= 0 (got %d)", pc.Hough.Threshold)
	}
	if pc.Clusters < 0 {
		return fmt.Errorf("LANE_CLUSTERS must be >= 0 (got %d)", pc.Clusters)
	}
	if err := c.Stream.Validate(); err != nil {
		return fmt.Errorf("stream: %w", err)
	}
	if c.Stream.Threshold < 0 {
		return fmt.Errorf("LANE_STREAM_THRESHOLD must be >= 0 (got %d)", c.Stream.Threshold)
	}
	return nil
}

// parser reads typed variables and keeps the first failure.
type parser struct {
	err error
}

func (p *parser) lookup(key string) (string, bool) {
	value := strings.TrimSpace(os.Getenv(key))
	return value, value != "" && p.err == nil
}

func (p *parser) intVar(key string, defaultValue int) int {
	value, ok := p.lookup(key)
	if !ok {
		return defaultValue
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		p.err = fmt.Errorf("invalid %s: %q", key, value)
		return defaultValue
	}
	return v
}

func (p *parser) floatVar(key string, defaultValue float64) float64 {
	value, ok := p.lookup(key)
	if !ok {
		return defaultValue
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		p.err = fmt.Errorf("invalid %s: %q", key, value)
		return defaultValue
	}
	return v
}

func (p *parser) byteVar(key string, defaultValue uint8) uint8 {
	value, ok := p.lookup(key)
	if !ok {
		return defaultValue
	}
	v, err := strconv.ParseUint(value, 10, 8)
	if err != nil {
		p.err = fmt.Errorf("invalid %s: %q (want 0-255)", key, value)
		return defaultValue
	}
	return uint8(v)
}

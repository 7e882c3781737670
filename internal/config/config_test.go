package config

import (
	"strings"
	"testing"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	p := cfg.Pipeline
	if p.GaussianSize != 5 || p.GaussianVariance != 2 {
		t.Errorf("gaussian: got %d/%v", p.GaussianSize, p.GaussianVariance)
	}
	if p.Cutoff != 210 || p.High != 255 || p.Low != 0 {
		t.Errorf("threshold: got %d/%d/%d", p.Cutoff, p.High, p.Low)
	}
	if p.Hough.ThetaMin != 0 || p.Hough.ThetaMax != 180 || p.Hough.AngleSamples != 180 {
		t.Errorf("angles: got %+v", p.Hough)
	}
	if p.Hough.RhoResolution != 1 || p.Hough.Threshold != 150 {
		t.Errorf("hough: got %+v", p.Hough)
	}
	if p.Clusters != 2 {
		t.Errorf("clusters: got %d", p.Clusters)
	}

	s := cfg.Stream
	if s.MaxWidth != 640 || s.MaxHeight != 480 || s.AngleSamples != 8 || s.Threshold != 5 {
		t.Errorf("stream: got %+v", s)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("LANE_GAUSSIAN_SIZE", "3")
	t.Setenv("LANE_GAUSSIAN_VARIANCE", "1.5")
	t.Setenv("LANE_THRESHOLD_CUTOFF", " 128 ")
	t.Setenv("LANE_HOUGH_THETA_MIN", "-30")
	t.Setenv("LANE_HOUGH_THETA_MAX", "30")
	t.Setenv("LANE_HOUGH_SAMPLES", "60")
	t.Setenv("LANE_HOUGH_RHO_RESOLUTION", "2")
	t.Setenv("LANE_HOUGH_THRESHOLD", "40")
	t.Setenv("LANE_CLUSTERS", "0")
	t.Setenv("LANE_STREAM_MAX_WIDTH", "320")
	t.Setenv("LANE_STREAM_MAX_HEIGHT", "240")
	t.Setenv("LANE_STREAM_THRESHOLD", "9")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	p := cfg.Pipeline
	if p.GaussianSize != 3 || p.GaussianVariance != 1.5 || p.Cutoff != 128 {
		t.Errorf("pipeline: got %+v", p)
	}
	if p.Hough.ThetaMin != -30 || p.Hough.ThetaMax != 30 || p.Hough.AngleSamples != 60 {
		t.Errorf("angles: got %+v", p.Hough)
	}
	if p.Hough.RhoResolution != 2 || p.Hough.Threshold != 40 || p.Clusters != 0 {
		t.Errorf("hough/clusters: got %+v / %d", p.Hough, p.Clusters)
	}
	if cfg.Stream.MaxWidth != 320 || cfg.Stream.MaxHeight != 240 || cfg.Stream.Threshold != 9 {
		t.Errorf("stream: got %+v", cfg.Stream)
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
		want       string
	}{
		{"LANE_GAUSSIAN_SIZE", "four", "LANE_GAUSSIAN_SIZE"},
		{"LANE_GAUSSIAN_SIZE", "4", "odd"},
		{"LANE_GAUSSIAN_VARIANCE", "0", "LANE_GAUSSIAN_VARIANCE"},
		{"LANE_THRESHOLD_CUTOFF", "300", "0-255"},
		{"LANE_THRESHOLD_CUTOFF", "0", "low < cutoff"},
		{"LANE_HOUGH_THETA_MAX", "0", "invalid_angle_range"},
		{"LANE_HOUGH_SAMPLES", "0", "invalid_angle_range"},
		{"LANE_HOUGH_RHO_RESOLUTION", "-1", "LANE_HOUGH_RHO_RESOLUTION"},
		{"LANE_HOUGH_THRESHOLD", "-5", "LANE_HOUGH_THRESHOLD"},
		{"LANE_CLUSTERS", "-1", "LANE_CLUSTERS"},
		{"LANE_STREAM_MAX_WIDTH", "0", "invalid_dimensions"},
		{"LANE_STREAM_THRESHOLD", "x", "LANE_STREAM_THRESHOLD"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			cfg, err := LoadFromEnv()
			if err == nil {
				t.Fatalf("expected error, got %+v", cfg)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

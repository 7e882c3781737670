package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/ironsheep/lane-tools-mcp/internal/config"
	"github.com/ironsheep/lane-tools-mcp/internal/detection"
	"github.com/ironsheep/lane-tools-mcp/internal/imaging"
	"github.com/ironsheep/lane-tools-mcp/internal/logger"
	"github.com/ironsheep/lane-tools-mcp/internal/pipeline"
	"github.com/ironsheep/lane-tools-mcp/internal/stream"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "lane-detect",
		Short:         "Detect straight lane lines in road images",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cmd.Flags().Changed("log-level") {
				logger.SetLevel(logLevel)
			}
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(newRunCmd(), newStreamCmd())
	return root
}

// runOptions are the flags of the run command.
type runOptions struct {
	roi         string
	clusters    int
	threshold   int
	overlay     string
	edges       string
	accumulator string
	heatmap     bool
	asJSON      bool
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <image>",
		Short: "Run the full detection pipeline on one image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return err
			}
			pc := cfg.Pipeline
			if cmd.Flags().Changed("clusters") {
				pc.Clusters = opts.clusters
			}
			if cmd.Flags().Changed("threshold") {
				pc.Hough.Threshold = opts.threshold
			}
			return runPipeline(cmd.OutOrStdout(), args[0], pc, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.roi, "roi", "", "region of interest as x1,y1,x2,y2")
	f.IntVarP(&opts.clusters, "clusters", "k", 2, "number of lines to cluster peaks into (0 = raw peaks)")
	f.IntVarP(&opts.threshold, "threshold", "t", 150, "votes a Hough cell must exceed")
	f.StringVarP(&opts.overlay, "overlay", "o", "", "write the image with detected lines drawn to this file")
	f.StringVar(&opts.edges, "edges", "", "write the binarized edge map to this file")
	f.StringVar(&opts.accumulator, "accumulator", "", "write the Hough accumulator to this file")
	f.BoolVar(&opts.heatmap, "heatmap", false, "colour-map the accumulator instead of grayscale")
	f.BoolVar(&opts.asJSON, "json", false, "print lines as JSON")
	return cmd
}

func runPipeline(w io.Writer, path string, cfg pipeline.Config, opts runOptions) error {
	frame, err := loadFrame(path, opts.roi)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(frame, cfg)
	if err != nil {
		return err
	}
	lines := res.Lines()

	if opts.overlay != "" {
		drawn := detection.Overlay(frame, lines, imaging.Pixel{R: 255})
		if err := saveImage(opts.overlay, drawn); err != nil {
			return err
		}
	}
	if opts.edges != "" {
		if err := saveImage(opts.edges, res.Edges); err != nil {
			return err
		}
	}
	if opts.accumulator != "" {
		var img image.Image = res.Visualization
		if opts.heatmap {
			heat, err := detection.Heatmap(res.Space)
			if err != nil {
				return err
			}
			img = heat
		}
		if err := saveImage(opts.accumulator, img); err != nil {
			return err
		}
	}

	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(lines)
	}

	fmt.Fprintf(w, "%s: %dx%d, %d edge pixels, %d peaks\n",
		path, frame.Width, frame.Height, res.Edges.CountNonZero(), len(res.Normals))
	for i, l := range lines {
		fmt.Fprintf(w, "  line %d: rho=%.2f theta=%.2f direction=%.2f votes=%d",
			i, l.Rho, l.Theta, l.Direction(), l.Votes)
		if a, b, ok := l.Segment(frame.Width, frame.Height); ok {
			fmt.Fprintf(w, " from (%d,%d) to (%d,%d)", a.X, a.Y, b.X, b.Y)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func newStreamCmd() *cobra.Command {
	var (
		fit     bool
		workers int
		roi     string
	)

	cmd := &cobra.Command{
		Use:   "stream <image>...",
		Short: "Run the streaming datapath and print each frame's word burst",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return err
			}

			frames := make([]*imaging.RGB, len(args))
			for i, path := range args {
				frame, err := loadFrame(path, roi)
				if err != nil {
					return err
				}
				if fit {
					if frame, err = imaging.FitFrame(frame, cfg.Stream.MaxWidth, cfg.Stream.MaxHeight); err != nil {
						return err
					}
				}
				frames[i] = frame
			}

			bursts, err := stream.ProcessFrames(context.Background(), frames, cfg.Stream, workers)
			if err != nil {
				return err
			}
			return printBursts(cmd.OutOrStdout(), args, bursts)
		},
	}

	cmd.Flags().BoolVar(&fit, "fit", false, "scale frames down to the stream maximum instead of rejecting them")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "frames processed in parallel (0 = one per CPU)")
	cmd.Flags().StringVar(&roi, "roi", "", "region of interest as x1,y1,x2,y2")
	return cmd
}

func printBursts(w io.Writer, paths []string, bursts [][]stream.Word) error {
	for i, burst := range bursts {
		lines, err := stream.Decode(burst)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s:\n", paths[i])
		for j, word := range burst {
			last := ""
			if word.Last {
				last = " last"
			}
			fmt.Fprintf(w, "  %02d 0x%08X%s\n", j, word.Data, last)
		}
		for j, l := range lines {
			fmt.Fprintf(w, "  angle %d: rho=%.4f theta=%.4f\n", j, l.Rho, l.Theta)
		}
	}
	return nil
}

// loadFrame decodes path with bild and crops it when roi is set.
func loadFrame(path, roi string) (*imaging.RGB, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	frame, err := imaging.FromImage(img)
	if err != nil {
		return nil, err
	}
	if roi == "" {
		return frame, nil
	}
	r, err := parseRegion(roi)
	if err != nil {
		return nil, err
	}
	return imaging.CropRegion(frame, r)
}

// parseRegion reads "x1,y1,x2,y2".
func parseRegion(s string) (imaging.Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return imaging.Region{}, fmt.Errorf("region %q: want x1,y1,x2,y2", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return imaging.Region{}, fmt.Errorf("region %q: %w", s, err)
		}
		v[i] = n
	}
	return imaging.Region{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}, nil
}

// saveImage writes img with the encoder matching the file extension.
func saveImage(path string, img image.Image) error {
	var enc imgio.Encoder
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		enc = imgio.JPEGEncoder(95)
	case ".bmp":
		enc = imgio.BMPEncoder()
	default:
		enc = imgio.PNGEncoder()
	}
	if err := imgio.Save(path, img, enc); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

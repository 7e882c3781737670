package main

import (
	"fmt"
	"os"

	"github.com/ironsheep/lane-tools-mcp/internal/config"
	"github.com/ironsheep/lane-tools-mcp/internal/logger"
	"github.com/ironsheep/lane-tools-mcp/internal/server"
	"github.com/sirupsen/logrus"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("lane-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("lane-tools-mcp - MCP server for lane line detection")
			fmt.Println()
			fmt.Println("Usage: lane-tools-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  LANE_MCP_LOG_LEVEL=debug         Enable debug logging")
			fmt.Println("  LANE_GAUSSIAN_SIZE=5             Smoothing kernel size (odd)")
			fmt.Println("  LANE_GAUSSIAN_VARIANCE=2         Smoothing kernel variance")
			fmt.Println("  LANE_THRESHOLD_CUTOFF=210        Edge magnitude cutoff")
			fmt.Println("  LANE_THRESHOLD_HIGH=255          Value for edge pixels")
			fmt.Println("  LANE_THRESHOLD_LOW=0             Value for non-edge pixels")
			fmt.Println("  LANE_HOUGH_THETA_MIN=0           First sampled angle (degrees)")
			fmt.Println("  LANE_HOUGH_THETA_MAX=180         End of the angle range (exclusive)")
			fmt.Println("  LANE_HOUGH_SAMPLES=180           Number of sampled angles")
			fmt.Println("  LANE_HOUGH_RHO_RESOLUTION=1      Rho bucket width (pixels)")
			fmt.Println("  LANE_HOUGH_THRESHOLD=150         Votes a line must exceed")
			fmt.Println("  LANE_CLUSTERS=2                  Lines to cluster peaks into (0 = off)")
			fmt.Println("  LANE_STREAM_MAX_WIDTH=640        Largest streamed frame width")
			fmt.Println("  LANE_STREAM_MAX_HEIGHT=480       Largest streamed frame height")
			fmt.Println("  LANE_STREAM_THRESHOLD=5          Stream vote threshold")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client.")
			return
		}
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	logger.WithFields(logrus.Fields{
		"version":    Version,
		"build_time": BuildTime,
		"commit":     GitCommit,
	}).Debug("lane MCP server starting")

	srv := server.New(cfg)
	if err := srv.Run(); err != nil {
		logger.WithError(err).Fatal("server error")
	}
}

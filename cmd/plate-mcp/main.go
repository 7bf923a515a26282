package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"

	"github.com/ironsheep/plate-tools-mcp/internal/config"
	"github.com/ironsheep/plate-tools-mcp/internal/detection"
	"github.com/ironsheep/plate-tools-mcp/internal/imaging"
	"github.com/ironsheep/plate-tools-mcp/internal/server"
	"github.com/ironsheep/plate-tools-mcp/internal/tracing"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// defaultOutput is the file written by extract when no output is named.
const defaultOutput = "cropped_license_plate.png"

// errNoPlate is returned by extract when the photograph has no plate.
var errNoPlate = errors.New(server.NotFoundMessage)

func main() {
	args := os.Args[1:]

	var configFile string
	if len(args) > 1 && args[0] == "--config" {
		configFile = args[1]
		args = args[2:]
	}

	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Printf("plate-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			fmt.Printf("  OpenCV backend: %t\n", detection.OpenCVAvailable)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if len(args) > 0 && args[0] == "extract" {
		if len(args) < 2 || len(args) > 3 {
			fmt.Fprintln(os.Stderr, "Usage: plate-tools-mcp extract <image> [output.png]")
			os.Exit(2)
		}
		output := defaultOutput
		if len(args) == 3 {
			output = args[2]
		}
		path, err := extract(cfg, args[1], output)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("License plate saved to %s\n", path)
		return
	}

	if cfg.Debug() {
		log.Printf("Plate MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	tp, err := tracing.NewProvider(context.Background(), cfg.TraceExporter, os.Stderr, Version)
	if err != nil {
		log.Fatalf("Tracing error: %v", err)
	}
	otel.SetTracerProvider(tp)

	srv := server.New(
		server.WithConfig(*cfg),
		server.WithVersion(Version),
		server.WithTracerProvider(tp),
	)
	runErr := srv.Run()
	if err := tp.Shutdown(context.Background()); err != nil {
		log.Printf("Failed to flush traces: %v", err)
	}
	if runErr != nil {
		log.Fatalf("Server error: %v", runErr)
	}
}

// extract detects the plate in the photograph at input and writes the crop
// as a PNG to output.
func extract(cfg *config.Config, input, output string) (string, error) {
	cache := imaging.NewImageCache(imaging.WithAutoOrientation(cfg.AutoOrient))
	img, err := cache.Load(input)
	if err != nil {
		return "", err
	}

	result, err := detection.DetectPlate(img)
	if err != nil {
		return "", err
	}
	if !result.Found {
		return "", errNoPlate
	}
	if cfg.Debug() {
		log.Printf("Plate found at %+v", result.Box)
	}

	return imaging.SavePNG(result.Plate, filepath.Dir(output), filepath.Base(output))
}

func printHelp() {
	fmt.Println("plate-tools-mcp - MCP server for license plate extraction")
	fmt.Println()
	fmt.Println("Usage: plate-tools-mcp [--config FILE] [command]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  (none)                     Serve MCP over stdin/stdout")
	fmt.Println("  extract IMAGE [OUTPUT]     Crop the plate from IMAGE into OUTPUT")
	fmt.Printf("                             (default %s)\n", defaultOutput)
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config FILE    Read settings from FILE instead of plate-mcp.yaml")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  PLATE_MCP_LOG_LEVEL=debug          Enable debug logging")
	fmt.Println("  PLATE_MCP_OUTPUT_DIR=DIR           Where plate_detect saves crops")
	fmt.Println("  PLATE_MCP_OVERLAY_COLOR=#00FF00    plate_overlay outline color")
	fmt.Println("  PLATE_MCP_OVERLAY_THICKNESS=3      plate_overlay outline width")
	fmt.Println("  PLATE_MCP_AUTO_ORIENT=true         Apply EXIF orientation")
	fmt.Println("  PLATE_MCP_TRACE_EXPORTER=stdout    Write tool spans to stderr")
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

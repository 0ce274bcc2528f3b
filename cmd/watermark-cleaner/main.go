package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/ironsheep/watermark-cleaner/internal/batch"
	"github.com/ironsheep/watermark-cleaner/internal/config"
	"github.com/ironsheep/watermark-cleaner/internal/imaging"
	"github.com/ironsheep/watermark-cleaner/internal/ocr"
	"github.com/ironsheep/watermark-cleaner/internal/pipeline"
	"github.com/ironsheep/watermark-cleaner/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	switch args[0] {
	case "--version", "-v", "version":
		fmt.Fprintf(stdout, "watermark-cleaner %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return 0
	case "--help", "-h", "help":
		usage(stdout)
		return 0
	case "batch":
		return runBatch(ctx, args[1:], stderr)
	case "single":
		return runSingle(ctx, args[1:], stderr)
	case "mcp":
		return runMCP(ctx, args[1:], stderr)
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n\n", args[0])
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "watermark-cleaner - remove overlay text from the bottom of photographs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  watermark-cleaner batch  -in DIR -out DIR [options]")
	fmt.Fprintln(w, "  watermark-cleaner single -in FILE -out FILE [-mask FILE] [options]")
	fmt.Fprintln(w, "  watermark-cleaner mcp    [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --version, -v    Print version information")
	fmt.Fprintln(w, "  --help, -h       Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Strategies: %v (default %s)\n", config.Strategies, config.StrategyMultiSignalContour)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables (also read from .env):")
	for _, env := range []string{
		config.EnvStrategy, config.EnvBandFraction, config.EnvWorkers, config.EnvPrefix,
		config.EnvLogLevel, config.EnvOCRLanguage, config.EnvOCRTimeout, config.EnvTessdata,
	} {
		fmt.Fprintf(w, "  %s\n", env)
	}
}

// common holds the flags shared by every subcommand.
type common struct {
	configPath string
	strategy   string
	debug      bool
}

func (c *common) register(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "YAML configuration file")
	f.StringVar(&c.strategy, "strategy", "", "detection strategy")
	f.BoolVar(&c.debug, "debug", false, "debug logging")
}

// setup loads .env and the configuration and builds the root logger. Logs
// always go to stderr; stdout carries MCP traffic.
func (c *common) setup(stderr io.Writer) (config.DetectionConfig, zerolog.Logger, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.DetectionConfig{}, zerolog.Nop(), fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load(c.configPath, c.strategy)
	if err != nil {
		return config.DetectionConfig{}, zerolog.Nop(), err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if c.debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()

	logger.Debug().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Str("strategy", cfg.Strategy).
		Msg("configuration loaded")

	if needsOCR(cfg) {
		if info := ocr.NewTesseract(cfg.OCR.TessdataPrefix).GetInfo(); !info.Available {
			logger.Warn().
				Str("strategy", cfg.Strategy).
				Str("reason", info.Error).
				Msg("OCR unavailable: every candidate will be rejected and images left unchanged")
		}
	}
	return cfg, logger, nil
}

// needsOCR reports whether cfg only removes what OCR accepts.
func needsOCR(cfg config.DetectionConfig) bool {
	return cfg.Strategy == config.StrategyColorFloodFillOCR || cfg.OCR.GateRectangles
}

func runBatch(ctx context.Context, args []string, stderr io.Writer) int {
	flags := flag.NewFlagSet("batch", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var c common
	c.register(flags)
	in := flags.String("in", "", "input directory")
	out := flags.String("out", "", "output directory")
	workers := flags.Int("workers", 0, "concurrent images (default from config)")
	prefix := flags.String("prefix", "", "output file name prefix (default from config)")
	manifest := flags.String("manifest", "", "manifest path (default <out>/index.json)")
	dryRun := flags.Bool("dry-run", false, "detect only, write no images")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if *in == "" || *out == "" {
		fmt.Fprintln(stderr, "batch: -in and -out are required")
		flags.Usage()
		return 2
	}

	cfg, logger, err := c.setup(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	manifestPath := *manifest
	if manifestPath == "" {
		manifestPath = cfg.Batch.Manifest
	}
	if manifestPath == "" && !*dryRun {
		manifestPath = filepath.Join(*out, "index.json")
	}

	m, err := batch.Run(ctx, *in, *out, batch.Options{
		Config:       cfg,
		Workers:      *workers,
		Prefix:       *prefix,
		DryRun:       *dryRun,
		ManifestPath: manifestPath,
		Logger:       logger,
		Pipeline:     []pipeline.Option{pipeline.WithLogger(logger)},
	})
	if err != nil {
		logger.Error().Err(err).Msg("batch failed")
		return 1
	}

	logger.Info().
		Int("total", m.Total).
		Int("succeeded", m.Succeeded).
		Int("failed", m.Failed).
		Str("manifest", manifestPath).
		Msg("done")
	if m.Failed > 0 {
		return 1
	}
	return 0
}

func runSingle(ctx context.Context, args []string, stderr io.Writer) int {
	flags := flag.NewFlagSet("single", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var c common
	c.register(flags)
	in := flags.String("in", "", "input image")
	out := flags.String("out", "", "output image")
	maskOut := flags.String("mask", "", "also write the reconstruction mask as a PNG")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if *in == "" || *out == "" {
		fmt.Fprintln(stderr, "single: -in and -out are required")
		flags.Usage()
		return 2
	}
	if filepath.Clean(*in) == filepath.Clean(*out) {
		fmt.Fprintln(stderr, "single: refusing to overwrite the input image")
		return 2
	}

	cfg, logger, err := c.setup(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	start := time.Now()
	img, err := imaging.Decode(*in)
	if err != nil {
		logger.Error().Err(fmt.Errorf("%w: %w", pipeline.ErrDecode, err)).Str("file", *in).Msg("failed to read image")
		return 1
	}
	res, err := pipeline.RemoveWatermark(ctx, img, cfg, pipeline.WithLogger(logger))
	if err != nil {
		logger.Error().Err(err).Str("file", *in).Msg("failed to remove watermark")
		return 1
	}
	outPath := imaging.OutputPath(*out)
	if err := imaging.Encode(outPath, res.Image); err != nil {
		logger.Error().Err(fmt.Errorf("%w: %w", pipeline.ErrEncode, err)).Str("file", outPath).Msg("failed to write image")
		return 1
	}
	if *maskOut != "" {
		maskPath := imaging.OutputPath(*maskOut)
		if err := imaging.Encode(maskPath, res.Mask.Gray()); err != nil {
			logger.Error().Err(err).Str("file", maskPath).Msg("failed to write mask")
			return 1
		}
	}

	logger.Info().
		Str("file", *in).
		Str("output", outPath).
		Str("strategy", res.Strategy).
		Int("regions", len(res.Regions)).
		Int("rejected", len(res.Rejected)).
		Dur("duration", time.Since(start)).
		Msg("done")
	return 0
}

func runMCP(ctx context.Context, args []string, stderr io.Writer) int {
	flags := flag.NewFlagSet("mcp", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var c common
	c.register(flags)
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg, logger, err := c.setup(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	logger.Info().Str("version", Version).Str("strategy", cfg.Strategy).Msg("mcp server starting")
	srv := server.New(
		server.WithConfig(cfg),
		server.WithLogger(logger),
		server.WithVersion(Version),
	)
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("server error")
		return 1
	}
	return 0
}

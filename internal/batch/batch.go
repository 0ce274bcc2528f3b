// Package batch runs the watermark pipeline over a directory of images and
// records the outcome of every file in a manifest.
package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/watermark-cleaner/internal/config"
	"github.com/ironsheep/watermark-cleaner/internal/imaging"
	"github.com/ironsheep/watermark-cleaner/internal/pipeline"
)

// Options configures a batch run.
type Options struct {
	// Config is the pipeline configuration. Workers, Prefix and ItemTimeout
	// default to Config.Batch when left zero.
	Config config.DetectionConfig

	Workers     int
	Prefix      string
	ItemTimeout time.Duration

	// DryRun detects without reconstructing or writing any image.
	DryRun bool

	// ManifestPath, when set, is where the JSON manifest is written.
	ManifestPath string

	// Now is the clock used for the manifest timestamp. Defaults to time.Now.
	Now func() time.Time

	// Logger receives per-item logs. The zero value discards them.
	Logger zerolog.Logger

	// Pipeline holds extra options passed to every pipeline run.
	Pipeline []pipeline.Option
}

// Run processes every supported image directly inside inputDir and writes
// cleaned copies named <prefix><name> into outputDir.
//
// A failing item never stops the batch: its error is recorded in the
// manifest and the remaining items are processed. Run itself only fails when
// the directories cannot be used or ctx is cancelled; in the latter case the
// partial manifest is returned along with the context error.
func Run(ctx context.Context, inputDir, outputDir string, opts Options) (*Manifest, error) {
	opts = withDefaults(opts)
	logger := opts.Logger.With().Str("component", "batch").Logger()

	sameDir, err := sameDirectory(inputDir, outputDir)
	if err != nil {
		return nil, err
	}
	if sameDir && opts.Prefix == "" {
		return nil, fmt.Errorf("refusing to overwrite inputs: output directory equals input directory and prefix is empty")
	}

	files, err := Scan(inputDir)
	if err != nil {
		return nil, err
	}
	if sameDir {
		files = skipPrefixed(files, opts.Prefix)
	}
	if !opts.DryRun {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	logger.Info().
		Str("input", inputDir).
		Str("output", outputDir).
		Str("strategy", opts.Config.Strategy).
		Int("files", len(files)).
		Int("workers", opts.Workers).
		Bool("dry_run", opts.DryRun).
		Msg("batch started")

	records := make([]Record, len(files))
	dups := duplicateOutputs(files, opts)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, src := range files {
		if first, ok := dups[i]; ok {
			records[i] = duplicateRecord(src, first, opts, logger)
			continue
		}
		g.Go(func() error {
			records[i] = process(gctx, src, outputDir, opts, logger)
			return nil
		})
	}
	g.Wait()

	m := newManifest(opts.Now(), opts.Config.Strategy, opts.DryRun, records)
	logger.Info().
		Int("total", m.Total).
		Int("succeeded", m.Succeeded).
		Int("failed", m.Failed).
		Msg("batch finished")

	if opts.ManifestPath != "" {
		if err := m.WriteFile(opts.ManifestPath); err != nil {
			return m, err
		}
	}
	if err := ctx.Err(); err != nil {
		return m, err
	}
	return m, nil
}

func withDefaults(opts Options) Options {
	if opts.Workers <= 0 {
		opts.Workers = opts.Config.Batch.Workers
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Prefix == "" {
		opts.Prefix = opts.Config.Batch.Prefix
	}
	if opts.ItemTimeout == 0 {
		opts.ItemTimeout = opts.Config.Batch.ItemTimeout
	}
	if opts.ManifestPath == "" {
		opts.ManifestPath = opts.Config.Batch.Manifest
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return opts
}

// Scan lists the supported images directly inside dir, sorted by name.
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !imaging.IsSupported(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// OutputName returns the file name written for the input file name.
func OutputName(name, prefix string) string {
	return imaging.OutputPath(prefix + filepath.Base(name))
}

// duplicateOutputs maps the index of every file whose output name was
// already claimed by an earlier file to that earlier file. Names are compared
// case-insensitively since two names differing only in case share a file on
// some filesystems.
func duplicateOutputs(files []string, opts Options) map[int]string {
	if opts.DryRun {
		return nil
	}
	dups := make(map[int]string)
	claimed := make(map[string]string, len(files))
	for i, src := range files {
		key := strings.ToLower(OutputName(src, opts.Prefix))
		if first, ok := claimed[key]; ok {
			dups[i] = first
			continue
		}
		claimed[key] = src
	}
	return dups
}

// duplicateRecord fails src without processing it because first already
// writes the same output file.
func duplicateRecord(src, first string, opts Options, logger zerolog.Logger) Record {
	name := filepath.Base(src)
	rec := Record{SourceFile: name, OutputFile: OutputName(name, opts.Prefix)}
	err := fmt.Errorf("%w: output %s already written for %s", pipeline.ErrEncode, rec.OutputFile, filepath.Base(first))
	rec.err = &ItemError{Path: src, Kind: KindEncode, Err: err}
	rec.Error = rec.err.Error()
	logger.Warn().Err(err).Str("file", name).Str("kind", KindEncode).Msg("item failed")
	return rec
}

func skipPrefixed(files []string, prefix string) []string {
	out := files[:0]
	for _, f := range files {
		if !strings.HasPrefix(filepath.Base(f), prefix) {
			out = append(out, f)
		}
	}
	return out
}

func sameDirectory(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return filepath.Clean(absA) == filepath.Clean(absB), nil
}

// process runs one file through decode, pipeline and encode.
func process(ctx context.Context, src, outputDir string, opts Options, logger zerolog.Logger) Record {
	start := time.Now()
	name := filepath.Base(src)
	rec := Record{SourceFile: name}
	if !opts.DryRun {
		rec.OutputFile = OutputName(name, opts.Prefix)
	}
	log := logger.With().Str("file", name).Str("strategy", opts.Config.Strategy).Logger()

	fail := func(kind string, err error) Record {
		rec.err = &ItemError{Path: src, Kind: kind, Err: err}
		rec.Error = rec.err.Error()
		log.Warn().Err(err).Str("kind", kind).Dur("duration", time.Since(start)).Msg("item failed")
		return rec
	}

	if opts.ItemTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.ItemTimeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return fail(KindCanceled, err)
	}

	img, err := imaging.Decode(src)
	if err != nil {
		return fail(KindDecode, fmt.Errorf("%w: %w", pipeline.ErrDecode, err))
	}

	run := pipeline.RemoveWatermark
	if opts.DryRun {
		run = pipeline.Detect
	}
	res, err := run(ctx, img, opts.Config, opts.Pipeline...)
	if err != nil {
		return fail(classify(err), err)
	}
	rec.Regions = res.Regions
	rec.RegionsRemoved = len(res.Regions)

	if !opts.DryRun {
		rec.PixelsChanged = changedPixels(img, res.Image)
		out := filepath.Join(outputDir, rec.OutputFile)
		if err := imaging.Encode(out, res.Image); err != nil {
			return fail(KindEncode, fmt.Errorf("%w: %w", pipeline.ErrEncode, err))
		}
	}

	rec.Success = true
	log.Info().
		Int("regions", rec.RegionsRemoved).
		Int("pixels_changed", rec.PixelsChanged).
		Dur("duration", time.Since(start)).
		Msg("item processed")
	return rec
}

func classify(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, pipeline.ErrReconstruction):
		return KindReconstruct
	default:
		return KindDetect
	}
}

func changedPixels(before image.Image, after *image.NRGBA) int {
	d, err := imaging.Diff(before, after)
	if err != nil {
		return 0
	}
	return d.ChangedPixels
}


package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/track-overlay/internal/annotate"
	"github.com/banshee-data/track-overlay/internal/config"
	"github.com/banshee-data/track-overlay/internal/report"
	"github.com/banshee-data/track-overlay/internal/runlog"
	"github.com/banshee-data/track-overlay/internal/security"
	"github.com/banshee-data/track-overlay/internal/tracking"
	"github.com/banshee-data/track-overlay/internal/video"
	"github.com/banshee-data/track-overlay/internal/video/cvcodec"
	"github.com/banshee-data/track-overlay/internal/video/framedir"
)

type annotateFlags struct {
	results    string
	input      string
	output     string
	configPath string
	backend    string
	reportPath string
	dbPath     string
	assetsHost string
	quiet      bool
	trace      bool

	idOrder       string
	fourcc        string
	strokeWidth   int
	labelOffset   int
	labelPrefix   string
	fontScale     float64
	textThickness int
	strict        bool
	motOneBased   bool
}

func parseAnnotateFlags(args []string) (*annotateFlags, *config.OverlayConfig, error) {
	defaults := config.DefaultOverlayConfig()
	f := &annotateFlags{}

	fs := flag.NewFlagSet("annotate", flag.ContinueOnError)
	fs.StringVar(&f.results, "results", "", "Tracking results file (.txt, .csv, .json, .cbor)")
	fs.StringVar(&f.input, "input", "", "Input video file or frame directory")
	fs.StringVar(&f.output, "output", "", "Output video file or frame directory")
	fs.StringVar(&f.configPath, "config", "", "Overlay config JSON (defaults to "+config.DefaultConfigPath+" when present)")
	fs.StringVar(&f.backend, "backend", "auto", "Video backend: auto, opencv or framedir")
	fs.StringVar(&f.reportPath, "report", "", "Write an HTML run report to this path")
	fs.StringVar(&f.dbPath, "db", "", "Record the run in this SQLite run log")
	fs.StringVar(&f.assetsHost, "assets-host", "", "Host for report chart scripts (default: go-echarts CDN)")
	fs.BoolVar(&f.quiet, "quiet", false, "Only log warnings and errors")
	fs.BoolVar(&f.trace, "trace", false, "Log per-frame and per-box detail")

	fs.StringVar(&f.idOrder, "id-order", *defaults.IDOrder, "Track id enumeration for colors: ascending or first-seen")
	fs.StringVar(&f.fourcc, "fourcc", *defaults.FourCC, "Output codec FourCC (opencv backend)")
	fs.IntVar(&f.strokeWidth, "stroke-width", *defaults.StrokeWidth, "Box outline width in pixels")
	fs.IntVar(&f.labelOffset, "label-offset", *defaults.LabelOffset, "Label baseline offset above the box top")
	fs.StringVar(&f.labelPrefix, "label-prefix", *defaults.LabelPrefix, "Text placed before the track id")
	fs.Float64Var(&f.fontScale, "font-scale", *defaults.FontScale, "Label font scale")
	fs.IntVar(&f.textThickness, "text-thickness", *defaults.TextThickness, "Label stroke thickness (opencv backend)")
	fs.BoolVar(&f.strict, "strict-frame-index", *defaults.StrictFrameIndex, "Abort when decoded frame indices skip")
	fs.BoolVar(&f.motOneBased, "mot-one-based", *defaults.MOTOneBased, "MOT files number frames from 1")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	// Positional form: annotate <results> <input> <output>
	pos := fs.Args()
	for _, dst := range []*string{&f.results, &f.input, &f.output} {
		if *dst == "" && len(pos) > 0 {
			*dst = pos[0]
			pos = pos[1:]
		}
	}
	if len(pos) > 0 {
		return nil, nil, fmt.Errorf("unexpected arguments: %v", pos)
	}
	if f.results == "" || f.input == "" || f.output == "" {
		return nil, nil, errors.New("results, input and output are required")
	}

	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return nil, nil, err
	}

	// Flags given on the command line override the file.
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "id-order":
			cfg.IDOrder = &f.idOrder
		case "fourcc":
			cfg.FourCC = &f.fourcc
		case "stroke-width":
			cfg.StrokeWidth = &f.strokeWidth
		case "label-offset":
			cfg.LabelOffset = &f.labelOffset
		case "label-prefix":
			cfg.LabelPrefix = &f.labelPrefix
		case "font-scale":
			cfg.FontScale = &f.fontScale
		case "text-thickness":
			cfg.TextThickness = &f.textThickness
		case "strict-frame-index":
			cfg.StrictFrameIndex = &f.strict
		case "mot-one-based":
			cfg.MOTOneBased = &f.motOneBased
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid options: %w", err)
	}
	return f, cfg, nil
}

// loadConfig reads path, or the default config file when path is empty and
// the file exists, or falls back to built-in defaults.
func loadConfig(path string) (*config.OverlayConfig, error) {
	if path == "" {
		if _, err := os.Stat(config.DefaultConfigPath); err != nil {
			return config.DefaultOverlayConfig(), nil
		}
		path = config.DefaultConfigPath
	}
	return config.LoadOverlayConfig(path)
}

// chooseBackend resolves the backend name for input.
func chooseBackend(name, input, fourcc string) (video.Backend, error) {
	switch name {
	case "opencv":
		return cvcodec.New(fourcc), nil
	case "framedir":
		return framedir.New(), nil
	case "", "auto":
		if st, err := os.Stat(input); err == nil && st.IsDir() {
			return framedir.New(), nil
		}
		return cvcodec.New(fourcc), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want auto, opencv or framedir)", name)
	}
}

func runAnnotate(args []string, stdout io.Writer) error {
	f, cfg, err := parseAnnotateFlags(args)
	if err != nil {
		return err
	}
	setupLogging(os.Stderr, f.quiet, f.trace)

	if err := security.ValidateOutputPath(f.input, f.output); err != nil {
		return err
	}

	backend, err := chooseBackend(f.backend, f.input, cfg.GetFourCC())
	if err != nil {
		return err
	}

	results, err := tracking.LoadResults(f.results, cfg.LoadOptions())
	if err != nil {
		return err
	}

	started := time.Now()
	sum, runErr := annotate.NewPipeline(backend, cfg.PipelineConfig()).Run(results, f.input, f.output)

	if f.dbPath != "" {
		if err := recordRun(f.dbPath, backend, f, sum, started, runErr); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	if f.reportPath != "" {
		if err := writeReport(f.reportPath, sum, f.assetsHost); err != nil {
			return err
		}
	}

	fmt.Fprintf(stdout, "Output saved to %s.\n", f.output)
	return nil
}

func recordRun(dbPath string, backend video.Backend, f *annotateFlags, sum *annotate.Summary, started time.Time, runErr error) error {
	store, err := runlog.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var r runlog.Run
	if runErr == nil {
		r = runlog.RunFromSummary(sum)
	} else {
		r = runlog.Run{
			ID:        uuid.NewString(),
			StartedAt: started,
			Elapsed:   time.Since(started),
			Backend:   backend.Name(),
			Input:     f.input,
			Output:    f.output,
			Status:    runlog.StatusFailed,
			Error:     runErr.Error(),
		}
	}
	return store.Record(r)
}

func writeReport(path string, sum *annotate.Summary, assetsHost string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := report.Write(out, sum, report.Options{AssetsHost: assetsHost}); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Package annotate runs tracking results over a video and writes a copy with
// every tracked box drawn on the frame it belongs to.
package annotate

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/banshee-data/track-overlay/internal/overlay"
	"github.com/banshee-data/track-overlay/internal/timeutil"
	"github.com/banshee-data/track-overlay/internal/tracking"
	"github.com/banshee-data/track-overlay/internal/video"
)

// Config holds the per-run settings of a Pipeline.
type Config struct {
	Style   overlay.Style
	IDOrder tracking.IDOrder
	// StrictFrameIndex aborts the run when a source frame's index differs
	// from its decode position.
	StrictFrameIndex bool
}

// DefaultConfig returns the stock pipeline settings.
func DefaultConfig() Config {
	return Config{
		Style:            overlay.DefaultStyle(),
		IDOrder:          tracking.OrderAscending,
		StrictFrameIndex: true,
	}
}

// Pipeline annotates videos read and written through one backend.
type Pipeline struct {
	backend   video.Backend
	cfg       Config
	annotator *overlay.Annotator
	clock     timeutil.Clock
}

// NewPipeline returns a Pipeline using backend for both input and output.
func NewPipeline(backend video.Backend, cfg Config) *Pipeline {
	if cfg.IDOrder == "" {
		cfg.IDOrder = tracking.OrderAscending
	}
	return &Pipeline{
		backend:   backend,
		cfg:       cfg,
		annotator: overlay.NewAnnotator(cfg.Style),
		clock:     timeutil.RealClock{},
	}
}

// WithClock replaces the clock used to time runs.
func (p *Pipeline) WithClock(c timeutil.Clock) *Pipeline {
	p.clock = c
	return p
}

// Config returns the pipeline settings.
func (p *Pipeline) Config() Config { return p.cfg }

// Annotate writes an annotated copy of input to output and returns output.
func (p *Pipeline) Annotate(results tracking.Results, input, output string) (string, error) {
	if _, err := p.Run(results, input, output); err != nil {
		return "", err
	}
	return output, nil
}

// Run writes an annotated copy of input to output and reports what it did.
//
// Frames are processed strictly in order: decode, draw the boxes whose frame
// id equals the decode position, write. Frames without results are written
// unchanged. The first frame is decoded before output is created, so an
// unreadable or empty input leaves no output behind. A failure after that
// leaves the frames written so far in place.
func (p *Pipeline) Run(results tracking.Results, input, output string) (*Summary, error) {
	sum := &Summary{
		RunID:   uuid.NewString(),
		Backend: p.backend.Name(),
		Input:   input,
		Output:  output,
		Started: p.clock.Now(),
	}

	src, err := p.backend.Open(input)
	if err != nil {
		return nil, &OpenError{Op: "open input", Path: input, Err: err}
	}
	defer src.Close()

	sum.Info = src.Info()
	first, err := src.Next()
	if errors.Is(err, io.EOF) {
		return nil, &OpenError{Op: "read input", Path: input, Err: ErrEmptySource}
	}
	if err != nil {
		return nil, &OpenError{Op: "read input", Path: input, Err: err}
	}

	sink, err := p.backend.Create(output, sum.Info)
	if err != nil {
		first.Close()
		return nil, &OpenError{Op: "create output", Path: output, Err: err}
	}

	colors := overlay.AssignColors(results.TrackIDs(p.cfg.IDOrder))
	sum.Tracks = len(colors)
	sum.Colors = colors
	sum.TrackFrames = results.TrackLengths()
	diagf("run %s: %s -> %s (%s, %s), %d tracks, %d result frames",
		sum.RunID, input, output, p.backend.Name(), sum.Info, len(colors), len(results))

	err = p.copyFrames(src, sink, first, results, colors, sum)
	cerr := sink.Close()
	if err != nil {
		opsf("run %s stopped after %d frames; partial output left at %s: %v", sum.RunID, sum.FramesRead, output, err)
		return nil, err
	}
	if cerr != nil {
		return nil, &WriteError{Frame: sum.FramesRead, Err: fmt.Errorf("close output: %w", cerr)}
	}

	for _, id := range results.FrameIDs() {
		if id >= sum.FramesRead {
			sum.UnreachedFrames = append(sum.UnreachedFrames, id)
		}
	}
	if len(sum.UnreachedFrames) > 0 {
		diagf("%d result frames lie past the last video frame %d", len(sum.UnreachedFrames), sum.FramesRead-1)
	}

	sum.Elapsed = p.clock.Since(sum.Started)
	diagf("Output saved to %s.", output)
	return sum, nil
}

func (p *Pipeline) copyFrames(src video.Source, sink video.Sink, first video.Frame,
	results tracking.Results, colors overlay.ColorMap, sum *Summary) error {
	frame := first
	for i := 0; ; i++ {
		if i > 0 {
			var err error
			frame, err = src.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return &DecodeError{Frame: i, Err: err}
			}
		}

		if p.cfg.StrictFrameIndex && frame.Index() != i {
			frame.Close()
			return &DecodeError{Frame: i, Err: fmt.Errorf("%w: source reported %d", ErrFrameMisaligned, frame.Index())}
		}

		n := 0
		if boxes := results.Boxes(i); len(boxes) > 0 {
			n = p.annotator.Annotate(frame, boxes, colors)
			sum.FramesAnnotated++
		}
		tracef("frame %d: %d boxes", i, n)

		if err := sink.Write(frame); err != nil {
			frame.Close()
			return &WriteError{Frame: i, Err: err}
		}
		frame.Close()

		sum.FramesRead++
		sum.BoxesDrawn += n
		sum.BoxesPerFrame = append(sum.BoxesPerFrame, n)
	}
}

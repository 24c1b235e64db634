// Package video defines the sequential frame source and sink the overlay
// pipeline runs against. Container formats and codecs live in backend
// packages (cvcodec for OpenCV, framedir for PNG frame directories).
package video

import (
	"fmt"
	"image"

	"github.com/banshee-data/track-overlay/internal/overlay"
)

// StreamInfo describes the geometry and timing of a video stream.
type StreamInfo struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	FPS    float64 `json:"fps"`
}

func (s StreamInfo) String() string {
	return fmt.Sprintf("%dx%d@%gfps", s.Width, s.Height, s.FPS)
}

// Frame is one decoded picture. Drawing through the embedded Canvas mutates
// the frame in place.
type Frame interface {
	overlay.Canvas
	// Index is the position the source assigned to this frame.
	Index() int
	// Image returns the current pixels, including anything drawn.
	Image() (image.Image, error)
	// Close releases decoder memory held by the frame.
	Close() error
}

// Source is a forward-only frame sequence. Next returns io.EOF once the
// stream is exhausted.
type Source interface {
	Info() StreamInfo
	Next() (Frame, error)
	Close() error
}

// Sink persists frames in the order they are written.
type Sink interface {
	Write(f Frame) error
	Close() error
}

// Backend opens sources and creates sinks for one storage format.
type Backend interface {
	Name() string
	Open(path string) (Source, error)
	Create(path string, info StreamInfo) (Sink, error)
}

// ImageFrame is a Frame held as an in-memory RGBA picture.
type ImageFrame struct {
	*overlay.ImageCanvas
	index int
}

// NewImageFrame copies img into a drawable frame tagged with index.
func NewImageFrame(index int, img image.Image) *ImageFrame {
	return &ImageFrame{ImageCanvas: overlay.NewImageCanvas(img), index: index}
}

// Index implements Frame.
func (f *ImageFrame) Index() int { return f.index }

// Image implements Frame.
func (f *ImageFrame) Image() (image.Image, error) { return f.RGBA(), nil }

// Close implements Frame.
func (f *ImageFrame) Close() error { return nil }

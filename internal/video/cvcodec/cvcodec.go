// Package cvcodec reads and writes video containers through OpenCV.
package cvcodec

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"gocv.io/x/gocv"

	"github.com/banshee-data/track-overlay/internal/video"
)

// DefaultFourCC is the codec used for written video.
const DefaultFourCC = "mp4v"

// ErrEmptyFrame is returned when the decoder hands back a frame without
// pixels.
var ErrEmptyFrame = errors.New("decoder returned an empty frame")

// Backend implements video.Backend on top of OpenCV's VideoCapture and
// VideoWriter.
type Backend struct {
	FourCC string
}

// New returns a backend writing with fourcc, or DefaultFourCC when empty.
func New(fourcc string) *Backend {
	if fourcc == "" {
		fourcc = DefaultFourCC
	}
	return &Backend{FourCC: fourcc}
}

// Name implements video.Backend.
func (b *Backend) Name() string { return "opencv" }

// Open implements video.Backend.
func (b *Backend) Open(path string) (video.Source, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		// gocv allocates the capture before trying the file.
		if vc != nil {
			vc.Close()
		}
		return nil, fmt.Errorf("failed to open video: %w", err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("failed to open video %s", path)
	}

	info := video.StreamInfo{
		Width:  int(vc.Get(gocv.VideoCaptureFrameWidth)),
		Height: int(vc.Get(gocv.VideoCaptureFrameHeight)),
		FPS:    vc.Get(gocv.VideoCaptureFPS),
	}
	total := int(vc.Get(gocv.VideoCaptureFrameCount))
	diagf("opened %s: %s, %d frames reported", path, info, total)

	return &source{vc: vc, info: info, total: total}, nil
}

// Create implements video.Backend.
func (b *Backend) Create(path string, info video.StreamInfo) (video.Sink, error) {
	if len(b.FourCC) != 4 {
		return nil, fmt.Errorf("invalid fourcc %q", b.FourCC)
	}
	vw, err := gocv.VideoWriterFile(path, b.FourCC, info.FPS, info.Width, info.Height, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create video writer: %w", err)
	}
	if !vw.IsOpened() {
		vw.Close()
		return nil, fmt.Errorf("failed to open %s for writing with codec %s", path, b.FourCC)
	}
	diagf("writing %s: %s, codec %s", path, info, b.FourCC)
	return &sink{vw: vw, info: info}, nil
}

type source struct {
	vc    *gocv.VideoCapture
	info  video.StreamInfo
	total int
	pos   int
}

func (s *source) Info() video.StreamInfo { return s.info }

// Next reads the next frame. A failed read before the reported frame count
// is a decode error; at or past it, or when the container reports no count,
// it is the end of the stream.
func (s *source) Next() (video.Frame, error) {
	m := gocv.NewMat()
	if ok := s.vc.Read(&m); !ok {
		m.Close()
		if s.total > 0 && s.pos < s.total {
			return nil, fmt.Errorf("read failed at frame %d of %d", s.pos, s.total)
		}
		return nil, io.EOF
	}
	if m.Empty() {
		m.Close()
		if s.total > 0 && s.pos < s.total {
			return nil, fmt.Errorf("frame %d: %w", s.pos, ErrEmptyFrame)
		}
		return nil, io.EOF
	}

	// PosFrames is the index of the frame the next read will return.
	index := int(s.vc.Get(gocv.VideoCapturePosFrames)) - 1
	if index < 0 {
		index = s.pos
	}
	tracef("decoded frame %d (position %d)", index, s.pos)
	s.pos++
	return &Frame{mat: m, index: index}, nil
}

func (s *source) Close() error {
	return s.vc.Close()
}

type sink struct {
	vw   *gocv.VideoWriter
	info video.StreamInfo
}

func (s *sink) Write(f video.Frame) error {
	if cf, ok := f.(*Frame); ok {
		if cf.mat.Cols() != s.info.Width || cf.mat.Rows() != s.info.Height {
			return fmt.Errorf("frame is %dx%d, writer expects %dx%d", cf.mat.Cols(), cf.mat.Rows(), s.info.Width, s.info.Height)
		}
		return s.vw.Write(cf.mat)
	}

	// Frames from other backends are converted to a BGR matrix first.
	img, err := f.Image()
	if err != nil {
		return err
	}
	m, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return fmt.Errorf("failed to convert frame: %w", err)
	}
	defer m.Close()
	if m.Cols() != s.info.Width || m.Rows() != s.info.Height {
		return fmt.Errorf("frame is %dx%d, writer expects %dx%d", m.Cols(), m.Rows(), s.info.Width, s.info.Height)
	}
	return s.vw.Write(m)
}

func (s *sink) Close() error {
	return s.vw.Close()
}

// Frame is a decoded BGR matrix. It implements video.Frame and draws with
// OpenCV's own primitives.
type Frame struct {
	mat   gocv.Mat
	index int
}

// Index implements video.Frame.
func (f *Frame) Index() int { return f.index }

// Image implements video.Frame.
func (f *Frame) Image() (image.Image, error) {
	return f.mat.ToImage()
}

// Close implements video.Frame.
func (f *Frame) Close() error {
	return f.mat.Close()
}

// DrawRect implements overlay.Canvas.
func (f *Frame) DrawRect(r image.Rectangle, c color.RGBA, thickness int) {
	gocv.Rectangle(&f.mat, r, c, thickness)
}

// DrawText implements overlay.Canvas.
func (f *Frame) DrawText(text string, org image.Point, c color.RGBA, scale float64, thickness int) {
	gocv.PutText(&f.mat, text, org, gocv.FontHersheySimplex, scale, c, thickness)
}

// TextHeight implements overlay.Canvas. It matches the height OpenCV
// reports for text drawn with a unit stroke.
func (f *Frame) TextHeight(text string, scale float64) int {
	return gocv.GetTextSize(text, gocv.FontHersheySimplex, scale, 1).Y
}

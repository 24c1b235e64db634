// Package framedir stores video as a directory of PNG frames with a JSON
// header. It needs no codec and is used for fixtures and for inspecting
// annotated output frame by frame.
//
// Layout:
//
//	<dir>/header.json
//	<dir>/frames/frame_000000.png
//	<dir>/frames/frame_000001.png
//	...
package framedir

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/track-overlay/internal/video"
)

const (
	// HeaderFile is the name of the stream header inside a frame directory.
	HeaderFile = "header.json"
	// FramesDir holds the numbered PNG files.
	FramesDir = "frames"
	// HeaderVersion is written into new headers.
	HeaderVersion = "1.0"

	framePrefix = "frame_"
	frameSuffix = ".png"
)

// Header describes a frame directory.
type Header struct {
	Version     string  `json:"version"`
	CreatedNs   int64   `json:"created_ns"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	FPS         float64 `json:"fps"`
	TotalFrames int     `json:"total_frames"`
}

// Info returns the stream geometry recorded in the header.
func (h Header) Info() video.StreamInfo {
	return video.StreamInfo{Width: h.Width, Height: h.Height, FPS: h.FPS}
}

// FrameName returns the file name used for the frame at index.
func FrameName(index int) string {
	return fmt.Sprintf("%s%06d%s", framePrefix, index, frameSuffix)
}

// ParseFrameName returns the index encoded in a frame file name.
func ParseFrameName(name string) (int, bool) {
	if !strings.HasPrefix(name, framePrefix) || !strings.HasSuffix(name, frameSuffix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, framePrefix), frameSuffix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ReadHeader loads header.json from dir.
func ReadHeader(dir string) (Header, error) {
	var h Header
	data, err := os.ReadFile(filepath.Join(dir, HeaderFile))
	if err != nil {
		return h, fmt.Errorf("failed to read header: %w", err)
	}
	if err := json.Unmarshal(data, &h); err != nil {
		return h, fmt.Errorf("failed to parse header: %w", err)
	}
	if h.Width <= 0 || h.Height <= 0 {
		return h, fmt.Errorf("invalid frame size %dx%d in header", h.Width, h.Height)
	}
	return h, nil
}

// WriteHeader writes h to header.json in dir, creating dir if needed.
func WriteHeader(dir string, h Header) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, HeaderFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return nil
}

// Backend implements video.Backend for frame directories.
type Backend struct{}

// New returns a frame directory backend.
func New() *Backend { return &Backend{} }

// Name implements video.Backend.
func (b *Backend) Name() string { return "framedir" }

// Open reads the header and lists the frame files of dir. Frames are
// returned in ascending index order, each tagged with its file number.
func (b *Backend) Open(dir string) (video.Source, error) {
	h, err := ReadHeader(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(dir, FramesDir))
	if err != nil {
		return nil, fmt.Errorf("failed to list frames: %w", err)
	}

	var frames []frameFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		idx, ok := ParseFrameName(e.Name())
		if !ok {
			tracef("skipping %s", e.Name())
			continue
		}
		frames = append(frames, frameFile{index: idx, path: filepath.Join(dir, FramesDir, e.Name())})
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i].index < frames[j].index })

	if h.TotalFrames != 0 && h.TotalFrames != len(frames) {
		opsf("%s: header lists %d frames, found %d", dir, h.TotalFrames, len(frames))
	}
	diagf("opened %s: %s, %d frames", dir, h.Info(), len(frames))

	return &source{header: h, frames: frames}, nil
}

// Create prepares dir for writing. The header and frames left from an
// earlier run are removed, so dir only reads back as a video once the sink
// has been closed and the new header written.
func (b *Backend) Create(dir string, info video.StreamInfo) (video.Sink, error) {
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", info.Width, info.Height)
	}
	if err := os.Remove(filepath.Join(dir, HeaderFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to remove old header: %w", err)
	}
	framesPath := filepath.Join(dir, FramesDir)
	if err := os.RemoveAll(framesPath); err != nil {
		return nil, fmt.Errorf("failed to clear frames directory: %w", err)
	}
	if err := os.MkdirAll(framesPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create frames directory: %w", err)
	}
	diagf("writing %s: %s", dir, info)

	return &sink{
		dir: dir,
		header: Header{
			Version:   HeaderVersion,
			CreatedNs: time.Now().UnixNano(),
			Width:     info.Width,
			Height:    info.Height,
			FPS:       info.FPS,
		},
	}, nil
}

type frameFile struct {
	index int
	path  string
}

type source struct {
	header Header
	frames []frameFile
	pos    int
}

func (s *source) Info() video.StreamInfo { return s.header.Info() }

func (s *source) Next() (video.Frame, error) {
	if s.pos >= len(s.frames) {
		return nil, io.EOF
	}
	ff := s.frames[s.pos]
	s.pos++

	f, err := os.Open(ff.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame %d: %w", ff.index, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame %d: %w", ff.index, err)
	}
	if b := img.Bounds(); b.Dx() != s.header.Width || b.Dy() != s.header.Height {
		return nil, fmt.Errorf("frame %d is %dx%d, header says %dx%d", ff.index, b.Dx(), b.Dy(), s.header.Width, s.header.Height)
	}
	tracef("read %s", filepath.Base(ff.path))
	return video.NewImageFrame(ff.index, img), nil
}

func (s *source) Close() error { return nil }

type sink struct {
	dir    string
	header Header
	count  int
	closed bool
}

func (s *sink) Write(f video.Frame) error {
	if s.closed {
		return fmt.Errorf("sink is closed")
	}
	img, err := f.Image()
	if err != nil {
		return err
	}
	if b := img.Bounds(); b.Dx() != s.header.Width || b.Dy() != s.header.Height {
		return fmt.Errorf("frame is %dx%d, sink expects %dx%d", b.Dx(), b.Dy(), s.header.Width, s.header.Height)
	}
	if err := writePNG(filepath.Join(s.dir, FramesDir, FrameName(s.count)), img); err != nil {
		return err
	}
	tracef("wrote %s", FrameName(s.count))
	s.count++
	return nil
}

func (s *sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.header.TotalFrames = s.count
	return WriteHeader(s.dir, s.header)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create frame file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	return f.Close()
}

// WriteFrame stores img as the frame at index in dir. It is used by fixture
// generators that produce frames out of band.
func WriteFrame(dir string, index int, img image.Image) error {
	if err := os.MkdirAll(filepath.Join(dir, FramesDir), 0755); err != nil {
		return fmt.Errorf("failed to create frames directory: %w", err)
	}
	return writePNG(filepath.Join(dir, FramesDir, FrameName(index)), img)
}

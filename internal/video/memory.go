package video

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"io/fs"
)

// MemoryVideo is a decoded video held in memory.
type MemoryVideo struct {
	Info   StreamInfo
	Frames []image.Image
	// Indices optionally overrides the index reported for each frame.
	Indices []int
	// DecodeErr, when set, is returned by Next at position DecodeErrAt.
	DecodeErr   error
	DecodeErrAt int
}

// MemoryBackend stores videos in a map keyed by path. It is used to run
// the pipeline without a codec, mainly from tests.
type MemoryBackend struct {
	videos map[string]*MemoryVideo
	// CreateErr, when set, makes every Create fail.
	CreateErr error
	open      int
}

// NewMemoryBackend returns an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{videos: make(map[string]*MemoryVideo)}
}

// Put stores v under path, replacing any previous video.
func (b *MemoryBackend) Put(path string, v *MemoryVideo) {
	b.videos[path] = v
}

// Get returns the video stored under path.
func (b *MemoryBackend) Get(path string) (*MemoryVideo, bool) {
	v, ok := b.videos[path]
	return v, ok
}

// OpenHandles reports sources and sinks that have not been closed.
func (b *MemoryBackend) OpenHandles() int {
	return b.open
}

// Name implements Backend.
func (b *MemoryBackend) Name() string { return "memory" }

// Open implements Backend.
func (b *MemoryBackend) Open(path string) (Source, error) {
	v, ok := b.videos[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, fs.ErrNotExist)
	}
	b.open++
	return &memorySource{backend: b, video: v}, nil
}

// Create implements Backend. Frames become visible through Get as they are
// written.
func (b *MemoryBackend) Create(path string, info StreamInfo) (Sink, error) {
	if b.CreateErr != nil {
		return nil, b.CreateErr
	}
	v := &MemoryVideo{Info: info}
	b.videos[path] = v
	b.open++
	return &memorySink{backend: b, video: v}, nil
}

type memorySource struct {
	backend *MemoryBackend
	video   *MemoryVideo
	pos     int
	closed  bool
}

func (s *memorySource) Info() StreamInfo { return s.video.Info }

func (s *memorySource) Next() (Frame, error) {
	if s.closed {
		return nil, errors.New("source is closed")
	}
	if s.video.DecodeErr != nil && s.pos == s.video.DecodeErrAt {
		return nil, s.video.DecodeErr
	}
	if s.pos >= len(s.video.Frames) {
		return nil, io.EOF
	}
	index := s.pos
	if s.pos < len(s.video.Indices) {
		index = s.video.Indices[s.pos]
	}
	f := NewImageFrame(index, s.video.Frames[s.pos])
	s.pos++
	return f, nil
}

func (s *memorySource) Close() error {
	if !s.closed {
		s.closed = true
		s.backend.open--
	}
	return nil
}

type memorySink struct {
	backend *MemoryBackend
	video   *MemoryVideo
	closed  bool
}

func (s *memorySink) Write(f Frame) error {
	if s.closed {
		return errors.New("sink is closed")
	}
	img, err := f.Image()
	if err != nil {
		return err
	}
	b := img.Bounds()
	if b.Dx() != s.video.Info.Width || b.Dy() != s.video.Info.Height {
		return fmt.Errorf("frame is %dx%d, sink expects %dx%d", b.Dx(), b.Dy(), s.video.Info.Width, s.video.Info.Height)
	}
	cp := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(cp, cp.Bounds(), img, b.Min, draw.Src)
	s.video.Frames = append(s.video.Frames, cp)
	return nil
}

func (s *memorySink) Close() error {
	if !s.closed {
		s.closed = true
		s.backend.open--
	}
	return nil
}

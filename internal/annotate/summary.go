package annotate

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/track-overlay/internal/overlay"
	"github.com/banshee-data/track-overlay/internal/video"
)

// Summary describes one completed annotation run.
type Summary struct {
	RunID   string
	Backend string
	Input   string
	Output  string
	Info    video.StreamInfo
	Started time.Time
	Elapsed time.Duration

	FramesRead      int
	FramesAnnotated int
	BoxesDrawn      int
	Tracks          int

	// BoxesPerFrame holds the number of boxes drawn on each frame written.
	BoxesPerFrame []int
	// TrackFrames counts the frames each track appears in within the results.
	TrackFrames map[int]int
	// Colors is the color map the run drew with.
	Colors overlay.ColorMap
	// UnreachedFrames lists results frames past the end of the video.
	UnreachedFrames []int
}

func (s *Summary) boxCounts() []float64 {
	xs := make([]float64, len(s.BoxesPerFrame))
	for i, n := range s.BoxesPerFrame {
		xs[i] = float64(n)
	}
	return xs
}

// MeanBoxesPerFrame is the average number of boxes drawn per written frame.
func (s *Summary) MeanBoxesPerFrame() float64 {
	if len(s.BoxesPerFrame) == 0 {
		return 0
	}
	return stat.Mean(s.boxCounts(), nil)
}

// MaxBoxesPerFrame is the largest number of boxes drawn on a single frame.
func (s *Summary) MaxBoxesPerFrame() int {
	if len(s.BoxesPerFrame) == 0 {
		return 0
	}
	return int(floats.Max(s.boxCounts()))
}

func (s *Summary) String() string {
	return fmt.Sprintf("run %s: %d frames (%d annotated), %d boxes, %d tracks, %.2f boxes/frame (max %d) in %s",
		s.RunID, s.FramesRead, s.FramesAnnotated, s.BoxesDrawn, s.Tracks,
		s.MeanBoxesPerFrame(), s.MaxBoxesPerFrame(), s.Elapsed.Round(time.Millisecond))
}

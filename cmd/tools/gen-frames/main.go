// Command gen-frames writes a synthetic frame-directory video and a matching
// MOT results file, for trying track-overlay without a real recording.
package main

import (
	"flag"
	"image"
	"image/color"
	"image/draw"
	"log"
	"os"
	"path/filepath"

	"github.com/banshee-data/track-overlay/internal/tracking"
	"github.com/banshee-data/track-overlay/internal/video/framedir"
)

func main() {
	output := flag.String("o", "sample", "output frame directory")
	resultsPath := flag.String("results", "", "MOT results path (default <output>.txt)")
	frames := flag.Int("n", 60, "number of frames")
	width := flag.Int("width", 320, "frame width")
	height := flag.Int("height", 240, "frame height")
	fps := flag.Float64("fps", 15, "frame rate")
	objects := flag.Int("objects", 3, "number of moving objects")
	flag.Parse()

	if *resultsPath == "" {
		*resultsPath = filepath.Clean(*output) + ".txt"
	}

	boxes := synthesize(*frames, *width, *height, *objects)
	byFrame := tracking.NewResults(boxes)

	for i := 0; i < *frames; i++ {
		if err := framedir.WriteFrame(*output, i, render(*width, *height, byFrame.Boxes(i))); err != nil {
			log.Fatalf("failed to write frame %d: %v", i, err)
		}
		if (i+1)%20 == 0 {
			log.Printf("%d/%d frames", i+1, *frames)
		}
	}
	if err := framedir.WriteHeader(*output, framedir.Header{
		Version:     framedir.HeaderVersion,
		Width:       *width,
		Height:      *height,
		FPS:         *fps,
		TotalFrames: *frames,
	}); err != nil {
		log.Fatalf("failed to write header: %v", err)
	}

	f, err := os.Create(*resultsPath)
	if err != nil {
		log.Fatalf("failed to create results file: %v", err)
	}
	if err := tracking.WriteMOT(f, byFrame, true); err != nil {
		f.Close()
		log.Fatalf("failed to write results: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("failed to write results: %v", err)
	}

	log.Printf("✓ Created: %s (%d frames) and %s (%d boxes)", *output, *frames, *resultsPath, len(boxes))
}

// synthesize moves each object diagonally across the frame, bouncing off the
// edges. Object k appears from frame 2k onwards so ids enter at different
// times.
func synthesize(frames, width, height, objects int) []tracking.TrackingBbox {
	const size = 40
	var boxes []tracking.TrackingBbox
	for k := 0; k < objects; k++ {
		x := float64(10 + 30*k)
		y := float64(10 + 20*k)
		dx, dy := 3.0+float64(k), 2.0+float64(k%2)
		for i := 2 * k; i < frames; i++ {
			boxes = append(boxes, tracking.TrackingBbox{
				FrameID: i,
				TrackID: k + 1,
				Left:    x,
				Top:     y,
				Right:   x + size,
				Bottom:  y + size,
			})
			x += dx
			y += dy
			if x < 0 || x+size > float64(width) {
				dx = -dx
				x += 2 * dx
			}
			if y < 0 || y+size > float64(height) {
				dy = -dy
				y += 2 * dy
			}
		}
	}
	return boxes
}

// render draws each box as a filled grey block so the overlay has something
// to frame.
func render(width, height int, boxes []tracking.TrackingBbox) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.RGBA{R: 24, G: 28, B: 32, A: 255}}, image.Point{}, draw.Src)
	for _, b := range boxes {
		r := image.Rect(int(b.Left)+4, int(b.Top)+4, int(b.Right)-4, int(b.Bottom)-4)
		draw.Draw(img, r, &image.Uniform{color.RGBA{R: 150, G: 150, B: 150, A: 255}}, image.Point{}, draw.Src)
	}
	return img
}

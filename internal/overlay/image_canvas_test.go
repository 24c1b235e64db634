package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/banshee-data/track-overlay/internal/tracking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grayFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.RGBA{R: 40, G: 40, B: 40, A: 255}}, image.Point{}, draw.Src)
	// A gradient row so a shifted or flipped copy would not compare equal.
	for x := 0; x < w; x++ {
		img.SetRGBA(x, 0, color.RGBA{R: uint8(x), G: 0, B: 0, A: 255})
	}
	return img
}

func TestImageCanvasCopiesSource(t *testing.T) {
	src := grayFrame(64, 48)
	c := NewImageCanvas(src)

	got := c.RGBA()
	require.Equal(t, src.Bounds(), got.Bounds())
	assert.Equal(t, src.Pix, got.Pix)

	// The canvas owns its pixels.
	got.Pix[0] = 255
	assert.NotEqual(t, src.Pix[0], got.Pix[0])
}

func TestImageCanvasEmptyBoxesUnchanged(t *testing.T) {
	src := grayFrame(80, 60)
	c := NewImageCanvas(src)
	before := append([]byte(nil), c.RGBA().Pix...)

	n := NewAnnotator(DefaultStyle()).Annotate(c, nil, ColorMap{})

	assert.Zero(t, n)
	assert.Equal(t, before, c.RGBA().Pix)
}

func TestImageCanvasDrawsInBoxColor(t *testing.T) {
	src := grayFrame(200, 160)
	c := NewImageCanvas(src)
	colors := AssignColors([]int{7})
	want := colors[7]

	NewAnnotator(DefaultStyle()).Annotate(c, []tracking.TrackingBbox{
		{FrameID: 0, TrackID: 7, Left: 40, Top: 60, Right: 150, Bottom: 140},
	}, colors)

	img := c.RGBA()
	// Midpoints of the left and bottom edges lie on the stroke.
	assert.Equal(t, want, img.RGBAAt(40, 100), "left edge")
	assert.Equal(t, want, img.RGBAAt(95, 140), "bottom edge")
	// The box interior is untouched.
	assert.Equal(t, color.RGBA{R: 40, G: 40, B: 40, A: 255}, img.RGBAAt(95, 100))
}

func TestImageCanvasTextHeightScales(t *testing.T) {
	c := NewImageCanvas(grayFrame(10, 10))
	h1 := c.TextHeight("12", 1)
	h2 := c.TextHeight("12", 2)
	assert.Greater(t, h1, 0)
	assert.Greater(t, h2, h1)
}

func TestImageCanvasPointIsOnePixel(t *testing.T) {
	c := NewImageCanvas(grayFrame(200, 160))
	w, h := c.vc.Size()
	assert.InDelta(t, 200.0, float64(w), 1e-6)
	assert.InDelta(t, 160.0, float64(h), 1e-6)

	colors := AssignColors([]int{7})
	want := colors[7]
	NewAnnotator(DefaultStyle()).Annotate(c, []tracking.TrackingBbox{
		{FrameID: 0, TrackID: 7, Left: 40, Top: 60, Right: 150, Bottom: 140},
	}, colors)

	img := c.RGBA()
	bg := color.RGBA{R: 40, G: 40, B: 40, A: 255}
	assert.Equal(t, want, img.RGBAAt(150, 100), "right edge")
	assert.Equal(t, want, img.RGBAAt(95, 60), "top edge")
	// Scaled drawing would put strokes here.
	assert.Equal(t, bg, img.RGBAAt(53, 100))
	assert.Equal(t, bg, img.RGBAAt(95, 80))
	assert.Equal(t, bg, img.RGBAAt(170, 100))
}

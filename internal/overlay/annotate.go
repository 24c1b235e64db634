// Package overlay draws tracking boxes and identifier labels onto frames.
package overlay

import (
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/banshee-data/track-overlay/internal/tracking"
)

// Canvas is a drawing surface backed by one video frame. Implementations
// draw in place and inherit clipping from their underlying primitives.
type Canvas interface {
	// DrawRect strokes the outline of r. r is not canonicalised.
	DrawRect(r image.Rectangle, c color.RGBA, thickness int)
	// DrawText renders text with its baseline starting at org.
	DrawText(text string, org image.Point, c color.RGBA, scale float64, thickness int)
	// TextHeight is the height in pixels text occupies above its baseline.
	TextHeight(text string, scale float64) int
}

// Style holds the fixed drawing parameters for one run.
type Style struct {
	StrokeWidth   int
	LabelOffset   int
	LabelPrefix   string
	FontScale     float64
	TextThickness int
}

// DefaultStyle returns the stock drawing parameters.
func DefaultStyle() Style {
	return Style{
		StrokeWidth:   3,
		LabelOffset:   30,
		LabelPrefix:   "id_",
		FontScale:     1,
		TextThickness: 3,
	}
}

// Annotator draws the boxes of one frame at a time.
type Annotator struct {
	style Style
}

// NewAnnotator returns an Annotator using style.
func NewAnnotator(style Style) *Annotator {
	return &Annotator{style: style}
}

// Style returns the annotator's drawing parameters.
func (a *Annotator) Style() Style {
	return a.style
}

// Annotate draws every box onto c and returns how many were drawn.
//
// Boxes sharing a track identifier are collapsed first: the identifier is
// drawn once, in the slot of its first occurrence, with the coordinates of
// its last occurrence. An empty box list leaves c untouched.
func (a *Annotator) Annotate(c Canvas, boxes []tracking.TrackingBbox, colors ColorMap) int {
	if len(boxes) == 0 {
		return 0
	}

	drawn := 0
	for _, bb := range Dedupe(boxes) {
		col, ok := colors[bb.TrackID]
		if !ok {
			opsf("no color assigned to track %d in frame %d; using first palette entry", bb.TrackID, bb.FrameID)
			col = ColorAt(0)
		}

		left := roundPx(bb.Left)
		top := roundPx(bb.Top)
		rect := image.Rectangle{
			Min: image.Pt(left, top),
			Max: image.Pt(roundPx(bb.Right), roundPx(bb.Bottom)),
		}

		id := strconv.Itoa(bb.TrackID)
		org := image.Pt(left, top+c.TextHeight(id, a.style.FontScale)-a.style.LabelOffset)

		c.DrawRect(rect, col, a.style.StrokeWidth)
		c.DrawText(a.style.LabelPrefix+id, org, col, a.style.FontScale, a.style.TextThickness)
		tracef("frame %d track %d rect=%v label@%v", bb.FrameID, bb.TrackID, rect, org)
		drawn++
	}
	return drawn
}

// Dedupe collapses boxes by track identifier. Each identifier keeps the
// position of its first occurrence and the box of its last occurrence.
func Dedupe(boxes []tracking.TrackingBbox) []tracking.TrackingBbox {
	slot := make(map[int]int, len(boxes))
	out := make([]tracking.TrackingBbox, 0, len(boxes))
	for _, bb := range boxes {
		if i, ok := slot[bb.TrackID]; ok {
			out[i] = bb
			continue
		}
		slot[bb.TrackID] = len(out)
		out = append(out, bb)
	}
	return out
}

// roundPx rounds half to even.
func roundPx(v float64) int {
	return int(math.RoundToEven(v))
}

package overlay

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/banshee-data/track-overlay/internal/tracking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type drawOp struct {
	kind      string
	rect      image.Rectangle
	text      string
	org       image.Point
	color     color.RGBA
	thickness int
}

// recordingCanvas records draw calls and reports a fixed text height.
type recordingCanvas struct {
	ops        []drawOp
	textHeight int
}

func (c *recordingCanvas) DrawRect(r image.Rectangle, col color.RGBA, thickness int) {
	c.ops = append(c.ops, drawOp{kind: "rect", rect: r, color: col, thickness: thickness})
}

func (c *recordingCanvas) DrawText(text string, org image.Point, col color.RGBA, scale float64, thickness int) {
	c.ops = append(c.ops, drawOp{kind: "text", text: text, org: org, color: col, thickness: thickness})
}

func (c *recordingCanvas) TextHeight(text string, scale float64) int {
	return c.textHeight
}

func bb(frame, track int, l, t, r, b float64) tracking.TrackingBbox {
	return tracking.TrackingBbox{FrameID: frame, TrackID: track, Left: l, Top: t, Right: r, Bottom: b}
}

func TestAnnotateDrawsBoxAndLabel(t *testing.T) {
	canvas := &recordingCanvas{textHeight: 22}
	colors := AssignColors([]int{4})
	a := NewAnnotator(DefaultStyle())

	n := a.Annotate(canvas, []tracking.TrackingBbox{bb(0, 4, 10.4, 50.6, 100.5, 200.5)}, colors)

	require.Equal(t, 1, n)
	require.Len(t, canvas.ops, 2)

	rect := canvas.ops[0]
	assert.Equal(t, "rect", rect.kind)
	// Half-way values round to even.
	assert.Equal(t, image.Rectangle{Min: image.Pt(10, 51), Max: image.Pt(100, 200)}, rect.rect)
	assert.Equal(t, colors[4], rect.color)
	assert.Equal(t, 3, rect.thickness)

	label := canvas.ops[1]
	assert.Equal(t, "text", label.kind)
	assert.Equal(t, "id_4", label.text)
	assert.Equal(t, image.Pt(10, 51+22-30), label.org)
	assert.Equal(t, colors[4], label.color)
}

func TestAnnotateEmptyDrawsNothing(t *testing.T) {
	canvas := &recordingCanvas{}
	n := NewAnnotator(DefaultStyle()).Annotate(canvas, nil, ColorMap{})
	assert.Zero(t, n)
	assert.Empty(t, canvas.ops)
}

func TestAnnotateLastWriteWins(t *testing.T) {
	canvas := &recordingCanvas{textHeight: 10}
	colors := AssignColors([]int{1, 2})
	boxes := []tracking.TrackingBbox{
		bb(0, 1, 0, 0, 10, 10),
		bb(0, 2, 50, 50, 60, 60),
		bb(0, 1, 20, 20, 30, 30),
	}

	n := NewAnnotator(DefaultStyle()).Annotate(canvas, boxes, colors)

	require.Equal(t, 2, n)
	var rects []image.Rectangle
	for _, op := range canvas.ops {
		if op.kind == "rect" {
			rects = append(rects, op.rect)
		}
	}
	// Track 1 keeps its first slot but takes its last coordinates.
	assert.Equal(t, []image.Rectangle{
		{Min: image.Pt(20, 20), Max: image.Pt(30, 30)},
		{Min: image.Pt(50, 50), Max: image.Pt(60, 60)},
	}, rects)
}

func TestAnnotateMalformedBoxDrawnAsGiven(t *testing.T) {
	canvas := &recordingCanvas{}
	NewAnnotator(DefaultStyle()).Annotate(canvas, []tracking.TrackingBbox{bb(0, 1, 40, 40, 10, 10)}, AssignColors([]int{1}))
	require.NotEmpty(t, canvas.ops)
	assert.Equal(t, image.Rectangle{Min: image.Pt(40, 40), Max: image.Pt(10, 10)}, canvas.ops[0].rect)
}

func TestAnnotateMissingColorLogs(t *testing.T) {
	var ops bytes.Buffer
	SetLogWriters(&ops, nil, nil)
	defer SetLogWriters(nil, nil, nil)

	canvas := &recordingCanvas{}
	n := NewAnnotator(DefaultStyle()).Annotate(canvas, []tracking.TrackingBbox{bb(3, 99, 0, 0, 5, 5)}, ColorMap{})

	assert.Equal(t, 1, n)
	assert.Equal(t, ColorAt(0), canvas.ops[0].color)
	assert.True(t, strings.Contains(ops.String(), "track 99"), ops.String())
	assert.Contains(t, ops.String(), "[overlay]")
}

func TestAnnotateCustomStyle(t *testing.T) {
	canvas := &recordingCanvas{textHeight: 5}
	style := Style{StrokeWidth: 1, LabelOffset: 0, LabelPrefix: "#", FontScale: 0.5, TextThickness: 1}
	NewAnnotator(style).Annotate(canvas, []tracking.TrackingBbox{bb(0, 12, 1, 1, 2, 2)}, AssignColors([]int{12}))

	require.Len(t, canvas.ops, 2)
	assert.Equal(t, 1, canvas.ops[0].thickness)
	assert.Equal(t, "#12", canvas.ops[1].text)
	assert.Equal(t, image.Pt(1, 6), canvas.ops[1].org)
}

func TestDedupe(t *testing.T) {
	tests := []struct {
		name  string
		in    []tracking.TrackingBbox
		wantX []float64
	}{
		{"empty", nil, nil},
		{"unique", []tracking.TrackingBbox{bb(0, 1, 1, 0, 2, 2), bb(0, 2, 2, 0, 3, 3)}, []float64{1, 2}},
		{"triplicate", []tracking.TrackingBbox{bb(0, 1, 1, 0, 2, 2), bb(0, 1, 2, 0, 3, 3), bb(0, 1, 3, 0, 4, 4)}, []float64{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []float64
			for _, b := range Dedupe(tt.in) {
				got = append(got, b.Left)
			}
			assert.Equal(t, tt.wantX, got)
		})
	}
}

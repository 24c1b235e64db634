package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/font/liberation"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"
)

// LabelFontSize is the label size in points at scale 1. Canvases run at
// CanvasDPI, where one point is one pixel.
const LabelFontSize = 24

// CanvasDPI maps one vg point to one pixel.
const CanvasDPI = 72

var (
	fontsOnce sync.Once
	fonts     *font.Cache
)

// LabelFont is the typeface used for labels on image canvases.
var LabelFont = font.Font{Typeface: "Liberation", Variant: "Sans"}

func labelFonts() *font.Cache {
	fontsOnce.Do(func() {
		fonts = font.NewCache(liberation.Collection())
		diagf("loaded label font %s-%s", LabelFont.Typeface, LabelFont.Variant)
	})
	return fonts
}

// ImageCanvas draws onto an RGBA copy of a decoded picture using the
// gonum/plot raster backend. Pixel coordinates have their origin at the top
// left, like the frame; they are flipped into the canvas' bottom-left space.
//
// Text thickness is not supported by the vector font renderer and is ignored.
type ImageCanvas struct {
	vc     *vgimg.Canvas
	height vg.Length
	faces  map[float64]font.Face
}

// NewImageCanvas copies src into a new canvas of the same size.
func NewImageCanvas(src image.Image) *ImageCanvas {
	b := src.Bounds()
	vc := vgimg.NewWith(
		vgimg.UseImage(image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))),
		vgimg.UseDPI(CanvasDPI),
	)
	// NewWith paints the background; the frame goes on top of it.
	dst := vc.Image()
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)

	_, h := vc.Size()
	return &ImageCanvas{
		vc:     vc,
		height: h,
		faces:  make(map[float64]font.Face),
	}
}

// RGBA returns the canvas pixels. Drawing calls modify them in place.
func (c *ImageCanvas) RGBA() *image.RGBA {
	img := c.vc.Image()
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	return rgba
}

func (c *ImageCanvas) point(p image.Point) vg.Point {
	return vg.Point{X: vg.Length(p.X), Y: c.height - vg.Length(p.Y)}
}

func (c *ImageCanvas) face(scale float64) font.Face {
	if f, ok := c.faces[scale]; ok {
		return f
	}
	f := labelFonts().Lookup(LabelFont, vg.Length(LabelFontSize*scale))
	c.faces[scale] = f
	return f
}

// DrawRect implements Canvas.
func (c *ImageCanvas) DrawRect(r image.Rectangle, col color.RGBA, thickness int) {
	var p vg.Path
	p.Move(c.point(r.Min))
	p.Line(c.point(image.Pt(r.Max.X, r.Min.Y)))
	p.Line(c.point(r.Max))
	p.Line(c.point(image.Pt(r.Min.X, r.Max.Y)))
	p.Close()

	c.vc.SetColor(col)
	c.vc.SetLineWidth(vg.Length(thickness))
	c.vc.Stroke(p)
}

// DrawText implements Canvas.
func (c *ImageCanvas) DrawText(text string, org image.Point, col color.RGBA, scale float64, thickness int) {
	c.vc.SetColor(col)
	c.vc.FillString(c.face(scale), c.point(org), text)
}

// TextHeight implements Canvas. It is the font ascent at scale.
func (c *ImageCanvas) TextHeight(text string, scale float64) int {
	f := c.face(scale)
	return int(math.Ceil(f.Extents().Ascent.Points()))
}

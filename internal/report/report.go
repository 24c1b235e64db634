// Package report renders an HTML page describing a finished annotation run.
package report

import (
	"fmt"
	"image/color"
	"io"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/track-overlay/internal/annotate"
)

// Options controls page rendering.
type Options struct {
	// AssetsHost overrides where the echarts scripts are loaded from. Empty
	// uses the go-echarts default CDN.
	AssetsHost string
}

func (o Options) init(title string) opts.Initialization {
	init := opts.Initialization{PageTitle: title, Width: "100%", Height: "480px"}
	if o.AssetsHost != "" {
		init.AssetsHost = o.AssetsHost
	}
	return init
}

// Write renders the report for sum to w.
func Write(w io.Writer, sum *annotate.Summary, o Options) error {
	if sum == nil {
		return fmt.Errorf("no run summary to report")
	}

	page := components.NewPage()
	page.SetPageTitle("Track overlay " + sum.RunID)
	if o.AssetsHost != "" {
		page.SetAssetsHost(o.AssetsHost)
	}
	page.AddCharts(boxesPerFrame(sum, o), framesPerTrack(sum, o))

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}

func boxesPerFrame(sum *annotate.Summary, o Options) *charts.Line {
	x := make([]int, len(sum.BoxesPerFrame))
	y := make([]opts.LineData, len(sum.BoxesPerFrame))
	for i, n := range sum.BoxesPerFrame {
		x[i] = i
		y[i] = opts.LineData{Value: n}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(o.init("Boxes per frame")),
		charts.WithTitleOpts(opts.Title{
			Title: "Boxes per frame",
			Subtitle: fmt.Sprintf("%s  frames=%d annotated=%d mean=%.2f max=%d",
				sum.Input, sum.FramesRead, sum.FramesAnnotated, sum.MeanBoxesPerFrame(), sum.MaxBoxesPerFrame()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "frame", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "boxes"}),
	)
	line.SetXAxis(x).AddSeries("boxes", y,
		charts.WithLineChartOpts(opts.LineChart{Step: "middle", ShowSymbol: opts.Bool(false)}),
	)
	return line
}

func framesPerTrack(sum *annotate.Summary, o Options) *charts.Bar {
	ids := make([]int, 0, len(sum.TrackFrames))
	for id := range sum.TrackFrames {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	x := make([]string, len(ids))
	y := make([]opts.BarData, len(ids))
	for i, id := range ids {
		x[i] = strconv.Itoa(id)
		d := opts.BarData{Value: sum.TrackFrames[id]}
		if c, ok := sum.Colors[id]; ok {
			d.ItemStyle = &opts.ItemStyle{Color: hex(c)}
		}
		y[i] = d
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(o.init("Frames per track")),
		charts.WithTitleOpts(opts.Title{Title: "Frames per track", Subtitle: fmt.Sprintf("tracks=%d", len(ids))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "track", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "frames"}),
	)
	bar.SetXAxis(x).AddSeries("frames", y)
	return bar
}

// hex formats c as a CSS color.
func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

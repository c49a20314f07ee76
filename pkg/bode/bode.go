// Package bode draws magnitude and phase plots of a frequency response.
package bode

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/edp1096/toy-schematic/pkg/analysis"
)

var ErrNoData = errors.New("no frequency points")

type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case PNG, SVG:
		return f, nil
	}
	return "", fmt.Errorf("unknown image format %q", s)
}

type Options struct {
	Title  string
	Width  vg.Length
	Height vg.Length
	Format Format
}

func DefaultOptions() Options {
	return Options{
		Title:  "Bode plot",
		Width:  8 * vg.Inch,
		Height: 6 * vg.Inch,
		Format: PNG,
	}
}

// Plots builds the magnitude (dB) and phase (degrees) plots over a log
// frequency axis.
func Plots(points []analysis.FrequencyPoint, title string) (*plot.Plot, *plot.Plot, error) {
	if len(points) == 0 {
		return nil, nil, ErrNoData
	}

	mag := make(plotter.XYs, 0, len(points))
	phase := make(plotter.XYs, 0, len(points))
	for _, p := range points {
		if p.Freq <= 0 || math.IsInf(p.DB, 0) || math.IsNaN(p.DB) {
			continue
		}
		mag = append(mag, plotter.XY{X: p.Freq, Y: p.DB})
		phase = append(phase, plotter.XY{X: p.Freq, Y: p.Phase})
	}
	if len(mag) == 0 {
		return nil, nil, ErrNoData
	}

	magPlot, err := newPlot(mag, "|H| (dB)")
	if err != nil {
		return nil, nil, fmt.Errorf("magnitude plot: %w", err)
	}
	magPlot.Title.Text = title

	phasePlot, err := newPlot(phase, "phase (deg)")
	if err != nil {
		return nil, nil, fmt.Errorf("phase plot: %w", err)
	}
	phasePlot.X.Label.Text = "frequency (Hz)"

	return magPlot, phasePlot, nil
}

func newPlot(xys plotter.XYs, yLabel string) (*plot.Plot, error) {
	p := plot.New()
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)

	return p, nil
}

// Render draws magnitude above phase and writes the image to w.
func Render(w io.Writer, points []analysis.FrequencyPoint, opts Options) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		def := DefaultOptions()
		opts.Width, opts.Height = def.Width, def.Height
	}
	if opts.Format == "" {
		opts.Format = PNG
	}

	magPlot, phasePlot, err := Plots(points, opts.Title)
	if err != nil {
		return err
	}

	var (
		canvas vg.CanvasWriterTo
		sizer  vg.CanvasSizer
	)
	switch opts.Format {
	case PNG:
		img := vgimg.New(opts.Width, opts.Height)
		canvas, sizer = vgimg.PngCanvas{Canvas: img}, img
	case SVG:
		svg := vgsvg.New(opts.Width, opts.Height)
		canvas, sizer = svg, svg
	default:
		return fmt.Errorf("unknown image format %q", opts.Format)
	}

	plots := [][]*plot.Plot{{magPlot}, {phasePlot}}
	tiles := draw.Tiles{
		Rows: 2,
		Cols: 1,
		PadX: vg.Millimeter,
		PadY: 4 * vg.Millimeter,
	}
	canvases := plot.Align(plots, tiles, draw.New(sizer))
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	if _, err := canvas.WriteTo(w); err != nil {
		return fmt.Errorf("writing %s: %w", opts.Format, err)
	}
	return nil
}

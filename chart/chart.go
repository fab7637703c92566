// Package chart draws the daily pivot as a two panel PNG.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/rustyeddy/tradeledger/stats"
)

// ErrNoChart is returned when there is nothing to draw.
var ErrNoChart = errors.New("no data to chart")

var (
	buyColor  = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
	sellColor = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	netColor  = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
)

const (
	width    = 12 * vg.Inch
	height   = 8 * vg.Inch
	barWidth = 14
)

// Render draws the pivot and returns the encoded PNG. The top panel shows
// per-day buy and sell bars side by side, the bottom panel the cumulative
// net amount with a marker per day.
func Render(pivot []stats.DailyAggregate, labels Labels) ([]byte, error) {
	if len(pivot) == 0 {
		return nil, ErrNoChart
	}

	days := make([]string, len(pivot))
	buys := make(plotter.Values, len(pivot))
	sells := make(plotter.Values, len(pivot))
	cum := make(plotter.XYs, len(pivot))
	for i, row := range pivot {
		days[i] = row.Key()
		buys[i] = row.Buy.InexactFloat64()
		sells[i] = row.Sell.InexactFloat64()
		cum[i].X = float64(i)
		cum[i].Y = row.Cumulative.InexactFloat64()
	}

	top, err := barPanel(days, buys, sells, labels)
	if err != nil {
		return nil, err
	}
	bottom, err := linePanel(days, cum, labels)
	if err != nil {
		return nil, err
	}

	img := vgimg.New(width, height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: 2,
		Cols: 1,
		PadX: vg.Millimeter,
		PadY: 4 * vg.Millimeter,
	}
	plots := [][]*plot.Plot{{top}, {bottom}}
	canvases := plot.Align(plots, tiles, dc)
	top.Draw(canvases[0][0])
	bottom.Draw(canvases[1][0])

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

func barPanel(days []string, buys, sells plotter.Values, labels Labels) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = labels.BarTitle
	p.Y.Label.Text = labels.Amount
	p.Add(plotter.NewGrid())

	w := vg.Points(barWidth)
	buyBars, err := plotter.NewBarChart(buys, w)
	if err != nil {
		return nil, fmt.Errorf("buy bars: %w", err)
	}
	buyBars.Color = buyColor
	buyBars.LineStyle.Width = 0
	buyBars.Offset = -w / 2

	sellBars, err := plotter.NewBarChart(sells, w)
	if err != nil {
		return nil, fmt.Errorf("sell bars: %w", err)
	}
	sellBars.Color = sellColor
	sellBars.LineStyle.Width = 0
	sellBars.Offset = w / 2

	p.Add(buyBars, sellBars)
	p.Legend.Add(labels.Buy, buyBars)
	p.Legend.Add(labels.Sell, sellBars)
	p.Legend.Top = true

	p.NominalX(days...)
	rotateDays(p)
	return p, nil
}

func linePanel(days []string, cum plotter.XYs, labels Labels) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = labels.LineTitle
	p.X.Label.Text = labels.Day
	p.Y.Label.Text = labels.Amount
	p.Add(plotter.NewGrid())

	line, points, err := plotter.NewLinePoints(cum)
	if err != nil {
		return nil, fmt.Errorf("cumulative line: %w", err)
	}
	line.Color = netColor
	line.Width = vg.Points(2)
	points.Shape = draw.CircleGlyph{}
	points.Color = netColor
	points.Radius = vg.Points(3)

	p.Add(line, points)
	p.Legend.Add(labels.Net, line, points)
	p.Legend.Top = true

	p.NominalX(days...)
	rotateDays(p)
	return p, nil
}

func rotateDays(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}

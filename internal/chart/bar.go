package chart

import (
	"image"
	"image/color"
	"math"

	"github.com/andresmejia3/moodcam/internal/emotion"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var barColor = color.RGBA{173, 216, 230, 255} // lightblue

// BarRenderer draws the live confidence bar chart, one bar per canonical
// label with the y axis fixed to [0,1], and captures it onto a fixed canvas.
type BarRenderer struct {
	Width, Height vg.Length
	DPI           int
	Canvas        image.Point
}

// NewBarRenderer returns a renderer with a 6.4x4.8in figure at 100 dpi
// scaled onto the given canvas.
func NewBarRenderer(canvas image.Point) *BarRenderer {
	return &BarRenderer{
		Width:  6.4 * vg.Inch,
		Height: 4.8 * vg.Inch,
		DPI:    100,
		Canvas: canvas,
	}
}

// Render draws c and returns the captured frame.
func (r *BarRenderer) Render(c emotion.Confidences) Capture {
	p, err := barPlot(c)
	if err != nil {
		return skip("bar chart: %v", err)
	}

	canvas := vgimg.NewWith(vgimg.UseWH(r.Width, r.Height), vgimg.UseDPI(r.DPI))
	p.Draw(draw.New(canvas))
	return capture(canvas.Image(), r.Canvas)
}

func barPlot(c emotion.Confidences) (*plot.Plot, error) {
	values := make(plotter.Values, len(emotion.Labels))
	names := make([]string, len(emotion.Labels))
	for i, l := range emotion.Labels {
		values[i] = c.Get(l)
		names[i] = string(l)
	}

	p := plot.New()
	p.Title.Text = "Real-time Emotion Detection"
	p.Y.Label.Text = "Confidence"

	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return nil, err
	}
	bars.Color = barColor
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	// Fixed after Add so the data range cannot widen it.
	p.Y.Min, p.Y.Max = 0, 1
	return p, nil
}

package chart

import (
	"fmt"
	"image/color"

	"github.com/andresmejia3/moodcam/internal/emotion"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Series is the running cumulative confidence of one label.
type Series struct {
	Label  emotion.Label
	Values []float64
}

// TrendRenderer draws the cumulative confidence lines into a static image.
// The output format follows the file extension (jpg, png, svg, pdf).
type TrendRenderer struct {
	Size vg.Length
}

func NewTrendRenderer() *TrendRenderer {
	return &TrendRenderer{Size: 10 * vg.Inch}
}

// LineColor is the plot color of a label. Panel colors such as pure yellow
// vanish on a white background, so lines use the plot palette, indexed by
// canonical position to stay stable across charts.
func LineColor(l emotion.Label) color.Color {
	for i, k := range emotion.Labels {
		if k == l {
			return plotutil.Color(i)
		}
	}
	return plotutil.Color(len(emotion.Labels))
}

// RenderTrend plots every series against the processed-frame index.
func (r *TrendRenderer) RenderTrend(series []Series, path string) error {
	p := plot.New()
	p.Title.Text = "Cumulative Emotion Statistics Over Time"
	p.X.Label.Text = "Processed Frame"
	p.Y.Label.Text = "Cumulative Confidence"
	p.Legend.Top = true
	p.Legend.Left = true

	for _, s := range series {
		pts := make(plotter.XYs, len(s.Values))
		for i, v := range s.Values {
			pts[i].X = float64(i)
			pts[i].Y = v
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("series %s: %w", s.Label, err)
		}
		line.LineStyle.Color = LineColor(s.Label)
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(string(s.Label), line)
	}

	return p.Save(r.Size, r.Size, path)
}

package pipeline

import (
	"fmt"

	"github.com/andresmejia3/moodcam/internal/chart"
	"github.com/andresmejia3/moodcam/internal/emotion"
)

// Cumulative builds one running-sum series per canonical label across the
// ordered log. Missing labels contribute 0.
func Cumulative(entries []emotion.Confidences) []chart.Series {
	out := make([]chart.Series, len(emotion.Labels))
	for i, l := range emotion.Labels {
		values := make([]float64, len(entries))
		sum := 0.0
		for j, e := range entries {
			sum += e.Get(l)
			values[j] = sum
		}
		out[i] = chart.Series{Label: l, Values: values}
	}
	return out
}

// TrendReporter turns the statistics log into the cumulative chart at the
// end of a session.
type TrendReporter struct {
	Renderer TrendRenderer
	Path     string
}

// Report renders the chart when the log has entries. An empty log is not
// an error and produces no file.
func (r *TrendReporter) Report(entries []emotion.Confidences) (bool, error) {
	if len(entries) == 0 {
		return false, nil
	}
	if err := r.Renderer.RenderTrend(Cumulative(entries), r.Path); err != nil {
		return false, fmt.Errorf("failed to render trend chart: %w", err)
	}
	return true, nil
}

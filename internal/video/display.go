package video

import (
	"image/color"

	"github.com/andresmejia3/moodcam/internal/pipeline"
	"gocv.io/x/gocv"
)

const (
	streamWindow = "Emotion Detection"
	panelWindow  = "Emotion Color"
)

// Windows shows the annotated stream and a solid panel in the color of the
// held emotion. Pressing quitKey in either window ends the session.
type Windows struct {
	stream  *gocv.Window
	panel   *gocv.Window
	canvas  gocv.Mat
	quitKey int
}

func NewWindows(panelSize int) *Windows {
	return &Windows{
		stream:  gocv.NewWindow(streamWindow),
		panel:   gocv.NewWindow(panelWindow),
		canvas:  gocv.NewMatWithSize(panelSize, panelSize, gocv.MatTypeCV8UC3),
		quitKey: 'q',
	}
}

func (w *Windows) Show(view pipeline.Frame, c color.RGBA) bool {
	if vf, ok := view.(*Frame); ok {
		w.stream.IMShow(vf.Mat)
	}

	// Mats are BGR.
	w.canvas.SetTo(gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0))
	w.panel.IMShow(w.canvas)

	return w.stream.WaitKey(1)&0xFF == w.quitKey
}

func (w *Windows) Close() error {
	w.canvas.Close()
	w.panel.Close()
	return w.stream.Close()
}

// Headless discards every frame. Sessions end through the stream or a signal.
type Headless struct{}

func (Headless) Show(pipeline.Frame, color.RGBA) bool { return false }

func (Headless) Close() error { return nil }

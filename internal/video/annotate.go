package video

import (
	"image"
	"image/color"

	"github.com/andresmejia3/moodcam/internal/pipeline"
	"gocv.io/x/gocv"
)

var boxGreen = color.RGBA{0, 255, 0, 255}

// Annotator draws the detection box and its "label: confidence" caption.
type Annotator struct {
	Color     color.RGBA
	Thickness int
	FontScale float64
}

func NewAnnotator() Annotator {
	return Annotator{Color: boxGreen, Thickness: 2, FontScale: 0.9}
}

// Annotate draws st onto f in place. Empty states and foreign frames are ignored.
func (a Annotator) Annotate(f pipeline.Frame, st pipeline.DetectionState) {
	vf, ok := f.(*Frame)
	if !ok || !st.Active {
		return
	}
	r := st.Region
	gocv.Rectangle(&vf.Mat, r.Rect(), a.Color, a.Thickness)
	gocv.PutText(&vf.Mat, st.Text, image.Pt(r.X, r.Y-10), gocv.FontHersheySimplex, a.FontScale, a.Color, a.Thickness)
}

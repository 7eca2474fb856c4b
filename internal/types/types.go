package types

import (
	"image"
	"time"

	"github.com/andresmejia3/moodcam/internal/emotion"
)

// Region is a face bounding box in frame pixels.
type Region struct {
	X      int `msgpack:"x" json:"x"`
	Y      int `msgpack:"y" json:"y"`
	Width  int `msgpack:"w" json:"w"`
	Height int `msgpack:"h" json:"h"`
}

// Area is width*height.
func (r Region) Area() int {
	return r.Width * r.Height
}

// Rect converts the region into an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// DetectedFace is one face reported by the classifier for an analyzed frame.
type DetectedFace struct {
	Region      Region
	Confidences emotion.Confidences
}

// FaceResult matches the msgpack structure coming back from the Python worker.
type FaceResult struct {
	Box      []int              `msgpack:"box"` // [x, y, w, h]
	Emotions map[string]float64 `msgpack:"emotions"`
}

// WorkerResponse is the envelope of every worker reply.
type WorkerResponse struct {
	Faces []FaceResult `msgpack:"faces"`
	Error string       `msgpack:"error"`
}

// Sample is the record emitted for every analyzed tick that found a face.
type Sample struct {
	Seq         int                 `json:"seq"`
	Tick        int                 `json:"tick"`
	Region      Region              `json:"box"`
	Label       emotion.Label       `json:"label"`
	Confidence  float64             `json:"confidence"`
	Confidences emotion.Confidences `json:"emotions"`
	At          time.Time           `json:"at"`
}

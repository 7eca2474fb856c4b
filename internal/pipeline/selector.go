package pipeline

import "github.com/andresmejia3/moodcam/internal/types"

// SelectPrimary picks the face with the largest bounding box area. The scan
// is order preserving and only a strictly larger area replaces the current
// pick, so the first face wins on ties.
func SelectPrimary(faces []types.DetectedFace) (types.DetectedFace, bool) {
	if len(faces) == 0 {
		return types.DetectedFace{}, false
	}
	best := faces[0]
	maxArea := best.Region.Area()
	for _, f := range faces[1:] {
		if area := f.Region.Area(); area > maxArea {
			maxArea = area
			best = f
		}
	}
	return best, true
}

package emotion

import "fmt"

// Label is one of the categories reported by the classifier.
type Label string

const (
	Angry    Label = "angry"
	Disgust  Label = "disgust"
	Fear     Label = "fear"
	Happy    Label = "happy"
	Sad      Label = "sad"
	Surprise Label = "surprise"
	Neutral  Label = "neutral"

	// None is the label held while no face is being tracked.
	None Label = "none"
)

// Labels is the canonical label order. Charts, trend series and the
// arg-max tie-break all follow it.
var Labels = []Label{Angry, Disgust, Fear, Happy, Sad, Surprise, Neutral}

// Canonical returns a copy of Labels that callers may modify.
func Canonical() []Label {
	out := make([]Label, len(Labels))
	copy(out, Labels)
	return out
}

// IsKnown reports whether l is one of the seven classifier labels.
func IsKnown(l Label) bool {
	for _, k := range Labels {
		if k == l {
			return true
		}
	}
	return false
}

// Confidences maps each label to the classifier's confidence in [0,1].
type Confidences map[Label]float64

// Get returns the confidence for l, or 0 when the label is missing.
func (c Confidences) Get(l Label) float64 {
	return c[l]
}

// Clone returns an independent copy.
func (c Confidences) Clone() Confidences {
	out := make(Confidences, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Dominant returns the label with the strictly greatest confidence.
// Labels are scanned in canonical order, so on equal values the earliest
// label wins. Labels outside the canonical set are ignored. An empty
// mapping yields None with confidence 0.
func (c Confidences) Dominant() (Label, float64) {
	best, bestScore := None, 0.0
	found := false
	for _, l := range Labels {
		v, ok := c[l]
		if !ok {
			continue
		}
		if !found || v > bestScore {
			best, bestScore, found = l, v, true
		}
	}
	return best, bestScore
}

// FromStrings converts a decoded wire mapping into Confidences.
func FromStrings(m map[string]float64) Confidences {
	out := make(Confidences, len(m))
	for k, v := range m {
		out[Label(k)] = v
	}
	return out
}

// Strings converts c into a plain string-keyed map for encoders.
func (c Confidences) Strings() map[string]float64 {
	out := make(map[string]float64, len(c))
	for k, v := range c {
		out[string(k)] = v
	}
	return out
}

// FormatAnnotation renders the overlay text drawn above a face box.
func FormatAnnotation(l Label, score float64) string {
	return fmt.Sprintf("%s: %.2f", l, score)
}

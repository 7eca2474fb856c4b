package emotion

import (
	"fmt"
	"image/color"
)

// Fallback is used for None and for any label the map does not know.
var Fallback = color.RGBA{0, 0, 0, 255}

var defaultColors = map[Label]color.RGBA{
	Angry:    {255, 0, 0, 255},
	Disgust:  {0, 255, 0, 255},
	Fear:     {128, 0, 128, 255},
	Happy:    {255, 255, 0, 255},
	Sad:      {0, 0, 255, 255},
	Surprise: {255, 165, 0, 255},
	Neutral:  {128, 128, 128, 255},
	None:     Fallback,
}

// ColorMap assigns a display color to each label. It is built once at
// startup and never mutated afterwards.
type ColorMap struct {
	colors map[Label]color.RGBA
}

// DefaultColorMap returns the built-in palette.
func DefaultColorMap() ColorMap {
	m, _ := NewColorMap(nil)
	return m
}

// NewColorMap starts from the default palette and applies overrides given
// as RGB triples. Unknown labels are rejected.
func NewColorMap(overrides map[string][3]uint8) (ColorMap, error) {
	colors := make(map[Label]color.RGBA, len(defaultColors))
	for k, v := range defaultColors {
		colors[k] = v
	}
	for name, rgb := range overrides {
		l := Label(name)
		if !IsKnown(l) && l != None {
			return ColorMap{}, fmt.Errorf("unknown emotion label %q in color map", name)
		}
		colors[l] = color.RGBA{rgb[0], rgb[1], rgb[2], 255}
	}
	return ColorMap{colors: colors}, nil
}

// Lookup never fails: None and unrecognized labels map to Fallback.
func (m ColorMap) Lookup(l Label) color.RGBA {
	if c, ok := m.colors[l]; ok {
		return c
	}
	return Fallback
}

package render

import (
	"image"
	"strconv"

	"homework-tutor/api/internal/analysis/types"
)

// Rect is an overlay position in percent of the rendered image size.
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Overlay scales a normalized box linearly to percentages: value / 1000 * 100.
// ok is false when there is no box or it has no area.
func Overlay(box *types.BoundingBox) (Rect, bool) {
	if box == nil {
		return Rect{}, false
	}
	b, ok := box.Normalize()
	if !ok {
		return Rect{}, false
	}
	return Rect{
		Top:    percent(b.YMin),
		Left:   percent(b.XMin),
		Width:  percent(b.XMax) - percent(b.XMin),
		Height: percent(b.YMax) - percent(b.YMin),
	}, true
}

// percent computes v / 1000 * 100 with the multiplication first so whole percentages stay exact.
func percent(v int) float64 {
	return float64(v*100) / types.GridSize
}

// Pixels maps the overlay onto an image of the given size.
func (r Rect) Pixels(width, height int) image.Rectangle {
	x0 := int(r.Left / 100 * float64(width))
	y0 := int(r.Top / 100 * float64(height))
	x1 := int((r.Left + r.Width) / 100 * float64(width))
	y1 := int((r.Top + r.Height) / 100 * float64(height))
	return image.Rect(x0, y0, x1, y1)
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

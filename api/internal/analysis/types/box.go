package types

import (
	"encoding/json"
	"math"
)

// GridSize is the side of the normalized grid box coordinates live on,
// independent of the image's pixel size.
const GridSize = 1000

// BoundingBox marks a region of the image on a GridSize×GridSize grid.
type BoundingBox struct {
	YMin int `json:"ymin"`
	XMin int `json:"xmin"`
	YMax int `json:"ymax"`
	XMax int `json:"xmax"`
}

// UnmarshalJSON accepts fractional coordinates and rounds them.
func (b *BoundingBox) UnmarshalJSON(data []byte) error {
	var raw struct {
		YMin float64 `json:"ymin"`
		XMin float64 `json:"xmin"`
		YMax float64 `json:"ymax"`
		XMax float64 `json:"xmax"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = BoundingBox{
		YMin: int(math.Round(raw.YMin)),
		XMin: int(math.Round(raw.XMin)),
		YMax: int(math.Round(raw.YMax)),
		XMax: int(math.Round(raw.XMax)),
	}
	return nil
}

// Normalize clamps every coordinate to [0, GridSize] and swaps inverted pairs.
// ok is false when the resulting box has no area; such a box should be dropped.
func (b BoundingBox) Normalize() (BoundingBox, bool) {
	out := BoundingBox{
		YMin: clamp(b.YMin),
		XMin: clamp(b.XMin),
		YMax: clamp(b.YMax),
		XMax: clamp(b.XMax),
	}
	if out.YMin > out.YMax {
		out.YMin, out.YMax = out.YMax, out.YMin
	}
	if out.XMin > out.XMax {
		out.XMin, out.XMax = out.XMax, out.XMin
	}
	return out, out.XMax > out.XMin && out.YMax > out.YMin
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > GridSize {
		return GridSize
	}
	return v
}

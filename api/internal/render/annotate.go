package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"

	"homework-tutor/api/internal/analysis/types"
)

var (
	ErrNoOverlay = errors.New("no error region to mark")

	overlayStroke = color.NRGBA{R: 239, G: 68, B: 68, A: 255}
	overlayFill   = color.NRGBA{R: 239, G: 68, B: 68, A: 26}
)

// Annotate draws the error region onto a copy of the original image and encodes it.
// The original bytes are left untouched.
func Annotate(data []byte, box *types.BoundingBox, format imaging.Format) ([]byte, error) {
	r, ok := Overlay(box)
	if !ok {
		return nil, ErrNoOverlay
	}
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	dst := imaging.Clone(src)
	b := dst.Bounds()
	rect := r.Pixels(b.Dx(), b.Dy()).Add(b.Min).Intersect(b)
	if rect.Empty() {
		return nil, ErrNoOverlay
	}

	draw.Draw(dst, rect, image.NewUniform(overlayFill), image.Point{}, draw.Over)

	stroke := max(2, min(b.Dx(), b.Dy())/200)
	edges := []image.Rectangle{
		image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+stroke),
		image.Rect(rect.Min.X, rect.Max.Y-stroke, rect.Max.X, rect.Max.Y),
		image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+stroke, rect.Max.Y),
		image.Rect(rect.Max.X-stroke, rect.Min.Y, rect.Max.X, rect.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(rect), image.NewUniform(overlayStroke), image.Point{}, draw.Src)
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, dst, format); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

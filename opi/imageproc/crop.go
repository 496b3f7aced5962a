// SPDX-License-Identifier: MIT
package imageproc

import (
	"image"

	"github.com/opiproc/opi/opi/record"
)

// shouldCrop decides whether cropping pays for itself, per spec §4.5
// step 5: crop only when the full image area exceeds the cropped area
// by at least config.ImageCropThreshold; otherwise the saving is judged
// too small and the full extent is kept.
func shouldCrop(full image.Rectangle, crop record.Rect, threshold float64) bool {
	cw, ch := crop[2]-crop[0], crop[3]-crop[1]
	if cw <= 0 || ch <= 0 {
		return false
	}
	fullArea := float64(full.Dx() * full.Dy())
	cropArea := float64(cw * ch)
	if cropArea <= 0 {
		return false
	}
	return fullArea/cropArea >= threshold
}

// cropRaster clips a decoded raster to rect, clamped to the image's own
// bounds, and returns the new raster along with the rect actually used.
func cropRaster(r *Raster, rect record.Rect) (*Raster, record.Rect) {
	b := r.Img.Bounds()
	clamped := image.Rect(
		clampInt(rect[0], b.Min.X, b.Max.X),
		clampInt(rect[1], b.Min.Y, b.Max.Y),
		clampInt(rect[2], b.Min.X, b.Max.X),
		clampInt(rect[3], b.Min.Y, b.Max.Y),
	)
	if clamped.Dx() <= 0 || clamped.Dy() <= 0 {
		return r, record.Rect{b.Min.X, b.Min.Y, b.Max.X, b.Max.Y}
	}

	sub, ok := r.Img.(subImager)
	var cropped image.Image
	if ok {
		cropped = sub.SubImage(clamped)
	} else {
		cropped = copyRect(r.Img, clamped)
	}
	return &Raster{Img: cropped, M: r.M, DPI: r.DPI},
		record.Rect{clamped.Min.X, clamped.Min.Y, clamped.Max.X, clamped.Max.Y}
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

func copyRect(src image.Image, r image.Rectangle) image.Image {
	out := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			out.Set(x-r.Min.X, y-r.Min.Y, src.At(x, y))
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SPDX-License-Identifier: MIT
package imageproc

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/opiproc/opi/opi/config"
)

// scaler maps a config.DownsampleFilter to the x/image/draw kernel that
// implements it, per SPEC_FULL §11.
func scaler(f config.DownsampleFilter) draw.Interpolator {
	switch f {
	case config.FilterNearest:
		return draw.NearestNeighbor
	case config.FilterBilinear:
		return draw.BiLinear
	case config.FilterBicubic, config.FilterAntialias:
		return draw.CatmullRom
	default:
		return draw.CatmullRom
	}
}

// downsample resizes img to (w,h) using the configured filter kernel. It
// is a no-op, returning the same raster, when the target size matches
// the source size.
func downsample(r *Raster, w, h int, filter config.DownsampleFilter) *Raster {
	b := r.Img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return r
	}
	dst := newLikeMode(r.M, w, h)
	scaler(filter).Scale(dst, dst.Bounds(), r.Img, b, draw.Over, nil)
	return &Raster{Img: dst, M: r.M, DPI: r.DPI}
}

func newLikeMode(mode string, w, h int) draw.Image {
	r := image.Rect(0, 0, w, h)
	switch mode {
	case "L", "1":
		return image.NewGray(r)
	case "CMYK":
		return image.NewCMYK(r)
	default:
		return image.NewNRGBA(r)
	}
}

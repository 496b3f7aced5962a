// SPDX-License-Identifier: MIT
package imageproc

import (
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/draw"

	"github.com/opiproc/opi/opi/config"
)

func TestScalerMapping(t *testing.T) {
	if scaler(config.FilterNearest) != draw.NearestNeighbor {
		t.Error("FilterNearest should map to NearestNeighbor")
	}
	if scaler(config.FilterBilinear) != draw.BiLinear {
		t.Error("FilterBilinear should map to BiLinear")
	}
	if scaler(config.FilterAntialias) != draw.CatmullRom {
		t.Error("FilterAntialias should map to CatmullRom")
	}
}

func TestNewLikeModeSelectsConcreteType(t *testing.T) {
	if _, ok := newLikeMode("L", 4, 4).(*image.Gray); !ok {
		t.Error("mode L should produce *image.Gray")
	}
	if _, ok := newLikeMode("CMYK", 4, 4).(*image.CMYK); !ok {
		t.Error("mode CMYK should produce *image.CMYK")
	}
	if _, ok := newLikeMode("RGB", 4, 4).(*image.NRGBA); !ok {
		t.Error("mode RGB should produce *image.NRGBA")
	}
}

func TestDownsampleNoOpWhenSizeMatches(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	r := &Raster{Img: img, M: "L"}
	got := downsample(r, 10, 10, config.FilterNearest)
	if got != r {
		t.Error("downsample() should return the same raster when dimensions are unchanged")
	}
}

func TestDownsampleShrinksDimensions(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.SetGray(x, y, color.Gray{Y: 128})
		}
	}
	r := &Raster{Img: img, M: "L"}
	got := downsample(r, 10, 10, config.FilterNearest)
	w, h := got.Size()
	if w != 10 || h != 10 {
		t.Errorf("downsample() size = %d,%d want 10,10", w, h)
	}
}

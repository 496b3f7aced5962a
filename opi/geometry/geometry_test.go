// SPDX-License-Identifier: MIT
package geometry

import (
	"testing"

	"github.com/opiproc/opi/opi/config"
	"github.com/opiproc/opi/opi/record"
)

func baseIPR() *record.IPR {
	ipr := record.NewIPR()
	ipr.HasPosition = true
	// A 144x144pt square, axis-aligned: ll,ul,ur,lr.
	ipr.ImagePosition = record.Position{0, 0, 0, 144, 144, 144, 144, 0}
	ipr.ImageDimensions = [2]int{600, 600}
	ipr.HasCropFixed = true
	ipr.ImageCropFixed = record.RectF{0, 0, 600, 600}
	return ipr
}

func TestComputeNoDownsampleWhenBelowThreshold(t *testing.T) {
	ipr := baseIPR()
	cfg := config.Default()
	// 600px over 144pt (2in) = 300dpi, at or below the color class's
	// target resolution: no downsampling should occur.
	opened := Opened{Mode: "RGB", Width: 600, Height: 600}

	Compute(ipr, opened, cfg)

	if ipr.RealRes.X != 300 || ipr.RealRes.Y != 300 {
		t.Fatalf("RealRes = %+v, want 300x300", ipr.RealRes)
	}
	if ipr.DownsampleDimensions != [2]int{600, 600} {
		t.Errorf("DownsampleDimensions = %v, want unchanged 600x600", ipr.DownsampleDimensions)
	}
	if ipr.DownsampleFactor[0] != 1.0 || ipr.DownsampleFactor[1] != 1.0 {
		t.Errorf("DownsampleFactor = %v, want 1,1", ipr.DownsampleFactor)
	}
}

func TestComputeDownsamplesHighRes(t *testing.T) {
	ipr := baseIPR()
	ipr.ImageDimensions = [2]int{3600, 3600}
	ipr.ImageCropFixed = record.RectF{0, 0, 3600, 3600}
	cfg := config.Default()
	// 3600px over 144pt (2in) = 1800dpi: well above color's 300dpi*2.0
	// threshold, so downsampling must kick in and shrink the dims.
	opened := Opened{Mode: "RGB", Width: 3600, Height: 3600}

	Compute(ipr, opened, cfg)

	if ipr.DownsampleDimensions[0] >= 3600 {
		t.Errorf("DownsampleDimensions[0] = %d, want reduced from 3600", ipr.DownsampleDimensions[0])
	}
	if ipr.DownsampleFactor[0] >= 1.0 {
		t.Errorf("DownsampleFactor[0] = %v, want < 1.0", ipr.DownsampleFactor[0])
	}
}

func TestComputeMonoNeverScalesBySizeFactor(t *testing.T) {
	ipr := baseIPR()
	ipr.ImagePosition = record.Position{0, 0, 0, 36, 36, 36, 36, 0} // 0.5in square: tiny
	ipr.ImageDimensions = [2]int{2400, 2400}
	ipr.ImageCropFixed = record.RectF{0, 0, 2400, 2400}
	cfg := config.Default()
	// A tiny factor of 2 would raise the threshold to 4800 dpi and stop
	// the downsample if it applied; mono ignores it, so 4800 dpi > 2400
	// downsamples 2400px to 0.5in*1200 = 600px.
	cfg.TinyHalftoneResolutionFactor = 2
	opened := Opened{Mode: "1", Width: 2400, Height: 2400}

	Compute(ipr, opened, cfg)

	if ipr.DownsampleFactor[0] > 1.0 || ipr.DownsampleFactor[1] > 1.0 {
		t.Errorf("mono DownsampleFactor = %v, want <= 1.0", ipr.DownsampleFactor)
	}
	if ipr.DownsampleFactor != [2]float64{0.25, 0.25} {
		t.Errorf("mono DownsampleFactor = %v, want [0.25 0.25] (size factor not applied)", ipr.DownsampleFactor)
	}
}

func TestQuality(t *testing.T) {
	class := config.ImageClassConfig{Resolution: 300, MinResolution: 200}
	cases := []struct {
		res  record.Resolution
		want float64
	}{
		{record.Resolution{X: 300, Y: 300}, 3.0},
		{record.Resolution{X: 250, Y: 250}, 2.0},
		{record.Resolution{X: 100, Y: 100}, 1.0},
	}
	for _, c := range cases {
		if got := quality(c.res, class); got != c.want {
			t.Errorf("quality(%v) = %v, want %v", c.res, got, c.want)
		}
	}
}

func TestScaleCropToRealCeilingPadding(t *testing.T) {
	ipr := record.NewIPR()
	ipr.HasCropFixed = true
	ipr.ImageDimensions = [2]int{1000, 1000}
	ipr.ImageCropFixed = record.RectF{10.2, 10.2, 500.7, 500.7}
	cfg := config.Default()
	img := Opened{Width: 1000, Height: 1000}

	scaleCropToReal(ipr, img, cfg, true)

	if ipr.RealCropRect[2] <= 500 {
		t.Errorf("RealCropRect x2 = %d, want ceiling-rounded above 500", ipr.RealCropRect[2])
	}
}

func TestScaleCropToRealNoCropFallsBackToFullImage(t *testing.T) {
	ipr := record.NewIPR()
	cfg := config.Default()
	img := Opened{Width: 200, Height: 100}

	scaleCropToReal(ipr, img, cfg, false)

	if ipr.RealCropRect != (record.Rect{0, 0, 200, 100}) {
		t.Errorf("RealCropRect = %v, want full image bounds", ipr.RealCropRect)
	}
}

// SPDX-License-Identifier: MIT
// Package geometry implements the Geometry Engine of spec §4.4: it
// turns a parsed Image Placement Record plus the opened image's pixel
// size into real placement dimensions, an effective dpi, a crop
// rectangle in real pixels, and downsample targets.
package geometry

import (
	"math"

	"github.com/opiproc/opi/opi/config"
	"github.com/opiproc/opi/opi/record"
)

// Opened describes the properties of the hi-res image as opened by the
// image processor, prior to any crop/downsample.
type Opened struct {
	Mode        string // "1", "L", "RGB", "CMYK"
	Width       int
	Height      int
	EmbeddedDPI record.Resolution // Known=false if the format carries none
}

// Compute fills in IPR's derived fields (RealDimensions, RealCropRect,
// RealRes, DownsampleDimensions, DownsampleFactor, DownsampleRes,
// IncludedImageQuality) per spec §4.4 steps 1-8.
func Compute(ipr *record.IPR, img Opened, cfg *config.Config) {
	useCeiling := ipr.Versions.V20 && cfg.QXPCropRounding

	setRealDimensions(ipr)
	scaleCropToReal(ipr, img, cfg, useCeiling)
	computeRealRes(ipr)

	class := classFor(img.Mode, cfg)
	targetRes := selectTargetResolution(img, class)
	sizeFactor := sizeFactor(ipr.RealDimensions, cfg, img.Mode)

	downsampleDims := [2]float64{float64(dim(ipr.RealCropRect, 0)), float64(dim(ipr.RealCropRect, 1))}
	factor := [2]float64{1, 1}

	if img.Mode == "1" {
		sizeFactor = 1
	}

	for axis := 0; axis < 2; axis++ {
		threshold := targetRes.axis(axis) * class.DownsampleThreshold * sizeFactor
		if class.Downsample && resAxisVal(ipr.RealRes, axis) > threshold {
			downsampleDims[axis] = (ipr.RealDimensions[axis] / 72.0) * targetRes.axis(axis) * sizeFactorOrOne(img.Mode, sizeFactor, axis)
		}
	}

	cropExtent := [2]float64{float64(dim(ipr.RealCropRect, 0)), float64(dim(ipr.RealCropRect, 1))}
	for axis := 0; axis < 2; axis++ {
		if cropExtent[axis] != 0 {
			factor[axis] = downsampleDims[axis] / cropExtent[axis]
		}
		if factor[axis] > 1.0 {
			factor[axis] = 1.0
		}
	}

	ipr.DownsampleFactor = factor
	ipr.DownsampleRes = record.Resolution{
		X: ipr.RealRes.X * factor[0], Y: ipr.RealRes.Y * factor[1], Known: true,
	}

	round := math.Round
	if useCeiling {
		round = math.Ceil
	}
	ipr.DownsampleDimensions = [2]int{
		int(round(float64(img.Width) * factor[0])),
		int(round(float64(img.Height) * factor[1])),
	}

	ipr.IncludedImageQuality = quality(ipr.RealRes, class)
}

func sizeFactorOrOne(mode string, f float64, axis int) float64 {
	if mode == "1" {
		return 1
	}
	return f
}

func setRealDimensions(ipr *record.IPR) {
	if !ipr.HasPosition {
		return
	}
	p := ipr.ImagePosition
	// corners: ll=(p0,p1) ul=(p2,p3) ur=(p4,p5) lr=(p6,p7)
	dist := func(ax, ay, bx, by float64) float64 {
		return math.Sqrt((ax-bx)*(ax-bx) + (ay-by)*(ay-by))
	}
	width := math.Max(dist(p[0], p[1], p[6], p[7]), dist(p[2], p[3], p[4], p[5]))
	height := math.Max(dist(p[2], p[3], p[0], p[1]), dist(p[4], p[5], p[6], p[7]))
	ipr.RealDimensions = [2]float64{width, height}
}

// scaleCropToReal scales ImageCropFixed from declared ImageDimensions
// to real pixels, per spec §4.4 step 2.
func scaleCropToReal(ipr *record.IPR, img Opened, cfg *config.Config, useCeiling bool) {
	if !ipr.HasCropFixed || ipr.ImageDimensions[0] == 0 || ipr.ImageDimensions[1] == 0 {
		ipr.RealCropRect = record.Rect{0, 0, img.Width, img.Height}
		return
	}
	sx := float64(img.Width) / float64(ipr.ImageDimensions[0])
	sy := float64(img.Height) / float64(ipr.ImageDimensions[1])
	fx1 := ipr.ImageCropFixed[0] * sx
	fy1 := ipr.ImageCropFixed[1] * sy
	fx2 := ipr.ImageCropFixed[2] * sx
	fy2 := ipr.ImageCropFixed[3] * sy

	var x1, y1, x2, y2 int
	x1, y1 = int(math.Floor(fx1)), int(math.Floor(fy1))
	if useCeiling {
		x2, y2 = int(math.Ceil(fx2)), int(math.Ceil(fy2))
		// Pad by +/-1px at the layout edge to avoid a one-pixel gap,
		// only when the opposite corner did not already hit the edge
		// (spec §4.4 step 2).
		if x2 != img.Width && x1 != 0 {
			x1--
			x2++
		}
		if y2 != img.Height && y1 != 0 {
			y1--
			y2++
		}
	} else {
		x2, y2 = int(math.Floor(fx2)), int(math.Floor(fy2))
	}

	if x1 < 0 {
		x1 = 0
	}
	if y1 < 0 {
		y1 = 0
	}
	if x2 > img.Width {
		x2 = img.Width
	}
	if y2 > img.Height {
		y2 = img.Height
	}

	ipr.RealCropRect = record.Rect{x1, y1, x2, y2}
}

func computeRealRes(ipr *record.IPR) {
	w, h := float64(dim(ipr.RealCropRect, 0)), float64(dim(ipr.RealCropRect, 1))
	if ipr.RealDimensions[0] == 0 || ipr.RealDimensions[1] == 0 {
		return
	}
	ipr.RealRes = record.Resolution{
		X: w / (ipr.RealDimensions[0] / 72.0),
		Y: h / (ipr.RealDimensions[1] / 72.0),
		Known: true,
	}
}

func dim(r record.Rect, axis int) int {
	if axis == 0 {
		return r[2] - r[0]
	}
	return r[3] - r[1]
}

type resAxis struct{ x, y float64 }

func (r resAxis) axis(a int) float64 {
	if a == 0 {
		return r.x
	}
	return r.y
}

func resAxisVal(r record.Resolution, a int) float64 {
	if a == 0 {
		return r.X
	}
	return r.Y
}

func classFor(mode string, cfg *config.Config) config.ImageClassConfig {
	switch mode {
	case "1":
		return cfg.Mono
	case "L":
		return cfg.Gray
	default:
		return cfg.Color
	}
}

func selectTargetResolution(img Opened, class config.ImageClassConfig) resAxis {
	if class.UseEmbeddedResolution && img.EmbeddedDPI.Known &&
		math.Min(img.EmbeddedDPI.X, img.EmbeddedDPI.Y) > class.Resolution {
		return resAxis{img.EmbeddedDPI.X, img.EmbeddedDPI.Y}
	}
	return resAxis{class.Resolution, class.Resolution}
}

func sizeFactor(realDims [2]float64, cfg *config.Config, mode string) float64 {
	if mode == "1" {
		return 1
	}
	maxDim := math.Max(realDims[0], realDims[1])
	switch {
	case maxDim <= cfg.TinyHalftoneSize:
		return cfg.TinyHalftoneResolutionFactor
	case maxDim <= cfg.SmallHalftoneSize:
		return cfg.SmallHalftoneResolutionFactor
	default:
		return 1.0
	}
}

func quality(res record.Resolution, class config.ImageClassConfig) float64 {
	eff := math.Min(res.X, res.Y)
	switch {
	case eff >= class.Resolution:
		return 3.0
	case eff >= class.MinResolution:
		return 2.0
	default:
		return 1.0
	}
}

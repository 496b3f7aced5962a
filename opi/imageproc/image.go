// SPDX-License-Identifier: MIT
package imageproc

import (
	"image"

	"github.com/opiproc/opi/opi/record"
)

// Image is the small trait-like interface spec §9 asks for: a tagged
// variant over a decoded raster and an EPSF payload.
type Image interface {
	Size() (w, h int)
	Mode() string
	IsEPSF() bool
}

// Raster wraps a decoded stdlib image.Image together with its mode
// classification and any embedded dpi.
type Raster struct {
	Img image.Image
	M   string // "1", "L", "RGB", "CMYK"
	DPI record.Resolution
}

func (r *Raster) Size() (int, int) {
	b := r.Img.Bounds()
	return b.Dx(), b.Dy()
}
func (r *Raster) Mode() string { return r.M }
func (r *Raster) IsEPSF() bool { return false }

// Epsf wraps an extracted EPSF PostScript payload and its bounding box
// in points.
type Epsf struct {
	Payload []byte
	W, H    float64 // points, from %%HiResBoundingBox / %%BoundingBox
}

func (e *Epsf) Size() (int, int) { return int(e.W), int(e.H) }
func (e *Epsf) Mode() string     { return "EPSF" }
func (e *Epsf) IsEPSF() bool     { return true }

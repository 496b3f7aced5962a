// SPDX-License-Identifier: MIT
package emit

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/opiproc/opi/opi/record"
)

// affine is a PostScript-style [a b c d tx ty] matrix, row-vector
// convention: (x,y) -> (a*x+c*y+tx, b*x+d*y+ty).
type affine [6]float64

func (m affine) dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		m[0], m[1], 0,
		m[2], m[3], 0,
		m[4], m[5], 1,
	})
}

func fromDense(d *mat.Dense) affine {
	return affine{d.At(0, 0), d.At(0, 1), d.At(1, 0), d.At(1, 1), d.At(2, 0), d.At(2, 1)}
}

// concat returns the product m×n: under the row-vector convention a
// point is mapped by m first and then by n. gonum computes the 3x3
// homogeneous product.
func concat(m, n affine) affine {
	var out mat.Dense
	out.Mul(m.dense(), n.dense())
	return fromDense(&out)
}

func identity() affine { return affine{1, 0, 0, 1, 0, 0} }

// positionMatrix computes [a b c d tx ty] from the four placed corners,
// spec §4.7 step 4.
func positionMatrix(p record.Position, w, h float64) affine {
	llx, lly := p[0], p[1]
	ulx, uly := p[2], p[3]
	lrx, lry := p[6], p[7]
	var a, b, c, d float64
	if w != 0 {
		a = (lrx - llx) / w
		b = (lry - lly) / w
	}
	if h != 0 {
		c = (ulx - llx) / h
		d = (uly - lly) / h
	}
	return affine{a, b, c, d, llx, lly}
}

// emitMatrix computes and writes the transformation matrix concat
// sequence of spec §4.7 step 4 for a raster image (the pixel-normalizing
// concat and crop adjustment apply).
func (e *Emitter) emitMatrix(ipr *record.IPR, cache *record.CacheEntry) {
	e.emitPositionMatrix(ipr)

	pixW, pixH := float64(cache.Width), float64(cache.Height)
	norm := affine{pixW, 0, 0, pixH, 0, 0}
	e.line(fmt.Sprintf("[%s] concat", floats6([6]float64(norm))))

	if cropIsInterior(ipr, cache) {
		adjust := cropAdjustMatrix(ipr, cache)
		e.line(fmt.Sprintf("[%s] concat", floats6([6]float64(adjust))))
	}
}

// emitEPSFMatrix writes just the placement matrix, spec §4.7 step 4:
// EPSF uses the matrix but skips the pixel-normalizing concat.
func (e *Emitter) emitEPSFMatrix(ipr *record.IPR) {
	e.emitPositionMatrix(ipr)
}

func (e *Emitter) emitPositionMatrix(ipr *record.IPR) {
	if ipr.Versions.V20 && ipr.HasTempMatrix {
		e.line(fmt.Sprintf("[%s] setmatrix", floats6(ipr.TempMatrix)))
		return
	}
	w, h := ipr.RealDimensions[0], ipr.RealDimensions[1]
	m := identity()
	if ipr.HasPosition {
		m = positionMatrix(ipr.ImagePosition, w, h)
	}
	e.line(fmt.Sprintf("[%s] concat", floats6([6]float64(m))))
}

// cropIsInterior reports whether the real crop rect is strictly inside
// the full conditioned pixel extent, meaning a further concat is needed
// to offset/scale the image matrix onto just the cropped region.
func cropIsInterior(ipr *record.IPR, cache *record.CacheEntry) bool {
	r := ipr.RealCropRect
	return r[0] > 0 || r[1] > 0 || r[2] < cache.Width || r[3] < cache.Height
}

func cropAdjustMatrix(ipr *record.IPR, cache *record.CacheEntry) affine {
	r := ipr.RealCropRect
	w, h := float64(cache.Width), float64(cache.Height)
	if w == 0 || h == 0 {
		return identity()
	}
	sx := float64(r[2]-r[0]) / w
	sy := float64(r[3]-r[1]) / h
	tx := float64(r[0]) / w
	ty := float64(r[1]) / h
	return concat(affine{sx, 0, 0, sy, tx, ty}, identity())
}

func floats6(f [6]float64) string {
	return fmt.Sprintf("%s %s %s %s %s %s", fixedStr(f[0]), fixedStr(f[1]), fixedStr(f[2]), fixedStr(f[3]), fixedStr(f[4]), fixedStr(f[5]))
}

// SPDX-License-Identifier: MIT
package imageproc

import "image"

// detectCMYKGray implements spec §4.5 step 4: a CMYK image whose cyan,
// magenta and yellow channels are entirely zero is really a gray (or
// black and white) image encoded as CMYK. A handful of sample points are
// checked first as a cheap pre-filter before scanning every pixel, since
// the common case (a genuinely colored image) should bail out fast.
func detectCMYKGray(img *image.CMYK) bool {
	if !samplePointsGray(img) {
		return false
	}
	n := len(img.Pix) / 4
	for i := 0; i < n; i++ {
		px := img.Pix[i*4 : i*4+4]
		if px[0] != 0 || px[1] != 0 || px[2] != 0 {
			return false
		}
	}
	return true
}

// samplePointsGray checks five representative points (the four corners
// and the center) before paying for a full-image scan.
func samplePointsGray(img *image.CMYK) bool {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return true
	}
	pts := [5][2]int{
		{0, 0}, {w - 1, 0}, {0, h - 1}, {w - 1, h - 1}, {w / 2, h / 2},
	}
	for _, p := range pts {
		c := img.CMYKAt(b.Min.X+p[0], b.Min.Y+p[1])
		if c.C != 0 || c.M != 0 || c.Y != 0 {
			return false
		}
	}
	return true
}

// stripCMYToGray converts a CMYK image known to carry only K ink into an
// 8-bit gray image (spec §4.5 step 4, config.CMYKGrayStripCMY).
func stripCMYToGray(img *image.CMYK) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(b)
	n := len(img.Pix) / 4
	for i := 0; i < n; i++ {
		k := img.Pix[i*4+3]
		out.Pix[i] = 255 - k
	}
	return out
}

// SPDX-License-Identifier: MIT
package engine

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/opiproc/opi/opi/record"
)

const (
	placeholderW = 320
	placeholderH = 240
)

// placeholder builds the 320x240 CMYK stand-in image of spec §7/§8: an
// opaque cyan-free magenta field, two black diagonals, and two centered
// text lines naming the error kind and the offending file.
func placeholder(kind, file string) *record.CacheEntry {
	img := image.NewCMYK(image.Rect(0, 0, placeholderW, placeholderH))
	fill := color.CMYK{C: 0, M: 255, Y: 255, K: 0}
	for i := range img.Pix {
		switch i % 4 {
		case 0:
			img.Pix[i] = fill.C
		case 1:
			img.Pix[i] = fill.M
		case 2:
			img.Pix[i] = fill.Y
		case 3:
			img.Pix[i] = fill.K
		}
	}

	drawDiagonal(img, false)
	drawDiagonal(img, true)
	drawText(img, kind, placeholderH/2-10)
	drawText(img, file, placeholderH/2+4)

	return &record.CacheEntry{
		Mode:   "CMYK",
		Pix:    append([]byte(nil), img.Pix...),
		Width:  placeholderW,
		Height: placeholderH,
	}
}

func drawDiagonal(img *image.CMYK, reverse bool) {
	for x := 0; x < placeholderW; x++ {
		y := x * placeholderH / placeholderW
		if reverse {
			y = placeholderH - 1 - y
		}
		setBlack(img, x, y)
		if y+1 < placeholderH {
			setBlack(img, x, y+1)
		}
	}
}

func setBlack(img *image.CMYK, x, y int) {
	img.SetCMYK(x, y, color.CMYK{C: 0, M: 0, Y: 0, K: 255})
}

func drawText(img *image.CMYK, s string, y int) {
	if s == "" {
		return
	}
	maxChars := placeholderW / basicfont.Face7x13.Width
	if len(s) > maxChars {
		s = s[:maxChars]
	}
	x := (placeholderW - len(s)*basicfont.Face7x13.Width) / 2
	if x < 0 {
		x = 0
	}
	d := &font.Drawer{
		Dst:  textShim{img},
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}

// textShim adapts *image.CMYK to draw.Image. Set paints the pixel black
// when c is pure black and ignores every other colour.
type textShim struct{ img *image.CMYK }

func (t textShim) ColorModel() color.Model { return t.img.ColorModel() }
func (t textShim) Bounds() image.Rectangle { return t.img.Bounds() }
func (t textShim) At(x, y int) color.Color { return t.img.At(x, y) }
func (t textShim) Set(x, y int, c color.Color) {
	cr, cg, cb, _ := c.RGBA()
	if cr == 0 && cg == 0 && cb == 0 {
		setBlack(t.img, x, y)
	}
}

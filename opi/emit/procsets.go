// SPDX-License-Identifier: MIT
package emit

import (
	"fmt"
	"math"

	"github.com/opiproc/opi/opi/record"
)

// defaultProcset defines the B/X/ImageDict/CreateImageDict/inkmul
// helpers every substituted raster image relies on, spec §4.7 step 3.
const defaultProcset = `
/B{bind def}bind def
/X{exch def}B
/ImageDict 12 dict def
/CreateImageDict{ImageDict begin
  /ImageType X /Width X /Height X /ImageMatrix X /DataSource X
  /BitsPerComponent X /Decode X /MultipleDataSources false def
  currentdict end}B
/inkmul{3 -1 roll mul 3 1 roll mul}B
`

const colorizationProcset = `
/gendn{{0}repeat setcmykcolor}B
`

const deviceNProcset = `
/scs{/DeviceN findresource setcolorspace}B
/sc{setcolor}B
/dntocmykf{pop}B
`

// emitGraphicsPreamble writes the colorization / DeviceN / indexed
// color-space construction for raster images, spec §4.7 step 3.
func (e *Emitter) emitGraphicsPreamble(ipr *record.IPR, cache *record.CacheEntry) {
	e.w.WriteString(defaultProcset)

	switch cache.Mode {
	case "1":
		e.w.WriteString(colorizationProcset)
		if ipr.ImageColorType == record.ColorProcess {
			c := ipr.ImageColor
			e.line(fmt.Sprintf("%s %s %s %s setcmykcolor",
				fixedStr(c.C), fixedStr(c.M), fixedStr(c.Y), fixedStr(c.K)))
		} else {
			e.w.WriteString(deviceNProcset)
			e.line(fmt.Sprintf("%s 1 [[%s %s %s %s]][(%s)] gendn",
				fixedStr(ipr.ImageTint), fixedStr(ipr.ImageColor.C), fixedStr(ipr.ImageColor.M),
				fixedStr(ipr.ImageColor.Y), fixedStr(ipr.ImageColor.K), ipr.ImageColor.Name))
		}
	case "L":
		if !isPureK(ipr) {
			e.emitIndexedGrayColorspace(ipr)
		}
	}
}

// isPureK reports whether the declared image color is plain black ink,
// in which case no indexed colorization is needed for an L image.
func isPureK(ipr *record.IPR) bool {
	if !ipr.HasColor {
		return true
	}
	c := ipr.ImageColor
	return c.C == 0 && c.M == 0 && c.Y == 0
}

// emitIndexedGrayColorspace builds the 0..255 /Indexed /DeviceCMYK
// color-space mapping grayscale samples through the foreground ink and,
// when QXP background detection found one, a background ink, per spec
// §4.7 step 3 formulas. It always emits the DeviceCMYK form; no
// /Indexed /DeviceN color-space is built.
func (e *Emitter) emitIndexedGrayColorspace(ipr *record.IPR) {
	fg := ipr.ImageColor
	var bg record.Color
	hasBG := ipr.QXPBackground != nil
	if hasBG {
		bg = *ipr.QXPBackground
	}

	e.line("[/Indexed /DeviceCMYK 255")
	e.line("<")
	for n := 0; n <= 255; n++ {
		c := indexedSample(fg, bg, hasBG, n)
		e.line(fmt.Sprintf("  %02x%02x%02x%02x", c[0], c[1], c[2], c[3]))
	}
	e.line(">")
	e.line("] setcolorspace")
}

// indexedSample returns one entry of the indexed color table: the
// foreground ink scaled by n/255, maxed per-channel against the
// background ink scaled by (255-n)/255.
func indexedSample(fg, bg record.Color, hasBG bool, n int) [4]byte {
	fgv := [4]float64{fg.C, fg.M, fg.Y, fg.K}
	var bgv [4]float64
	if hasBG {
		bgv = [4]float64{bg.C, bg.M, bg.Y, bg.K}
	}
	var out [4]byte
	for i := 0; i < 4; i++ {
		foreground := math.Round(float64(n) * fgv[i])
		background := math.Round(float64(255-n) * bgv[i])
		v := math.Max(foreground, background)
		if v > 255 {
			v = 255
		}
		out[i] = byte(v)
	}
	return out
}

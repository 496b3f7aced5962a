// SPDX-License-Identifier: MIT
package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/opiproc/opi/opi/record"
)

// emitV13Header re-emits the OPI 1.3 %ALD* comment block, spec §4.7
// step 1.
func (e *Emitter) emitV13Header(ipr *record.IPR) {
	e.line("%ALDImageFileName: " + quoteName(ipr.ImageFileName))
	if ipr.ImageID != "" {
		e.line("%ALDImageID: " + quoteName(ipr.ImageID))
	}
	for _, c := range ipr.ObjectComments {
		e.line("%ALDObjectComments: " + c)
	}
	e.line(fmt.Sprintf("%%ALDImageDimensions: %d %d", ipr.ImageDimensions[0], ipr.ImageDimensions[1]))
	e.line(fmt.Sprintf("%%ALDImageCropRect: %d %d %d %d",
		ipr.ImageCropRect[0], ipr.ImageCropRect[1], ipr.ImageCropRect[2], ipr.ImageCropRect[3]))
	if ipr.HasCropFixed {
		e.line(fmt.Sprintf("%%ALDImageCropFixed: %s %s %s %s",
			fixedStr(ipr.ImageCropFixed[0]), fixedStr(ipr.ImageCropFixed[1]),
			fixedStr(ipr.ImageCropFixed[2]), fixedStr(ipr.ImageCropFixed[3])))
	}
	if ipr.HasPosition {
		p := ipr.ImagePosition
		e.line(fmt.Sprintf("%%ALDImagePosition: %s %s %s %s %s %s %s %s",
			fixedStr(p[0]), fixedStr(p[1]), fixedStr(p[2]), fixedStr(p[3]),
			fixedStr(p[4]), fixedStr(p[5]), fixedStr(p[6]), fixedStr(p[7])))
	}
	if ipr.ImageResolution.Known {
		e.line(fmt.Sprintf("%%ALDImageResolution: %s %s",
			fixedStr(ipr.ImageResolution.X), fixedStr(ipr.ImageResolution.Y)))
	}
	e.line("%ALDImageColorType: " + colorTypeName(ipr.ImageColorType))
	if ipr.HasColor {
		c := ipr.ImageColor
		e.line(fmt.Sprintf("%%ALDImageColor: %s %s %s %s %s",
			fixedStr(c.C), fixedStr(c.M), fixedStr(c.Y), fixedStr(c.K), quoteName(c.Name)))
	}
	if ipr.HasTint {
		e.line("%ALDImageTint: " + fixedStr(ipr.ImageTint))
	}
	e.line("%ALDImageOverprint: " + ipr.ImageOverprint.String())
	e.line(fmt.Sprintf("%%ALDImageType: %d %d", ipr.ImageType.Channels, ipr.ImageType.BPC))
	emitContinued(e, "%ALDImageGrayMap", grayMapLines(ipr.ImageGrayMap))
	e.line("%ALDImageTransparency: " + ipr.ImageTransparency.String())
	for tag, lines := range ipr.TiffASCIITags {
		emitContinued(e, "%ALDImageAsciiTag"+tag, lines)
	}
}

// emitV20Header re-emits the OPI 2.0 %%* comment block, spec §4.7 step 2.
func (e *Emitter) emitV20Header(ipr *record.IPR) {
	e.line("%%BeginOPI: 2.0")
	e.line("%%ImageFileName: " + ipr.ImageFileName)
	if ipr.MainImage != "" {
		e.line("%%MainImage: " + ipr.MainImage)
	}
	for tag, lines := range ipr.TiffASCIITags {
		first := ""
		if len(lines) > 0 {
			first = " " + parenQuote(lines[0])
			lines = lines[1:]
		}
		e.line("%%TIFFASCIITag: " + tag + first)
		for _, l := range lines {
			e.line("%%+ " + parenQuote(l))
		}
	}
	e.line(fmt.Sprintf("%%%%ImageDimensions: %d %d", ipr.ImageDimensions[0], ipr.ImageDimensions[1]))
	e.line(fmt.Sprintf("%%%%ImageCropRect: %s %s %s %s",
		decimalStr(ipr.ImageCropFixed[0]), decimalStr(ipr.ImageCropFixed[1]),
		decimalStr(ipr.ImageCropFixed[2]), decimalStr(ipr.ImageCropFixed[3])))
	e.line("%%ImageOverprint: " + ipr.ImageOverprint.String())
	e.line("%%ImageInks: " + imageInks(ipr))
}

// imageInks derives %%ImageInks from image_color/channel count when the
// source didn't supply one verbatim, per spec §4.7 step 2.
func imageInks(ipr *record.IPR) string {
	if ipr.ImageInks != "" {
		return ipr.ImageInks
	}
	ch := ipr.ImageType.Channels
	switch {
	case ch <= 1 && ipr.ImageColorType == record.ColorProcess:
		names := []string{}
		vals := [4]float64{ipr.ImageColor.C, ipr.ImageColor.M, ipr.ImageColor.Y, ipr.ImageColor.K}
		for i, v := range vals {
			if v != 0 {
				names = append(names, fmt.Sprintf("(%s) %s tint", record.ProcessInks[i], fixedStr(v)))
			}
		}
		return fmt.Sprintf("monochrome %d %s", len(names), strings.Join(names, " "))
	case ch <= 1 && ipr.ImageColorType == record.ColorSpot:
		return fmt.Sprintf("monochrome 1 (%s) %s tint", ipr.ImageColor.Name, fixedStr(ipr.ImageTint))
	default:
		return "full_color"
	}
}

func colorTypeName(t record.ColorType) string {
	switch t {
	case record.ColorProcess:
		return "Process"
	case record.ColorSpot:
		return "Spot"
	default:
		return "Unspecified"
	}
}

func grayMapLines(m [][]int) []string {
	out := make([]string, 0, len(m))
	for _, row := range m {
		strs := make([]string, len(row))
		for i, v := range row {
			strs[i] = strconv.Itoa(v)
		}
		out = append(out, strings.Join(strs, " "))
	}
	return out
}

func emitContinued(e *Emitter, key string, lines []string) {
	if len(lines) == 0 {
		return
	}
	e.line(key + ": " + lines[0])
	for _, l := range lines[1:] {
		e.line("%%+ " + l)
	}
}

func quoteName(s string) string { return "(" + s + ")" }
func parenQuote(s string) string {
	return "(" + strings.NewReplacer("(", "\\(", ")", "\\)").Replace(s) + ")"
}

func fixedStr(f float64) string   { return strconv.FormatFloat(f, 'f', -1, 64) }
func decimalStr(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }

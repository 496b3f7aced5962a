// SPDX-License-Identifier: MIT
package comment

import (
	"strconv"
	"strings"

	"github.com/opiproc/opi/opi/record"
)

// continuationKind identifies what a "%%+" line continues.
type continuationKind int8

const (
	contNone continuationKind = iota
	contGrayMap
	contAsciiTag
	contTIFFTag
	contInks
)

// Parser interprets one OPI object's worth of directives into an IPR.
// A Parser is stateful across the lines of a single object (it tracks
// open multi-line directives) and must be reset (via New) between
// objects.
type Parser struct {
	cont      continuationKind
	contTag   string // active tag number for AsciiTag/TIFFTag continuations

	detectQXP bool
	qxp       qxpDetector
}

// New returns a Parser ready to parse the directives of one OPI
// object. detectQXPBackground mirrors config.DetectQXPBackground
// (spec §9 Open Questions / SPEC_FULL §12.1).
func New(detectQXPBackground bool) *Parser {
	return &Parser{detectQXP: detectQXPBackground}
}

// Handle applies one directive line (key + rest-of-line, as split by
// Token) to ipr. line is the full original line, which the QuarkXPress
// background detector inspects for unrecognized lines.
func (p *Parser) Handle(ipr *record.IPR, key, rest, line string) {
	if IsContinuation(key) {
		p.handleContinuation(ipr, rest)
		return
	}
	p.cont = contNone

	switch key {
	case "%%BeginOPI:":
		ipr.Versions.V20 = true
		if v, err := strconv.ParseFloat(strings.TrimSpace(rest), 64); err == nil && v == 1.3 {
			ipr.Versions.V13 = true
		}

	case "%%Distilled:":
		ipr.Distilled = true

	case "%ALDImageFileName:", "%ALDImageID:":
		ipr.Versions.V13 = true
		name := decodeFileName(rest)
		if key == "%ALDImageFileName:" {
			ipr.ImageFileName = name
		} else {
			ipr.ImageID = name
		}

	case "%%ImageFileName:":
		ipr.Versions.V20 = true
		ipr.ImageFileName = decodeFileName(rest)

	case "%%MainImage:":
		ipr.Versions.V20 = true
		ipr.MainImage = decodeFileName(rest)

	case "%ALDObjectComments:":
		ipr.ObjectComments = append(ipr.ObjectComments, strings.Fields(DecodePSString(rest))...)

	case "%ALDImageDimensions:", "%%ImageDimensions:":
		ints := Ints(rest)
		if len(ints) >= 2 {
			ipr.ImageDimensions = [2]int{ints[0], ints[1]}
		}

	case "%ALDImageCropRect:", "%%ImageCropRect:":
		floats := Floats(rest)
		if len(floats) >= 4 {
			ipr.ImageCropFixed = record.RectF{floats[0], floats[1], floats[2], floats[3]}
			ipr.HasCropFixed = true
			ipr.ImageCropRect = record.Rect{int(floats[0]), int(floats[1]), int(floats[2] + 0.5), int(floats[3] + 0.5)}
		}

	case "%ALDImageCropFixed:":
		floats := Floats(rest)
		if len(floats) >= 4 {
			ipr.ImageCropFixed = record.RectF{floats[0], floats[1], floats[2], floats[3]}
			ipr.HasCropFixed = true
		}

	case "%ALDImagePosition:":
		floats := Floats(rest)
		if len(floats) >= 8 {
			copy(ipr.ImagePosition[:], floats[:8])
			ipr.HasPosition = true
		}

	case "%ALDImageResolution:":
		floats := Floats(rest)
		if len(floats) >= 2 {
			ipr.ImageResolution = record.Resolution{X: floats[0], Y: floats[1], Known: true}
		}

	case "%ALDImageColorType:":
		switch strings.TrimSpace(rest) {
		case "Process":
			ipr.ImageColorType = record.ColorProcess
		case "Spot":
			ipr.ImageColorType = record.ColorSpot
		default:
			ipr.ImageColorType = record.ColorUnspecified
		}
		if ipr.ImageColorType == record.ColorProcess && ipr.HasColor {
			isProcess := false
			for _, n := range record.ProcessInks {
				if ipr.ImageColor.Name == n {
					isProcess = true
				}
			}
			if !isProcess {
				ipr.ImageColor.InferProcessName()
			}
		}

	case "%ALDImageColor:":
		floats := Floats(rest)
		if len(floats) >= 4 {
			c := record.Color{C: floats[0], M: floats[1], Y: floats[2], K: floats[3]}
			if i := strings.Index(rest, "("); i >= 0 {
				c.Name = DecodePSString(rest[i:])
			}
			ipr.ImageColor = c
			ipr.HasColor = true
		}

	case "%ALDImageTint:":
		if v, err := strconv.ParseFloat(strings.TrimSpace(rest), 64); err == nil {
			ipr.ImageTint = v
			ipr.HasTint = true
		}

	case "%ALDImageOverprint:", "%%ImageOverprint:":
		ipr.ImageOverprint = parseBoolTri(rest)

	case "%ALDImageType:":
		ints := Ints(rest)
		if len(ints) >= 2 {
			ipr.ImageType = record.ImageType{Channels: ints[0], BPC: ints[1]}
		}

	case "%ALDImageGrayMap:":
		p.cont = contGrayMap
		if row := Ints(rest); len(row) > 0 {
			ipr.ImageGrayMap = append(ipr.ImageGrayMap, row)
		}

	case "%ALDImageTransparency:":
		ipr.ImageTransparency = parseBoolTri(rest)

	case "%%TIFFASCIITag:":
		fields := strings.SplitN(strings.TrimSpace(rest), " ", 2)
		if len(fields) == 2 {
			tag := fields[0]
			p.cont = contTIFFTag
			p.contTag = tag
			ipr.TiffASCIITags[tag] = append(ipr.TiffASCIITags[tag], ParenStrings(fields[1])...)
		}

	case "%%ImageInks:":
		ipr.ImageInks = DecodePSString(strings.TrimSpace(rest))

	default:
		if strings.HasPrefix(key, "%ALDImageAsciiTag") && strings.HasSuffix(key, ":") {
			tag := strings.TrimSuffix(strings.TrimPrefix(key, "%ALDImageAsciiTag"), ":")
			p.cont = contAsciiTag
			p.contTag = tag
			ipr.TiffASCIITags[tag] = append(ipr.TiffASCIITags[tag], DecodePSString(strings.TrimSpace(rest)))
		} else if p.detectQXP {
			p.qxp.observe(line, ipr)
		}
	}
}

func (p *Parser) handleContinuation(ipr *record.IPR, rest string) {
	switch p.cont {
	case contGrayMap:
		if row := Ints(rest); len(row) > 0 {
			ipr.ImageGrayMap = append(ipr.ImageGrayMap, row)
		}
	case contAsciiTag, contTIFFTag:
		if p.cont == contAsciiTag {
			ipr.TiffASCIITags[p.contTag] = append(ipr.TiffASCIITags[p.contTag], DecodePSString(strings.TrimSpace(rest)))
		} else {
			ipr.TiffASCIITags[p.contTag] = append(ipr.TiffASCIITags[p.contTag], ParenStrings(rest)...)
		}
	}
}

func parseBoolTri(rest string) record.TriState {
	switch strings.TrimSpace(strings.ToLower(rest)) {
	case "true":
		return record.True
	case "false":
		return record.False
	default:
		return record.Unset
	}
}

// decodeFileName applies the PostScript-string decode policy of spec
// §4.3 to an image file name argument, which may or may not be
// parenthesised.
func decodeFileName(rest string) string {
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "(") {
		return DecodePSString(rest)
	}
	return invalidCh.ReplaceAllString(hexTagRE.ReplaceAllString(rest, "?"), "?")
}

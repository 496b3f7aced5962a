// SPDX-License-Identifier: MIT
package imageproc

import (
	"encoding/binary"
	"image"

	"github.com/pkg/errors"
)

// PSD color mode IDs (Adobe Photoshop file format spec).
const (
	psdModeGrayscale = 1
	psdModeRGB       = 3
	psdModeCMYK      = 4
)

// decodePSD decodes the flattened composite image of a PSD file: the
// file header, color mode data, image resources, and layer/mask
// sections are skipped, and only the final "merged image data" section
// is read. RLE (PackBits) and raw encodings are supported; PSD's own
// ZIP encodings are not (spec treats PSD as in scope but the pack and
// golang.org/x/image carry no PSD decoder at all, so this is a
// from-scratch stdlib reader — see DESIGN.md).
func decodePSD(data []byte) (*Raster, error) {
	if len(data) < 26 || string(data[0:4]) != "8BPS" {
		return nil, errors.New("psd: bad signature")
	}
	channels := int(binary.BigEndian.Uint16(data[12:14]))
	height := int(binary.BigEndian.Uint32(data[14:18]))
	width := int(binary.BigEndian.Uint32(data[18:22]))
	depth := int(binary.BigEndian.Uint16(data[22:24]))
	mode := int(binary.BigEndian.Uint16(data[24:26]))

	if depth != 8 {
		return nil, errors.Errorf("psd: unsupported bit depth %d", depth)
	}

	p := 26
	// Color mode data section.
	if p+4 > len(data) {
		return nil, errors.New("psd: truncated header")
	}
	colorModeLen := int(binary.BigEndian.Uint32(data[p : p+4]))
	p += 4 + colorModeLen

	// Image resources section.
	if p+4 > len(data) {
		return nil, errors.New("psd: truncated resources")
	}
	resLen := int(binary.BigEndian.Uint32(data[p : p+4]))
	p += 4 + resLen

	// Layer and mask information section.
	if p+4 > len(data) {
		return nil, errors.New("psd: truncated layers")
	}
	layerLen := int(binary.BigEndian.Uint32(data[p : p+4]))
	p += 4 + layerLen

	if p+2 > len(data) {
		return nil, errors.New("psd: truncated image data")
	}
	compression := int(binary.BigEndian.Uint16(data[p : p+2]))
	p += 2

	planeSize := width * height
	planes := make([][]byte, channels)

	if compression == 1 {
		// RLE: per-row byte counts for (channels*height) scanlines,
		// stored big-endian uint16, one table per channel.
		lineCounts := make([]int, channels*height)
		for i := range lineCounts {
			if p+2 > len(data) {
				return nil, errors.New("psd: truncated RLE line table")
			}
			lineCounts[i] = int(binary.BigEndian.Uint16(data[p : p+2]))
			p += 2
		}
		idx := 0
		for c := 0; c < channels; c++ {
			plane := make([]byte, 0, planeSize)
			for y := 0; y < height; y++ {
				n := lineCounts[idx]
				idx++
				if p+n > len(data) {
					return nil, errors.New("psd: truncated RLE data")
				}
				plane = append(plane, unpackBits(data[p:p+n])...)
				p += n
			}
			if len(plane) < planeSize {
				return nil, errors.New("psd: short decoded RLE plane")
			}
			planes[c] = plane[:planeSize]
		}
	} else if compression == 0 {
		for c := 0; c < channels; c++ {
			if p+planeSize > len(data) {
				return nil, errors.New("psd: truncated raw plane")
			}
			planes[c] = data[p : p+planeSize]
			p += planeSize
		}
	} else {
		return nil, errors.Errorf("psd: unsupported compression %d", compression)
	}

	switch mode {
	case psdModeGrayscale:
		img := image.NewGray(image.Rect(0, 0, width, height))
		copy(img.Pix, planes[0])
		return &Raster{Img: img, M: "L"}, nil
	case psdModeRGB:
		if len(planes) < 3 {
			return nil, errors.New("psd: missing RGB planes")
		}
		img := image.NewNRGBA(image.Rect(0, 0, width, height))
		for i := 0; i < planeSize; i++ {
			img.Pix[i*4+0] = planes[0][i]
			img.Pix[i*4+1] = planes[1][i]
			img.Pix[i*4+2] = planes[2][i]
			img.Pix[i*4+3] = 0xFF
		}
		return &Raster{Img: img, M: "RGB"}, nil
	case psdModeCMYK:
		if len(planes) < 4 {
			return nil, errors.New("psd: missing CMYK planes")
		}
		img := image.NewCMYK(image.Rect(0, 0, width, height))
		for i := 0; i < planeSize; i++ {
			// PSD stores CMYK inverted (0 = full ink) relative to
			// image/color.CMYK's convention (255 = full ink).
			img.Pix[i*4+0] = 255 - planes[0][i]
			img.Pix[i*4+1] = 255 - planes[1][i]
			img.Pix[i*4+2] = 255 - planes[2][i]
			img.Pix[i*4+3] = 255 - planes[3][i]
		}
		return &Raster{Img: img, M: "CMYK"}, nil
	default:
		return nil, errors.Errorf("psd: unsupported color mode %d", mode)
	}
}

// SPDX-License-Identifier: MIT
package imageproc

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"

	"github.com/pkg/errors"
	ximgtiff "golang.org/x/image/tiff"

	"github.com/opiproc/opi/opi/record"
)

// TIFF tag numbers, per the baseline spec (grounded on the IFD layout
// also used by mdouchement/tiff in the retrieval pack).
const (
	tImageWidth                = 256
	tImageLength               = 257
	tBitsPerSample             = 258
	tCompression               = 259
	tPhotometricInterpretation = 262
	tStripOffsets              = 273
	tSamplesPerPixel           = 277
	tRowsPerStrip              = 278
	tStripByteCounts           = 279
	tXResolution               = 282
	tYResolution               = 283
	tResolutionUnit            = 296
)

const (
	photoWhiteIsZero = 0
	photoBlackIsZero = 1
	photoRGB         = 2
	photoSeparated   = 5 // CMYK
)

// decodeTIFF decodes a baseline uncompressed or PackBits TIFF. CMYK
// TIFFs (photometric interpretation 5) are decoded by hand because
// golang.org/x/image/tiff does not support the Separated photometric
// interpretation; everything else is delegated to x/image/tiff, which
// covers LZW/Deflate-compressed Gray/RGB/Palette TIFFs.
func decodeTIFF(data []byte) (*Raster, error) {
	var order binary.ByteOrder
	switch {
	case bytes.HasPrefix(data, tiffLE):
		order = binary.LittleEndian
	case bytes.HasPrefix(data, tiffBE):
		order = binary.BigEndian
	default:
		return nil, errors.New("not a tiff file")
	}

	ifdOff := order.Uint32(data[4:8])
	tags, err := readIFD(data, order, ifdOff)
	if err != nil {
		return nil, err
	}

	photo, _ := tags.int(tPhotometricInterpretation)
	spp, ok := tags.int(tSamplesPerPixel)
	if !ok {
		spp = 1
	}
	dpi := readDPI(tags)

	if photo != photoSeparated || spp < 4 {
		img, err := ximgtiff.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(err, "x/image/tiff decode")
		}
		return wrapStdImage(img, dpi)
	}

	w, _ := tags.int(tImageWidth)
	h, _ := tags.int(tImageLength)
	compression, _ := tags.int(tCompression)
	stripOffsets := tags.ints(tStripOffsets)
	stripCounts := tags.ints(tStripByteCounts)
	rowsPerStrip, ok := tags.int(tRowsPerStrip)
	if !ok || rowsPerStrip <= 0 {
		rowsPerStrip = h
	}

	img := image.NewCMYK(image.Rect(0, 0, w, h))
	row := 0
	for i, off := range stripOffsets {
		count := 0
		if i < len(stripCounts) {
			count = stripCounts[i]
		}
		if off+count > len(data) {
			return nil, errors.New("tiff: strip out of range")
		}
		raw := data[off : off+count]
		if compression == 32773 {
			raw = unpackBits(raw)
		} else if compression != 1 {
			return nil, errors.Errorf("tiff: unsupported CMYK compression %d", compression)
		}
		rows := rowsPerStrip
		if row+rows > h {
			rows = h - row
		}
		need := rows * w * 4
		if len(raw) < need {
			return nil, errors.New("tiff: short strip data")
		}
		copy(img.Pix[row*img.Stride:row*img.Stride+need], raw[:need])
		row += rows
	}

	return &Raster{Img: img, M: "CMYK", DPI: dpi}, nil
}

func wrapStdImage(img image.Image, dpi record.Resolution) (*Raster, error) {
	switch img.(type) {
	case *image.Gray:
		return &Raster{Img: img, M: "L", DPI: dpi}, nil
	case *image.Gray16:
		return &Raster{Img: img, M: "L", DPI: dpi}, nil
	case *image.CMYK:
		return &Raster{Img: img, M: "CMYK", DPI: dpi}, nil
	default:
		// RGB, Paletted, NRGBA, etc. all classify as RGB for our
		// purposes (spec §3 restricts modes to {1,L,RGB,CMYK}).
		b := img.Bounds()
		out := image.NewNRGBA(b)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				out.Set(x, y, color.NRGBAModel.Convert(img.At(x, y)))
			}
		}
		return &Raster{Img: out, M: "RGB", DPI: dpi}, nil
	}
}

// unpackBits performs TIFF/PackBits decompression.
func unpackBits(src []byte) []byte {
	var out bytes.Buffer
	for i := 0; i < len(src); {
		n := int(int8(src[i]))
		i++
		switch {
		case n >= 0:
			end := i + n + 1
			if end > len(src) {
				end = len(src)
			}
			out.Write(src[i:end])
			i = end
		case n != -128:
			if i >= len(src) {
				break
			}
			b := src[i]
			i++
			for j := 0; j < 1-n; j++ {
				out.WriteByte(b)
			}
		}
	}
	return out.Bytes()
}

func readDPI(tags ifd) record.Resolution {
	x, okx := tags.rational(tXResolution)
	y, oky := tags.rational(tYResolution)
	if !okx || !oky {
		return record.Resolution{}
	}
	return record.Resolution{X: x, Y: y, Known: true}
}

type ifdEntry struct {
	tag, typ uint16
	count    uint32
	valOff   [4]byte
}

type ifd struct {
	data    []byte
	order   binary.ByteOrder
	entries []ifdEntry
}

func readIFD(data []byte, order binary.ByteOrder, off uint32) (ifd, error) {
	if int(off)+2 > len(data) {
		return ifd{}, errors.New("tiff: bad ifd offset")
	}
	n := int(order.Uint16(data[off : off+2]))
	out := ifd{data: data, order: order}
	p := int(off) + 2
	for i := 0; i < n; i++ {
		if p+12 > len(data) {
			return ifd{}, errors.New("tiff: truncated ifd")
		}
		var e ifdEntry
		e.tag = order.Uint16(data[p : p+2])
		e.typ = order.Uint16(data[p+2 : p+4])
		e.count = order.Uint32(data[p+4 : p+8])
		copy(e.valOff[:], data[p+8:p+12])
		out.entries = append(out.entries, e)
		p += 12
	}
	return out, nil
}

func (f ifd) find(tag uint16) (ifdEntry, bool) {
	for _, e := range f.entries {
		if e.tag == tag {
			return e, true
		}
	}
	return ifdEntry{}, false
}

func (f ifd) int(tag uint16) (int, bool) {
	e, ok := f.find(tag)
	if !ok {
		return 0, false
	}
	switch e.typ {
	case 3: // SHORT
		return int(f.order.Uint16(e.valOff[:2])), true
	case 4: // LONG
		return int(f.order.Uint32(e.valOff[:4])), true
	default:
		return 0, false
	}
}

func (f ifd) ints(tag uint16) []int {
	e, ok := f.find(tag)
	if !ok {
		return nil
	}
	var out []int
	elemSize := 2
	if e.typ == 4 {
		elemSize = 4
	}
	total := int(e.count) * elemSize
	var src []byte
	if total <= 4 {
		src = e.valOff[:total]
	} else {
		off := f.order.Uint32(e.valOff[:4])
		if int(off)+total > len(f.data) {
			return nil
		}
		src = f.data[off : int(off)+total]
	}
	for i := 0; i < int(e.count); i++ {
		if e.typ == 4 {
			out = append(out, int(f.order.Uint32(src[i*4:i*4+4])))
		} else {
			out = append(out, int(f.order.Uint16(src[i*2:i*2+2])))
		}
	}
	return out
}

func (f ifd) rational(tag uint16) (float64, bool) {
	e, ok := f.find(tag)
	if !ok || e.typ != 5 {
		return 0, false
	}
	off := f.order.Uint32(e.valOff[:4])
	if int(off)+8 > len(f.data) {
		return 0, false
	}
	num := f.order.Uint32(f.data[off : off+4])
	den := f.order.Uint32(f.data[off+4 : off+8])
	if den == 0 {
		return 0, false
	}
	return float64(num) / float64(den), true
}

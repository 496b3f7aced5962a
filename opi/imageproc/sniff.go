// SPDX-License-Identifier: MIT
// Package imageproc implements the Image Processor of spec §4.5: format
// sniffing, decode, mode classification, CMYK-gray detection, crop,
// resample, and the ICC transform hand-off.
package imageproc

import "bytes"

// Format is a sniffed image container format.
type Format int8

const (
	FormatUnknown Format = iota
	FormatJPEG
	FormatPNG
	FormatPSD
	FormatTIFF
	FormatEPSFBinary
	FormatEPSFASCII
)

func (f Format) String() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	case FormatPNG:
		return "png"
	case FormatPSD:
		return "psd"
	case FormatTIFF:
		return "tiff"
	case FormatEPSFBinary, FormatEPSFASCII:
		return "epsf"
	default:
		return "unknown"
	}
}

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}
	psdMagic  = []byte{'8', 'B', 'P', 'S'}
	tiffLE    = []byte{'I', 'I', 0x2A, 0x00}
	tiffBE    = []byte{'M', 'M', 0x00, 0x2A}
	epsfBin   = []byte{0xC5, 0xD0, 0xD3, 0xC6}
)

// Sniff classifies the first bytes of a file, matching spec §4.5 step 1.
func Sniff(header []byte) Format {
	switch {
	case bytes.HasPrefix(header, jpegMagic):
		return FormatJPEG
	case bytes.HasPrefix(header, pngMagic):
		return FormatPNG
	case bytes.HasPrefix(header, psdMagic):
		return FormatPSD
	case bytes.HasPrefix(header, tiffLE), bytes.HasPrefix(header, tiffBE):
		return FormatTIFF
	case bytes.HasPrefix(header, epsfBin):
		return FormatEPSFBinary
	case bytes.HasPrefix(header, []byte("%!")):
		return FormatEPSFASCII
	default:
		return FormatUnknown
	}
}

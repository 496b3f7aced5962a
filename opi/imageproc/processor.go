// SPDX-License-Identifier: MIT
package imageproc

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/opiproc/opi/opi/config"
	"github.com/opiproc/opi/opi/geometry"
	"github.com/opiproc/opi/opi/opierr"
	"github.com/opiproc/opi/opi/record"
)

// Open sniffs and decodes the hi-res image payload, returning the
// generic Image value (a *Raster or an *Epsf) and its opened geometry,
// per spec §4.5 step 1-3.
func Open(data []byte, cfg *config.Config) (Image, geometry.Opened, error) {
	head := data
	if len(head) > 64 {
		head = head[:64]
	}
	format := Sniff(head)
	if cfg.DisabledFormats[format.String()] {
		return nil, geometry.Opened{}, opierr.New(opierr.UnsupportedImageFormat, "imageproc.Open", "", nil)
	}

	switch format {
	case FormatJPEG:
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, geometry.Opened{}, opierr.New(opierr.IOError, "imageproc.Open", "", err)
		}
		return finishRaster(img, record.Resolution{})
	case FormatPNG:
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, geometry.Opened{}, opierr.New(opierr.IOError, "imageproc.Open", "", err)
		}
		return finishRaster(img, record.Resolution{})
	case FormatTIFF:
		r, err := decodeTIFF(data)
		if err != nil {
			return nil, geometry.Opened{}, opierr.New(opierr.IOError, "imageproc.Open", "", err)
		}
		return finishRaster(r.Img, r.DPI)
	case FormatPSD:
		r, err := decodePSD(data)
		if err != nil {
			return nil, geometry.Opened{}, opierr.New(opierr.IOError, "imageproc.Open", "", err)
		}
		return finishRaster(r.Img, r.DPI)
	case FormatEPSFBinary, FormatEPSFASCII:
		e, err := decodeEPSF(data, format == FormatEPSFBinary)
		if err != nil {
			return nil, geometry.Opened{}, opierr.New(opierr.IOError, "imageproc.Open", "", err)
		}
		return e, geometry.Opened{Mode: "EPSF"}, nil
	default:
		return nil, geometry.Opened{}, opierr.New(opierr.UnsupportedImageFormat, "imageproc.Open", "", nil)
	}
}

func finishRaster(img image.Image, dpi record.Resolution) (Image, geometry.Opened, error) {
	r, err := wrapStdImage(img, dpi)
	if err != nil {
		return nil, geometry.Opened{}, err
	}
	b := r.Img.Bounds()
	opened := geometry.Opened{
		Mode:        r.M,
		Width:       b.Dx(),
		Height:      b.Dy(),
		EmbeddedDPI: dpi,
	}
	return r, opened, nil
}

// Process runs the full image-processor pipeline of spec §4.5 over an
// already-opened image: CMYK-gray detection, crop, downsample, and
// cache-entry assembly. ipr must already carry the Geometry Engine's
// derived fields (geometry.Compute having been called).
func Process(img Image, ipr *record.IPR, cfg *config.Config) (*record.CacheEntry, error) {
	if img.IsEPSF() {
		e := img.(*Epsf)
		return &record.CacheEntry{
			Mode:   "EPSF",
			EPSF:   e.Payload,
			Width:  int(e.W),
			Height: int(e.H),
		}, nil
	}

	r := img.(*Raster)

	if r.M == "CMYK" && cfg.DetectCMYKGrayImages {
		if cmyk, ok := r.Img.(*image.CMYK); ok && detectCMYKGray(cmyk) {
			if cfg.CMYKGrayStripCMY || cfg.ConvertGrayImages {
				r = &Raster{Img: stripCMYToGray(cmyk), M: "L", DPI: r.DPI}
				ipr.Mode = "L"
			}
		}
	}

	if shouldCrop(r.Img.Bounds(), ipr.RealCropRect, cfg.ImageCropThreshold) {
		var rect record.Rect
		r, rect = cropRaster(r, ipr.RealCropRect)
		ipr.RealCropRect = rect
	}

	dw, dh := ipr.DownsampleDimensions[0], ipr.DownsampleDimensions[1]
	if dw > 0 && dh > 0 {
		class := classForMode(r.M, cfg)
		r = downsample(r, dw, dh, class.DownsampleFilterKind)
	}

	pix, w, h, err := extractPix(r)
	if err != nil {
		return nil, opierr.New(opierr.DownsampleFailure, "imageproc.Process", "", err)
	}

	return &record.CacheEntry{
		Mode:   r.M,
		Pix:    pix,
		Width:  w,
		Height: h,
	}, nil
}

func classForMode(mode string, cfg *config.Config) config.ImageClassConfig {
	switch mode {
	case "1":
		return cfg.Mono
	case "L":
		return cfg.Gray
	default:
		return cfg.Color
	}
}

// extractPix flattens a decoded raster into the channel-interleaved byte
// layout record.CacheEntry expects.
func extractPix(r *Raster) ([]byte, int, int, error) {
	b := r.Img.Bounds()
	w, h := b.Dx(), b.Dy()
	switch img := r.Img.(type) {
	case *image.Gray:
		out := make([]byte, 0, w*h)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			i := img.PixOffset(b.Min.X, y)
			out = append(out, img.Pix[i:i+w]...)
		}
		return out, w, h, nil
	case *image.CMYK:
		out := make([]byte, 0, w*h*4)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			i := img.PixOffset(b.Min.X, y)
			out = append(out, img.Pix[i:i+w*4]...)
		}
		return out, w, h, nil
	default:
		out := make([]byte, 0, w*h*3)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				cr, cg, cb, _ := img.At(x, y).RGBA()
				out = append(out, byte(cr>>8), byte(cg>>8), byte(cb>>8))
			}
		}
		return out, w, h, nil
	}
}

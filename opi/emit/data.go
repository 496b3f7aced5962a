// SPDX-License-Identifier: MIT
package emit

import (
	"encoding/hex"
	"fmt"

	"github.com/opiproc/opi/opi/config"
	"github.com/opiproc/opi/opi/record"
)

// emitImageData writes the §4.7 step 5 image data block: the dict/
// colorimage header appropriate to cache.Mode, then the bracketed
// %%BeginData/%%EndData payload in binary or ASCII-hex form.
func (e *Emitter) emitImageData(ipr *record.IPR, cache *record.CacheEntry) {
	w, h := cache.Width, cache.Height
	bpc, ncomp := componentInfo(cache.Mode)

	e.line(fmt.Sprintf("/rdstr %d string def", rowBytes(w, bpc, ncomp)))
	read := "readstring"
	if e.cfg.DataMode == config.DataASCIIHex {
		read = "readhexstring"
	}
	e.line("/imagedata{currentfile rdstr " + read + " pop}B")
	e.line(fmt.Sprintf("[%d 0 0 %d 0 %d] concat", w, -h, h))

	switch cache.Mode {
	case "1", "L":
		e.line(fmt.Sprintf("%d %d %d [%d 0 0 %d 0 %d] {imagedata} image", w, h, bpc, w, -h, h))
	default:
		e.line(fmt.Sprintf("%d %d %d [%d 0 0 %d 0 %d] {imagedata} false %d colorimage", w, h, bpc, w, -h, h, ncomp))
	}

	total := len(cache.Pix)
	enc := "Binary"
	if e.cfg.DataMode == config.DataASCIIHex {
		enc = "Hex"
		total *= 2
	}
	e.line(fmt.Sprintf("%%%%BeginData: %d %s Bytes", total, enc))
	if e.cfg.DataMode == config.DataASCIIHex {
		e.writeHexLines(cache.Pix, w*ncomp)
	} else {
		e.w.Write(cache.Pix)
		e.w.WriteString(e.cfg.Newline)
	}
	e.line("%%EndData")
}

func (e *Emitter) writeHexLines(pix []byte, lineBytes int) {
	if lineBytes <= 0 {
		lineBytes = len(pix)
	}
	buf := make([]byte, lineBytes*2)
	for off := 0; off < len(pix); off += lineBytes {
		end := off + lineBytes
		if end > len(pix) {
			end = len(pix)
		}
		n := hex.Encode(buf, pix[off:end])
		e.w.Write(buf[:n])
		e.w.WriteString(e.cfg.Newline)
	}
}

func componentInfo(mode string) (bpc, ncomp int) {
	switch mode {
	case "1":
		return 1, 1
	case "L":
		return 8, 1
	case "RGB":
		return 8, 3
	case "CMYK":
		return 8, 4
	default:
		return 8, 1
	}
}

func rowBytes(w, bpc, ncomp int) int {
	bits := w * bpc * ncomp
	return (bits + 7) / 8
}

// emitEPSFData brackets an EPSF payload with %%BeginDocument/
// %%EndDocument, spec §4.7 step 5.
func (e *Emitter) emitEPSFData(ipr *record.IPR, cache *record.CacheEntry) {
	e.line("%%BeginDocument: (" + ipr.ImageFileName + ")")
	e.w.Write(cache.EPSF)
	e.w.WriteString(e.cfg.Newline)
	e.line("%%EndDocument")
}

// SPDX-License-Identifier: MIT
// Package emit implements the PostScript Emitter of spec §4.7: it
// re-serializes a parsed and conditioned Image Placement Record back
// into OPI comments, graphics-state preamble, and an image data block.
package emit

import (
	"bufio"
	"io"

	"github.com/opiproc/opi/opi/config"
	"github.com/opiproc/opi/opi/record"
)

// Emitter writes substituted OPI objects to an underlying writer.
type Emitter struct {
	w   *bufio.Writer
	cfg *config.Config
}

// New wraps w for OPI object emission using cfg's version/format flags.
func New(w io.Writer, cfg *config.Config) *Emitter {
	return &Emitter{w: bufio.NewWriter(w), cfg: cfg}
}

// Flush flushes any buffered output.
func (e *Emitter) Flush() error { return e.w.Flush() }

func (e *Emitter) line(s string) {
	e.w.WriteString(s)
	e.w.WriteString(e.cfg.Newline)
}

// EmitObject writes one fully-substituted OPI object: the §4.7 step 1-6
// sequence for a raster cache entry, or the EPSF variant when cache
// holds an opaque payload.
func (e *Emitter) EmitObject(ipr *record.IPR, cache *record.CacheEntry) error {
	if ipr.Versions.V13 && e.cfg.EmitV13 {
		e.emitV13Header(ipr)
		e.line("%%BeginObject: image")
	}
	if ipr.Versions.V20 && e.cfg.EmitV20 {
		e.emitV20Header(ipr)
	}

	if cache.Mode == "EPSF" {
		e.emitEPSFMatrix(ipr)
		e.emitEPSFData(ipr, cache)
	} else {
		e.emitGraphicsPreamble(ipr, cache)
		e.emitMatrix(ipr, cache)
		e.emitImageData(ipr, cache)
	}

	e.line("%%EndIncludedImage")
	if ipr.Versions.V20 && e.cfg.EmitV20 {
		e.line("%%EndOPI")
	}
	if ipr.Versions.V13 && e.cfg.EmitV13 {
		e.line("%%EndObject")
	}
	return e.w.Flush()
}

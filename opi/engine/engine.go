// SPDX-License-Identifier: MIT
// Package engine orchestrates the Stream Lexer, OPI State Machine,
// Comment Parser, Geometry Engine, Image Processor, Image Cache, and
// PostScript Emitter into the single streaming pass of spec §5.
package engine

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ausocean/utils/logging"

	"github.com/opiproc/opi/opi/cache"
	"github.com/opiproc/opi/opi/comment"
	"github.com/opiproc/opi/opi/config"
	"github.com/opiproc/opi/opi/emit"
	"github.com/opiproc/opi/opi/geometry"
	"github.com/opiproc/opi/opi/icc"
	"github.com/opiproc/opi/opi/imageproc"
	"github.com/opiproc/opi/opi/lexer"
	"github.com/opiproc/opi/opi/opierr"
	"github.com/opiproc/opi/opi/record"
	"github.com/opiproc/opi/opi/state"
)

// Engine is the top-level substitution pipeline. It carries a
// logging.Logger and a Config the way revid.Revid carries both, and its
// Run method is the single long-running task spec §5 describes.
type Engine struct {
	cfg *config.Config
	log logging.Logger
	mem *cache.Memory
	xf  icc.Transformer

	errorCount int
	abortedAny bool
}

// New builds an Engine from cfg. xf may be nil: with no ICC transformer
// wired, colour conversion is elided entirely and pixels pass through
// unmodified (acceptable for a pipeline that only needs substitution,
// not colour management).
func New(cfg *config.Config, log logging.Logger, xf icc.Transformer) *Engine {
	budget := int64(cfg.CacheMegs * 1024 * 1024)
	return &Engine{
		cfg: cfg,
		log: log,
		mem: cache.NewMemory(budget, log),
		xf:  xf,
	}
}

// Run streams in to out, substituting every OPI object it finds. It
// returns the first hard I/O error encountered on the input/output
// streams themselves (as opposed to a per-image opierr.Error, which is
// handled internally). truncate, if non-nil, is invoked at the end when
// at least one abort-class error fired and out is backed by a real
// file, per spec §7.
func (e *Engine) Run(ctx context.Context, in io.Reader, out io.Writer, truncate func() error) error {
	lx := lexer.New(in)
	sm := state.New()

	var ipr *record.IPR
	var parser *comment.Parser

	flushObject := func() error {
		entry, err := e.substitute(ctx, ipr)
		if err != nil {
			e.recordError(err)
			if oe, ok := err.(*opierr.Error); ok && oe.Kind == opierr.UnsupportedImageFormat {
				// Spec §7: pass the buffered graphics-state region
				// through unchanged rather than substitute anything.
				_, werr := out.Write(ipr.GfxState)
				ipr, parser = nil, nil
				sm.Reset()
				return werr
			}
			entry = e.placeholderFor(err, ipr)
		}
		em := emit.New(out, e.cfg)
		werr := em.EmitObject(ipr, entry)
		ipr = nil
		parser = nil
		sm.Reset()
		return werr
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := lx.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		text := string(line.Bytes)
		key, rest := comment.Token(text)

		switch {
		case sm.Mode() == state.Discard:
			if isEndMarker(key) {
				if sm.EndObject() {
					if werr := flushObject(); werr != nil {
						return werr
					}
				}
			}
			continue

		case ipr != nil:
			if isBeginImageMarker(key) {
				sm.BeginObject("image", true)
				continue
			}
			if isEndMarker(key) {
				if sm.EndObject() {
					if werr := flushObject(); werr != nil {
						return werr
					}
					continue
				}
				continue
			}
			parser.Handle(ipr, key, rest, text)
			if !comment.IsContinuation(key) && !isDirectiveKey(key) {
				ipr.GfxState = append(ipr.GfxState, line.Full()...)
			}
			continue

		case key == "%%BeginOPI:" || key == "%ALDImageFileName:":
			ipr = record.NewIPR()
			parser = comment.New(e.cfg.DetectQXPBackground)
			sm.BeginOPI()
			parser.Handle(ipr, key, rest, text)
			continue

		default:
			if key == "%%BeginResource:" || key == "%%BeginProcSet:" || key == "%%BeginFont:" {
				if name, ok := state.IsBlockBegin(rest); ok {
					sm.PushBlock(name)
				}
			} else if key == "%%EndResource" || key == "%%EndProcSet" || key == "%%EndFont" {
				sm.PopBlock(rest)
			}
			if _, err := out.Write(line.Full()); err != nil {
				return err
			}
		}
	}

	if e.log != nil {
		e.log.Log(logging.Info, strconv.Itoa(e.errorCount)+" ERROR(s) occurred")
	}
	if e.abortedAny && truncate != nil {
		return truncate()
	}
	return nil
}

func isBeginImageMarker(key string) bool {
	return key == "%%BeginObject:" || key == "%%BeginIncludedImage:"
}

func isEndMarker(key string) bool {
	switch key {
	case "%%EndObject", "%%EndIncludedImage", "%%EndOPI":
		return true
	default:
		return false
	}
}

// isDirectiveKey reports whether key is a %%-style or %ALD comment
// keyword (rather than arbitrary buffered graphics-state PostScript), so the
// engine knows whether to also append the raw line to ipr.GfxState for
// byte-faithful replay when substitution can't proceed.
func isDirectiveKey(key string) bool {
	switch {
	case key == "":
		return false
	case key[0] != '%':
		return false
	default:
		return len(key) > 1 && (key[1] == '%' || hasALDPrefix(key))
	}
}

func hasALDPrefix(key string) bool {
	return len(key) >= 4 && key[:4] == "%ALD"
}

// recordError classifies err and updates the engine's error counter and
// abort flag per spec §7.
func (e *Engine) recordError(err error) {
	oe, ok := err.(*opierr.Error)
	if !ok {
		e.errorCount++
		e.abortedAny = true
		return
	}
	if oe.Kind == opierr.UnsupportedImageFormat {
		return
	}
	if oe.Abortable(e.cfg.AbortOnError, e.cfg.AbortOnFileNotFound) {
		e.errorCount++
		e.abortedAny = true
	}
	if e.log != nil {
		e.log.Log(logging.Error, "image substitution failed", "kind", oe.Kind.String(), "file", oe.File, "trace", opierr.Trace(err))
	}
}

// substitute resolves ipr.ImageFileName, opens/conditions the image,
// runs it through the (possibly nil) ICC transformer, and returns the
// cache entry to emit, per spec §4.5/§4.6.
func (e *Engine) substitute(ctx context.Context, ipr *record.IPR) (*record.CacheEntry, error) {
	path := filepath.Join(e.cfg.HiresPath, ipr.ImageFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, opierr.New(opierr.ImageNotFound, "engine.substitute", path, err)
	}

	img, opened, err := imageproc.Open(data, e.cfg)
	if err != nil {
		return nil, err
	}

	ipr.Mode = opened.Mode
	ipr.PixelSize = [2]int{opened.Width, opened.Height}
	ipr.EmbeddedDPI = opened.EmbeddedDPI
	geometry.Compute(ipr, opened, e.cfg)

	key := cache.NewKey(path, sizeModFor(ipr), "")
	if e.cfg.UseCache {
		if hit, ok := e.mem.Get(key.LookupOrder()); ok {
			return hit, nil
		}
	}

	entry, err := imageproc.Process(img, ipr, e.cfg)
	if err != nil {
		return nil, err
	}
	entry.Path = path

	if e.xf != nil && entry.Mode != "EPSF" {
		converted, cerr := e.applyICC(ctx, entry, ipr)
		if cerr != nil {
			return nil, opierr.New(opierr.ColourTransformFailure, "engine.substitute", path, cerr)
		}
		entry.Pix = converted
	}

	if e.cfg.UseCache {
		e.mem.Put(key, entry)
	}
	return entry, nil
}

// applyICC runs the conditioned pixels through the wired transformer
// using the working/proof profiles configured for entry's mode, eliding
// stages whose source and destination profiles are the same (spec
// §4.5 step 6, §12.2).
func (e *Engine) applyICC(ctx context.Context, entry *record.CacheEntry, ipr *record.IPR) ([]byte, error) {
	working := e.cfg.Profiles.WorkingCMYK
	dst := e.cfg.Profiles.Out
	switch entry.Mode {
	case "L":
		working, dst = e.cfg.Profiles.WorkingGray, e.cfg.Profiles.OutGray
	case "RGB":
		working, dst = e.cfg.Profiles.WorkingRGB, e.cfg.Profiles.OutRGBGray
	}

	req := icc.Request{
		Pix: entry.Pix, Mode: entry.Mode, Width: entry.Width, Height: entry.Height,
		Src: icc.Profile{Path: working}, Dst: icc.Profile{Path: dst},
		Intent: e.cfg.Intent, PreserveBlack: e.cfg.PreserveBlack,
		BlackPointCompensation: e.cfg.BlackPointCompensation,
	}
	if e.cfg.Profiles.Proof != "" {
		req.HasProof = true
		req.Proof = icc.Profile{Path: e.cfg.Profiles.Proof}
		req.ProofIntent = e.cfg.ProofIntent
	}

	set := icc.NewProfileSet(e.cfg.SameProfileSets)
	return icc.Apply(ctx, e.xf, set, req)
}

func sizeModFor(ipr *record.IPR) string {
	return strconv.Itoa(ipr.DownsampleDimensions[0]) + "x" + strconv.Itoa(ipr.DownsampleDimensions[1])
}

// placeholderFor builds the CMYK stand-in image for a failed
// substitution, per spec §7/§8.
func (e *Engine) placeholderFor(err error, ipr *record.IPR) *record.CacheEntry {
	kind := "error"
	file := ""
	if ipr != nil {
		file = ipr.ImageFileName
	}
	if oe, ok := err.(*opierr.Error); ok {
		kind = oe.Kind.String()
		if oe.File != "" {
			file = oe.File
		}
	}
	return placeholder(kind, file)
}

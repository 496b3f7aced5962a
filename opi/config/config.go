// SPDX-License-Identifier: MIT
// Package config holds the OPI engine's configuration: the flags of
// spec §6 plus the per-mode resolution/downsample settings of spec §4.4,
// following the same exported-struct-plus-enum-consts shape as
// revid/config in the teacher repository.
package config

import (
	"github.com/ausocean/utils/logging"
)

// Intent is a rendering intent, spec §6 `-intent`/`-proofintent`.
type Intent int8

const (
	IntentPerceptual  Intent = iota // "p", default
	IntentSaturation                // "s"
	IntentRelative                  // "r"
	IntentRelativeBPC               // "b"
	IntentAbsolute                  // "a"
)

// ParseIntent maps the single-letter CLI value to an Intent.
func ParseIntent(s string) (Intent, bool) {
	switch s {
	case "p", "":
		return IntentPerceptual, true
	case "s":
		return IntentSaturation, true
	case "r":
		return IntentRelative, true
	case "b":
		return IntentRelativeBPC, true
	case "a":
		return IntentAbsolute, true
	default:
		return IntentPerceptual, false
	}
}

// DownsampleFilter selects the resampling kernel for one image category.
type DownsampleFilter int8

const (
	FilterNearest DownsampleFilter = iota
	FilterBilinear
	FilterBicubic
	FilterAntialias
)

func ParseDownsampleFilter(s string) (DownsampleFilter, bool) {
	switch s {
	case "nearest":
		return FilterNearest, true
	case "bilinear":
		return FilterBilinear, true
	case "bicubic":
		return FilterBicubic, true
	case "antialias", "":
		return FilterAntialias, true
	default:
		return FilterAntialias, false
	}
}

// DataMode is the emitted image-data encoding, spec §6 `-mode`.
type DataMode int8

const (
	DataBinary DataMode = iota // "b", default
	DataASCIIHex               // "a"
)

// ImageClassConfig groups the per-category (mono/gray/color) settings
// of spec §4.4 step 4.
type ImageClassConfig struct {
	Downsample            bool
	MinResolution         float64
	Resolution            float64
	DownsampleThreshold   float64
	UseEmbeddedResolution bool
	DownsampleFilterKind  DownsampleFilter
}

// ProfilePaths names the ICC profiles of spec §6.
type ProfilePaths struct {
	Out          string
	OutGray      string
	OutRGBGray   string
	Proof        string
	ProofGray    string
	ProofRGBGray string
	WorkingCMYK  string
	WorkingGray  string
	WorkingRGB   string
}

// Config is the fully resolved engine configuration.
type Config struct {
	HiresPath string
	LoresPath string

	In  string
	Out string

	CacheMegs    float64
	UseCache     bool
	UseDiskCache bool

	AbortOnError        bool
	AbortOnFileNotFound bool

	ConvertCMYKImages    bool
	ConvertGrayImages    bool
	DetectCMYKGrayImages bool
	CMYKGrayStripCMY     bool

	Mono  ImageClassConfig
	Gray  ImageClassConfig
	Color ImageClassConfig

	Intent                 Intent
	ProofIntent            Intent
	PreserveBlack          bool
	BlackPointCompensation bool
	Softproofing           bool

	Profiles ProfilePaths
	// SameProfileSets groups profile descriptions/MD5s that are
	// considered identical for transform elision (spec §4.5, §12.2).
	SameProfileSets [][]string

	DataMode DataMode
	Newline  string

	ImageCropThreshold float64

	SmallHalftoneSize            float64
	SmallHalftoneResolutionFactor float64
	TinyHalftoneSize              float64
	TinyHalftoneResolutionFactor  float64

	LogPath string
	Verbose bool

	// EmitV13 and EmitV20 control which OPI dialects are (re-)emitted;
	// both may be true.
	EmitV13 bool
	EmitV20 bool

	// QXPCropRounding gates the OPI-2.0 ceiling-rounding workaround of
	// spec §4.4 step 2 behind an explicit flag rather than a silent
	// version check (spec §9 Open Questions).
	QXPCropRounding bool

	// DetectQXPBackground gates the speculative background-color
	// heuristic of spec §9 / SPEC_FULL §12.1.
	DetectQXPBackground bool

	// DisabledFormats lets an operator opt a sniffed format out, e.g.
	// {"psd": true} to force pass-through for PSD (SPEC_FULL §12.5).
	DisabledFormats map[string]bool
}

// Default returns a Config populated with the same defaults opi.py's
// __init__ used (spec §4.4, §6).
func Default() *Config {
	return &Config{
		UseCache:            true,
		CacheMegs:           256,
		AbortOnError:        true,
		AbortOnFileNotFound: true,
		DetectCMYKGrayImages: true,

		Mono: ImageClassConfig{
			Downsample: true, MinResolution: 800, Resolution: 1200,
			DownsampleThreshold: 2.0, UseEmbeddedResolution: true,
			DownsampleFilterKind: FilterAntialias,
		},
		Gray: ImageClassConfig{
			Downsample: true, MinResolution: 200, Resolution: 300,
			DownsampleThreshold: 2.0, UseEmbeddedResolution: true,
			DownsampleFilterKind: FilterAntialias,
		},
		Color: ImageClassConfig{
			Downsample: true, MinResolution: 200, Resolution: 300,
			DownsampleThreshold: 2.0, UseEmbeddedResolution: true,
			DownsampleFilterKind: FilterAntialias,
		},

		Intent:      IntentPerceptual,
		ProofIntent: IntentPerceptual,

		DataMode: DataBinary,
		Newline:  "\n",

		ImageCropThreshold: 1.1,

		SmallHalftoneSize: 160, SmallHalftoneResolutionFactor: 1.0,
		TinyHalftoneSize: 80, TinyHalftoneResolutionFactor: 1.0,

		EmitV13: true,
		EmitV20: true,

		QXPCropRounding: true,

		DisabledFormats: map[string]bool{},
	}
}

// LogInvalidField logs that a configuration field had an invalid value
// and a default was substituted, mirroring revid/config's helper of the
// same name in the teacher repo.
func LogInvalidField(l logging.Logger, field string, def interface{}) {
	if l == nil {
		return
	}
	l.Log(logging.Warning, "invalid config field, using default", "field", field, "default", def)
}

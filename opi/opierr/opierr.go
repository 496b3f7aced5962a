// SPDX-License-Identifier: MIT
// Package opierr defines the typed error kinds of spec §7 and how they
// propagate: some abort the run, some emit a placeholder and continue,
// one is not an error at all.
package opierr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is one of the error kinds enumerated in spec §7.
type Kind int

const (
	ImageNotFound Kind = iota
	UnsupportedImageMode
	UnsupportedProfileColourspace
	IOError
	CropFailure
	DownsampleFailure
	ColourTransformFailure
	NameResolutionAmbiguous
	NameResolutionExhausted
	UnsupportedImageFormat // not counted as an error; pass-through
)

func (k Kind) String() string {
	switch k {
	case ImageNotFound:
		return "image_not_found"
	case UnsupportedImageMode:
		return "unsupported_image_mode"
	case UnsupportedProfileColourspace:
		return "unsupported_profile_colourspace"
	case IOError:
		return "io_error"
	case CropFailure:
		return "crop_failure"
	case DownsampleFailure:
		return "downsample_failure"
	case ColourTransformFailure:
		return "colour_transform_failure"
	case NameResolutionAmbiguous:
		return "name_resolution_ambiguous"
	case NameResolutionExhausted:
		return "name_resolution_exhausted"
	case UnsupportedImageFormat:
		return "unsupported_image_format"
	default:
		return "unknown"
	}
}

// Error is a stage-tagged, abortable error. Stage names the component
// that failed (e.g. "imageproc.crop"), and File is the offending image
// path, both logged by the engine when it aborts.
type Error struct {
	Kind  Kind
	Stage string
	File  string
	cause error
}

func New(kind Kind, stage, file string, cause error) *Error {
	return &Error{Kind: kind, Stage: stage, File: file, cause: errors.WithStack(cause)}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (%s): %v", e.Stage, e.Kind, e.File, e.cause)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Stage, e.Kind, e.File)
}

func (e *Error) Unwrap() error { return e.cause }

// Abortable reports whether this kind causes a hard abort under the
// given configuration flags, per spec §7.
func (e *Error) Abortable(abortOnError, abortOnFileNotFound bool) bool {
	switch e.Kind {
	case ImageNotFound:
		return abortOnFileNotFound
	case UnsupportedImageMode, UnsupportedProfileColourspace:
		return abortOnError
	case IOError, CropFailure, DownsampleFailure, ColourTransformFailure:
		return true
	case NameResolutionAmbiguous, NameResolutionExhausted:
		return abortOnFileNotFound
	case UnsupportedImageFormat:
		return false
	default:
		return abortOnError
	}
}

// Trace renders a traceback-equivalent of the error the way the Python
// original's traceback.format_exc() did, for the log.
func Trace(err error) string {
	return fmt.Sprintf("%+v", err)
}

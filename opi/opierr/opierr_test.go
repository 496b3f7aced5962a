// SPDX-License-Identifier: MIT
package opierr

import (
	"errors"
	"testing"
)

func TestKindString(t *testing.T) {
	if got := ImageNotFound.String(); got != "image_not_found" {
		t.Errorf("String() = %q", got)
	}
	if got := UnsupportedImageFormat.String(); got != "unsupported_image_format" {
		t.Errorf("String() = %q", got)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("disk gone")
	e := New(ImageNotFound, "engine.substitute", "art/x.tif", cause)
	if errors.Unwrap(e).Error() != cause.Error() {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(e), cause)
	}
	if e.File != "art/x.tif" || e.Stage != "engine.substitute" {
		t.Errorf("Error fields = %+v", e)
	}
}

func TestAbortable(t *testing.T) {
	cases := []struct {
		kind                Kind
		abortOnError        bool
		abortOnFileNotFound bool
		want                bool
	}{
		{ImageNotFound, false, true, true},
		{ImageNotFound, false, false, false},
		{UnsupportedImageMode, true, false, true},
		{UnsupportedImageMode, false, false, false},
		{IOError, false, false, true},
		{CropFailure, false, false, true},
		{UnsupportedImageFormat, true, true, false},
	}
	for _, c := range cases {
		e := New(c.kind, "stage", "file", nil)
		if got := e.Abortable(c.abortOnError, c.abortOnFileNotFound); got != c.want {
			t.Errorf("Abortable(%v, abortOnError=%v, abortOnFileNotFound=%v) = %v, want %v",
				c.kind, c.abortOnError, c.abortOnFileNotFound, got, c.want)
		}
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	e := New(CropFailure, "imageproc.crop", "art/x.tif", errors.New("bad rect"))
	s := e.Error()
	if s == "" {
		t.Fatal("Error() returned empty string")
	}
}

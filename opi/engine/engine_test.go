// SPDX-License-Identifier: MIT
package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opiproc/opi/opi/config"
	"github.com/opiproc/opi/opi/opierr"
	"github.com/opiproc/opi/opi/record"
)

func TestIsBeginImageMarker(t *testing.T) {
	if !isBeginImageMarker("%%BeginObject:") {
		t.Error("%%BeginObject: should be a begin-image marker")
	}
	if !isBeginImageMarker("%%BeginIncludedImage:") {
		t.Error("%%BeginIncludedImage: should be a begin-image marker")
	}
	if isBeginImageMarker("%%EndObject") {
		t.Error("%%EndObject should not be a begin-image marker")
	}
}

func TestIsEndMarker(t *testing.T) {
	for _, key := range []string{"%%EndObject", "%%EndIncludedImage", "%%EndOPI"} {
		if !isEndMarker(key) {
			t.Errorf("%q should be an end marker", key)
		}
	}
	if isEndMarker("%%BeginObject:") {
		t.Error("%%BeginObject: should not be an end marker")
	}
}

func TestIsDirectiveKey(t *testing.T) {
	cases := []struct {
		key  string
		want bool
	}{
		{"", false},
		{"%ALDImageFileName:", true},
		{"%%BeginOPI:", true},
		{"%notaspecialkey", false},
	}
	for _, c := range cases {
		if got := isDirectiveKey(c.key); got != c.want {
			t.Errorf("isDirectiveKey(%q) = %v, want %v", c.key, got, c.want)
		}
	}
}

func TestSizeModFor(t *testing.T) {
	ipr := record.NewIPR()
	ipr.DownsampleDimensions = [2]int{300, 450}
	if got := sizeModFor(ipr); got != "300x450" {
		t.Errorf("sizeModFor() = %q, want 300x450", got)
	}
}

func TestRecordErrorUnsupportedFormatNotCounted(t *testing.T) {
	e := New(config.Default(), nil, nil)
	e.recordError(opierr.New(opierr.UnsupportedImageFormat, "stage", "f", nil))
	if e.errorCount != 0 || e.abortedAny {
		t.Errorf("unsupported_image_format should not count as an error: count=%d aborted=%v", e.errorCount, e.abortedAny)
	}
}

func TestRecordErrorAbortOnFileNotFound(t *testing.T) {
	cfg := config.Default()
	cfg.AbortOnFileNotFound = true
	e := New(cfg, nil, nil)
	e.recordError(opierr.New(opierr.ImageNotFound, "stage", "f", nil))
	if e.errorCount != 1 || !e.abortedAny {
		t.Errorf("ImageNotFound with AbortOnFileNotFound should count: count=%d aborted=%v", e.errorCount, e.abortedAny)
	}
}

func TestRecordErrorNonOpiErrorAlwaysCounts(t *testing.T) {
	e := New(config.Default(), nil, nil)
	e.recordError(errors.New("plain error"))
	if e.errorCount != 1 || !e.abortedAny {
		t.Error("a non-opierr error should always count and abort")
	}
}

func TestRunPassesThroughPlainPostScript(t *testing.T) {
	e := New(config.Default(), nil, nil)
	in := "%!PS-Adobe-3.0\n%%Title: test\n1 1 moveto\nshowpage\n"
	var out bytes.Buffer

	if err := e.Run(context.Background(), strings.NewReader(in), &out, nil); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if out.String() != in {
		t.Errorf("Run() output = %q, want unchanged input %q", out.String(), in)
	}
}

func TestRunUnsupportedImageFormatPassesGfxStateThrough(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "weird.xyz"), []byte("not a recognized image container"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.HiresPath = dir
	e := New(cfg, nil, nil)

	in := "" +
		"%ALDImageFileName: (weird.xyz)\n" +
		"%ALDImageDimensions: 10 10\n" +
		"1 1 moveto\n" +
		"%%BeginObject: image\n" +
		"(placeholder graphics)\n" +
		"%%EndObject\n"
	var out bytes.Buffer

	if err := e.Run(context.Background(), strings.NewReader(in), &out, nil); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !strings.Contains(out.String(), "1 1 moveto") {
		t.Errorf("unsupported-format object should pass its graphics state through, got: %q", out.String())
	}
	if e.errorCount != 0 {
		t.Errorf("errorCount = %d, want 0 (unsupported format isn't an error)", e.errorCount)
	}
}

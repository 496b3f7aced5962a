// SPDX-License-Identifier: MIT
package emit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/opiproc/opi/opi/config"
	"github.com/opiproc/opi/opi/record"
)

func newEmitter() (*Emitter, *bytes.Buffer) {
	var buf bytes.Buffer
	cfg := config.Default()
	return New(&buf, cfg), &buf
}

func TestEmitV13HeaderBasics(t *testing.T) {
	e, buf := newEmitter()
	ipr := record.NewIPR()
	ipr.ImageFileName = "art/photo.tif"
	ipr.ImageDimensions = [2]int{100, 200}
	ipr.ImageColorType = record.ColorProcess

	e.emitV13Header(ipr)
	e.Flush()

	out := buf.String()
	if !strings.Contains(out, "%ALDImageFileName: (art/photo.tif)") {
		t.Errorf("missing filename line, got: %s", out)
	}
	if !strings.Contains(out, "%ALDImageDimensions: 100 200") {
		t.Errorf("missing dimensions line, got: %s", out)
	}
	if !strings.Contains(out, "%ALDImageColorType: Process") {
		t.Errorf("missing color type line, got: %s", out)
	}
}

func TestImageInksFullColorDefault(t *testing.T) {
	ipr := record.NewIPR()
	ipr.ImageType.Channels = 4
	if got := imageInks(ipr); got != "full_color" {
		t.Errorf("imageInks() = %q, want full_color", got)
	}
}

func TestImageInksVerbatimPassthrough(t *testing.T) {
	ipr := record.NewIPR()
	ipr.ImageInks = "custom verbatim value"
	if got := imageInks(ipr); got != "custom verbatim value" {
		t.Errorf("imageInks() = %q, want verbatim value preserved", got)
	}
}

func TestImageInksMonochromeSpot(t *testing.T) {
	ipr := record.NewIPR()
	ipr.ImageType.Channels = 1
	ipr.ImageColorType = record.ColorSpot
	ipr.ImageColor.Name = "PANTONE 185"
	ipr.ImageTint = 0.5
	if got := imageInks(ipr); got != "monochrome 1 (PANTONE 185) 0.5 tint" {
		t.Errorf("imageInks() = %q", got)
	}
}

func TestColorTypeName(t *testing.T) {
	cases := []struct {
		in   record.ColorType
		want string
	}{
		{record.ColorProcess, "Process"},
		{record.ColorSpot, "Spot"},
		{record.ColorUnspecified, "Unspecified"},
	}
	for _, c := range cases {
		if got := colorTypeName(c.in); got != c.want {
			t.Errorf("colorTypeName(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestGrayMapLines(t *testing.T) {
	got := grayMapLines([][]int{{0, 1, 2}, {3, 4, 5}})
	want := []string{"0 1 2", "3 4 5"}
	if len(got) != len(want) {
		t.Fatalf("grayMapLines() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("grayMapLines()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParenQuoteEscapesParens(t *testing.T) {
	if got := parenQuote("a(b)c"); got != `(a\(b\)c)` {
		t.Errorf("parenQuote() = %q", got)
	}
}

func TestFixedAndDecimalStr(t *testing.T) {
	if got := fixedStr(3.0); got != "3" {
		t.Errorf("fixedStr(3.0) = %q, want 3", got)
	}
	if got := decimalStr(3.0); got != "3.00" {
		t.Errorf("decimalStr(3.0) = %q, want 3.00", got)
	}
}

// SPDX-License-Identifier: MIT
package emit

import (
	"strings"
	"testing"

	"github.com/opiproc/opi/opi/record"
)

func TestEmitObjectRasterProducesBothDialects(t *testing.T) {
	e, buf := newEmitter()

	ipr := record.NewIPR()
	ipr.ImageFileName = "art/photo.tif"
	ipr.ImageDimensions = [2]int{10, 10}
	ipr.RealCropRect = record.Rect{0, 0, 10, 10}
	ipr.RealDimensions = [2]float64{72, 72}
	ipr.Versions = record.VersionSet{V13: true, V20: true}

	cache := &record.CacheEntry{Mode: "L", Width: 10, Height: 10, Pix: make([]byte, 100)}

	if err := e.EmitObject(ipr, cache); err != nil {
		t.Fatalf("EmitObject() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"%ALDImageFileName:", "%%BeginOPI: 2.0", "%%ImageFileName:",
		"%%BeginData:", "%%EndData", "%%EndIncludedImage", "%%EndOPI", "%%EndObject",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\nfull output:\n%s", want, out)
		}
	}
}

func TestEmitObjectEPSF(t *testing.T) {
	e, buf := newEmitter()

	ipr := record.NewIPR()
	ipr.ImageFileName = "art/logo.eps"
	ipr.RealDimensions = [2]float64{72, 72}
	ipr.Versions = record.VersionSet{V13: true, V20: true}

	cache := &record.CacheEntry{Mode: "EPSF", EPSF: []byte("%!PS-Adobe-3.0\nshowpage")}

	if err := e.EmitObject(ipr, cache); err != nil {
		t.Fatalf("EmitObject() error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "%%BeginDocument: (art/logo.eps)") {
		t.Errorf("missing BeginDocument for EPSF, got: %s", out)
	}
	if strings.Contains(out, "%%BeginData:") {
		t.Error("EPSF path should not emit a raster %%BeginData block")
	}
}

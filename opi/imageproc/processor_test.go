// SPDX-License-Identifier: MIT
package imageproc

import (
	"image"
	"image/color"
	"testing"

	"github.com/opiproc/opi/opi/config"
	"github.com/opiproc/opi/opi/record"
)

func TestProcessEPSFPassesThroughUnchanged(t *testing.T) {
	e := &Epsf{Payload: []byte("%!PS\nshowpage"), W: 72, H: 144}
	cfg := config.Default()
	ipr := record.NewIPR()

	entry, err := Process(e, ipr, cfg)
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if entry.Mode != "EPSF" || entry.Width != 72 || entry.Height != 144 {
		t.Errorf("entry = %+v", entry)
	}
	if string(entry.EPSF) != "%!PS\nshowpage" {
		t.Errorf("entry.EPSF = %q", entry.EPSF)
	}
}

func TestProcessDetectsAndStripsCMYKGray(t *testing.T) {
	img := image.NewCMYK(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetCMYK(x, y, color.CMYK{K: 50})
		}
	}
	r := &Raster{Img: img, M: "CMYK"}
	cfg := config.Default()
	cfg.DetectCMYKGrayImages = true
	cfg.CMYKGrayStripCMY = true
	ipr := record.NewIPR()
	ipr.RealCropRect = record.Rect{0, 0, 4, 4}

	entry, err := Process(r, ipr, cfg)
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if entry.Mode != "L" {
		t.Errorf("Mode = %q, want L after CMYK-gray stripping", entry.Mode)
	}
	if ipr.Mode != "L" {
		t.Errorf("ipr.Mode = %q, want L", ipr.Mode)
	}
}

func TestProcessCropsWhenThresholdMet(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 100))
	r := &Raster{Img: img, M: "L"}
	cfg := config.Default()
	cfg.ImageCropThreshold = 1.1
	ipr := record.NewIPR()
	ipr.RealCropRect = record.Rect{0, 0, 10, 10}

	entry, err := Process(r, ipr, cfg)
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if entry.Width != 10 || entry.Height != 10 {
		t.Errorf("entry size = %d,%d want cropped to 10,10", entry.Width, entry.Height)
	}
}

func TestClassForMode(t *testing.T) {
	cfg := config.Default()
	if classForMode("1", cfg).Resolution != cfg.Mono.Resolution {
		t.Error("mode 1 should use Mono class")
	}
	if classForMode("L", cfg).Resolution != cfg.Gray.Resolution {
		t.Error("mode L should use Gray class")
	}
	if classForMode("RGB", cfg).Resolution != cfg.Color.Resolution {
		t.Error("mode RGB should use Color class")
	}
}

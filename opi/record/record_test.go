// SPDX-License-Identifier: MIT
package record

import "testing"

func TestInferProcessName(t *testing.T) {
	cases := []struct {
		c    Color
		want string
	}{
		{Color{C: 1}, "Cyan"},
		{Color{M: 1}, "Magenta"},
		{Color{Y: 1}, "Yellow"},
		{Color{K: 1}, "Black"},
		{Color{C: 1, M: 1}, ""},
		{Color{C: 0.5}, ""},
	}
	for _, c := range cases {
		got := c.c
		got.InferProcessName()
		if got.Name != c.want {
			t.Errorf("InferProcessName(%+v) = %q, want %q", c.c, got.Name, c.want)
		}
	}
}

func TestCacheEntrySize(t *testing.T) {
	cases := []struct {
		e    CacheEntry
		want int64
	}{
		{CacheEntry{Mode: "1", Width: 16, Height: 2}, 4},
		{CacheEntry{Mode: "L", Width: 10, Height: 10}, 100},
		{CacheEntry{Mode: "RGB", Width: 10, Height: 10}, 300},
		{CacheEntry{Mode: "CMYK", Width: 10, Height: 10}, 400},
		{CacheEntry{Mode: "EPSF", EPSF: []byte("hello")}, 5},
	}
	for _, c := range cases {
		if got := c.e.Size(); got != c.want {
			t.Errorf("Size(%+v) = %d, want %d", c.e, got, c.want)
		}
	}
}

func TestNewIPRInitializesMaps(t *testing.T) {
	ipr := NewIPR()
	if ipr.TiffASCIITags == nil {
		t.Fatal("TiffASCIITags should be initialized, not nil")
	}
}

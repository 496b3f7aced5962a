// SPDX-License-Identifier: MIT
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"path/filepath"
)

// Key identifies one conditioned image in the cache. PathMD5 is the MD5
// of the canonical (absolute, cleaned) source path; SizeMod and ColorMod
// are short strings summarizing the crop/downsample and colour-transform
// parameters in effect, so that the same source image conditioned two
// different ways gets two cache slots.
type Key struct {
	PathMD5  string
	SizeMod  string
	ColorMod string
}

// NewKey builds a Key from a source path and modifier strings.
func NewKey(path, sizeMod, colorMod string) Key {
	sum := md5.Sum([]byte(filepath.Clean(path)))
	return Key{PathMD5: hex.EncodeToString(sum[:]), SizeMod: sizeMod, ColorMod: colorMod}
}

func (k Key) String() string {
	return k.PathMD5 + "|" + k.SizeMod + "|" + k.ColorMod
}

// LookupOrder returns the keys to probe, most to least specific, per
// spec §4.6: an exact (size,colour) match first, then a size-only or
// colour-only match that can be recombined, then the bare path. Reusing
// a partial match still requires re-running whichever stage the
// modifier describes; only an exact match is a full cache hit.
func (k Key) LookupOrder() []Key {
	return []Key{
		k,
		{PathMD5: k.PathMD5, SizeMod: k.SizeMod},
		{PathMD5: k.PathMD5, ColorMod: k.ColorMod},
		{PathMD5: k.PathMD5},
	}
}

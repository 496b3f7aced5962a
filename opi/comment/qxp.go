// SPDX-License-Identifier: MIT
package comment

import (
	"regexp"
	"strings"

	"github.com/opiproc/opi/opi/record"
)

// qxpDetector recognizes the handful of textual patterns QuarkXPress
// 6.5/7 leaves in the buffered graphics-state region immediately before
// an OPI object to set a "Composite CMYK"/"Composite Unchanged"
// background color. This is speculative, comment-based, and brittle by
// design (spec §9 Open Questions) — kept only behind
// config.DetectQXPBackground.
type qxpDetector struct{}

var (
	qxpCMYK     = regexp.MustCompile(`^((?:(?:\d+(?:\.\d+)?|\.\d+)\s+){4})C$`)
	qxpCMYKSpot = regexp.MustCompile(`^((?:(?:\d+(?:\.\d+)?|\.\d+)\s+){4})\((.*)\)1 setcustc$`)
	qxpRGB      = regexp.MustCompile(`^((?:(?:\d+(?:\.\d+)?|\.\d+)\s+){3})R$`)
	qxpRGBSpot  = regexp.MustCompile(`^((?:(?:\d+(?:\.\d+)?|\.\d+)\s+){3})\((.*)\)1 setcustcrgb$`)
	qxpDeviceN  = regexp.MustCompile(`^((?:(?:\d+(?:\.\d+)?|\.\d+)\s+){2,})\[((?:\[(?:(?:(?:\d+(?:\.\d+)?|\.\d+)\s+){4})\])+)\]\[((?:\(.+?\))+)\]gendn$`)
)

// observe inspects one buffered graphics-state line for a QXP
// background-color pattern and, on a match, sets ipr.QXPBackground.
func (qxpDetector) observe(line string, ipr *record.IPR) {
	line = strings.TrimSpace(line)

	if m := qxpCMYK.FindStringSubmatch(line); m != nil {
		nums := Floats(m[1])
		if len(nums) == 4 {
			ipr.QXPBackground = &record.Color{C: nums[0], M: nums[1], Y: nums[2], K: nums[3]}
		}
		return
	}
	if m := qxpCMYKSpot.FindStringSubmatch(line); m != nil {
		nums := Floats(m[1])
		if len(nums) == 4 {
			ipr.QXPBackground = &record.Color{C: nums[0], M: nums[1], Y: nums[2], K: nums[3], Name: m[2]}
		}
		return
	}
	if m := qxpRGB.FindStringSubmatch(line); m != nil {
		nums := Floats(m[1])
		if len(nums) == 3 {
			ipr.QXPBackground = rgbAsCMYK(nums[0], nums[1], nums[2], "")
		}
		return
	}
	if m := qxpRGBSpot.FindStringSubmatch(line); m != nil {
		nums := Floats(m[1])
		if len(nums) == 3 {
			ipr.QXPBackground = rgbAsCMYK(nums[0], nums[1], nums[2], m[2])
		}
		return
	}
	if m := qxpDeviceN.FindStringSubmatch(line); m != nil {
		// First contributing colorant's CMYK tuple and name, weighted
		// by its tint (second number in the leading tint list).
		tints := Floats(m[1])
		rows := ParenFloatRows(m[2])
		names := ParenStrings(m[3])
		if len(rows) > 0 && len(rows[0]) == 4 {
			tint := 1.0
			if len(tints) >= 2 {
				tint = tints[1]
			}
			name := ""
			if len(names) > 0 {
				name = names[0]
			}
			ipr.QXPBackground = &record.Color{
				C: rows[0][0] * tint, M: rows[0][1] * tint,
				Y: rows[0][2] * tint, K: rows[0][3] * tint,
				Name: name,
			}
		}
		return
	}
}

func rgbAsCMYK(r, g, b float64, name string) *record.Color {
	c, m, y := 1-r, 1-g, 1-b
	k := min3(c, m, y)
	if k < 1 {
		c = (c - k) / (1 - k)
		m = (m - k) / (1 - k)
		y = (y - k) / (1 - k)
	} else {
		c, m, y = 0, 0, 0
	}
	return &record.Color{C: c, M: m, Y: y, K: k, Name: name}
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// ParenFloatRows parses "[n n n n][n n n n]..." into rows of floats,
// used for the DeviceN colorant table in %%...gendn QXP lines.
func ParenFloatRows(s string) [][]float64 {
	var rows [][]float64
	depth := 0
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
			if depth == 1 {
				cur.Reset()
			}
		case ']':
			depth--
			if depth == 0 {
				rows = append(rows, Floats(cur.String()))
			}
		default:
			if depth >= 1 {
				cur.WriteByte(s[i])
			}
		}
	}
	return rows
}

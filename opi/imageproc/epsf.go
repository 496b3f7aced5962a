// SPDX-License-Identifier: MIT
package imageproc

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// decodeEPSF extracts the embedded PostScript payload and bounding box
// of an EPSF file, per spec §4.5 step 2. isBinary selects the DOS-EPS
// binary header layout (offsets/lengths at fixed byte positions);
// otherwise the whole file is plain ASCII PostScript.
func decodeEPSF(data []byte, isBinary bool) (*Epsf, error) {
	payload := data
	if isBinary {
		if len(data) < 30 {
			return nil, errors.New("epsf: binary header too short")
		}
		psOffset := binary.LittleEndian.Uint32(data[4:8])
		psLength := binary.LittleEndian.Uint32(data[8:12])
		if int(psOffset)+int(psLength) > len(data) {
			return nil, errors.New("epsf: ps payload out of range")
		}
		payload = data[psOffset : psOffset+psLength]
	}

	w, h, err := boundingBox(payload)
	if err != nil {
		return nil, err
	}
	return &Epsf{Payload: payload, W: w, H: h}, nil
}

// boundingBox parses %%HiResBoundingBox, falling back to
// %%BoundingBox, and returns the box size in points.
func boundingBox(payload []byte) (w, h float64, err error) {
	var fallbackW, fallbackH float64
	haveFallback := false

	sc := bufio.NewScanner(bytes.NewReader(payload))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "%%HiResBoundingBox:") {
			if fw, fh, ok := parseBBox(line, "%%HiResBoundingBox:"); ok {
				return fw, fh, nil
			}
		}
		if !haveFallback && strings.HasPrefix(line, "%%BoundingBox:") {
			if fw, fh, ok := parseBBox(line, "%%BoundingBox:"); ok {
				fallbackW, fallbackH = fw, fh
				haveFallback = true
			}
		}
	}
	if haveFallback {
		return fallbackW, fallbackH, nil
	}
	return 0, 0, errors.New("epsf: no bounding box found")
}

func parseBBox(line, prefix string) (w, h float64, ok bool) {
	fields := strings.Fields(strings.TrimPrefix(line, prefix))
	if len(fields) < 4 {
		return 0, 0, false
	}
	vals := make([]float64, 4)
	for i, f := range fields[:4] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return 0, 0, false
		}
		vals[i] = v
	}
	return vals[2] - vals[0], vals[3] - vals[1], true
}

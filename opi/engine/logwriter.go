// SPDX-License-Identifier: MIT
package engine

import (
	"io"
	"os"
)

// bomWriter prepends a UTF-8 BOM to the first write made to a freshly
// created log file, matching spec §7's logging requirement without
// introducing a bespoke log writer: it decorates whatever io.Writer
// logging.New is given.
type bomWriter struct {
	w      io.Writer
	wrote  bool
	prefix bool
}

// NewBOMWriter wraps w so the first Write is preceded by a UTF-8 BOM
// when prefix is true (the log file didn't already exist).
func NewBOMWriter(w io.Writer, prefix bool) io.Writer {
	return &bomWriter{w: w, prefix: prefix}
}

func (b *bomWriter) Write(p []byte) (int, error) {
	if !b.wrote {
		b.wrote = true
		if b.prefix {
			if _, err := b.w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
				return 0, err
			}
		}
	}
	return b.w.Write(p)
}

// LogFileIsNew reports whether path does not yet exist, for deciding
// whether NewBOMWriter should prefix a BOM.
func LogFileIsNew(path string) bool {
	_, err := os.Stat(path)
	return os.IsNotExist(err)
}

// SPDX-License-Identifier: MIT
package cache

import (
	"bytes"
	"encoding/gob"

	"github.com/opiproc/opi/opi/record"
)

// encodeEntry/decodeEntry serialize a record.CacheEntry for the disk
// mirror. gob is sufficient here: the format is private to this
// process's own cache directory, never shared across versions or
// processes.
func encodeEntry(e *record.CacheEntry) []byte {
	var buf bytes.Buffer
	// Errors from gob.Encode on a plain data struct with no
	// unsupported types are impossible; ignored per teacher convention
	// for in-memory encodes elsewhere in the pack.
	_ = gob.NewEncoder(&buf).Encode(e)
	return buf.Bytes()
}

func decodeEntry(data []byte) (*record.CacheEntry, error) {
	var e record.CacheEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

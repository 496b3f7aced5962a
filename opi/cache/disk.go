// SPDX-License-Identifier: MIT
package cache

import (
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ausocean/utils/logging"

	"github.com/opiproc/opi/opi/record"
)

// Disk mirrors conditioned images to a directory so a restarted engine
// doesn't have to re-decode and re-transform everything. Filenames are
// <sanitized original base>.<crc32 of the conditioning descriptor>.<ext>;
// freshness is judged by source mtime against the cached file's mtime.
type Disk struct {
	dir string
	log logging.Logger

	mu       sync.Mutex
	watching map[string]bool
	watcher  *fsnotify.Watcher
	stale    map[string]bool
}

// NewDisk opens (creating if needed) dir as the disk-cache root and
// starts a fsnotify watcher that marks a source file stale when a
// write, remove or rename event for that file arrives from a watched
// directory.
func NewDisk(dir string, log logging.Logger) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "cache: create disk cache dir")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "cache: start fsnotify watcher")
	}
	d := &Disk{
		dir:      dir,
		log:      log,
		watching: make(map[string]bool),
		watcher:  w,
		stale:    make(map[string]bool),
	}
	go d.watchLoop()
	return d, nil
}

func (d *Disk) watchLoop() {
	for {
		select {
		case ev, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				d.mu.Lock()
				d.stale[filepath.Clean(ev.Name)] = true
				d.mu.Unlock()
				if d.log != nil {
					d.log.Log(logging.Debug, "disk cache source changed", "path", ev.Name)
				}
			}
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			if d.log != nil {
				d.log.Log(logging.Warning, "disk cache watcher error", "error", err)
			}
		}
	}
}

// Watch registers sourcePath's directory for change notifications. Safe
// to call repeatedly; each directory is only watched once.
func (d *Disk) Watch(sourcePath string) {
	dir := filepath.Dir(sourcePath)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.watching[dir] {
		return
	}
	if err := d.watcher.Add(dir); err == nil {
		d.watching[dir] = true
	}
}

// Stale reports whether a write, remove or rename of sourcePath itself
// was seen since its directory was registered with Watch, and clears
// the flag.
func (d *Disk) Stale(sourcePath string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := filepath.Clean(sourcePath)
	if d.stale[key] {
		delete(d.stale, key)
		return true
	}
	return false
}

// Close stops the watcher goroutine.
func (d *Disk) Close() error {
	return d.watcher.Close()
}

// descriptor returns the cache filename for sourcePath conditioned by
// fields (e.g. ICC profile paths, intents, crop/downsample
// parameters), joined and CRC32'd to keep names short and stable.
func (d *Disk) descriptor(sourcePath string, fields ...string) string {
	base := filepath.Base(sourcePath)
	var sum uint32
	for _, f := range fields {
		sum = crc32.Update(sum, crc32.IEEETable, []byte(f))
	}
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)]
	return fmt.Sprintf("%s.%08x%s", sanitize(name), sum, ext)
}

func sanitize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-' || r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// Path returns the full path a cached entry for sourcePath (conditioned
// by fields) would live at.
func (d *Disk) Path(sourcePath string, fields ...string) string {
	return filepath.Join(d.dir, d.descriptor(sourcePath, fields...))
}

// Fresh reports whether the cached file at path is at least as new as
// sourcePath and the watcher has not flagged sourcePath itself as
// changed since.
func (d *Disk) Fresh(path, sourcePath string) bool {
	if d.Stale(sourcePath) {
		return false
	}
	srcInfo, err := os.Stat(sourcePath)
	if err != nil {
		return false
	}
	dstInfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !dstInfo.ModTime().Before(srcInfo.ModTime())
}

// Load reads a cached entry back from disk.
func (d *Disk) Load(path string) (*record.CacheEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeEntry(data)
}

// Store atomically writes e to path: the payload is written to a
// uniquely-named temp file in the same directory, then renamed into
// place, so a reader never observes a partial write.
func (d *Disk) Store(path string, e *record.CacheEntry) error {
	tmp := filepath.Join(filepath.Dir(path), "."+uuid.NewString()+".tmp")
	data := encodeEntry(e)
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "cache: write temp file")
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "cache: rename temp file")
	}
	return nil
}

// SPDX-License-Identifier: MIT
// Package cache implements the Image Cache of spec §4.6: a
// byte-budgeted in-memory store keyed by the MD5 of the source path plus
// conditioning modifiers, an ascending-occurrence-threshold eviction
// policy, and an optional mirrored disk cache.
package cache

import (
	"sync"

	"github.com/ausocean/utils/logging"

	"github.com/opiproc/opi/opi/record"
)

// Memory is the in-process image cache. It is safe for concurrent use,
// though the engine's single processing goroutine is its only caller in
// practice (spec §5).
type Memory struct {
	mu      sync.Mutex
	entries map[string]*record.CacheEntry
	budget  int64
	used    int64
	log     logging.Logger
}

// NewMemory returns a Memory cache with the given byte budget.
func NewMemory(budgetBytes int64, log logging.Logger) *Memory {
	return &Memory{
		entries: make(map[string]*record.CacheEntry),
		budget:  budgetBytes,
		log:     log,
	}
}

// Get looks up the most specific key from order that has an entry,
// bumping its occurrence count on a hit.
func (m *Memory) Get(order []Key) (*record.CacheEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range order {
		if e, ok := m.entries[k.String()]; ok {
			e.Occurrences++
			return e, true
		}
	}
	return nil, false
}

// Put inserts e under key, first purging the least-frequently-reused
// entries (by occurrence count) if inserting would exceed the byte
// budget.
func (m *Memory) Put(k Key, e *record.CacheEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	size := e.Size()
	e.Bytes = size
	e.Occurrences = 1

	if m.used+size > m.budget {
		m.purge(m.used + size - m.budget)
	}
	m.entries[k.String()] = e
	m.used += size
}

// purge implements opi.py's _purgecache: repeatedly raise an occurrence
// threshold and evict every entry at or below it, until at least need
// bytes have been freed or every entry has been considered.
func (m *Memory) purge(need int64) {
	freed := int64(0)
	threshold := int64(0)
	for freed < need {
		progressed := false
		for key, e := range m.entries {
			if e.Occurrences <= threshold {
				freed += e.Bytes
				m.used -= e.Bytes
				delete(m.entries, key)
				progressed = true
				if m.log != nil {
					m.log.Log(logging.Debug, "evicted cache entry", "path", e.Path, "occurrences", e.Occurrences)
				}
			}
		}
		if freed >= need {
			return
		}
		if !progressed && len(m.entries) == 0 {
			return
		}
		threshold++
		if threshold > 1<<20 {
			// Defensive bound: no plausible occurrence count reaches
			// this, so a runaway loop here means every entry is gone.
			return
		}
	}
}

// Used reports the current byte usage, for diagnostics/tests.
func (m *Memory) Used() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.used
}

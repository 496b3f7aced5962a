// SPDX-License-Identifier: MIT
package cache

import (
	"testing"

	"github.com/opiproc/opi/opi/record"
)

func entry(path string, bytes int64) *record.CacheEntry {
	return &record.CacheEntry{Mode: "L", Width: int(bytes), Height: 1, Path: path}
}

func TestMemoryPutGetRoundTrip(t *testing.T) {
	m := NewMemory(1<<20, nil)
	k := NewKey("/art/a.tif", "300x300", "")
	e := entry("/art/a.tif", 1000)

	m.Put(k, e)
	got, ok := m.Get(k.LookupOrder())
	if !ok {
		t.Fatal("Get() missed an entry just Put")
	}
	if got.Path != "/art/a.tif" {
		t.Errorf("got.Path = %q", got.Path)
	}
	if got.Occurrences != 2 {
		t.Errorf("Occurrences = %d, want 2 (1 from Put, bumped once by Get)", got.Occurrences)
	}
}

func TestMemoryGetMiss(t *testing.T) {
	m := NewMemory(1<<20, nil)
	k := NewKey("/art/missing.tif", "", "")
	if _, ok := m.Get(k.LookupOrder()); ok {
		t.Fatal("Get() hit on an empty cache")
	}
}

func TestMemoryPurgeEvictsLeastUsedFirst(t *testing.T) {
	m := NewMemory(100, nil) // tiny budget forces eviction

	kOld := NewKey("/art/old.tif", "", "")
	eOld := entry("/art/old.tif", 40)
	m.Put(kOld, eOld)

	// Access old a few times so its occurrence count climbs above a
	// freshly inserted entry's.
	m.Get(kOld.LookupOrder())
	m.Get(kOld.LookupOrder())
	m.Get(kOld.LookupOrder())

	kNew := NewKey("/art/new.tif", "", "")
	eNew := entry("/art/new.tif", 90) // pushes used well over budget
	m.Put(kNew, eNew)

	if _, ok := m.Get(kNew.LookupOrder()); !ok {
		t.Error("newly inserted entry should survive its own Put")
	}
	if m.Used() > 100 {
		t.Errorf("Used() = %d, want <= budget 100 after purge", m.Used())
	}
}

func TestMemoryPurgeFreesEnoughForLargeInsert(t *testing.T) {
	m := NewMemory(50, nil)
	for i := 0; i < 3; i++ {
		k := NewKey("/art/x"+string(rune('a'+i))+".tif", "", "")
		m.Put(k, entry("/art/x.tif", 15))
	}
	big := entry("/art/big.tif", 45)
	m.Put(NewKey("/art/big.tif", "", ""), big)

	if m.Used() > 50 {
		t.Errorf("Used() = %d, want <= 50", m.Used())
	}
	if _, ok := m.Get(NewKey("/art/big.tif", "", "").LookupOrder()); !ok {
		t.Error("big entry should be present after purge made room")
	}
}

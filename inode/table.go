// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package inode maintains the bidirectional mapping between kernel-visible
// inode numbers and the paths a path-addressed user file system understands,
// including lookup-count lifecycle and generation numbers for slot reuse.
package inode

import (
	"fmt"

	"github.com/jacobsa/syncutil"
)

// RootID is the inode number reserved for the file system root. It is
// immortal: it is never placed on the free list and its lookup count is not
// tracked.
const RootID = 1

// entry is one slot in the table. A slot is free when path == "" and
// lookups == 0; Table.Add/AddOrGet recognize a free slot by index via the
// free list rather than by scanning for this state.
type entry struct {
	path       string
	lookups    uint64
	generation uint64

	// free is true between the moment a non-root slot's lookup count drains
	// to zero and the moment it is handed back out by Add/AddOrGet. A free
	// slot still carries a valid (possibly stale) generation; the next
	// allocation bumps it before use.
	free bool
}

// Table is the inode table (C1): a bijective path<->inode map with
// generations and lookup reference counts. The zero value is not usable;
// call New.
//
// A Table is intended to be driven from a single dispatch thread, but it
// wraps its state in a syncutil.InvariantMutex so that programmer errors
// (duplicate insert, forget underflow, use of an unknown inode) are caught
// as fatal panics rather than silently corrupting the map.
type Table struct {
	mu syncutil.InvariantMutex

	// GUARDED_BY(mu)
	slots []entry

	// byPath maps a live, reachable path to its slot index. A live slot
	// whose path was unlinked or displaced by a rename keeps its path but
	// has no byPath entry.
	//
	// INVARIANT: for every p in byPath, slots[byPath[p]].path == p
	//
	// GUARDED_BY(mu)
	byPath map[string]int

	// freeList holds indices of free slots awaiting reuse, oldest first
	// (FIFO), so generation spread is maximized across reused inodes.
	//
	// GUARDED_BY(mu)
	freeList []int
}

// New returns a table containing only the root inode, mapped to "/".
func New() *Table {
	t := &Table{
		slots:  make([]entry, RootID+1),
		byPath: make(map[string]int),
	}
	t.slots[RootID] = entry{path: "/"}
	t.byPath["/"] = RootID

	t.mu = syncutil.NewInvariantMutex(t.checkInvariants)

	return t
}

func (t *Table) checkInvariants() {
	if t.slots[RootID].free {
		panic("root inode must never be placed on the free list")
	}

	for i, e := range t.slots {
		if i == 0 {
			continue
		}
		if e.free {
			if e.path != "" {
				panic(fmt.Sprintf("free slot %d has a non-empty path %q", i, e.path))
			}
			continue
		}
		if idx, ok := t.byPath[e.path]; !ok || idx != i {
			// Tombstoned (unlinked, or displaced by a rename, but not yet
			// forgotten): byPath no longer maps e.path to this slot, but the
			// slot is still live.
			continue
		}
	}

	for path, idx := range t.byPath {
		if idx <= 0 || idx >= len(t.slots) {
			panic(fmt.Sprintf("byPath[%q] = %d is out of range", path, idx))
		}
		if t.slots[idx].path != path {
			panic(fmt.Sprintf("byPath[%q] = %d, but slots[%d].path = %q", path, idx, idx, t.slots[idx].path))
		}
	}
}

// allocSlot pops a free slot (bumping its generation) or appends a new one.
//
// LOCKS_REQUIRED(t.mu)
func (t *Table) allocSlot() (idx int, generation uint64) {
	if len(t.freeList) > 0 {
		idx = t.freeList[0]
		t.freeList = t.freeList[1:]

		t.slots[idx].generation++
		t.slots[idx].free = false
		generation = t.slots[idx].generation

		return
	}

	idx = len(t.slots)
	t.slots = append(t.slots, entry{})
	generation = 0

	return
}

// Add inserts path with a lookup count of 1. path must not already be
// mapped; a duplicate insert is a fatal invariant violation, not a runtime
// error, since it indicates the caller raced the dispatcher's own protocol
// ordering.
func (t *Table) Add(path string) (ino uint64, generation uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.byPath[path]; ok {
		panic(fmt.Sprintf("inode.Table.Add: path already mapped: %q", path))
	}

	idx, gen := t.allocSlot()
	t.slots[idx] = entry{path: path, lookups: 1, generation: gen}
	t.byPath[path] = idx

	return uint64(idx), gen
}

// AddOrGet returns the existing (inode, generation) for path without
// touching its lookup count, or inserts it with a lookup count of 0 if
// absent (the caller must call Lookup before replying to the kernel).
func (t *Table) AddOrGet(path string) (ino uint64, generation uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if idx, ok := t.byPath[path]; ok {
		return uint64(idx), t.slots[idx].generation
	}

	idx, gen := t.allocSlot()
	t.slots[idx] = entry{path: path, lookups: 0, generation: gen}
	t.byPath[path] = idx

	return uint64(idx), gen
}

// GetPath returns the path for ino, or ("", false) if ino is out of range
// or its slot is free. A path tombstoned by Unlink or displaced by Rename is
// still returned until Forget frees the slot.
func (t *Table) GetPath(ino uint64) (path string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := int(ino)
	if idx < 0 || idx >= len(t.slots) {
		return "", false
	}

	e := t.slots[idx]
	if e.free || e.path == "" {
		return "", false
	}

	return e.path, true
}

// GetInode returns the inode currently reachable under path.
func (t *Table) GetInode(path string) (ino uint64, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, ok := t.byPath[path]
	if !ok {
		return 0, false
	}

	return uint64(idx), true
}

// Lookup increments the lookup count for ino. It is a no-op on RootID.
func (t *Table) Lookup(ino uint64) {
	if ino == RootID {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := int(ino)
	t.slots[idx].lookups++
}

// Forget decrements ino's lookup count by n. If the count reaches zero (and
// ino != RootID), the slot is tombstoned out of byPath, cleared, and pushed
// onto the free list. Forget(RootID, n) is always a no-op that returns 1.
//
// Decrementing below zero is a fatal invariant violation: it means the
// kernel's lookup/forget protocol was not honored by the caller.
func (t *Table) Forget(ino uint64, n uint64) (newCount uint64) {
	if ino == RootID {
		return 1
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := int(ino)
	e := &t.slots[idx]

	if n > e.lookups {
		panic(fmt.Sprintf(
			"inode.Table.Forget: n (%d) exceeds lookup count (%d) for inode %d",
			n, e.lookups, ino))
	}

	e.lookups -= n
	if e.lookups == 0 {
		// Only drop the name if it still maps to this slot: a tombstoned
		// path may since have been given to another inode.
		if cur, ok := t.byPath[e.path]; ok && cur == idx {
			delete(t.byPath, e.path)
		}
		e.path = ""
		e.free = true
		t.freeList = append(t.freeList, idx)
	}

	return e.lookups
}

// Rename preserves the inode number and generation of oldPath's entry while
// moving it to newPath. If newPath already named a different inode, that
// mapping is replaced; the displaced inode keeps its slot until its own
// Forget drains it (open-fd-survives-unlink semantics, mirrored here for
// rename-over-existing).
func (t *Table) Rename(oldPath, newPath string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, ok := t.byPath[oldPath]
	if !ok {
		panic(fmt.Sprintf("inode.Table.Rename: unknown path: %q", oldPath))
	}

	delete(t.byPath, oldPath)

	// If newPath displaced a different inode, that inode keeps its slot and
	// its path field untouched (tombstoned out of byPath below by the
	// overwrite), so GetPath still resolves it until its own Forget drains
	// it — the same contract Unlink gives a deleted-but-open path.

	t.slots[idx].path = newPath
	t.byPath[newPath] = idx
}

// Unlink removes path from the name->inode direction but leaves the inode
// slot intact until Forget drains it; GetPath(ino) may still return path
// afterwards.
func (t *Table) Unlink(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.byPath[path]; !ok {
		panic(fmt.Sprintf("inode.Table.Unlink: unknown path: %q", path))
	}

	// slots[idx].path is deliberately left set so GetPath keeps resolving the
	// inode until Forget frees its slot.
	delete(t.byPath, path)
}

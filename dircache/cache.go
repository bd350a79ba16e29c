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

// Package dircache implements the synthetic directory-handle layer (C2):
// it lets a readdir callback return an entire listing in one shot while the
// kernel paginates through it across many readdir calls on the same handle.
package dircache

import (
	"fmt"

	"github.com/pathfusefs/pathfuse/pathfs"
)

// Entry is the cached state for one open directory handle: the user's real
// handle, returned verbatim from opendir, and the full listing once it has
// been fetched.
type Entry struct {
	RealFH uint64

	// Entries is nil until the first ReadDir call populates it; after that
	// it holds the full, unpaginated listing the user callback returned.
	Entries []pathfs.DirectoryEntry
}

// Cache maps synthetic directory handles to Entry values. The handle space
// wraps on overflow starting from 1; collisions are not reached in
// practice (2^64 concurrent opens).
//
// A Cache is driven from the single dispatch thread (opendir/readdir/
// releasedir never route through the worker pool), so it is not
// internally synchronized; callers must not share one across goroutines
// without external locking.
type Cache struct {
	next    uint64
	entries map[uint64]*Entry
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[uint64]*Entry),
	}
}

// NewEntry allocates a synthetic handle for realFH and stores a fresh Entry
// under it, returning the handle.
func (c *Cache) NewEntry(realFH uint64) (key uint64) {
	c.next++
	key = c.next

	c.entries[key] = &Entry{RealFH: realFH}

	return key
}

// RealFH returns the real handle stored under key. Looking up an unknown
// key is a fatal invariant violation: it means the dispatcher is driving
// readdir/releasedir against a handle the kernel was never given.
func (c *Cache) RealFH(key uint64) uint64 {
	e, ok := c.entries[key]
	if !ok {
		panic(fmt.Sprintf("dircache.Cache.RealFH: unknown key %d", key))
	}

	return e.RealFH
}

// GetMut returns the Entry stored under key for in-place mutation (e.g.
// populating Entries on first read). Fatal if key is unknown.
func (c *Cache) GetMut(key uint64) *Entry {
	e, ok := c.entries[key]
	if !ok {
		panic(fmt.Sprintf("dircache.Cache.GetMut: unknown key %d", key))
	}

	return e
}

// Delete removes key's entry. It is a no-op if key is absent, tolerating
// releasedir error paths that may run after a prior cleanup.
func (c *Cache) Delete(key uint64) {
	delete(c.entries, key)
}

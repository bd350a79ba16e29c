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

package inode_test

import (
	"testing"

	. "github.com/jacobsa/oglematchers"
	. "github.com/jacobsa/ogletest"

	"github.com/pathfusefs/pathfuse/inode"
)

func TestTable(t *testing.T) { RunTests(t) }

////////////////////////////////////////////////////////////////////////
// Boilerplate
////////////////////////////////////////////////////////////////////////

type TableTest struct {
	table *inode.Table
}

func init() { RegisterTestSuite(&TableTest{}) }

func (t *TableTest) SetUp(ti *TestInfo) {
	t.table = inode.New()
}

////////////////////////////////////////////////////////////////////////
// Tests
////////////////////////////////////////////////////////////////////////

func (t *TableTest) FreshTableHasOnlyRoot() {
	path, ok := t.table.GetPath(inode.RootID)
	AssertTrue(ok)
	ExpectEq("/", path)
}

func (t *TableTest) AddIsInverseOfGetPathAndGetInode() {
	ino, _ := t.table.Add("/foo")

	path, ok := t.table.GetPath(ino)
	AssertTrue(ok)
	ExpectEq("/foo", path)

	gotIno, ok := t.table.GetInode(path)
	AssertTrue(ok)
	ExpectEq(ino, gotIno)
}

func (t *TableTest) AddOnDuplicatePathPanics() {
	t.table.Add("/foo")
	ExpectThat(
		func() { t.table.Add("/foo") },
		Panics(HasSubstr("already mapped")))
}

func (t *TableTest) ForgetReusesSlotWithIncrementedGeneration() {
	ino1, gen1 := t.table.Add("/foo")
	newCount := t.table.Forget(ino1, 1)
	ExpectEq(0, newCount)

	ino2, gen2 := t.table.Add("/bar")
	ExpectEq(ino1, ino2)
	ExpectTrue(gen2 > gen1)
}

func (t *TableTest) LookupThenForgetIsNoOpOnCount() {
	ino, _ := t.table.AddOrGet("/foo")
	t.table.Lookup(ino)

	// AddOrGet started the count at 0; Lookup brought it to 1. Forgetting 1
	// should bring it back to zero and free the slot.
	newCount := t.table.Forget(ino, 1)
	ExpectEq(0, newCount)

	_, ok := t.table.GetPath(ino)
	ExpectFalse(ok)
}

func (t *TableTest) ForgetUnderflowPanics() {
	ino, _ := t.table.Add("/foo")
	ExpectThat(
		func() { t.table.Forget(ino, 2) },
		Panics(HasSubstr("exceeds lookup count")))
}

func (t *TableTest) RenamePreservesInodeAndUpdatesPaths() {
	inoA, _ := t.table.Add("/a")

	t.table.Rename("/a", "/b")

	_, ok := t.table.GetInode("/a")
	ExpectFalse(ok)

	gotIno, ok := t.table.GetInode("/b")
	AssertTrue(ok)
	ExpectEq(inoA, gotIno)

	path, ok := t.table.GetPath(inoA)
	AssertTrue(ok)
	ExpectEq("/b", path)
}

func (t *TableTest) RenameOverExistingDisplacesButKeepsSlotUntilForget() {
	inoA, _ := t.table.Add("/a")
	inoB, _ := t.table.Add("/b")

	t.table.Rename("/a", "/b")

	_, ok := t.table.GetInode("/a")
	ExpectFalse(ok)

	gotIno, ok := t.table.GetInode("/b")
	AssertTrue(ok)
	ExpectEq(inoA, gotIno)

	// The displaced inode B keeps its slot (and its now-unreachable path)
	// until its own Forget arrives.
	path, ok := t.table.GetPath(inoB)
	AssertTrue(ok)
	ExpectEq("/b", path)
}

func (t *TableTest) UnlinkTombstonesPathButKeepsSlot() {
	ino, _ := t.table.Add("/foo")

	t.table.Unlink("/foo")

	_, ok := t.table.GetInode("/foo")
	ExpectFalse(ok)

	path, ok := t.table.GetPath(ino)
	AssertTrue(ok)
	ExpectEq("/foo", path)
}

func (t *TableTest) RootInodeIsNeverRecycled() {
	newCount := t.table.Forget(inode.RootID, 1000)
	ExpectEq(1, newCount)

	path, ok := t.table.GetPath(inode.RootID)
	AssertTrue(ok)
	ExpectEq("/", path)
}

func (t *TableTest) AddOrGetReturnsExistingWithoutTouchingLookupCount() {
	ino1, gen1 := t.table.AddOrGet("/foo")
	ino2, gen2 := t.table.AddOrGet("/foo")

	ExpectEq(ino1, ino2)
	ExpectEq(gen1, gen2)

	// The count is still zero; a Forget of 0 leaves it at zero and frees it.
	newCount := t.table.Forget(ino1, 0)
	ExpectEq(0, newCount)
}

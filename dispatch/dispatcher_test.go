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

package dispatch_test

import (
	"context"
	"testing"
	"time"

	"github.com/jacobsa/fuse/fuseops"
	. "github.com/jacobsa/ogletest"

	"github.com/pathfusefs/pathfuse/dispatch"
	"github.com/pathfusefs/pathfuse/pathfs"
)

func TestDispatcher(t *testing.T) { RunTests(t) }

////////////////////////////////////////////////////////////////////////
// A fake backing file system
////////////////////////////////////////////////////////////////////////

// fakeFS is a minimal in-memory pathfs.FileSystem double, just enough surface
// to exercise the dispatcher's translation logic without a real mount.
type fakeFS struct {
	pathfs.UnimplementedFileSystem

	children map[string][]pathfs.DirectoryEntry
	attrs    map[string]pathfs.FileAttr

	mkdirCalls []string
}

func newFakeFS() *fakeFS {
	return &fakeFS{
		children: map[string][]pathfs.DirectoryEntry{
			"/": {{Name: "foo", Kind: pathfs.Directory}},
		},
		attrs: map[string]pathfs.FileAttr{
			"/":    {Perm: 0755, Kind: pathfs.Directory, Nlink: 1},
			"/foo": {Perm: 0755, Kind: pathfs.Directory, Nlink: 1},
			"/bar": {Perm: 0644, Kind: pathfs.RegularFile, Nlink: 1, Size: 4},
		},
	}
}

func (fs *fakeFS) Init(ctx context.Context, req pathfs.RequestInfo) error { return nil }
func (fs *fakeFS) Destroy()                                               {}

func (fs *fakeFS) LookUp(ctx context.Context, parent, name string, req pathfs.RequestInfo) (time.Duration, pathfs.FileAttr, error) {
	path := parent + name
	if parent != "/" {
		path = parent + "/" + name
	}
	attr, ok := fs.attrs[path]
	if !ok {
		return 0, pathfs.FileAttr{}, pathfs.ENOENT
	}
	return time.Minute, attr, nil
}

func (fs *fakeFS) GetAttr(ctx context.Context, path string, fh *uint64, req pathfs.RequestInfo) (time.Duration, pathfs.FileAttr, error) {
	attr, ok := fs.attrs[path]
	if !ok {
		return 0, pathfs.FileAttr{}, pathfs.ENOENT
	}
	return time.Minute, attr, nil
}

func (fs *fakeFS) Mkdir(ctx context.Context, parent, name string, mode uint32, req pathfs.RequestInfo) (pathfs.FileAttr, error) {
	fs.mkdirCalls = append(fs.mkdirCalls, parent+"/"+name)
	attr := pathfs.FileAttr{Perm: 0755, Kind: pathfs.Directory, Nlink: 1}
	fs.attrs[parent+"/"+name] = attr
	return attr, nil
}

func (fs *fakeFS) OpenDir(ctx context.Context, path string, flags uint32, req pathfs.RequestInfo) (uint64, uint32, error) {
	return 42, 0, nil
}

func (fs *fakeFS) ReadDir(ctx context.Context, path string, fh uint64, req pathfs.RequestInfo) ([]pathfs.DirectoryEntry, error) {
	return fs.children[path], nil
}

func (fs *fakeFS) ReleaseDir(ctx context.Context, path string, fh uint64, req pathfs.RequestInfo) error {
	return nil
}

////////////////////////////////////////////////////////////////////////
// Boilerplate
////////////////////////////////////////////////////////////////////////

type DispatcherTest struct {
	fs *fakeFS
	d  *dispatch.Dispatcher
}

func init() { RegisterTestSuite(&DispatcherTest{}) }

func (t *DispatcherTest) SetUp(ti *TestInfo) {
	t.fs = newFakeFS()
	t.d = dispatch.New(dispatch.Config{FS: t.fs})
}

func hdr() fuseops.OpHeader {
	return fuseops.OpHeader{Uid: 501, Gid: 20, Pid: 1234}
}

////////////////////////////////////////////////////////////////////////
// Tests
////////////////////////////////////////////////////////////////////////

func (t *DispatcherTest) InitSucceeds() {
	err := t.d.Init(context.Background(), &fuseops.InitOp{Header: hdr()})
	AssertEq(nil, err)
}

func (t *DispatcherTest) LookUpInodeResolvesAgainstRoot() {
	op := &fuseops.LookUpInodeOp{
		Header: hdr(),
		Parent: fuseops.RootInodeID,
		Name:   "foo",
	}

	err := t.d.LookUpInode(context.Background(), op)
	AssertEq(nil, err)
	ExpectFalse(op.Entry.Child == 0)
	ExpectTrue(op.Entry.Attributes.Mode.IsDir())
}

func (t *DispatcherTest) LookUpInodeMissingChildReturnsENOENT() {
	op := &fuseops.LookUpInodeOp{
		Header: hdr(),
		Parent: fuseops.RootInodeID,
		Name:   "nonexistent",
	}

	err := t.d.LookUpInode(context.Background(), op)
	errno, ok := pathfs.IsErrno(err)
	AssertTrue(ok)
	ExpectEq(pathfs.ENOENT, errno)
}

func (t *DispatcherTest) LookUpInodeTwiceReturnsSameInode() {
	op1 := &fuseops.LookUpInodeOp{Header: hdr(), Parent: fuseops.RootInodeID, Name: "foo"}
	AssertEq(nil, t.d.LookUpInode(context.Background(), op1))

	op2 := &fuseops.LookUpInodeOp{Header: hdr(), Parent: fuseops.RootInodeID, Name: "foo"}
	AssertEq(nil, t.d.LookUpInode(context.Background(), op2))

	ExpectEq(op1.Entry.Child, op2.Entry.Child)
}

func (t *DispatcherTest) GetInodeAttributesForRoot() {
	op := &fuseops.GetInodeAttributesOp{Header: hdr(), Inode: fuseops.RootInodeID}

	err := t.d.GetInodeAttributes(context.Background(), op)
	AssertEq(nil, err)
	ExpectTrue(op.Attributes.Mode.IsDir())
}

func (t *DispatcherTest) MkDirCreatesChildAndRecordsItInTheTable() {
	op := &fuseops.MkDirOp{
		Header: hdr(),
		Parent: fuseops.RootInodeID,
		Name:   "newdir",
		Mode:   0755,
	}

	err := t.d.MkDir(context.Background(), op)
	AssertEq(nil, err)
	AssertEq(1, len(t.fs.mkdirCalls))
	ExpectEq("//newdir", t.fs.mkdirCalls[0])
	ExpectFalse(op.Entry.Child == 0)
}

func (t *DispatcherTest) OpenDirThenReadDirListsSyntheticAndRealEntries() {
	openOp := &fuseops.OpenDirOp{Header: hdr(), Inode: fuseops.RootInodeID}
	AssertEq(nil, t.d.OpenDir(context.Background(), openOp))

	readOp := &fuseops.ReadDirOp{
		Header: hdr(),
		Inode:  fuseops.RootInodeID,
		Handle: openOp.Handle,
		Dst:    make([]byte, 4096),
	}

	err := t.d.ReadDir(context.Background(), readOp)
	AssertEq(nil, err)
	ExpectTrue(readOp.BytesRead > 0)
}

func (t *DispatcherTest) ReleaseDirHandleDelegatesToBackingFileSystem() {
	openOp := &fuseops.OpenDirOp{Header: hdr(), Inode: fuseops.RootInodeID}
	AssertEq(nil, t.d.OpenDir(context.Background(), openOp))

	releaseOp := &fuseops.ReleaseDirHandleOp{Handle: openOp.Handle}
	err := t.d.ReleaseDirHandle(context.Background(), releaseOp)
	AssertEq(nil, err)
}

func (t *DispatcherTest) UnknownInodeReturnsEINVAL() {
	op := &fuseops.GetInodeAttributesOp{Header: hdr(), Inode: fuseops.InodeID(99999)}

	err := t.d.GetInodeAttributes(context.Background(), op)
	errno, ok := pathfs.IsErrno(err)
	AssertTrue(ok)
	ExpectEq(pathfs.EINVAL, errno)
}

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

package pathfs

import (
	"context"
	"time"
)

// ReadCallback receives the bytes read by Read. It lets an implementation
// hand the dispatcher a borrowed slice (e.g. a page out of its own cache)
// instead of forcing an owning copy on every read, in contrast to Write,
// which must take ownership because the kernel transport reuses its receive
// buffer across requests.
type ReadCallback func(data []byte) error

// FileSystem is the capability set a caller of package dispatch implements.
// Every method other than Init and Destroy has a default of ENOSYS via
// UnimplementedFileSystem (its Init returns nil and its Destroy does
// nothing); embed that type and override only what you support.
//
// Implementations must be safe for concurrent use: the dispatcher may invoke
// Read, Write, Flush, and Fsync concurrently from worker-pool goroutines
// while every other method runs serially on the kernel dispatch thread.
type FileSystem interface {
	// Lifecycle.
	Init(ctx context.Context, req RequestInfo) error
	Destroy()

	// Attribute read.
	GetAttr(ctx context.Context, path string, fh *uint64, req RequestInfo) (time.Duration, FileAttr, error)

	// Attribute write: the setattr splitter in package dispatch issues these
	// as independent sub-operations.
	Chmod(ctx context.Context, path string, fh *uint64, mode uint32, req RequestInfo) error
	Chown(ctx context.Context, path string, fh *uint64, uid, gid *uint32, req RequestInfo) error
	Truncate(ctx context.Context, path string, fh *uint64, size uint64, req RequestInfo) error
	Utimens(ctx context.Context, path string, fh *uint64, atime, mtime *time.Time, req RequestInfo) error
	UtimensMacOS(ctx context.Context, path string, fh *uint64, crtime, chgtime, bkuptime *time.Time, flags uint32, req RequestInfo) error

	// Namespace.
	LookUp(ctx context.Context, parent string, name string, req RequestInfo) (time.Duration, FileAttr, error)
	Readlink(ctx context.Context, path string, req RequestInfo) (string, error)
	Mknod(ctx context.Context, parent string, name string, mode uint32, rdev uint32, req RequestInfo) (FileAttr, error)
	Mkdir(ctx context.Context, parent string, name string, mode uint32, req RequestInfo) (FileAttr, error)
	Unlink(ctx context.Context, parent string, name string, req RequestInfo) error
	Rmdir(ctx context.Context, parent string, name string, req RequestInfo) error
	Symlink(ctx context.Context, parent string, name string, target string, req RequestInfo) (FileAttr, error)
	Rename(ctx context.Context, oldParent string, oldName string, newParent string, newName string, req RequestInfo) error
	Link(ctx context.Context, path string, newParent string, newName string, req RequestInfo) (FileAttr, error)
	Create(ctx context.Context, parent string, name string, mode uint32, flags uint32, req RequestInfo) (CreatedEntry, error)

	// File I/O. Read, Write, Flush, and Fsync are the only operations the
	// dispatcher ever routes through the worker pool.
	Open(ctx context.Context, path string, flags uint32, req RequestInfo) (fh uint64, openFlags uint32, err error)
	Read(ctx context.Context, path string, fh uint64, offset int64, size int, cb ReadCallback, req RequestInfo) error
	Write(ctx context.Context, path string, fh uint64, offset int64, data []byte, flags uint32, req RequestInfo) (int, error)
	Flush(ctx context.Context, path string, fh uint64, req RequestInfo) error
	Release(ctx context.Context, path string, fh uint64, req RequestInfo) error
	Fsync(ctx context.Context, path string, fh uint64, datasync bool, req RequestInfo) error

	// Directory I/O.
	OpenDir(ctx context.Context, path string, flags uint32, req RequestInfo) (fh uint64, openFlags uint32, err error)
	ReadDir(ctx context.Context, path string, fh uint64, req RequestInfo) ([]DirectoryEntry, error)
	ReleaseDir(ctx context.Context, path string, fh uint64, req RequestInfo) error
	FsyncDir(ctx context.Context, path string, fh uint64, datasync bool, req RequestInfo) error

	// Volume.
	StatFs(ctx context.Context, path string, req RequestInfo) (Statfs, error)

	// Extended attributes. GetXattr and ListXattr implement the size-probe
	// protocol described by pathfs.Xattr.
	SetXattr(ctx context.Context, path string, name string, value []byte, flags uint32, req RequestInfo) error
	GetXattr(ctx context.Context, path string, name string, size uint32, req RequestInfo) (Xattr, error)
	ListXattr(ctx context.Context, path string, size uint32, req RequestInfo) (Xattr, error)
	RemoveXattr(ctx context.Context, path string, name string, req RequestInfo) error

	// Access.
	Access(ctx context.Context, path string, mask uint32, req RequestInfo) error
}

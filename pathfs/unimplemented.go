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

// UnimplementedFileSystem answers every FileSystem method with ENOSYS,
// except Init, which returns nil, and Destroy, which does nothing.
// Embed it in a concrete type and override only the methods you support.
type UnimplementedFileSystem struct{}

var _ FileSystem = &UnimplementedFileSystem{}

func (fs *UnimplementedFileSystem) Init(ctx context.Context, req RequestInfo) error { return nil }
func (fs *UnimplementedFileSystem) Destroy()                                       {}

func (fs *UnimplementedFileSystem) GetAttr(ctx context.Context, path string, fh *uint64, req RequestInfo) (time.Duration, FileAttr, error) {
	return 0, FileAttr{}, ENOSYS
}

func (fs *UnimplementedFileSystem) Chmod(ctx context.Context, path string, fh *uint64, mode uint32, req RequestInfo) error {
	return ENOSYS
}

func (fs *UnimplementedFileSystem) Chown(ctx context.Context, path string, fh *uint64, uid, gid *uint32, req RequestInfo) error {
	return ENOSYS
}

func (fs *UnimplementedFileSystem) Truncate(ctx context.Context, path string, fh *uint64, size uint64, req RequestInfo) error {
	return ENOSYS
}

func (fs *UnimplementedFileSystem) Utimens(ctx context.Context, path string, fh *uint64, atime, mtime *time.Time, req RequestInfo) error {
	return ENOSYS
}

func (fs *UnimplementedFileSystem) UtimensMacOS(ctx context.Context, path string, fh *uint64, crtime, chgtime, bkuptime *time.Time, flags uint32, req RequestInfo) error {
	return ENOSYS
}

func (fs *UnimplementedFileSystem) LookUp(ctx context.Context, parent string, name string, req RequestInfo) (time.Duration, FileAttr, error) {
	return 0, FileAttr{}, ENOSYS
}

func (fs *UnimplementedFileSystem) Readlink(ctx context.Context, path string, req RequestInfo) (string, error) {
	return "", ENOSYS
}

func (fs *UnimplementedFileSystem) Mknod(ctx context.Context, parent string, name string, mode uint32, rdev uint32, req RequestInfo) (FileAttr, error) {
	return FileAttr{}, ENOSYS
}

func (fs *UnimplementedFileSystem) Mkdir(ctx context.Context, parent string, name string, mode uint32, req RequestInfo) (FileAttr, error) {
	return FileAttr{}, ENOSYS
}

func (fs *UnimplementedFileSystem) Unlink(ctx context.Context, parent string, name string, req RequestInfo) error {
	return ENOSYS
}

func (fs *UnimplementedFileSystem) Rmdir(ctx context.Context, parent string, name string, req RequestInfo) error {
	return ENOSYS
}

func (fs *UnimplementedFileSystem) Symlink(ctx context.Context, parent string, name string, target string, req RequestInfo) (FileAttr, error) {
	return FileAttr{}, ENOSYS
}

func (fs *UnimplementedFileSystem) Rename(ctx context.Context, oldParent string, oldName string, newParent string, newName string, req RequestInfo) error {
	return ENOSYS
}

func (fs *UnimplementedFileSystem) Link(ctx context.Context, path string, newParent string, newName string, req RequestInfo) (FileAttr, error) {
	return FileAttr{}, ENOSYS
}

func (fs *UnimplementedFileSystem) Create(ctx context.Context, parent string, name string, mode uint32, flags uint32, req RequestInfo) (CreatedEntry, error) {
	return CreatedEntry{}, ENOSYS
}

func (fs *UnimplementedFileSystem) Open(ctx context.Context, path string, flags uint32, req RequestInfo) (uint64, uint32, error) {
	return 0, 0, ENOSYS
}

func (fs *UnimplementedFileSystem) Read(ctx context.Context, path string, fh uint64, offset int64, size int, cb ReadCallback, req RequestInfo) error {
	return ENOSYS
}

func (fs *UnimplementedFileSystem) Write(ctx context.Context, path string, fh uint64, offset int64, data []byte, flags uint32, req RequestInfo) (int, error) {
	return 0, ENOSYS
}

func (fs *UnimplementedFileSystem) Flush(ctx context.Context, path string, fh uint64, req RequestInfo) error {
	return ENOSYS
}

func (fs *UnimplementedFileSystem) Release(ctx context.Context, path string, fh uint64, req RequestInfo) error {
	return ENOSYS
}

func (fs *UnimplementedFileSystem) Fsync(ctx context.Context, path string, fh uint64, datasync bool, req RequestInfo) error {
	return ENOSYS
}

func (fs *UnimplementedFileSystem) OpenDir(ctx context.Context, path string, flags uint32, req RequestInfo) (uint64, uint32, error) {
	return 0, 0, ENOSYS
}

func (fs *UnimplementedFileSystem) ReadDir(ctx context.Context, path string, fh uint64, req RequestInfo) ([]DirectoryEntry, error) {
	return nil, ENOSYS
}

func (fs *UnimplementedFileSystem) ReleaseDir(ctx context.Context, path string, fh uint64, req RequestInfo) error {
	return ENOSYS
}

func (fs *UnimplementedFileSystem) FsyncDir(ctx context.Context, path string, fh uint64, datasync bool, req RequestInfo) error {
	return ENOSYS
}

func (fs *UnimplementedFileSystem) StatFs(ctx context.Context, path string, req RequestInfo) (Statfs, error) {
	return Statfs{}, ENOSYS
}

func (fs *UnimplementedFileSystem) SetXattr(ctx context.Context, path string, name string, value []byte, flags uint32, req RequestInfo) error {
	return ENOSYS
}

func (fs *UnimplementedFileSystem) GetXattr(ctx context.Context, path string, name string, size uint32, req RequestInfo) (Xattr, error) {
	return Xattr{}, ENOSYS
}

func (fs *UnimplementedFileSystem) ListXattr(ctx context.Context, path string, size uint32, req RequestInfo) (Xattr, error) {
	return Xattr{}, ENOSYS
}

func (fs *UnimplementedFileSystem) RemoveXattr(ctx context.Context, path string, name string, req RequestInfo) error {
	return ENOSYS
}

func (fs *UnimplementedFileSystem) Access(ctx context.Context, path string, mask uint32, req RequestInfo) error {
	return ENOSYS
}

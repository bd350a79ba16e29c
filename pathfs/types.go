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

// Package pathfs defines the contract a user-supplied, path-addressed file
// system implements in order to be served by the dispatcher in package
// dispatch: a capability set with a default ENOSYS implementation for every
// method (see UnimplementedFileSystem).
package pathfs

import (
	"os"
	"time"
)

// FileType identifies the kind of a directory entry or inode. The zero value
// is not a valid kind; callers must set one explicitly.
type FileType int

const (
	_ FileType = iota
	RegularFile
	Directory
	Symlink
	BlockDevice
	CharDevice
	NamedPipe
	Socket
)

// RequestInfo carries the identity of the kernel request that triggered a
// callback. The dispatcher fills in Uid, Gid, and Pid from the op header; it
// is never constructed by the user implementation.
type RequestInfo struct {
	// Unique is the kernel's request sequence number. The dispatcher leaves
	// it zero; replies are correlated by the transport, not by this field.
	Unique uint64
	Uid    uint32
	Gid    uint32
	Pid    uint32
}

// FileAttr mirrors struct stat. Callbacks need not set Ino: the dispatcher
// stamps it into the value a callback returns, because only the inode table knows
// the path<->inode mapping (see inode.Table).
type FileAttr struct {
	Ino    uint64
	Size   uint64
	Blocks uint64
	Atime  time.Time
	Mtime  time.Time
	Ctime  time.Time
	Crtime time.Time
	Kind   FileType
	Perm   os.FileMode
	Nlink  uint32
	Uid    uint32
	Gid    uint32
	Rdev   uint32
	Flags  uint32
}

// DirectoryEntry is one line of a directory listing returned in full by
// ReadDir and cached by the directory cache for the life of the handle.
type DirectoryEntry struct {
	Name string
	Kind FileType
}

// CreatedEntry is the result of Create: a freshly-made, freshly-opened file.
type CreatedEntry struct {
	Attr  FileAttr
	TTL   time.Duration
	FH    uint64
	Flags uint32
}

// Statfs mirrors struct statvfs.
type Statfs struct {
	Blocks     uint64
	Bfree      uint64
	Bavail     uint64
	Files      uint64
	Ffree      uint64
	BlockSize  uint32
	NameLength uint32
	FragSize   uint32
}

// XattrKind distinguishes the two legal replies to a size-probe xattr
// request: either the caller's buffer was zero-sized and we report how big a
// buffer would need to be, or it was nonzero and we return the data.
type XattrKind int

const (
	XattrSize XattrKind = iota
	XattrData
)

// Xattr is the result of GetXattr/ListXattr, implementing the size-probe
// protocol: a zero-size request returns XattrSize, any other request returns
// XattrData (or ERANGE if it still doesn't fit).
type Xattr struct {
	Kind XattrKind
	Size uint32
	Data []byte
}

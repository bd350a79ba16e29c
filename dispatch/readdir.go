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

package dispatch

import (
	"context"

	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"

	"github.com/pathfusefs/pathfuse/pathfs"
)

func (d *Dispatcher) OpenDir(ctx context.Context, op *fuseops.OpenDirOp) error {
	return d.traceOp(ctx, "OpenDir", op.Inode, func(ctx context.Context) error {
		path, err := d.resolvePath(op.Inode)
		if err != nil {
			return err
		}

		fh, _, err := d.fs.OpenDir(ctx, path, uint32(op.Flags), d.reqInfo(op.Header))
		if err != nil {
			return err
		}

		op.Handle = fuseops.HandleID(d.dirs.NewEntry(fh))
		return nil
	})
}

// ReadDir serves a directory listing page at a time out of a full listing
// fetched once per handle and cached in dircache.Cache: the cache is
// populated from pathfs.FileSystem.ReadDir on the first call for a handle
// (offset 0), and every subsequent call for the same handle walks the
// cached slice starting at op.Offset.
//
// Entries other than "." and ".." are reported with the sentinel inode
// forgetAskMeViaLookup rather than a resolved inode number: the dispatcher
// does not allocate inode table slots speculatively for every directory
// entry it has merely listed, only for entries the kernel actually looks
// up. This trades one extra LookUpInode round trip per entry the kernel
// decides to address for never polluting the inode table with paths no
// one asked about.
func (d *Dispatcher) ReadDir(ctx context.Context, op *fuseops.ReadDirOp) error {
	return d.traceOp(ctx, "ReadDir", op.Inode, func(ctx context.Context) error {
		path, err := d.resolvePath(op.Inode)
		if err != nil {
			return err
		}

		key := uint64(op.Handle)
		realFH := d.dirs.RealFH(key)

		if op.Offset == 0 {
			listing, err := d.fs.ReadDir(ctx, path, realFH, d.reqInfo(op.Header))
			if err != nil {
				return err
			}
			d.dirs.GetMut(key).Entries = listing
		}

		cached := d.dirs.GetMut(key).Entries

		// ".." must resolve to the real parent inode (root is its own
		// parent), not the lookup-on-demand sentinel ordinary entries get:
		// the kernel may use it directly without ever calling LookUpInode.
		parentIno, ok := d.table.GetInode(parentPath(path))
		if !ok {
			return pathfs.EIO
		}

		// Synthetic "." and ".." occupy offsets 0 and 1; real entries start at 2.
		all := make([]fuseutil.Dirent, 0, len(cached)+2)
		all = append(all,
			fuseutil.Dirent{Offset: 1, Inode: op.Inode, Name: ".", Type: fuseutil.DT_Directory},
			fuseutil.Dirent{Offset: 2, Inode: fuseops.InodeID(parentIno), Name: "..", Type: fuseutil.DT_Directory},
		)
		for i, e := range cached {
			all = append(all, fuseutil.Dirent{
				Offset: fuseops.DirOffset(i + 3),
				Inode:  fuseops.InodeID(forgetAskMeViaLookup),
				Name:   e.Name,
				Type:   toDirentType(e.Kind),
			})
		}

		for i := int(op.Offset); i < len(all); i++ {
			n := fuseutil.WriteDirent(op.Dst[op.BytesRead:], all[i])
			if n == 0 {
				break
			}
			op.BytesRead += n
		}

		return nil
	})
}

func (d *Dispatcher) ReleaseDirHandle(ctx context.Context, op *fuseops.ReleaseDirHandleOp) error {
	return d.traceOp(ctx, "ReleaseDirHandle", 0, func(ctx context.Context) error {
		key := uint64(op.Handle)
		realFH := d.dirs.RealFH(key)
		defer d.dirs.Delete(key)

		// Path resolution has nothing left to resolve against by the time a
		// handle is released (the inode may already be forgotten), so Release
		// is invoked without it; ReleaseDir only needs the handle.
		return d.fs.ReleaseDir(ctx, "", realFH, d.reqInfo(op.Header))
	})
}

func (d *Dispatcher) ReadSymlink(ctx context.Context, op *fuseops.ReadSymlinkOp) error {
	return d.traceOp(ctx, "ReadSymlink", op.Inode, func(ctx context.Context) error {
		path, err := d.resolvePath(op.Inode)
		if err != nil {
			return err
		}

		target, err := d.fs.Readlink(ctx, path, d.reqInfo(op.Header))
		if err != nil {
			return err
		}

		op.Target = target
		return nil
	})
}

func toDirentType(k pathfs.FileType) fuseutil.DirentType {
	switch k {
	case pathfs.Directory:
		return fuseutil.DT_Directory
	case pathfs.Symlink:
		return fuseutil.DT_Link
	case pathfs.BlockDevice:
		return fuseutil.DT_Block
	case pathfs.CharDevice:
		return fuseutil.DT_Char
	case pathfs.NamedPipe:
		return fuseutil.DT_FIFO
	case pathfs.Socket:
		return fuseutil.DT_Socket
	default:
		return fuseutil.DT_File
	}
}

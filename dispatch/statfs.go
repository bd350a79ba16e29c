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
)

// StatFS reports volume-wide statistics. The kernel never ties statfs(2) to
// an inode the mounted process chose itself, so the dispatcher always
// resolves against the root ("/") regardless of which inode the StatFSOp
// names.
func (d *Dispatcher) StatFS(ctx context.Context, op *fuseops.StatFSOp) error {
	return d.traceOp(ctx, "StatFS", fuseops.RootInodeID, func(ctx context.Context) error {
		stats, err := d.fs.StatFs(ctx, "/", d.reqInfo(op.Header))
		if err != nil {
			return err
		}

		op.BlockSize = stats.BlockSize
		op.Blocks = stats.Blocks
		op.BlocksFree = stats.Bfree
		op.BlocksAvailable = stats.Bavail
		op.Inodes = stats.Files
		op.InodesFree = stats.Ffree
		op.IoSize = stats.BlockSize

		return nil
	})
}

// Access is not part of every deployment's checklist: many FUSE mounts rely
// on the kernel's default_permissions option and never receive an AccessOp
// at all. Where the kernel does forward access(2), the dispatcher resolves
// the path exactly like every other op and passes the request straight
// through.
func (d *Dispatcher) Access(ctx context.Context, op *fuseops.AccessOp) error {
	return d.traceOp(ctx, "Access", op.Inode, func(ctx context.Context) error {
		path, err := d.resolvePath(op.Inode)
		if err != nil {
			return err
		}

		return d.fs.Access(ctx, path, op.Mask, d.reqInfo(op.Header))
	})
}

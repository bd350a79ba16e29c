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

// SetInodeAttributes is the setattr splitter: the kernel bundles every
// attribute change (chmod, chown, truncate, utime, and on macOS the BSD
// flags/crtime/backup-time trio) into one SetInodeAttributesOp, but
// pathfs.FileSystem exposes each as its own method. The splitter issues the
// sub-operations in a fixed order and returns the first error without
// calling anything further; if every sub-operation succeeds it finishes
// with a GetAttr to report the resulting attributes (matching
// SetInodeAttributesOp's own GetInodeAttributesOp-shaped reply).
func (d *Dispatcher) SetInodeAttributes(ctx context.Context, op *fuseops.SetInodeAttributesOp) error {
	return d.traceOp(ctx, "SetInodeAttributes", op.Inode, func(ctx context.Context) error {
		path, err := d.resolvePath(op.Inode)
		if err != nil {
			return err
		}

		req := d.reqInfo(op.Header)

		if op.Mode != nil {
			if err := d.fs.Chmod(ctx, path, nil, uint32(*op.Mode), req); err != nil {
				return err
			}
		}

		if op.Uid != nil || op.Gid != nil {
			if err := d.fs.Chown(ctx, path, nil, op.Uid, op.Gid, req); err != nil {
				return err
			}
		}

		if op.Size != nil {
			if err := d.fs.Truncate(ctx, path, nil, *op.Size, req); err != nil {
				return err
			}
		}

		if op.Atime != nil || op.Mtime != nil {
			if err := d.fs.Utimens(ctx, path, nil, op.Atime, op.Mtime, req); err != nil {
				return err
			}
		}

		if op.Crtime != nil || op.Chgtime != nil || op.Bkuptime != nil || op.Flags != nil {
			var flags uint32
			if op.Flags != nil {
				flags = *op.Flags
			}
			if err := d.fs.UtimensMacOS(ctx, path, nil, op.Crtime, op.Chgtime, op.Bkuptime, flags, req); err != nil {
				return err
			}
		}

		ttl, attr, err := d.fs.GetAttr(ctx, path, nil, req)
		if err != nil {
			return err
		}

		attr.Ino = uint64(op.Inode)
		op.Attributes = toInodeAttributes(attr)
		op.AttributesExpiration = d.clock.Now().Add(ttl)

		return nil
	})
}

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

	"github.com/pathfusefs/pathfuse/pathfs"
)

// fillXattrReply copies an Xattr's size-probe reply into the two out-params
// every xattr read op shares: BytesRead on success (the required buffer
// size, for an XattrSize reply), or ERANGE when the caller's buffer is
// nonzero but still too small.
func fillXattrReply(x pathfs.Xattr, dst []byte, bytesRead *int) error {
	if x.Kind == pathfs.XattrSize {
		*bytesRead = int(x.Size)
		return nil
	}
	if len(x.Data) > len(dst) {
		return pathfs.ERANGE
	}
	*bytesRead = copy(dst, x.Data)
	return nil
}

func (d *Dispatcher) GetXattr(ctx context.Context, op *fuseops.GetXattrOp) error {
	return d.traceOp(ctx, "GetXattr", op.Inode, func(ctx context.Context) error {
		path, err := d.resolvePath(op.Inode)
		if err != nil {
			return err
		}

		x, err := d.fs.GetXattr(ctx, path, op.Name, uint32(len(op.Dst)), d.reqInfo(op.Header))
		if err != nil {
			return err
		}

		return fillXattrReply(x, op.Dst, &op.BytesRead)
	})
}

func (d *Dispatcher) ListXattr(ctx context.Context, op *fuseops.ListXattrOp) error {
	return d.traceOp(ctx, "ListXattr", op.Inode, func(ctx context.Context) error {
		path, err := d.resolvePath(op.Inode)
		if err != nil {
			return err
		}

		x, err := d.fs.ListXattr(ctx, path, uint32(len(op.Dst)), d.reqInfo(op.Header))
		if err != nil {
			return err
		}

		return fillXattrReply(x, op.Dst, &op.BytesRead)
	})
}

func (d *Dispatcher) SetXattr(ctx context.Context, op *fuseops.SetXattrOp) error {
	return d.traceOp(ctx, "SetXattr", op.Inode, func(ctx context.Context) error {
		path, err := d.resolvePath(op.Inode)
		if err != nil {
			return err
		}

		return d.fs.SetXattr(ctx, path, op.Name, op.Value, op.Flags, d.reqInfo(op.Header))
	})
}

func (d *Dispatcher) RemoveXattr(ctx context.Context, op *fuseops.RemoveXattrOp) error {
	return d.traceOp(ctx, "RemoveXattr", op.Inode, func(ctx context.Context) error {
		path, err := d.resolvePath(op.Inode)
		if err != nil {
			return err
		}

		return d.fs.RemoveXattr(ctx, path, op.Name, d.reqInfo(op.Header))
	})
}

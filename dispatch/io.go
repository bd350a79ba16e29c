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

	"github.com/pathfusefs/pathfuse/workerpool"
)

func (d *Dispatcher) OpenFile(ctx context.Context, op *fuseops.OpenFileOp) error {
	return d.traceOp(ctx, "OpenFile", op.Inode, func(ctx context.Context) error {
		path, err := d.resolvePath(op.Inode)
		if err != nil {
			return err
		}

		fh, _, err := d.fs.Open(ctx, path, uint32(op.Flags), d.reqInfo(op.Header))
		if err != nil {
			return err
		}

		op.Handle = fuseops.HandleID(fh)
		return nil
	})
}

// submitAndWait runs fn on the worker pool and blocks for its completion,
// preserving the synchronous request/reply contract every fuseops.FileSystem
// method must honor even though the underlying Task, once queued to a fixed
// pool, is otherwise fire-and-forget (see workerpool.Pool.Submit).
func submitAndWait(ctx context.Context, pool *workerpool.Pool, fn func(ctx context.Context) error) error {
	done := make(chan error, 1)
	pool.Submit(ctx, func(ctx context.Context) {
		done <- fn(ctx)
	})

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) ReadFile(ctx context.Context, op *fuseops.ReadFileOp) error {
	return d.traceOp(ctx, "ReadFile", op.Inode, func(ctx context.Context) error {
		path, err := d.resolvePath(op.Inode)
		if err != nil {
			return err
		}
		req := d.reqInfo(op.Header)

		return submitAndWait(ctx, d.pool, func(ctx context.Context) error {
			return d.fs.Read(ctx, path, uint64(op.Handle), op.Offset, len(op.Dst), func(data []byte) error {
				op.BytesRead = copy(op.Dst, data)
				return nil
			}, req)
		})
	})
}

func (d *Dispatcher) WriteFile(ctx context.Context, op *fuseops.WriteFileOp) error {
	return d.traceOp(ctx, "WriteFile", op.Inode, func(ctx context.Context) error {
		path, err := d.resolvePath(op.Inode)
		if err != nil {
			return err
		}
		req := d.reqInfo(op.Header)

		return submitAndWait(ctx, d.pool, func(ctx context.Context) error {
			_, err := d.fs.Write(ctx, path, uint64(op.Handle), op.Offset, op.Data, 0, req)
			return err
		})
	})
}

func (d *Dispatcher) FlushFile(ctx context.Context, op *fuseops.FlushFileOp) error {
	return d.traceOp(ctx, "FlushFile", op.Inode, func(ctx context.Context) error {
		path, err := d.resolvePath(op.Inode)
		if err != nil {
			return err
		}
		req := d.reqInfo(op.Header)

		return submitAndWait(ctx, d.pool, func(ctx context.Context) error {
			return d.fs.Flush(ctx, path, uint64(op.Handle), req)
		})
	})
}

func (d *Dispatcher) SyncFile(ctx context.Context, op *fuseops.SyncFileOp) error {
	return d.traceOp(ctx, "SyncFile", op.Inode, func(ctx context.Context) error {
		path, err := d.resolvePath(op.Inode)
		if err != nil {
			return err
		}
		req := d.reqInfo(op.Header)

		return submitAndWait(ctx, d.pool, func(ctx context.Context) error {
			return d.fs.Fsync(ctx, path, uint64(op.Handle), false, req)
		})
	})
}

func (d *Dispatcher) ReleaseFileHandle(ctx context.Context, op *fuseops.ReleaseFileHandleOp) error {
	return d.traceOp(ctx, "ReleaseFileHandle", 0, func(ctx context.Context) error {
		// The inode may already have been forgotten by the time the last file
		// descriptor referencing it closes; pathfs.FileSystem.Release only
		// needs the handle, so no path resolution is attempted here.
		return d.fs.Release(ctx, "", uint64(op.Handle), d.reqInfo(op.Header))
	})
}

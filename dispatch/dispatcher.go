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

// Package dispatch implements the request dispatcher (C4): the protocol
// adapter between github.com/jacobsa/fuse's fuseops.FileSystem interface
// (inode-addressed) and a pathfs.FileSystem implementation (path-addressed).
package dispatch

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"
	"github.com/jacobsa/timeutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pathfusefs/pathfuse/dircache"
	"github.com/pathfusefs/pathfuse/inode"
	"github.com/pathfusefs/pathfuse/pathfs"
	"github.com/pathfusefs/pathfuse/workerpool"
)

// forgetAskMeViaLookup is the sentinel inode (bitwise complement of 1)
// reported for every directory entry other than "." and "..", whether or
// not the dispatcher has already resolved that name: the kernel is expected
// to issue a lookup for any name it needs to address further.
const forgetAskMeViaLookup = ^uint64(1)

// Dispatcher implements fuseops.FileSystem, translating inode-addressed
// kernel operations into calls against a path-addressed pathfs.FileSystem.
//
// The inode table and directory cache are touched only
// from the single kernel dispatch goroutine that the fuse.Server drives
// FileSystem methods from; Dispatcher adds no locking of its own around
// them. inode.Table guards its state with a mutex; dircache.Cache is not
// synchronized at all.
type Dispatcher struct {
	fuseutil.NotImplementedFileSystem

	fs    pathfs.FileSystem
	table *inode.Table
	dirs  *dircache.Cache
	pool  *workerpool.Pool
	clock timeutil.Clock
	log   *slog.Logger

	sessionID string
	metrics   *Metrics
	tracer    trace.Tracer
}

// Config bundles the dependencies a Dispatcher needs.
type Config struct {
	FS      pathfs.FileSystem
	Pool    *workerpool.Pool
	Clock   timeutil.Clock
	Log     *slog.Logger
	Metrics *Metrics
}

// New constructs a Dispatcher with a fresh inode table (containing only the
// root) and directory cache.
func New(cfg Config) *Dispatcher {
	if cfg.Pool == nil {
		cfg.Pool = workerpool.New(0)
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics(nil)
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock()
	}

	return &Dispatcher{
		fs:        cfg.FS,
		table:     inode.New(),
		dirs:      dircache.New(),
		pool:      cfg.Pool,
		clock:     cfg.Clock,
		log:       cfg.Log,
		sessionID: uuid.NewString(),
		metrics:   cfg.Metrics,
		tracer:    otel.Tracer("github.com/pathfusefs/pathfuse/dispatch"),
	}
}

// resolvePath is step 1 of every dispatcher operation: look
// up the path for an inode, replying EINVAL without invoking the user
// callback if the inode is unknown.
func (d *Dispatcher) resolvePath(ino fuseops.InodeID) (string, error) {
	path, ok := d.table.GetPath(uint64(ino))
	if !ok {
		return "", pathfs.EINVAL
	}
	return path, nil
}

func (d *Dispatcher) reqInfo(h fuseops.OpHeader) pathfs.RequestInfo {
	return pathfs.RequestInfo{
		Uid: h.Uid,
		Gid: h.Gid,
		Pid: h.Pid,
	}
}

// traceOp wraps fn in an OpenTelemetry span named after opName and logs the
// outcome at debug level with the session id threaded through every line.
func (d *Dispatcher) traceOp(ctx context.Context, opName string, ino fuseops.InodeID, fn func(ctx context.Context) error) error {
	ctx, span := d.tracer.Start(ctx, opName, trace.WithAttributes(attribute.Int64("inode", int64(ino))))
	defer span.End()

	start := d.clock.Now()
	err := fn(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}

	d.metrics.ObserveOp(opName, err)
	d.metrics.ObserveLatency(opName, d.clock.Now().Sub(start).Seconds())
	d.log.Debug("op",
		"session", d.sessionID,
		"op", opName,
		"inode", uint64(ino),
		"err", errString(err))

	return err
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

////////////////////////////////////////////////////////////////////////
// Lifecycle
////////////////////////////////////////////////////////////////////////

func (d *Dispatcher) Init(ctx context.Context, op *fuseops.InitOp) error {
	return d.traceOp(ctx, "Init", fuseops.RootInodeID, func(ctx context.Context) error {
		return d.fs.Init(ctx, pathfs.RequestInfo{})
	})
}

func (d *Dispatcher) Destroy() {
	d.fs.Destroy()
}

////////////////////////////////////////////////////////////////////////
// Inode attributes (read) and namespace
////////////////////////////////////////////////////////////////////////

func (d *Dispatcher) LookUpInode(ctx context.Context, op *fuseops.LookUpInodeOp) error {
	return d.traceOp(ctx, "LookUpInode", op.Parent, func(ctx context.Context) error {
		parentPath, err := d.resolvePath(op.Parent)
		if err != nil {
			return err
		}

		ttl, attr, err := d.fs.LookUp(ctx, parentPath, op.Name, d.reqInfo(op.Header))
		if err != nil {
			return err
		}

		childPath := joinPath(parentPath, op.Name)
		ino, generation := d.table.AddOrGet(childPath)
		d.table.Lookup(ino)

		attr.Ino = ino
		op.Entry.Child = fuseops.InodeID(ino)
		op.Entry.Generation = fuseops.GenerationNumber(generation)
		op.Entry.Attributes = toInodeAttributes(attr)
		op.Entry.AttributesExpiration = d.clock.Now().Add(ttl)
		op.Entry.EntryExpiration = op.Entry.AttributesExpiration

		return nil
	})
}

func (d *Dispatcher) GetInodeAttributes(ctx context.Context, op *fuseops.GetInodeAttributesOp) error {
	return d.traceOp(ctx, "GetInodeAttributes", op.Inode, func(ctx context.Context) error {
		path, err := d.resolvePath(op.Inode)
		if err != nil {
			return err
		}

		ttl, attr, err := d.fs.GetAttr(ctx, path, nil, d.reqInfo(op.Header))
		if err != nil {
			return err
		}

		attr.Ino = uint64(op.Inode)
		op.Attributes = toInodeAttributes(attr)
		op.AttributesExpiration = d.clock.Now().Add(ttl)

		return nil
	})
}

func (d *Dispatcher) ForgetInode(ctx context.Context, op *fuseops.ForgetInodeOp) error {
	return d.traceOp(ctx, "ForgetInode", op.Inode, func(ctx context.Context) error {
		d.table.Forget(uint64(op.Inode), op.N)
		return nil
	})
}

// BatchForgetEntry is one (inode, nlookup) pair in a BatchForget request.
// Supplemented from original_source/src/fusemt.rs's forget_multi, which
// loops single-forget logic under one lock acquisition; see SPEC_FULL.md.
type BatchForgetEntry struct {
	Inode fuseops.InodeID
	N     uint64
}

func (d *Dispatcher) BatchForget(ctx context.Context, op *fuseops.BatchForgetOp) error {
	return d.traceOp(ctx, "BatchForget", 0, func(ctx context.Context) error {
		for _, e := range op.Entries {
			d.table.Forget(uint64(e.Inode), e.N)
		}
		return nil
	})
}

func (d *Dispatcher) MkDir(ctx context.Context, op *fuseops.MkDirOp) error {
	return d.traceOp(ctx, "MkDir", op.Parent, func(ctx context.Context) error {
		parentPath, err := d.resolvePath(op.Parent)
		if err != nil {
			return err
		}

		attr, err := d.fs.Mkdir(ctx, parentPath, op.Name, uint32(op.Mode), d.reqInfo(op.Header))
		if err != nil {
			return err
		}

		return d.fillCreatedEntry(&op.Entry, parentPath, op.Name, attr)
	})
}

func (d *Dispatcher) MkNode(ctx context.Context, op *fuseops.MkNodeOp) error {
	return d.traceOp(ctx, "MkNode", op.Parent, func(ctx context.Context) error {
		parentPath, err := d.resolvePath(op.Parent)
		if err != nil {
			return err
		}

		attr, err := d.fs.Mknod(ctx, parentPath, op.Name, uint32(op.Mode), op.Rdev, d.reqInfo(op.Header))
		if err != nil {
			return err
		}

		return d.fillCreatedEntry(&op.Entry, parentPath, op.Name, attr)
	})
}

func (d *Dispatcher) CreateSymlink(ctx context.Context, op *fuseops.CreateSymlinkOp) error {
	return d.traceOp(ctx, "CreateSymlink", op.Parent, func(ctx context.Context) error {
		parentPath, err := d.resolvePath(op.Parent)
		if err != nil {
			return err
		}

		attr, err := d.fs.Symlink(ctx, parentPath, op.Name, op.Target, d.reqInfo(op.Header))
		if err != nil {
			return err
		}

		return d.fillCreatedEntry(&op.Entry, parentPath, op.Name, attr)
	})
}

func (d *Dispatcher) CreateLink(ctx context.Context, op *fuseops.CreateLinkOp) error {
	return d.traceOp(ctx, "CreateLink", op.Parent, func(ctx context.Context) error {
		targetPath, err := d.resolvePath(op.Target)
		if err != nil {
			return err
		}
		parentPath, err := d.resolvePath(op.Parent)
		if err != nil {
			return err
		}

		attr, err := d.fs.Link(ctx, targetPath, parentPath, op.Name, d.reqInfo(op.Header))
		if err != nil {
			return err
		}

		// link assigns a new inode to the new name: the table is a
		// name<->inode bijection, not a content-identity map.
		return d.fillCreatedEntry(&op.Entry, parentPath, op.Name, attr)
	})
}

func (d *Dispatcher) CreateFile(ctx context.Context, op *fuseops.CreateFileOp) error {
	return d.traceOp(ctx, "CreateFile", op.Parent, func(ctx context.Context) error {
		parentPath, err := d.resolvePath(op.Parent)
		if err != nil {
			return err
		}

		created, err := d.fs.Create(ctx, parentPath, op.Name, uint32(op.Mode), uint32(op.Flags), d.reqInfo(op.Header))
		if err != nil {
			return err
		}

		childPath := joinPath(parentPath, op.Name)
		ino, generation := d.table.Add(childPath)

		created.Attr.Ino = ino
		op.Entry.Child = fuseops.InodeID(ino)
		op.Entry.Generation = fuseops.GenerationNumber(generation)
		op.Entry.Attributes = toInodeAttributes(created.Attr)
		op.Entry.AttributesExpiration = d.clock.Now().Add(created.TTL)
		op.Entry.EntryExpiration = op.Entry.AttributesExpiration
		op.Handle = fuseops.HandleID(created.FH)

		return nil
	})
}

// fillCreatedEntry is the common tail of MkDir/MkNode/CreateSymlink/
// CreateLink: add the new path to the inode table and stamp op.Entry.
func (d *Dispatcher) fillCreatedEntry(entry *fuseops.ChildInodeEntry, parentPath, name string, attr pathfs.FileAttr) error {
	childPath := joinPath(parentPath, name)
	ino, generation := d.table.Add(childPath)

	attr.Ino = ino
	entry.Child = fuseops.InodeID(ino)
	entry.Generation = fuseops.GenerationNumber(generation)
	entry.Attributes = toInodeAttributes(attr)
	entry.AttributesExpiration = d.clock.Now().Add(time.Second)
	entry.EntryExpiration = entry.AttributesExpiration

	return nil
}

func (d *Dispatcher) RmDir(ctx context.Context, op *fuseops.RmDirOp) error {
	return d.traceOp(ctx, "RmDir", op.Parent, func(ctx context.Context) error {
		parentPath, err := d.resolvePath(op.Parent)
		if err != nil {
			return err
		}

		if err := d.fs.Rmdir(ctx, parentPath, op.Name, d.reqInfo(op.Header)); err != nil {
			return err
		}

		d.table.Unlink(joinPath(parentPath, op.Name))
		return nil
	})
}

func (d *Dispatcher) Unlink(ctx context.Context, op *fuseops.UnlinkOp) error {
	return d.traceOp(ctx, "Unlink", op.Parent, func(ctx context.Context) error {
		parentPath, err := d.resolvePath(op.Parent)
		if err != nil {
			return err
		}

		if err := d.fs.Unlink(ctx, parentPath, op.Name, d.reqInfo(op.Header)); err != nil {
			return err
		}

		d.table.Unlink(joinPath(parentPath, op.Name))
		return nil
	})
}

func (d *Dispatcher) Rename(ctx context.Context, op *fuseops.RenameOp) error {
	return d.traceOp(ctx, "Rename", op.OldParent, func(ctx context.Context) error {
		oldParentPath, err := d.resolvePath(op.OldParent)
		if err != nil {
			return err
		}
		newParentPath, err := d.resolvePath(op.NewParent)
		if err != nil {
			return err
		}

		err = d.fs.Rename(ctx, oldParentPath, op.OldName, newParentPath, op.NewName, d.reqInfo(op.Header))
		if err != nil {
			return err
		}

		d.table.Rename(joinPath(oldParentPath, op.OldName), joinPath(newParentPath, op.NewName))
		return nil
	})
}

func joinPath(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}

// parentPath returns the containing directory of p, or "/" if p is already
// the root. p must be an absolute, joinPath-constructed path.
func parentPath(p string) string {
	if p == "/" {
		return "/"
	}
	idx := strings.LastIndexByte(p, '/')
	if idx <= 0 {
		return "/"
	}
	return p[:idx]
}

func toInodeAttributes(a pathfs.FileAttr) fuseops.InodeAttributes {
	mode := a.Perm
	switch a.Kind {
	case pathfs.Directory:
		mode |= os.ModeDir
	case pathfs.Symlink:
		mode |= os.ModeSymlink
	case pathfs.BlockDevice:
		mode |= os.ModeDevice
	case pathfs.CharDevice:
		mode |= os.ModeDevice | os.ModeCharDevice
	case pathfs.NamedPipe:
		mode |= os.ModeNamedPipe
	case pathfs.Socket:
		mode |= os.ModeSocket
	}

	return fuseops.InodeAttributes{
		Size:   a.Size,
		Nlink:  uint64(a.Nlink),
		Mode:   mode,
		Atime:  a.Atime,
		Mtime:  a.Mtime,
		Ctime:  a.Ctime,
		Crtime: a.Crtime,
		Uid:    a.Uid,
		Gid:    a.Gid,
	}
}

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

package mount

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/google/uuid"
	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseutil"
	"github.com/jacobsa/timeutil"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pathfusefs/pathfuse/dispatch"
	"github.com/pathfusefs/pathfuse/pathfs"
	"github.com/pathfusefs/pathfuse/workerpool"
)

// Mount attaches fs at mountPoint and blocks until the kernel reports the
// mount is ready, returning a handle the caller joins (or unmounts) later.
// This is the "single entry point that blocks the caller until unmounted"
// half of the mount contract: call Join on the returned session to get that
// blocking behavior, or Unmount to tear it down early.
func Mount(ctx context.Context, fs pathfs.FileSystem, mountPoint string, opts Options, log *slog.Logger) (*Session, error) {
	if log == nil {
		log = slog.Default()
	}

	pool := workerpool.New(opts.PoolSize)

	d := dispatch.New(dispatch.Config{
		FS:      fs,
		Pool:    pool,
		Clock:   timeutil.RealClock(),
		Log:     log,
		Metrics: dispatch.NewMetrics(prometheus.DefaultRegisterer),
	})

	server := fuseutil.NewFileSystemServer(d)

	sessionID := uuid.NewString()
	fsName := opts.FSName
	if fsName == "" {
		fsName = "pathfuse"
	}

	mountCfg := &fuse.MountConfig{
		FSName:                  fsName,
		Subtype:                 opts.Subtype,
		VolumeName:              opts.VolumeName,
		Options:                 opts.RawOptions,
		EnableParallelDirOps:    opts.EnableParallelDirOps,
		DisableWritebackCaching: opts.DisableWritebackCaching,
		EnableReaddirplus:       opts.EnableReaddirplus,
	}
	if runtime.GOOS == "darwin" && !opts.EnableVnodeCaching {
		mountCfg.Options = mergeOption(mountCfg.Options, "novncache", "")
	}

	log.Info("mounting", "session", sessionID, "mount_point", mountPoint, "fs_name", fsName)

	mfs, err := fuse.Mount(mountPoint, server, mountCfg)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("mount %q: %w", mountPoint, err)
	}

	if err := mfs.WaitForReady(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("wait for ready: %w", err)
	}

	return &Session{mfs: mfs, pool: pool, sessionID: sessionID, log: log}, nil
}

// MountBackground is Mount's "second entry point [that] spawns the session
// on a background task" half: the mount and its eventual Join both run on
// an internal goroutine, and MountBackground returns as soon as the mount
// is ready, handing back the Session plus a channel that receives Join's
// result once the session unmounts.
func MountBackground(ctx context.Context, fs pathfs.FileSystem, mountPoint string, opts Options, log *slog.Logger) (*Session, <-chan error) {
	sessionCh := make(chan *Session, 1)
	doneCh := make(chan error, 1)

	go func() {
		sess, err := Mount(ctx, fs, mountPoint, opts, log)
		if err != nil {
			sessionCh <- nil
			doneCh <- err
			return
		}
		sessionCh <- sess
		doneCh <- sess.Join(ctx)
	}()

	sess := <-sessionCh
	return sess, doneCh
}

// Session is a mounted file system session. The zero value is not usable;
// obtain one from Mount or MountBackground.
type Session struct {
	mfs       *fuse.MountedFileSystem
	pool      *workerpool.Pool
	sessionID string
	log       *slog.Logger
}

// Dir returns the directory the session is mounted on.
func (s *Session) Dir() string {
	return s.mfs.Dir()
}

// Join blocks until the session has been unmounted, returning a non-nil
// error if anything unexpected happened while serving.
func (s *Session) Join(ctx context.Context) error {
	err := s.mfs.Join(ctx)
	s.pool.Close()
	s.log.Info("unmounted", "session", s.sessionID, "err", errString(err))
	return err
}

// Unmount requests that the session be torn down. Call Join afterward to
// wait for it to actually finish.
func (s *Session) Unmount() error {
	return s.mfs.Unmount()
}

func mergeOption(opts map[string]string, key, value string) map[string]string {
	if opts == nil {
		opts = make(map[string]string)
	}
	opts[key] = value
	return opts
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

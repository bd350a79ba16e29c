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

// Package mount wraps github.com/jacobsa/fuse's session lifecycle
// (Mount/WaitForReady/Join/Unmount) around a dispatch.Dispatcher, so a
// caller never touches fuseops directly.
package mount

import (
	"github.com/mitchellh/mapstructure"
)

// Options configures a mount session. It holds no knowledge of how the
// caller's options arrived (flag parsing, a config file, a hardcoded
// struct literal) — that is the consuming binary's job, not this
// package's.
type Options struct {
	// FSName, Subtype, and VolumeName are passed straight through to
	// fuse.MountConfig.
	FSName     string `mapstructure:"fs_name"`
	Subtype    string `mapstructure:"subtype"`
	VolumeName string `mapstructure:"volume_name"`

	// PoolSize is the worker-pool size passed to workerpool.New for Read,
	// Write, Flush, and Fsync dispatch. Zero means inline (no pool).
	PoolSize int `mapstructure:"pool_size"`

	// DefaultUid and DefaultGid are decoded but not used by Mount:
	// RequestInfo.Uid/Gid always come from the kernel's op header.
	DefaultUid uint32 `mapstructure:"uid"`
	DefaultGid uint32 `mapstructure:"gid"`

	// EnableParallelDirOps allows the kernel to issue concurrent LookUpInode
	// and ReadDir calls rather than serializing them.
	EnableParallelDirOps bool `mapstructure:"enable_parallel_dirops"`

	// DisableWritebackCaching turns off the kernel's writeback cache, trading
	// throughput for tighter visibility of write errors to the caller.
	DisableWritebackCaching bool `mapstructure:"disable_writeback_caching"`

	// EnableReaddirplus lets the kernel fetch directory entries and their
	// attributes in one round trip.
	EnableReaddirplus bool `mapstructure:"enable_readdirplus"`

	// EnableVnodeCaching restores OS X entry caching (see MountConfig's own
	// doc comment on the jacobsa/fuse side for why this defaults to off).
	EnableVnodeCaching bool `mapstructure:"enable_vnode_caching"`

	// RawOptions is the opaque "-o key=value,..." option set, forwarded to
	// fuse.MountConfig.Options untouched.
	RawOptions map[string]string `mapstructure:"-"`
}

// DecodeOptions decodes an already-parsed option map into an Options value.
// It does not parse os.Args or any "-o" string itself; a caller that wants
// that does its own flag/opstring parsing and hands the resulting map here.
func DecodeOptions(raw map[string]interface{}) (*Options, error) {
	opts := &Options{
		RawOptions: make(map[string]string),
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           opts,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}

	if err := dec.Decode(raw); err != nil {
		return nil, err
	}

	return opts, nil
}

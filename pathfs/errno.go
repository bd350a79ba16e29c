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
	"errors"
	"syscall"

	"golang.org/x/sys/unix"
)

// Errno is the error type every FileSystem method returns on failure: a
// POSIX errno value, the only vocabulary the kernel transport understands.
type Errno = syscall.Errno

// Common errno values, sourced from golang.org/x/sys/unix rather than package
// syscall directly so the constant set stays consistent across the targets
// the corpus builds for.
const (
	ENOENT  = Errno(unix.ENOENT)
	EACCES  = Errno(unix.EACCES)
	EEXIST  = Errno(unix.EEXIST)
	ENOTDIR = Errno(unix.ENOTDIR)
	EISDIR  = Errno(unix.EISDIR)
	EINVAL  = Errno(unix.EINVAL)
	ENOSYS  = Errno(unix.ENOSYS)
	ERANGE  = Errno(unix.ERANGE)
	ENOTEMPTY = Errno(unix.ENOTEMPTY)
	ENODATA = Errno(unix.ENODATA)
	EIO     = Errno(unix.EIO)
	EPERM   = Errno(unix.EPERM)
)

// IsErrno reports whether err is (or wraps) a syscall.Errno, and returns it.
func IsErrno(err error) (Errno, bool) {
	var errno Errno
	if !errors.As(err, &errno) {
		return 0, false
	}
	return errno, true
}

// Copyright 2025 Google LLC
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

package logger

import (
	"fmt"
	"io"
	"os"
)

// AsyncLogger decouples a caller's Write from the latency of the
// underlying sink (a rotating file on a possibly slow disk) by handing
// each write to a single background goroutine over a buffered channel. A
// write that would block because the buffer is full is dropped rather than
// stalling the caller, with a warning to stderr.
type AsyncLogger struct {
	w    io.Writer
	ch   chan []byte
	done chan struct{}
}

// NewAsyncLogger starts the background writer goroutine and returns a
// ready-to-use AsyncLogger. bufSize bounds how many pending writes may
// queue before new writes are dropped.
func NewAsyncLogger(w io.Writer, bufSize int) *AsyncLogger {
	l := &AsyncLogger{
		w:    w,
		ch:   make(chan []byte, bufSize),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *AsyncLogger) run() {
	defer close(l.done)
	for p := range l.ch {
		if _, err := l.w.Write(p); err != nil {
			return
		}
	}
}

// Write copies p (the caller may reuse its buffer after Write returns) and
// queues it for the background writer. It always reports len(p), nil,
// matching io.Writer's contract even when the message is dropped, since a
// dropped log line must never be mistaken by a caller for a failed flush.
func (l *AsyncLogger) Write(p []byte) (int, error) {
	cp := make([]byte, len(p))
	copy(cp, p)

	select {
	case l.ch <- cp:
	default:
		fmt.Fprintln(os.Stderr, "asynclogger: log buffer is full, dropping message.")
	}

	return len(p), nil
}

// Close drains any queued writes, waits for the background goroutine to
// finish, and closes the underlying writer if it is an io.Closer.
func (l *AsyncLogger) Close() error {
	close(l.ch)
	<-l.done

	if c, ok := l.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

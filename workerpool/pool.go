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

// Package workerpool implements the worker pool (C5) that the dispatcher
// hands read, write, flush, and fsync callbacks to, so that the single
// kernel dispatch thread is never blocked on user I/O.
package workerpool

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Task is a unit of work submitted to a Pool: a closure over the resolved
// path, handle, and reply object, as produced by the dispatcher.
type Task func(ctx context.Context)

// Pool dispatches Tasks either inline (N == 0) or onto a fixed set of N
// goroutines (N > 0), lazily started on first Submit.
//
// A Pool is safe for concurrent Submit calls from multiple dispatcher
// request-handling paths.
type Pool struct {
	size    int
	queue   chan Task
	group   *errgroup.Group
	limiter *rate.Limiter

	mu      sync.Mutex
	started bool // GUARDED_BY(mu)

	// ctx/cancel give the worker goroutines a lifetime of their own,
	// independent of any individual Submit caller's (per-request) context:
	// a FUSE op's context ends when that op's handler returns, and workers
	// must outlive any single op to serve the next one.
	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithLimiter attaches an admission-rate limiter: Submit blocks on l.Wait
// before a task is handed to a worker (or run inline, for N == 0). Pass nil
// (the default) for no throttling.
func WithLimiter(l *rate.Limiter) Option {
	return func(p *Pool) { p.limiter = l }
}

// New returns a Pool with the given fixed size. Size 0 means inline
// dispatch: Submit runs its task synchronously on the calling goroutine,
// which is useful for deterministic tests (the concurrent-overlap scenario is the
// N > 0 case; unit tests of dispatcher logic in isolation typically want
// N == 0).
func New(size int, opts ...Option) *Pool {
	p := &Pool{size: size}
	for _, opt := range opts {
		opt(p)
	}

	if size > 0 {
		p.queue = make(chan Task, size)
		p.ctx, p.cancel = context.WithCancel(context.Background())
	}

	return p
}

// start lazily spins up the fixed worker goroutines on first use.
func (p *Pool) start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started || p.size == 0 {
		return
	}
	p.started = true

	g, gctx := errgroup.WithContext(p.ctx)
	p.group = g

	for i := 0; i < p.size; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case task, ok := <-p.queue:
					if !ok {
						return nil
					}
					task(gctx)
				}
			}
		})
	}
}

// Submit runs task according to the pool's mode: synchronously if N == 0,
// or queued to a worker goroutine (FIFO) if N > 0. If a limiter is
// configured, Submit blocks on it before the task becomes eligible to run.
func (p *Pool) Submit(ctx context.Context, task Task) {
	if p.limiter != nil {
		// Best-effort: a cancelled context unblocks the wait immediately and
		// the task still runs: there is no cancellation layer here.
		_ = p.limiter.Wait(ctx)
	}

	if p.size == 0 {
		task(ctx)
		return
	}

	p.start()
	p.queue <- task
}

// Close stops accepting new work and waits for queued tasks to drain. It is
// a no-op for an inline (N == 0) pool that was never started.
func (p *Pool) Close() error {
	if p.size == 0 || !p.started {
		return nil
	}

	close(p.queue)
	err := p.group.Wait()
	p.cancel()
	return err
}

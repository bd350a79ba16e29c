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

package workerpool_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathfusefs/pathfuse/workerpool"
)

func TestInlinePoolRunsSynchronously(t *testing.T) {
	// Arrange
	p := workerpool.New(0)
	var ran bool

	// Act
	p.Submit(context.Background(), func(ctx context.Context) {
		ran = true
	})

	// Assert
	assert.True(t, ran)
	assert.NoError(t, p.Close())
}

func TestFixedPoolRunsAllTasks(t *testing.T) {
	// Arrange
	p := workerpool.New(4)
	const n = 50
	var count int64
	var wg sync.WaitGroup
	wg.Add(n)

	// Act
	for i := 0; i < n; i++ {
		p.Submit(context.Background(), func(ctx context.Context) {
			defer wg.Done()
			atomic.AddInt64(&count, 1)
		})
	}
	wg.Wait()

	// Assert
	assert.Equal(t, int64(n), atomic.LoadInt64(&count))
	require.NoError(t, p.Close())
}

// TestConcurrentTasksOverlap proves that with N=4 workers,
// 4 concurrently-submitted tasks must be observed overlapping via a
// barrier, proving the pool does not serialize work it was sized to run in
// parallel.
func TestConcurrentTasksOverlap(t *testing.T) {
	// Arrange
	const n = 4
	p := workerpool.New(n)

	var arrived int64
	release := make(chan struct{})
	allArrived := make(chan struct{})

	// Act
	for i := 0; i < n; i++ {
		p.Submit(context.Background(), func(ctx context.Context) {
			if atomic.AddInt64(&arrived, 1) == n {
				close(allArrived)
			}
			<-release
		})
	}

	// Assert: all n tasks must reach the barrier concurrently within a
	// generous deadline, proving they were not serialized.
	select {
	case <-allArrived:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for all tasks to overlap at the barrier")
	}

	close(release)
	require.NoError(t, p.Close())
}

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

package mount_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathfusefs/pathfuse/mount"
)

func TestDecodeOptionsPopulatesKnownFields(t *testing.T) {
	raw := map[string]interface{}{
		"fs_name":                 "myfuse",
		"subtype":                 "pathfuse",
		"volume_name":             "data",
		"pool_size":               "8",
		"uid":                     "501",
		"gid":                     "20",
		"enable_parallel_dirops":  true,
		"enable_readdirplus":      "true",
		"disable_writeback_caching": false,
	}

	opts, err := mount.DecodeOptions(raw)

	require.NoError(t, err)
	assert.Equal(t, "myfuse", opts.FSName)
	assert.Equal(t, "pathfuse", opts.Subtype)
	assert.Equal(t, "data", opts.VolumeName)
	assert.Equal(t, 8, opts.PoolSize)
	assert.Equal(t, uint32(501), opts.DefaultUid)
	assert.Equal(t, uint32(20), opts.DefaultGid)
	assert.True(t, opts.EnableParallelDirOps)
	assert.True(t, opts.EnableReaddirplus)
	assert.False(t, opts.DisableWritebackCaching)
}

func TestDecodeOptionsOfEmptyMapReturnsZeroValue(t *testing.T) {
	opts, err := mount.DecodeOptions(map[string]interface{}{})

	require.NoError(t, err)
	assert.Equal(t, "", opts.FSName)
	assert.Equal(t, 0, opts.PoolSize)
}

func TestDecodeOptionsRejectsUnparseableValue(t *testing.T) {
	raw := map[string]interface{}{
		"pool_size": "not-a-number",
	}

	_, err := mount.DecodeOptions(raw)

	assert.Error(t, err)
}

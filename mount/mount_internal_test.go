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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeOptionOfNilMapAllocates(t *testing.T) {
	got := mergeOption(nil, "novncache", "")

	assert.Equal(t, map[string]string{"novncache": ""}, got)
}

func TestMergeOptionPreservesExistingEntries(t *testing.T) {
	opts := map[string]string{"allow_other": ""}

	got := mergeOption(opts, "novncache", "")

	assert.Equal(t, map[string]string{"allow_other": "", "novncache": ""}, got)
}

func TestErrStringOfNilIsEmpty(t *testing.T) {
	assert.Equal(t, "", errString(nil))
}

func TestErrStringOfErrorIsItsMessage(t *testing.T) {
	assert.Equal(t, assert.AnError.Error(), errString(assert.AnError))
}

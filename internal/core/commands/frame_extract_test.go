// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/1xeno0/library/internal/core/commands"
)

func TestFrameOffsetsSamplesEveryInterval(t *testing.T) {
	assert.Equal(t, []int{0, 5, 10}, commands.FrameOffsets(12.0, 5, 10))
}

func TestFrameOffsetsHonorsCap(t *testing.T) {
	offsets := commands.FrameOffsets(600.0, 5, 10)
	assert.Len(t, offsets, 10)
	assert.Equal(t, 0, offsets[0])
	assert.Equal(t, 45, offsets[9])
}

func TestFrameOffsetsShortVideoGetsFirstFrame(t *testing.T) {
	assert.Equal(t, []int{0}, commands.FrameOffsets(2.5, 5, 10))
}

func TestFrameOffsetsDegenerateInputs(t *testing.T) {
	assert.Nil(t, commands.FrameOffsets(10.0, 0, 10))
	assert.Nil(t, commands.FrameOffsets(10.0, 5, 0))
	assert.Empty(t, commands.FrameOffsets(0, 5, 10))
}

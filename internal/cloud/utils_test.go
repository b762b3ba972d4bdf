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

package cloud_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/1xeno0/library/internal/testutil"
)

// The test runtime layers .env.test.toml over .env.toml: overridden
// values win, everything else keeps its base value.
func TestConfigLayering(t *testing.T) {
	config := testutil.GetConfig()

	// Overridden by the test layer.
	assert.True(t, config.Application.Debug)
	assert.Equal(t, "patchwork_library_test", config.Mongo.Database)
	assert.Equal(t, 100, config.OpenAI.RateLimit)

	// Inherited from the base layer.
	assert.Equal(t, 5555, config.Application.Port)
	assert.Equal(t, "gpt-4o-mini", config.OpenAI.ChatModel)
	assert.Equal(t, "whisper-1", config.OpenAI.TranscriptionModel)
	assert.Equal(t, "videos", config.Mongo.VideosCollection)
	assert.Equal(t, int64(50), config.Mongo.SearchLimit)
	assert.Equal(t, 5, config.Extraction.FrameIntervalSeconds)
	assert.Equal(t, 10, config.Extraction.MaxFrames)
	assert.Equal(t, 5, config.Extraction.MaxAnalysisFrames)
}

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
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/1xeno0/library/internal/core/commands"
	"github.com/1xeno0/library/internal/core/cor"
	"github.com/1xeno0/library/internal/core/model"
	"github.com/1xeno0/library/internal/testutil"
)

func TestParseAnalysisAcceptsWellFormedReply(t *testing.T) {
	result, err := commands.ParseAnalysis(testutil.GetTestAnalysisReply())
	assert.NoError(t, err)
	assert.Equal(t, "Insane Sniper Flick on Stream", result.Title)
	assert.Equal(t, "twitch", result.Platform)
	assert.Len(t, result.Tags, 5)
}

func TestParseAnalysisRejectsNonJSON(t *testing.T) {
	_, err := commands.ParseAnalysis("I could not analyze this video, sorry!")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestParseAnalysisRejectsMissingRequiredFields(t *testing.T) {
	_, err := commands.ParseAnalysis(`{"title": "t", "description": "d"}`)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "tags")
}

func TestParseAnalysisCollapsesMalformedTags(t *testing.T) {
	result, err := commands.ParseAnalysis(`{"title": "t", "description": "d", "tags": "not-a-list"}`)
	assert.NoError(t, err)
	assert.Empty(t, result.Tags)
}

func TestNormalizeResultAppendsTranscriptAndBackfills(t *testing.T) {
	result, err := commands.ParseAnalysis(`{"title": "t", "description": "d", "tags": []}`)
	assert.NoError(t, err)

	transcript := "this transcript is long enough to keep"
	commands.NormalizeResult(result, transcript, "some_streamer", 5)

	assert.True(t, strings.HasSuffix(result.Description, "Audio Content: "+transcript))
	assert.Equal(t, "some_streamer", result.Streamer)
	assert.Equal(t, "Unknown", result.Game)
	assert.Equal(t, "Unknown", result.Platform)
	assert.Equal(t, "Unknown", result.ContentType)
	assert.True(t, result.TranscriptIncluded)
	assert.Equal(t, len(transcript), result.TranscriptLength)
	assert.Equal(t, 5, result.FramesAnalyzed)
	assert.NotEmpty(t, result.UploadDate)
}

func TestNormalizeResultSkipsShortTranscript(t *testing.T) {
	result, err := commands.ParseAnalysis(`{"title": "t", "description": "d", "tags": []}`)
	assert.NoError(t, err)

	commands.NormalizeResult(result, "short", "", 3)

	assert.Equal(t, "d", result.Description)
	assert.Equal(t, "Unknown", result.Streamer)
	assert.True(t, result.TranscriptIncluded)
	assert.Equal(t, 5, result.TranscriptLength)
}

func TestAnalysisToStructCommand(t *testing.T) {
	cmd := commands.NewAnalysisToStruct("analysis-to-struct")

	pctx := cor.NewBaseContext()
	defer pctx.Close()
	pctx.SetContext(context.Background())
	pctx.Add(cor.CtxIn, testutil.GetTestAnalysisReply())
	pctx.Add(commands.GetTranscriptParamName(), "a transcript that is definitely long enough")
	pctx.Add(commands.GetStreamerNameParamName(), "test_streamer")
	pctx.Add(commands.GetFramesSentParamName(), 4)

	cmd.Execute(pctx)

	assert.False(t, pctx.HasErrors())
	result, ok := pctx.Get(commands.GetAnalysisParamName()).(*model.AnalysisResult)
	assert.True(t, ok)
	assert.Equal(t, 4, result.FramesAnalyzed)
	assert.Contains(t, result.Description, "Audio Content:")
}

func TestFallbackResultFillsDefaults(t *testing.T) {
	result := commands.FallbackResult("", "")
	assert.Equal(t, "Untitled video", result.Title)
	assert.Equal(t, []string{"video", "content", "media"}, result.Tags)
}

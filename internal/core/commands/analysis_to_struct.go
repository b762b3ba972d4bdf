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

package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/1xeno0/library/internal/core/cor"
	"github.com/1xeno0/library/internal/core/model"
)

// unknownField fills streaming fields the model omitted or could not
// determine.
const unknownField = "Unknown"

// minTranscriptForDescription is the minimum transcript length, in
// bytes, worth appending to the description.
const minTranscriptForDescription = 10

// AnalysisToStruct decodes the model's raw JSON reply into an
// AnalysisResult and normalizes it: required fields are enforced,
// optional streaming fields are backfilled, the transcript is appended
// to the description when long enough, and the analysis metadata
// (frame count, transcript length) is attached. A reply that is not
// valid JSON, or lacks a required field, fails the pipeline.
type AnalysisToStruct struct {
	cor.BaseCommand
}

func NewAnalysisToStruct(name string) *AnalysisToStruct {
	return &AnalysisToStruct{BaseCommand: *cor.NewBaseCommand(name)}
}

func (a *AnalysisToStruct) Execute(context cor.Context) {
	ctx := context.GetContext()

	raw := fmt.Sprintf("%v", context.Get(a.GetInputParam()))
	transcript, _ := context.Get(GetTranscriptParamName()).(string)
	streamer, _ := context.Get(GetStreamerNameParamName()).(string)
	framesSent, _ := context.Get(GetFramesSentParamName()).(int)

	result, err := ParseAnalysis(raw)
	if err != nil {
		context.AddError(a.GetName(), err)
		a.GetErrorCounter().Add(ctx, 1)
		return
	}

	NormalizeResult(result, transcript, streamer, framesSent)

	context.Add(GetAnalysisParamName(), result)
	context.Add(a.GetOutputParam(), result)
	a.GetSuccessCounter().Add(ctx, 1)
}

// ParseAnalysis decodes the model reply strictly: it must be a JSON
// object carrying title, description, and tags. Tags that are present
// but not a string array collapse to empty rather than failing, since
// models occasionally emit a single string there.
func ParseAnalysis(raw string) (*model.AnalysisResult, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("model reply is not valid JSON: %w", err)
	}
	for _, required := range []string{"title", "description", "tags"} {
		if _, ok := fields[required]; !ok {
			return nil, fmt.Errorf("model reply is missing required field %q", required)
		}
	}

	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		// Retry without tags so a malformed tags value alone does not
		// sink an otherwise usable reply.
		var loose struct {
			Title              string `json:"title"`
			Description        string `json:"description"`
			UploadDate         string `json:"upload_date"`
			Streamer           string `json:"streamer"`
			Game               string `json:"game"`
			Platform           string `json:"platform"`
			ContentType        string `json:"content_type"`
			TranscriptIncluded bool   `json:"transcript_included"`
		}
		if err := json.Unmarshal([]byte(raw), &loose); err != nil {
			return nil, fmt.Errorf("model reply does not match the expected shape: %w", err)
		}
		result = model.AnalysisResult{
			Title:              loose.Title,
			Description:        loose.Description,
			Tags:               []string{},
			UploadDate:         loose.UploadDate,
			Streamer:           loose.Streamer,
			Game:               loose.Game,
			Platform:           loose.Platform,
			ContentType:        loose.ContentType,
			TranscriptIncluded: loose.TranscriptIncluded,
		}
	}
	if strings.TrimSpace(result.Title) == "" {
		return nil, fmt.Errorf("model reply has an empty title")
	}
	if strings.TrimSpace(result.Description) == "" {
		return nil, fmt.Errorf("model reply has an empty description")
	}
	return &result, nil
}

// NormalizeResult applies the post-parse fixups shared by every
// analysis, regardless of how the raw reply was obtained.
func NormalizeResult(result *model.AnalysisResult, transcript string, streamer string, framesSent int) {
	if result.Tags == nil {
		result.Tags = []string{}
	}
	if result.UploadDate == "" {
		result.UploadDate = time.Now().UTC().Format(time.DateOnly)
	}
	if len(transcript) > minTranscriptForDescription {
		result.Description += "\n\nAudio Content: " + transcript
	}
	if result.Streamer == "" {
		if streamer != "" {
			result.Streamer = streamer
		} else {
			result.Streamer = unknownField
		}
	}
	if result.Game == "" {
		result.Game = unknownField
	}
	if result.Platform == "" {
		result.Platform = unknownField
	}
	if result.ContentType == "" {
		result.ContentType = unknownField
	}
	result.TranscriptIncluded = transcript != ""
	result.TranscriptLength = len(transcript)
	result.FramesAnalyzed = framesSent
}

// FallbackResult builds a minimal result from whatever context is
// available when the model reply is unusable. Not wired into the
// default pipeline, which treats an unusable reply as a hard failure,
// but available for deployments that prefer degraded results.
func FallbackResult(title string, description string) *model.AnalysisResult {
	if title == "" {
		title = "Untitled video"
	}
	if description == "" {
		description = "No analysis available."
	}
	return &model.AnalysisResult{
		Title:       title,
		Description: description,
		Tags:        []string{"video", "content", "media"},
	}
}

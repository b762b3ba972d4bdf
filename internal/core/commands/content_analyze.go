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

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/metric"

	"github.com/1xeno0/library/internal/cloud"
	"github.com/1xeno0/library/internal/core/cor"
	"github.com/1xeno0/library/internal/core/model"
)

// transcriptExcerptLimit bounds how much transcript is inlined into the
// system prompt. The full transcript still travels in the user message.
const transcriptExcerptLimit = 500

// ContentAnalyze sends the sampled frames and transcript to the
// multimodal chat model and captures its raw JSON reply. At most
// maxFrames frames are attached, high detail, as data URLs.
type ContentAnalyze struct {
	cor.BaseCommand
	chatModel    *cloud.QuotaAwareChatModel
	maxFrames    int
	retryCounter metric.Int64Counter
}

func NewContentAnalyze(name string, chatModel *cloud.QuotaAwareChatModel, maxFrames int) *ContentAnalyze {
	base := cor.NewBaseCommand(name)
	counter, _ := base.GetMeter().Int64Counter(fmt.Sprintf("%s.counter.retries", name))
	return &ContentAnalyze{
		BaseCommand:  *base,
		chatModel:    chatModel,
		maxFrames:    maxFrames,
		retryCounter: counter,
	}
}

func (c *ContentAnalyze) IsExecutable(context cor.Context) bool {
	return context.GetContext() != nil && context.Get(GetFramesParamName()) != nil
}

func (c *ContentAnalyze) Execute(context cor.Context) {
	ctx := context.GetContext()

	frames, _ := context.Get(GetFramesParamName()).([]*model.Frame)
	if len(frames) > c.maxFrames {
		frames = frames[:c.maxFrames]
	}
	if len(frames) == 0 {
		context.AddError(c.GetName(), fmt.Errorf("no frames available for analysis"))
		c.GetErrorCounter().Add(ctx, 1)
		return
	}

	transcript, _ := context.Get(GetTranscriptParamName()).(string)
	streamer, _ := context.Get(GetStreamerNameParamName()).(string)

	messages := buildAnalysisMessages(frames, transcript, streamer)
	reply, err := cloud.GenerateMultiModalResponse(ctx, c.retryCounter, 0, c.chatModel, messages)
	if err != nil {
		context.AddError(c.GetName(), fmt.Errorf("content analysis failed: %w", err))
		c.GetErrorCounter().Add(ctx, 1)
		return
	}

	context.Add(GetFramesSentParamName(), len(frames))
	context.Add(c.GetOutputParam(), reply)
	c.GetSuccessCounter().Add(ctx, 1)
}

func buildAnalysisMessages(frames []*model.Frame, transcript string, streamer string) []openai.ChatCompletionMessage {
	parts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: buildUserText(transcript, streamer),
		},
	}
	for _, frame := range frames {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    "data:image/jpeg;base64," + frame.Base64,
				Detail: openai.ImageURLDetailHigh,
			},
		})
	}
	return []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: buildSystemPrompt(transcript, streamer),
		},
		{
			Role:         openai.ChatMessageRoleUser,
			MultiContent: parts,
		},
	}
}

func buildSystemPrompt(transcript string, streamer string) string {
	var context strings.Builder
	if streamer != "" {
		fmt.Fprintf(&context, "This is a clip from streamer: %s. ", streamer)
	}
	if transcript != "" {
		excerpt := transcript
		suffix := ""
		if len(excerpt) > transcriptExcerptLimit {
			excerpt = excerpt[:transcriptExcerptLimit]
			suffix = "..."
		}
		fmt.Fprintf(&context, "Audio transcript: '%s%s' ", excerpt, suffix)
	}

	example, _ := json.MarshalIndent(model.GetExampleAnalysis(), "", "    ")

	return fmt.Sprintf(`You are an expert streaming content analyzer specializing in Twitch/YouTube gaming and entertainment clips. Your task is to create extremely detailed, searchable descriptions focused on streaming content.

%s

CRITICAL REQUIREMENTS FOR STREAMING CONTENT:

1. STREAMER IDENTIFICATION:
   - If streamer name is provided, use it
   - If not provided, try to identify the streamer from visual cues (overlays, usernames, chat, etc.)
   - Look for streamer names in chat, overlays, or UI elements
   - Note any visible usernames or channel branding

2. STREAMING CONTEXT:
   - Identify the platform (Twitch, YouTube, etc.) from UI elements
   - Describe the game being played (if gaming content)
   - Note chat interactions and viewer engagement
   - Identify stream overlays, alerts, or widgets
   - Describe the streaming setup (webcam position, background, etc.)

3. CONTENT ANALYSIS:
   - Gaming: Game title, gameplay mechanics, player actions, achievements, fails
   - Just Chatting: Topics discussed, reactions, interactions with chat
   - Creative: Art, music, cooking, etc. - describe the creative process
   - IRL: Location, activities, interactions with people

4. VISUAL DETAILS:
   - Stream layout and overlay design
   - Chat messages and viewer reactions
   - Game UI elements, menus, characters
   - Streamer's appearance, expressions, reactions
   - Background and lighting setup
   - Any on-screen text, notifications, or alerts

5. AUDIO CONTEXT (if transcript provided):
   - Integrate spoken content into description
   - Note streamer's commentary and reactions
   - Include any memorable quotes or funny moments
   - Describe interaction with chat or other players

6. SEARCHABLE TAGS:
   - Streamer name (if known)
   - Game title or category
   - Platform (twitch, youtube, etc.)
   - Content type (gaming, chatting, creative, irl)
   - Emotions (funny, epic, fail, clutch, rage, etc.)
   - Specific game elements (weapons, characters, maps, etc.)
   - Stream elements (donation, raid, host, etc.)

Return ONLY a JSON object with exactly the fields shown in this example:

%s

Set "transcript_included" to %t.`, context.String(), string(example), transcript != "")
}

func buildUserText(transcript string, streamer string) string {
	streamerLine := "Try to identify the streamer from visual cues."
	if streamer != "" {
		streamerLine = fmt.Sprintf("The streamer is: %s", streamer)
	}
	transcriptLine := "No audio transcript available."
	if transcript != "" {
		transcriptLine = fmt.Sprintf("Audio transcript: %s", transcript)
	}
	return fmt.Sprintf(`Analyze these streaming video frames and provide an extremely detailed description focused on streaming content.

%s

%s

Focus on:
- Streaming platform and setup
- Game being played (if gaming)
- Streamer reactions and commentary
- Chat interactions and viewer engagement
- Specific moments or highlights
- Visual elements unique to streaming (overlays, alerts, etc.)

Make the description searchable for streaming-specific content like game titles, streamer names, funny moments, epic plays, fails, etc.`, streamerLine, transcriptLine)
}

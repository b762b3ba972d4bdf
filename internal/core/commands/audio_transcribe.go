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
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/1xeno0/library/internal/core/cor"
)

// TranscriptionClient is the slice of the OpenAI client used for audio
// transcription.
type TranscriptionClient interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// AudioTranscribe extracts the audio track to a temp mp3 and sends it
// to the transcription model with word level timestamps. Transcription
// is best effort: any failure yields an empty transcript and the
// pipeline continues, because frames alone still support a useful
// analysis.
type AudioTranscribe struct {
	cor.BaseCommand
	ffmpegPath string
	tempDir    string
	client     TranscriptionClient
	model      string
}

func NewAudioTranscribe(name string, ffmpegPath string, tempDir string, client TranscriptionClient, model string) *AudioTranscribe {
	return &AudioTranscribe{
		BaseCommand: *cor.NewBaseCommand(name),
		ffmpegPath:  ffmpegPath,
		tempDir:     tempDir,
		client:      client,
		model:       model,
	}
}

func (a *AudioTranscribe) IsExecutable(context cor.Context) bool {
	return context.GetContext() != nil && context.Get(GetVideoFileParamName()) != nil
}

func (a *AudioTranscribe) Execute(context cor.Context) {
	ctx := context.GetContext()
	videoPath := fmt.Sprintf("%v", context.Get(GetVideoFileParamName()))

	transcript := a.transcribe(context, videoPath)
	if transcript == "" {
		slog.Info("no transcript produced, continuing with frames only")
	} else {
		slog.Debug("transcription complete", slog.Int("length", len(transcript)))
	}

	context.Add(GetTranscriptParamName(), transcript)
	context.Add(a.GetOutputParam(), transcript)
	a.GetSuccessCounter().Add(ctx, 1)
}

func (a *AudioTranscribe) transcribe(context cor.Context, videoPath string) string {
	audioPath, err := a.extractAudio(context, videoPath)
	if err != nil {
		slog.Warn("audio extraction failed", slog.String("error", err.Error()))
		return ""
	}
	defer func() { _ = os.Remove(audioPath) }()

	ctx, cancel := timeoutContext(context, 2*time.Minute)
	defer cancel()
	resp, err := a.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    a.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularityWord,
		},
	})
	if err != nil {
		slog.Warn("transcription request failed", slog.String("error", err.Error()))
		return ""
	}

	if len(resp.Words) > 0 {
		words := make([]string, 0, len(resp.Words))
		for _, w := range resp.Words {
			words = append(words, w.Word)
		}
		return strings.Join(words, " ")
	}
	return resp.Text
}

func (a *AudioTranscribe) extractAudio(context cor.Context, videoPath string) (string, error) {
	out, err := os.CreateTemp(a.tempDir, "library-audio-*.mp3")
	if err != nil {
		return "", err
	}
	audioPath := out.Name()
	_ = out.Close()

	ctx, cancel := timeoutContext(context, 2*time.Minute)
	defer cancel()
	if _, err := runTool(ctx, a.ffmpegPath,
		"-y",
		"-i", videoPath,
		"-vn",
		"-acodec", "libmp3lame",
		audioPath); err != nil {
		_ = os.Remove(audioPath)
		return "", err
	}
	return audioPath, nil
}

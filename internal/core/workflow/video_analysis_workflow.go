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

// Package workflow assembles the pipeline commands into the end-to-end
// video analysis chain.
package workflow

import (
	"time"

	"github.com/1xeno0/library/internal/cloud"
	"github.com/1xeno0/library/internal/core/commands"
	"github.com/1xeno0/library/internal/core/cor"
)

// VideoAnalysisWorkflow runs one URL through download, transcription,
// frame sampling, multimodal analysis, reply parsing, and persistence.
// It is a chain of responsibility: each step reads its input from the
// shared context and pipes its output to the next, and the first failed
// step short-circuits the rest.
type VideoAnalysisWorkflow struct {
	cor.BaseCommand
	config *cloud.Config
	chain  cor.Chain
}

// Execute runs the full chain against the given context. The context is
// expected to carry the source URL on the default input key and, when
// known, the streamer name under its named parameter.
func (w *VideoAnalysisWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

func (w *VideoAnalysisWorkflow) initializeChain(serviceClients *cloud.ServiceClients, store commands.AnalysisSaver) {
	extraction := w.config.Extraction

	out := cor.NewBaseChain(w.GetName())

	// Step 1: fetch the video behind the URL into a temp file, via
	// yt-dlp with a direct HTTP fallback for plain file links.
	out.AddCommand(commands.NewVideoDownload(
		"video-download",
		extraction.YtDlpPath,
		extraction.TempDir,
		time.Duration(extraction.DownloadTimeout)*time.Second))

	// Step 2: extract the audio track and transcribe it. Best effort,
	// an empty transcript never fails the run.
	out.AddCommand(commands.NewAudioTranscribe(
		"audio-transcribe",
		extraction.FFmpegPath,
		extraction.TempDir,
		serviceClients.OpenAIClient,
		w.config.OpenAI.TranscriptionModel))

	// Step 3: sample still frames at a fixed interval, capped.
	out.AddCommand(commands.NewFrameExtract(
		"frame-extract",
		extraction.FFmpegPath,
		extraction.FFprobePath,
		extraction.TempDir,
		extraction.FrameIntervalSeconds,
		extraction.MaxFrames))

	// Step 4: send frames plus transcript to the multimodal model and
	// capture its raw JSON reply.
	out.AddCommand(commands.NewContentAnalyze(
		"content-analyze",
		serviceClients.ChatModel,
		extraction.MaxAnalysisFrames))

	// Step 5: decode and normalize the reply into an AnalysisResult.
	out.AddCommand(commands.NewAnalysisToStruct("analysis-to-struct"))

	// Step 6: upsert the result into the document store, keyed by URL.
	out.AddCommand(commands.NewVideoPersist("video-persist", store))

	w.chain = out
}

// NewVideoAnalysisPipeline wires a workflow from the application config,
// the shared service clients, and the persistence layer.
func NewVideoAnalysisPipeline(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	store commands.AnalysisSaver) *VideoAnalysisWorkflow {

	pipeline := &VideoAnalysisWorkflow{
		BaseCommand: *cor.NewBaseCommand("video-analysis-pipeline"),
		config:      config,
	}
	pipeline.initializeChain(serviceClients, store)
	return pipeline
}

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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files, and the clients for the external services the
// analyzer depends on: the OpenAI API (vision analysis and Whisper
// transcription), MongoDB (the analyzed-video document store), and the
// Patchwork clip-listing API.
//
// This file centralizes all configuration-related structs. Values come from
// layered TOML files (see utils.go); secrets may additionally be overridden
// by process environment variables so that no key ever needs to live in a
// checked-in file.
package cloud

// Application holds general server settings.
type Application struct {
	Name  string `toml:"name"`  // Service identity, reported by /health.
	Host  string `toml:"host"`  // Bind address for the HTTP server.
	Port  int    `toml:"port"`  // Listen port for the HTTP server.
	Debug bool   `toml:"debug"` // When true, gin runs in debug mode.
}

// OpenAI configures the hosted model calls. A single API key covers both
// the chat-completion (vision) model and the Whisper transcription model.
type OpenAI struct {
	APIKey             string  `toml:"api_key"`             // Secret; overridden by OPENAI_API_KEY.
	ChatModel          string  `toml:"chat_model"`          // e.g. "gpt-4o-mini".
	TranscriptionModel string  `toml:"transcription_model"` // e.g. "whisper-1".
	MaxOutputTokens    int     `toml:"max_output_tokens"`   // Bounded reply length for analysis calls.
	Temperature        float32 `toml:"temperature"`         // Low temperature favors deterministic output.
	RateLimit          int     `toml:"rate_limit"`          // Chat requests per second before throttling.
}

// Mongo configures the document store.
type Mongo struct {
	URI              string `toml:"uri"`                // Connection string; overridden by MONGODB_URI.
	Database         string `toml:"database"`           // e.g. "patchwork_library".
	VideosCollection string `toml:"videos_collection"`  // e.g. "videos".
	SearchLimit      int64  `toml:"search_limit"`       // Result cap for search queries (default 50).
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // Startup ping timeout.
}

// Extraction configures media download and frame/audio sampling.
type Extraction struct {
	FrameIntervalSeconds int    `toml:"frame_interval_seconds"` // Sample a frame every N seconds, starting at t=0.
	MaxFrames            int    `toml:"max_frames"`             // Hard cap on frames captured per video.
	MaxAnalysisFrames    int    `toml:"max_analysis_frames"`    // Frames actually sent to the model (cost bound).
	MinTranscriptLength  int    `toml:"min_transcript_length"`  // Transcripts shorter than this are not appended to descriptions.
	TempDir              string `toml:"temp_dir"`               // Scratch directory; empty means os.TempDir().
	YtDlpPath            string `toml:"yt_dlp_path"`            // Path to the yt-dlp executable.
	FFmpegPath           string `toml:"ffmpeg_path"`            // Path to the ffmpeg executable.
	FFprobePath          string `toml:"ffprobe_path"`           // Path to the ffprobe executable.
	DownloadTimeout      int    `toml:"download_timeout"`       // Seconds allowed for the direct-GET fallback.
}

// Patchwork configures the external clip-listing service proxied by the
// /patchwork endpoints and sampled by /stats.
type Patchwork struct {
	BaseURL          string `toml:"base_url"` // e.g. "https://patchwork.gobbo.gg".
	APIKey           string `toml:"api_key"`  // Secret; overridden by PATCHWORK_API_KEY.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"`
}

// Config is the top-level aggregate loaded from the TOML files.
type Config struct {
	Application Application `toml:"application"`
	OpenAI      OpenAI      `toml:"open_ai"`
	Mongo       Mongo       `toml:"mongo"`
	Extraction  Extraction  `toml:"extraction"`
	Patchwork   Patchwork   `toml:"patchwork"`
}

// NewConfig creates a Config populated with the defaults the original
// deployment ran with. The TOML loader overlays anything the operator set.
func NewConfig() *Config {
	out := &Config{}
	out.Application.Name = "Patchwork Library Analyzer + Search API"
	out.Application.Host = "0.0.0.0"
	out.Application.Port = 5555
	out.OpenAI.ChatModel = "gpt-4o-mini"
	out.OpenAI.TranscriptionModel = "whisper-1"
	out.OpenAI.MaxOutputTokens = 1200
	out.OpenAI.Temperature = 0.3
	out.OpenAI.RateLimit = 2
	out.Mongo.Database = "patchwork_library"
	out.Mongo.VideosCollection = "videos"
	out.Mongo.SearchLimit = 50
	out.Mongo.TimeoutInSeconds = 5
	out.Extraction.FrameIntervalSeconds = 5
	out.Extraction.MaxFrames = 10
	out.Extraction.MaxAnalysisFrames = 5
	out.Extraction.MinTranscriptLength = 10
	out.Extraction.YtDlpPath = "yt-dlp"
	out.Extraction.FFmpegPath = "ffmpeg"
	out.Extraction.FFprobePath = "ffprobe"
	out.Extraction.DownloadTimeout = 30
	out.Patchwork.BaseURL = "https://patchwork.gobbo.gg"
	out.Patchwork.TimeoutInSeconds = 30
	return out
}

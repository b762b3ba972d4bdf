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

// Package commands provides the concrete pipeline steps for video
// analysis: download, audio transcription, frame sampling, multimodal
// content analysis, reply parsing, and persistence. Commands communicate
// through named context parameters defined here, in addition to the
// chain's default input/output piping; the video file path in particular
// is read by two independent commands (transcription and frame sampling)
// and so cannot travel on the pipe alone.
package commands

func GetVideoURLParamName() string     { return "__video_url__" }
func GetStreamerNameParamName() string { return "__streamer_name__" }
func GetVideoFileParamName() string    { return "__video_file__" }
func GetTranscriptParamName() string   { return "__transcript__" }
func GetFramesParamName() string       { return "__frames__" }
func GetFramesSentParamName() string   { return "__frames_sent__" }
func GetAnalysisParamName() string     { return "__analysis__" }

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

package model

// GetExampleAnalysis returns a filled-in AnalysisResult that is marshaled
// into the system prompt so the model sees the exact JSON shape it must
// reply with.
func GetExampleAnalysis() *AnalysisResult {
	return &AnalysisResult{
		Title:       "Epic Clutch 1v4 in Ranked Valorant",
		Description: "The streamer wins a tense 1v4 retake on Ascent while chat spams PogChamp. The kill feed, agent abilities and round timer are visible in the game UI, with a webcam overlay in the lower left corner.",
		Tags:        []string{"valorant", "clutch", "ranked", "twitch", "gaming", "epic"},
		UploadDate:  "2025-01-31",
		Streamer:    "example_streamer",
		Game:        "Valorant",
		Platform:    "twitch",
		ContentType: "gaming",

		TranscriptIncluded: true,
	}
}

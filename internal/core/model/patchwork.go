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

// Stream is one streamer channel as reported by the Patchwork API.
type Stream struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Type     string `json:"type"` // Platform label, e.g. "twitch".
}

// Clip is one recorded clip as reported by the Patchwork API. This is the
// single documented upstream schema: a clip without a usable VideoLink is
// rejected as unrecognized rather than probed for alternate key names.
type Clip struct {
	ID        string `json:"_id"`
	VideoLink string `json:"video_link"`
	Title     string `json:"title"`
	StreamID  string `json:"stream_id"`
	CreatedAt string `json:"created_at"`
}

// ClipPage is the envelope the clip-listing endpoints respond with.
type ClipPage struct {
	Data  []Clip `json:"data"`
	Pages int    `json:"pages"`
}

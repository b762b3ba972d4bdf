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

// Package model holds the document and transfer types shared across the
// pipeline, the store, and the HTTP surface.
package model

import "time"

// AnalysisResult is the typed form of the model's JSON reply, after
// validation and normalization. It is what the pipeline produces and what
// a single /analyse response is shaped from.
type AnalysisResult struct {
	VideoURL           string   `json:"video_url,omitempty"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Tags               []string `json:"tags"`
	UploadDate         string   `json:"upload_date"` // ISO date, best-effort.
	Streamer           string   `json:"streamer"`
	Game               string   `json:"game"`
	Platform           string   `json:"platform"`
	ContentType        string   `json:"content_type"`
	TranscriptIncluded bool     `json:"transcript_included"`
	FramesAnalyzed     int      `json:"frames_analyzed"`
	TranscriptLength   int      `json:"transcript_length"`
}

// AnalyzedVideo is the persisted document, one per distinct source URL.
// The store upserts it keyed by VideoURL; re-analysis replaces the fields
// and bumps UpdatedAt rather than creating a second document.
type AnalyzedVideo struct {
	VideoURL           string    `bson:"video_url" json:"video_url"`
	Title              string    `bson:"title" json:"title"`
	Description        string    `bson:"description" json:"description"`
	Tags               []string  `bson:"tags" json:"tags"`
	UploadDate         string    `bson:"upload_date" json:"upload_date"`
	Streamer           string    `bson:"streamer" json:"streamer"`
	Game               string    `bson:"game" json:"game"`
	Platform           string    `bson:"platform" json:"platform"`
	ContentType        string    `bson:"content_type" json:"content_type"`
	TranscriptIncluded bool      `bson:"transcript_included" json:"transcript_included"`
	TranscriptLength   int       `bson:"transcript_length" json:"transcript_length"`
	FramesAnalyzed     int       `bson:"frames_analyzed" json:"frames_analyzed"`
	CreatedAt          time.Time `bson:"created_at,omitempty" json:"created_at,omitempty"`
	AnalyzedAt         time.Time `bson:"analyzed_at,omitempty" json:"analyzed_at,omitempty"`
	UpdatedAt          time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// ToResult reshapes a stored document into the response form returned by
// the analyze operation. Timestamps are not part of the response contract.
func (v *AnalyzedVideo) ToResult() *AnalysisResult {
	return &AnalysisResult{
		VideoURL:           v.VideoURL,
		Title:              v.Title,
		Description:        v.Description,
		Tags:               v.Tags,
		UploadDate:         v.UploadDate,
		Streamer:           v.Streamer,
		Game:               v.Game,
		Platform:           v.Platform,
		ContentType:        v.ContentType,
		TranscriptIncluded: v.TranscriptIncluded,
		FramesAnalyzed:     v.FramesAnalyzed,
		TranscriptLength:   v.TranscriptLength,
	}
}

// Frame is one sampled video frame, JPEG-encoded on disk and base64-encoded
// for transmission to the vision model.
type Frame struct {
	TimeOffset int    // Seconds from the start of the video.
	Path       string // Path of the JPEG temp file.
	Base64     string // Base64 of the JPEG bytes.
}

// ClipRequest is one unit of analysis work as submitted over HTTP, either
// alone (POST /analyse) or as an element of a batch.
type ClipRequest struct {
	VideoLink    string `json:"video_link" binding:"required"`
	StreamerName string `json:"streamer_name"`
}

// Batch job states. A job moves started -> completed exactly once, when
// every clip has been counted as completed or failed.
const (
	JobStatusStarted   = "started"
	JobStatusCompleted = "completed"
)

// BatchJob tracks the progress of one background batch analysis. Jobs live
// in process memory only and are lost on restart.
type BatchJob struct {
	JobID       string            `json:"job_id"`
	Status      string            `json:"status"`
	Total       int               `json:"total"`
	Completed   int               `json:"completed"`
	Failed      int               `json:"failed"`
	Results     []*AnalysisResult `json:"results"`
	Errors      []string          `json:"errors"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// ProgressPercent reports how far the job has advanced, rounded to one
// decimal place.
func (j *BatchJob) ProgressPercent() float64 {
	if j.Total == 0 {
		return 0
	}
	pct := float64(j.Completed+j.Failed) / float64(j.Total) * 100
	return float64(int(pct*10+0.5)) / 10
}

// Clone returns a deep copy so readers never observe a job mid-update.
func (j *BatchJob) Clone() *BatchJob {
	out := *j
	out.Results = make([]*AnalysisResult, len(j.Results))
	for i, r := range j.Results {
		cp := *r
		cp.Tags = append([]string(nil), r.Tags...)
		out.Results[i] = &cp
	}
	out.Errors = append([]string(nil), j.Errors...)
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}

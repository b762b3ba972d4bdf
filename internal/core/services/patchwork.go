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

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/1xeno0/library/internal/cloud"
	"github.com/1xeno0/library/internal/core/model"
)

// PatchworkClient talks to the external Patchwork clip-listing API.
// Every request carries the API key in the x-api-key header.
type PatchworkClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewPatchworkClient(config *cloud.Patchwork) *PatchworkClient {
	return &PatchworkClient{
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutInSeconds) * time.Second,
		},
	}
}

// GetAllStreams lists every registered stream.
func (p *PatchworkClient) GetAllStreams(ctx context.Context) ([]model.Stream, error) {
	body, err := p.get(ctx, "/streams")
	if err != nil {
		return nil, err
	}
	var streams []model.Stream
	if err := json.Unmarshal(body, &streams); err != nil {
		return nil, fmt.Errorf("decode streams: %w", err)
	}
	return streams, nil
}

// GetAllClips lists clips across all streams, newest first, capped at
// limit.
func (p *PatchworkClient) GetAllClips(ctx context.Context, limit int) ([]model.Clip, error) {
	body, err := p.get(ctx, "/clips")
	if err != nil {
		return nil, err
	}
	return decodeClips(body, limit)
}

// GetClipsForStream lists clips belonging to one stream, capped at
// limit.
func (p *PatchworkClient) GetClipsForStream(ctx context.Context, streamID string, limit int) ([]model.Clip, error) {
	body, err := p.get(ctx, "/clips/stream/"+streamID)
	if err != nil {
		return nil, err
	}
	return decodeClips(body, limit)
}

// ResolveStreamID maps a username to its stream ID, case-sensitively
// first and then case-insensitively via the full stream list.
func (p *PatchworkClient) ResolveStreamID(ctx context.Context, username string) (string, error) {
	streams, err := p.GetAllStreams(ctx)
	if err != nil {
		return "", err
	}
	for _, stream := range streams {
		if stream.Username == username {
			return stream.ID, nil
		}
	}
	for _, stream := range streams {
		if strings.EqualFold(stream.Username, username) {
			return stream.ID, nil
		}
	}
	return "", NewClientError("no stream found for username %q", username)
}

func (p *PatchworkClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api"+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("patchwork request %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("patchwork request %s: status %d", path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("patchwork response %s: %w", path, err)
	}
	return body, nil
}

// decodeClips accepts the documented paged envelope and, as a fallback,
// a plain clip array. Anything else is ErrUnrecognizedClipShape.
func decodeClips(body []byte, limit int) ([]model.Clip, error) {
	var page model.ClipPage
	if err := json.Unmarshal(body, &page); err == nil && page.Data != nil {
		return capClips(page.Data, limit), nil
	}
	var clips []model.Clip
	if err := json.Unmarshal(body, &clips); err == nil {
		return capClips(clips, limit), nil
	}
	return nil, ErrUnrecognizedClipShape
}

func capClips(clips []model.Clip, limit int) []model.Clip {
	if limit > 0 && len(clips) > limit {
		return clips[:limit]
	}
	return clips
}

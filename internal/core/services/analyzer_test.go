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

package services_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/1xeno0/library/internal/core/commands"
	"github.com/1xeno0/library/internal/core/cor"
	"github.com/1xeno0/library/internal/core/model"
	"github.com/1xeno0/library/internal/core/services"
)

// fakeStore returns a fixed cached document for one URL.
type fakeStore struct {
	cached map[string]*model.AnalyzedVideo
}

func (f *fakeStore) FindByURL(_ context.Context, videoURL string) (*model.AnalyzedVideo, error) {
	return f.cached[videoURL], nil
}

// countingPipeline records executions and plants a canned result.
type countingPipeline struct {
	executions int
	result     *model.AnalysisResult
}

func (p *countingPipeline) Execute(ctx cor.Context) {
	p.executions++
	ctx.Add(commands.GetAnalysisParamName(), p.result)
}

func newTestValidator() *services.URLValidator {
	v := services.NewURLValidator("/nonexistent/yt-dlp", 0)
	v.SkipProbe = true
	return v
}

func TestAnalyzeReturnsCachedResultWithoutRunningPipeline(t *testing.T) {
	url := "https://clips.twitch.tv/CachedClip"
	store := &fakeStore{cached: map[string]*model.AnalyzedVideo{
		url: {VideoURL: url, Title: "cached", Tags: []string{"x"}},
	}}
	pipeline := &countingPipeline{}
	analyzer := services.NewAnalyzer(store, pipeline, newTestValidator())

	first, err := analyzer.Analyze(context.Background(), url, "")
	assert.NoError(t, err)
	second, err := analyzer.Analyze(context.Background(), url, "")
	assert.NoError(t, err)

	assert.Equal(t, "cached", first.Title)
	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, 0, pipeline.executions)
}

func TestAnalyzeRunsPipelineOnCacheMiss(t *testing.T) {
	url := "https://clips.twitch.tv/FreshClip"
	store := &fakeStore{cached: map[string]*model.AnalyzedVideo{}}
	pipeline := &countingPipeline{result: &model.AnalysisResult{Title: "fresh"}}
	analyzer := services.NewAnalyzer(store, pipeline, newTestValidator())

	result, err := analyzer.Analyze(context.Background(), url, "streamer")
	assert.NoError(t, err)
	assert.Equal(t, "fresh", result.Title)
	assert.Equal(t, url, result.VideoURL)
	assert.Equal(t, 1, pipeline.executions)
}

func TestAnalyzeRejectsEmptyAndMalformedURLs(t *testing.T) {
	analyzer := services.NewAnalyzer(&fakeStore{}, &countingPipeline{}, newTestValidator())

	_, err := analyzer.Analyze(context.Background(), "", "")
	assert.True(t, services.IsClientError(err))

	_, err = analyzer.Analyze(context.Background(), "ftp://example.com/v.mp4", "")
	assert.True(t, services.IsClientError(err))

	_, err = analyzer.Analyze(context.Background(), "https://unknown-host.example/clip", "")
	assert.True(t, services.IsClientError(err))

	pipeline := &countingPipeline{}
	assert.Equal(t, 0, pipeline.executions)
}

func TestValidatorDirectFileHeadCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		if r.URL.Path == "/ok.mp4" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	validator := newTestValidator()
	validator.HTTPClient = server.Client()

	note, err := validator.Validate(context.Background(), server.URL+"/ok.mp4")
	assert.NoError(t, err)
	assert.Equal(t, "Direct video file URL", note)

	_, err = validator.Validate(context.Background(), server.URL+"/missing.mp4")
	assert.True(t, services.IsClientError(err))
	assert.Contains(t, err.Error(), "404")
}

func TestValidatorAcceptsKnownPlatforms(t *testing.T) {
	validator := newTestValidator()
	for _, url := range []string{
		"https://www.youtube.com/watch?v=abc",
		"https://youtu.be/abc",
		"https://clips.twitch.tv/SomeClip",
		"https://x.com/user/status/123",
	} {
		note, err := validator.Validate(context.Background(), url)
		assert.NoError(t, err, url)
		assert.Equal(t, "Supported platform URL", note)
	}
}

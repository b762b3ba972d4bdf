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
	"fmt"
	"log/slog"
	"strings"

	"github.com/1xeno0/library/internal/core/commands"
	"github.com/1xeno0/library/internal/core/cor"
	"github.com/1xeno0/library/internal/core/model"
)

// VideoFinder is the slice of the store the orchestrator needs for its
// cache check.
type VideoFinder interface {
	FindByURL(ctx context.Context, videoURL string) (*model.AnalyzedVideo, error)
}

// Validator screens a URL before any pipeline work starts.
type Validator interface {
	Validate(ctx context.Context, rawURL string) (string, error)
}

// Analyzer orchestrates one video analysis: validate the URL, short
// circuit on a cached result, then run the pipeline and classify any
// failure. Analysis is idempotent per URL: a URL that is already in the
// store is never downloaded or sent to the model again.
type Analyzer struct {
	Store     VideoFinder
	Pipeline  cor.Executable
	Validator Validator
}

func NewAnalyzer(store VideoFinder, pipeline cor.Executable, validator Validator) *Analyzer {
	return &Analyzer{Store: store, Pipeline: pipeline, Validator: validator}
}

// Analyze runs one URL end to end and returns the analysis, cached or
// fresh. The streamer name, when known, is passed to the model as
// context.
func (a *Analyzer) Analyze(ctx context.Context, videoURL string, streamerName string) (*model.AnalysisResult, error) {
	note, err := a.Validator.Validate(ctx, videoURL)
	if err != nil {
		return nil, err
	}
	slog.Debug("url validated", slog.String("video_url", videoURL), slog.String("note", note))

	cached, err := a.Store.FindByURL(ctx, videoURL)
	if err != nil {
		return nil, fmt.Errorf("cache lookup for %q: %w", videoURL, err)
	}
	if cached != nil {
		slog.Info("returning cached analysis", slog.String("video_url", videoURL))
		return cached.ToResult(), nil
	}

	pctx := cor.NewBaseContext()
	defer pctx.Close()
	pctx.SetContext(ctx)
	pctx.Add(cor.CtxIn, videoURL)
	pctx.Add(commands.GetVideoURLParamName(), videoURL)
	pctx.Add(commands.GetStreamerNameParamName(), streamerName)

	a.Pipeline.Execute(pctx)

	if pctx.HasErrors() {
		return nil, classifyError(videoURL, firstError(pctx))
	}
	result, ok := pctx.Get(commands.GetAnalysisParamName()).(*model.AnalysisResult)
	if !ok || result == nil {
		return nil, fmt.Errorf("analysis of %q produced no result", videoURL)
	}
	result.VideoURL = videoURL
	return result, nil
}

func firstError(pctx cor.Context) error {
	for _, err := range pctx.GetErrors() {
		return err
	}
	return fmt.Errorf("pipeline failed")
}

// classifyError turns raw pipeline failures into messages that tell the
// caller whether the problem is the URL or the service. Failures caused
// by the remote source stay client errors so the HTTP layer reports
// them as such.
func classifyError(videoURL string, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "404"):
		return NewClientError("video not found (404) at %q", videoURL)
	case strings.Contains(msg, "403"):
		return NewClientError("access to video denied (403) at %q", videoURL)
	case strings.Contains(msg, "context deadline exceeded"),
		strings.Contains(msg, "timeout"):
		return fmt.Errorf("timed out processing %q: %w", videoURL, err)
	case strings.Contains(msg, "no such host"),
		strings.Contains(msg, "connection refused"):
		return NewClientError("video host unreachable for %q", videoURL)
	default:
		return fmt.Errorf("analysis of %q failed: %w", videoURL, err)
	}
}

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

	"github.com/1xeno0/library/internal/core/cor"
	"github.com/1xeno0/library/internal/core/model"
)

// AnalysisSaver persists one finished analysis keyed by source URL.
type AnalysisSaver interface {
	Save(ctx context.Context, videoURL string, result *model.AnalysisResult) (*model.AnalyzedVideo, error)
}

// VideoPersist upserts the finished analysis into the document store.
// When the store is degraded (no database connection) the save is
// skipped with a warning and the pipeline still succeeds; the caller
// gets the result either way.
type VideoPersist struct {
	cor.BaseCommand
	store AnalysisSaver
}

func NewVideoPersist(name string, store AnalysisSaver) *VideoPersist {
	return &VideoPersist{
		BaseCommand: *cor.NewBaseCommand(name),
		store:       store,
	}
}

func (v *VideoPersist) Execute(context cor.Context) {
	ctx := context.GetContext()

	result, ok := context.Get(v.GetInputParam()).(*model.AnalysisResult)
	if !ok || result == nil {
		context.AddError(v.GetName(), fmt.Errorf("no analysis result to persist"))
		v.GetErrorCounter().Add(ctx, 1)
		return
	}
	videoURL := fmt.Sprintf("%v", context.Get(GetVideoURLParamName()))

	if _, err := v.store.Save(ctx, videoURL, result); err != nil {
		slog.Warn("failed to persist analysis, returning result anyway",
			slog.String("video_url", videoURL),
			slog.String("error", err.Error()))
	}

	result.VideoURL = videoURL
	context.Add(v.GetOutputParam(), result)
	v.GetSuccessCounter().Add(ctx, 1)
}

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
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/1xeno0/library/internal/core/cor"
	"github.com/1xeno0/library/internal/core/model"
)

// FrameExtract samples still frames from the downloaded video at a
// fixed interval, capped at a maximum count. Each frame is written to a
// temp file, base64 encoded for the model call, and registered for
// cleanup. A frame that fails to extract is skipped; a run that yields
// no frames at all fails the pipeline, since the analysis would have
// nothing to look at.
type FrameExtract struct {
	cor.BaseCommand
	ffmpegPath  string
	ffprobePath string
	tempDir     string
	interval    int
	maxFrames   int
}

func NewFrameExtract(name string, ffmpegPath string, ffprobePath string, tempDir string, interval int, maxFrames int) *FrameExtract {
	return &FrameExtract{
		BaseCommand: *cor.NewBaseCommand(name),
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		tempDir:     tempDir,
		interval:    interval,
		maxFrames:   maxFrames,
	}
}

func (f *FrameExtract) IsExecutable(context cor.Context) bool {
	return context.GetContext() != nil && context.Get(GetVideoFileParamName()) != nil
}

// FrameOffsets returns the second offsets to sample for a video of the
// given duration: one frame every interval seconds from zero, stopping
// at the duration or the cap, whichever comes first.
func FrameOffsets(duration float64, interval int, maxFrames int) []int {
	if interval <= 0 || maxFrames <= 0 {
		return nil
	}
	offsets := make([]int, 0, maxFrames)
	for t := 0; float64(t) < duration && len(offsets) < maxFrames; t += interval {
		offsets = append(offsets, t)
	}
	return offsets
}

func (f *FrameExtract) Execute(context cor.Context) {
	ctx := context.GetContext()
	videoPath := fmt.Sprintf("%v", context.Get(GetVideoFileParamName()))

	duration, err := f.probeDuration(context, videoPath)
	if err != nil {
		context.AddError(f.GetName(), fmt.Errorf("probe duration: %w", err))
		f.GetErrorCounter().Add(ctx, 1)
		return
	}

	frames := make([]*model.Frame, 0, f.maxFrames)
	for _, offset := range FrameOffsets(duration, f.interval, f.maxFrames) {
		frame, err := f.extractFrame(context, videoPath, offset)
		if err != nil {
			slog.Warn("frame extraction failed, skipping offset",
				slog.Int("offset_seconds", offset),
				slog.String("error", err.Error()))
			continue
		}
		frames = append(frames, frame)
	}

	if len(frames) == 0 {
		context.AddError(f.GetName(), fmt.Errorf("no frames extracted from %q", videoPath))
		f.GetErrorCounter().Add(ctx, 1)
		return
	}

	slog.Debug("extracted frames",
		slog.Int("count", len(frames)),
		slog.Float64("duration_seconds", duration))
	context.Add(GetFramesParamName(), frames)
	context.Add(f.GetOutputParam(), frames)
	f.GetSuccessCounter().Add(ctx, 1)
}

func (f *FrameExtract) probeDuration(context cor.Context, videoPath string) (float64, error) {
	ctx, cancel := timeoutContext(context, 30*time.Second)
	defer cancel()
	out, err := runTool(ctx, f.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath)
	if err != nil {
		return 0, err
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(out), err)
	}
	return duration, nil
}

func (f *FrameExtract) extractFrame(context cor.Context, videoPath string, offset int) (*model.Frame, error) {
	out, err := os.CreateTemp(f.tempDir, fmt.Sprintf("library-frame-%d-*.jpg", offset))
	if err != nil {
		return nil, err
	}
	framePath := out.Name()
	_ = out.Close()
	context.AddTempFile(framePath)

	ctx, cancel := timeoutContext(context, 30*time.Second)
	defer cancel()
	if _, err := runTool(ctx, f.ffmpegPath,
		"-y",
		"-ss", strconv.Itoa(offset),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
		framePath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(framePath)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty frame at offset %d", offset)
	}
	return &model.Frame{
		TimeOffset: offset,
		Path:       framePath,
		Base64:     base64.StdEncoding.EncodeToString(data),
	}, nil
}

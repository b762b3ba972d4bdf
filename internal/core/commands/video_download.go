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
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/h2non/filetype"

	"github.com/1xeno0/library/internal/core/cor"
)

// VideoDownload fetches the video behind a URL into a temp file. It
// tries yt-dlp first, which handles every supported platform, and falls
// back to a plain HTTP GET for direct file links when yt-dlp is missing
// or fails. The temp file is registered with the pipeline context so it
// is removed when the run closes.
type VideoDownload struct {
	cor.BaseCommand
	ytDlpPath  string
	tempDir    string
	httpClient *http.Client
	timeout    time.Duration
}

func NewVideoDownload(name string, ytDlpPath string, tempDir string, timeout time.Duration) *VideoDownload {
	return &VideoDownload{
		BaseCommand: *cor.NewBaseCommand(name),
		ytDlpPath:   ytDlpPath,
		tempDir:     tempDir,
		httpClient:  &http.Client{Timeout: timeout},
		timeout:     timeout,
	}
}

// SetHTTPClient replaces the fallback client. Used by tests.
func (v *VideoDownload) SetHTTPClient(client *http.Client) {
	v.httpClient = client
}

func (v *VideoDownload) Execute(context cor.Context) {
	ctx := context.GetContext()
	url := fmt.Sprintf("%v", context.Get(v.GetInputParam()))

	out, err := os.CreateTemp(v.tempDir, "library-video-*.mp4")
	if err != nil {
		context.AddError(v.GetName(), fmt.Errorf("create temp file: %w", err))
		v.GetErrorCounter().Add(ctx, 1)
		return
	}
	outPath := out.Name()
	_ = out.Close()

	if err := v.runYtDlp(context, url, outPath); err != nil {
		slog.Warn("yt-dlp download failed, trying direct fetch",
			slog.String("url", url), slog.String("error", err.Error()))
		if err := v.fetchDirect(context, url, outPath); err != nil {
			_ = os.Remove(outPath)
			context.AddError(v.GetName(), fmt.Errorf("download failed for %q: %w", url, err))
			v.GetErrorCounter().Add(ctx, 1)
			return
		}
	}

	info, err := os.Stat(outPath)
	if err != nil || info.Size() == 0 {
		_ = os.Remove(outPath)
		context.AddError(v.GetName(), fmt.Errorf("download produced an empty file for %q", url))
		v.GetErrorCounter().Add(ctx, 1)
		return
	}

	context.AddTempFile(outPath)
	context.Add(GetVideoFileParamName(), outPath)
	context.Add(v.GetOutputParam(), outPath)
	v.GetSuccessCounter().Add(ctx, 1)
}

func (v *VideoDownload) runYtDlp(context cor.Context, url string, outPath string) error {
	ctx, cancel := timeoutContext(context, v.timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, v.ytDlpPath,
		"-f", "best[ext=mp4]/best",
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		"--force-overwrites",
		"-o", outPath,
		url)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("yt-dlp: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if info, err := os.Stat(outPath); err != nil || info.Size() == 0 {
		return fmt.Errorf("yt-dlp wrote no data")
	}
	return nil
}

// fetchDirect downloads the URL as-is. It only accepts responses that
// look like a video: a video/* content type, or a binary stream whose
// leading bytes sniff as a video container.
func (v *VideoDownload) fetchDirect(context cor.Context, url string, outPath string) error {
	req, err := http.NewRequestWithContext(context.GetContext(), http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	isVideo := strings.HasPrefix(contentType, "video/")
	isBinary := strings.HasPrefix(contentType, "application/octet-stream")
	if !isVideo && !isBinary {
		return fmt.Errorf("content type %q is not a video", contentType)
	}

	head := make([]byte, 261)
	n, _ := io.ReadFull(resp.Body, head)
	head = head[:n]
	if isBinary && !filetype.IsVideo(head) {
		return fmt.Errorf("binary response does not contain video data")
	}

	out, err := os.OpenFile(outPath, os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()
	if _, err := out.Write(head); err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		return err
	}
	return nil
}

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
	"net/http"
	"net/url"
	"os/exec"
	"strings"
	"time"
)

// supportedPlatforms are the hosts yt-dlp is known to handle without a
// probe. Subdomains of these hosts are accepted too.
var supportedPlatforms = []string{
	"youtube.com", "youtu.be", "twitch.tv", "clips.twitch.tv",
	"vimeo.com", "dailymotion.com", "facebook.com", "instagram.com",
	"tiktok.com", "twitter.com", "x.com",
}

// videoExtensions are the direct-file suffixes accepted without a
// platform match.
var videoExtensions = []string{".mp4", ".avi", ".mov", ".mkv", ".webm", ".flv", ".m4v"}

// URLValidator decides whether a URL is worth downloading before any
// expensive work starts. Direct file links get a HEAD check, known
// platforms pass immediately, and anything else gets a yt-dlp simulate
// probe. Every rejection is a ClientError.
type URLValidator struct {
	HTTPClient *http.Client
	YtDlpPath  string
	// SkipProbe disables the yt-dlp probe for unknown hosts, rejecting
	// them outright. Used by tests and probe-less deployments.
	SkipProbe bool
}

func NewURLValidator(ytDlpPath string, timeout time.Duration) *URLValidator {
	return &URLValidator{
		HTTPClient: &http.Client{Timeout: timeout},
		YtDlpPath:  ytDlpPath,
	}
}

// Validate returns a short human-readable note about how the URL was
// recognized, or a ClientError describing why it was rejected.
func (v *URLValidator) Validate(ctx context.Context, rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", NewClientError("video_link is required")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", NewClientError("invalid URL format: %q", rawURL)
	}

	lower := strings.ToLower(rawURL)
	for _, ext := range videoExtensions {
		if strings.HasSuffix(strings.ToLower(parsed.Path), ext) {
			return v.checkDirectFile(ctx, rawURL)
		}
	}

	host := strings.ToLower(parsed.Hostname())
	for _, platform := range supportedPlatforms {
		if host == platform || strings.HasSuffix(host, "."+platform) {
			return "Supported platform URL", nil
		}
	}

	if v.SkipProbe {
		return "", NewClientError("unsupported video source: %q", lower)
	}
	return v.probe(ctx, rawURL)
}

func (v *URLValidator) checkDirectFile(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return "", NewClientError("invalid URL: %v", err)
	}
	resp, err := v.HTTPClient.Do(req)
	if err != nil {
		return "", NewClientError("video file is not reachable: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	switch resp.StatusCode {
	case http.StatusOK:
		return "Direct video file URL", nil
	case http.StatusNotFound:
		return "", NewClientError("video file not found (404) at %q", rawURL)
	default:
		return "", NewClientError("video file returned status %d", resp.StatusCode)
	}
}

// probe asks yt-dlp whether it can handle the URL without downloading
// anything.
func (v *URLValidator) probe(ctx context.Context, rawURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, v.YtDlpPath, "--simulate", "--quiet", "--no-warnings", rawURL)
	if err := cmd.Run(); err != nil {
		return "", NewClientError("unsupported video source: %q", rawURL)
	}
	return "Probed video source", nil
}

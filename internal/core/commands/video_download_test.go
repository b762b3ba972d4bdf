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

package commands_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/1xeno0/library/internal/core/commands"
	"github.com/1xeno0/library/internal/core/cor"
)

// The yt-dlp binary path points at nothing, forcing every test through
// the direct HTTP fallback.
const noYtDlp = "/nonexistent/yt-dlp"

func newDownloadContext(url string) cor.Context {
	pctx := cor.NewBaseContext()
	pctx.SetContext(context.Background())
	pctx.Add(cor.CtxIn, url)
	return pctx
}

func TestVideoDownloadDirectFallback(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	cmd := commands.NewVideoDownload("video-download", noYtDlp, t.TempDir(), 5*time.Second)
	cmd.SetHTTPClient(server.Client())

	pctx := newDownloadContext(server.URL + "/clip.mp4")
	defer pctx.Close()
	cmd.Execute(pctx)

	assert.False(t, pctx.HasErrors(), "errors: %v", pctx.GetErrors())
	path, ok := pctx.Get(commands.GetVideoFileParamName()).(string)
	assert.True(t, ok)
	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Contains(t, pctx.GetTempFiles(), path)
}

func TestVideoDownloadRejectsNonVideoContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html>not a video</html>")
	}))
	defer server.Close()

	cmd := commands.NewVideoDownload("video-download", noYtDlp, t.TempDir(), 5*time.Second)
	cmd.SetHTTPClient(server.Client())

	pctx := newDownloadContext(server.URL + "/clip.mp4")
	defer pctx.Close()
	cmd.Execute(pctx)

	assert.True(t, pctx.HasErrors())
	assert.Empty(t, pctx.GetTempFiles())
}

func TestVideoDownloadPropagatesUpstream404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	cmd := commands.NewVideoDownload("video-download", noYtDlp, t.TempDir(), 5*time.Second)
	cmd.SetHTTPClient(server.Client())

	pctx := newDownloadContext(server.URL + "/gone.mp4")
	defer pctx.Close()
	cmd.Execute(pctx)

	assert.True(t, pctx.HasErrors())
	err := pctx.GetErrors()["video-download"]
	assert.Contains(t, err.Error(), "404")
}

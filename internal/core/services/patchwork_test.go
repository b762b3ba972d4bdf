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
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/1xeno0/library/internal/cloud"
	"github.com/1xeno0/library/internal/core/services"
)

func newPatchworkServer(t *testing.T, clipsBody string) (*httptest.Server, *services.PatchworkClient) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-key", r.Header.Get("x-api-key"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/streams":
			fmt.Fprint(w, `[
				{"_id": "s1", "username": "Coscu", "type": "twitch"},
				{"_id": "s2", "username": "n3on", "type": "kick"}
			]`)
		case "/api/clips", "/api/clips/stream/s1":
			fmt.Fprint(w, clipsBody)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	client := services.NewPatchworkClient(&cloud.Patchwork{
		BaseURL:          server.URL,
		APIKey:           "secret-key",
		TimeoutInSeconds: 5,
	})
	return server, client
}

func TestPatchworkStreamsAndEnvelopeClips(t *testing.T) {
	_, client := newPatchworkServer(t, `{
		"data": [
			{"_id": "c1", "video_link": "https://cdn/clip1.mp4", "title": "one", "stream_id": "s1"},
			{"_id": "c2", "video_link": "https://cdn/clip2.mp4", "title": "two", "stream_id": "s1"}
		],
		"pages": 1
	}`)

	streams, err := client.GetAllStreams(context.Background())
	assert.NoError(t, err)
	assert.Len(t, streams, 2)
	assert.Equal(t, "Coscu", streams[0].Username)

	clips, err := client.GetAllClips(context.Background(), 10)
	assert.NoError(t, err)
	assert.Len(t, clips, 2)
	assert.Equal(t, "https://cdn/clip1.mp4", clips[0].VideoLink)

	limited, err := client.GetAllClips(context.Background(), 1)
	assert.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestPatchworkPlainArrayClips(t *testing.T) {
	_, client := newPatchworkServer(t, `[
		{"_id": "c1", "video_link": "https://cdn/clip1.mp4", "title": "one"}
	]`)

	clips, err := client.GetClipsForStream(context.Background(), "s1", 5)
	assert.NoError(t, err)
	assert.Len(t, clips, 1)
}

func TestPatchworkUnrecognizedClipShape(t *testing.T) {
	_, client := newPatchworkServer(t, `{"unexpected": "shape"}`)

	_, err := client.GetAllClips(context.Background(), 5)
	assert.ErrorIs(t, err, services.ErrUnrecognizedClipShape)
}

func TestResolveStreamIDIsCaseInsensitive(t *testing.T) {
	_, client := newPatchworkServer(t, `[]`)

	id, err := client.ResolveStreamID(context.Background(), "coscu")
	assert.NoError(t, err)
	assert.Equal(t, "s1", id)

	_, err = client.ResolveStreamID(context.Background(), "nobody")
	assert.True(t, services.IsClientError(err))
}

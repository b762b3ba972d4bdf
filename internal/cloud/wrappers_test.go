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

package cloud_test

import (
	"context"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"

	"github.com/1xeno0/library/internal/cloud"
)

// flakyChatCompleter fails a fixed number of times before answering.
type flakyChatCompleter struct {
	failures int
	calls    int
	reply    string
}

func (f *flakyChatCompleter) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	if f.calls <= f.failures {
		return openai.ChatCompletionResponse{}, fmt.Errorf("transient upstream error")
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.reply}},
		},
	}, nil
}

func TestGenerateMultiModalResponseRetriesThenSucceeds(t *testing.T) {
	completer := &flakyChatCompleter{failures: 2, reply: `{"ok": true}`}
	model := cloud.NewQuotaAwareChatModel(completer, "gpt-4o-mini", 1200, 0.3, 100)
	counter, err := otel.Meter("test").Int64Counter("test.retries")
	assert.NoError(t, err)

	out, err := cloud.GenerateMultiModalResponse(context.Background(), counter, 0, model, nil)
	assert.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, out)
	assert.Equal(t, 3, completer.calls)
}

func TestGenerateMultiModalResponseGivesUpAfterMaxRetries(t *testing.T) {
	completer := &flakyChatCompleter{failures: 100}
	model := cloud.NewQuotaAwareChatModel(completer, "gpt-4o-mini", 1200, 0.3, 100)
	counter, err := otel.Meter("test").Int64Counter("test.retries")
	assert.NoError(t, err)

	_, err = cloud.GenerateMultiModalResponse(context.Background(), counter, 0, model, nil)
	assert.Error(t, err)
	assert.Equal(t, cloud.MaxRetries+1, completer.calls)
}

func TestStripCodeFence(t *testing.T) {
	fenced := "```json\n{\"title\": \"x\"}\n```"
	assert.Equal(t, `{"title": "x"}`, cloud.StripCodeFence(fenced))

	plain := `{"title": "x"}`
	assert.Equal(t, plain, cloud.StripCodeFence(plain))

	bare := "```\n{\"title\": \"x\"}\n```"
	assert.Equal(t, `{"title": "x"}`, cloud.StripCodeFence(bare))
}

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

// Rate-limited wrapper around the OpenAI chat-completion client. Hosted
// model quotas are enforced per project, so every analysis call funnels
// through this wrapper: requests above the configured rate are delayed
// rather than failed, and transient API errors are retried a bounded
// number of times before the error propagates.
package cloud

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"
)

// MaxRetries is the number of times a failed model call is reattempted
// before giving up. Retries are for the call layer only; the orchestrator
// itself never re-runs a pipeline.
const MaxRetries = 3

// ChatCompleter is the slice of the OpenAI client the wrapper needs.
// *openai.Client satisfies it; tests substitute a stub.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// QuotaAwareChatModel pairs a chat model with a token-bucket rate limiter.
type QuotaAwareChatModel struct {
	Client      ChatCompleter
	ModelName   string  // e.g. "gpt-4o-mini".
	MaxTokens   int     // Upper bound on reply length.
	Temperature float32 // Sampling temperature for every request.
	RateLimit   *rate.Limiter
}

// NewQuotaAwareChatModel wraps client with a limiter allowing
// requestsPerSecond sustained requests.
func NewQuotaAwareChatModel(client ChatCompleter, modelName string, maxTokens int, temperature float32, requestsPerSecond int) *QuotaAwareChatModel {
	if requestsPerSecond < 1 {
		requestsPerSecond = 1
	}
	return &QuotaAwareChatModel{
		Client:      client,
		ModelName:   modelName,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		RateLimit:   rate.NewLimiter(rate.Every(time.Second/time.Duration(requestsPerSecond)), requestsPerSecond),
	}
}

// GenerateContent sends the messages to the model, waiting for the rate
// limiter first. The request carries the wrapper's model name, token bound
// and temperature so call sites cannot drift apart.
func (q *QuotaAwareChatModel) GenerateContent(ctx context.Context, messages []openai.ChatCompletionMessage) (openai.ChatCompletionResponse, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	return q.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       q.ModelName,
		Messages:    messages,
		MaxTokens:   q.MaxTokens,
		Temperature: q.Temperature,
	})
}

// GenerateMultiModalResponse calls the model with bounded retries and
// returns the concatenated text of the first choice, with optional
// markdown code fences stripped so the reply can be fed straight to a
// JSON decoder.
func GenerateMultiModalResponse(
	ctx context.Context,
	retryCounter metric.Int64Counter,
	tryCount int,
	model *QuotaAwareChatModel,
	messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := model.GenerateContent(ctx, messages)
	if err != nil {
		if tryCount < MaxRetries {
			retryCounter.Add(ctx, 1)
			return GenerateMultiModalResponse(ctx, retryCounter, tryCount+1, model, messages)
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model %s returned no choices", model.ModelName)
	}
	return StripCodeFence(resp.Choices[0].Message.Content), nil
}

// StripCodeFence removes a surrounding ```json ... ``` (or plain ```)
// fence that models frequently wrap JSON replies in.
func StripCodeFence(in string) string {
	out := strings.TrimSpace(in)
	out = strings.TrimPrefix(out, "```json")
	out = strings.TrimPrefix(out, "```")
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}

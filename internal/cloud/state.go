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

// Service client construction. All clients for external collaborators are
// created once at startup from the configuration and shared for the life
// of the process.
//
// The Mongo client is deliberately allowed to be nil: if the database is
// unreachable at startup the service still comes up and analyzes videos,
// it just never caches or persists results. That degraded mode is detected
// and logged by the store, not here.
package cloud

import (
	"context"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// ServiceClients holds the shared clients for external services.
type ServiceClients struct {
	OpenAIClient *openai.Client       // Chat-completion + transcription API.
	ChatModel    *QuotaAwareChatModel // Rate-limited analysis model.
	MongoClient  *mongo.Client        // nil when the database was unreachable at startup.
}

// Close releases client resources. The OpenAI client is plain HTTP and
// holds nothing to release.
func (c *ServiceClients) Close() {
	if c.MongoClient != nil {
		_ = c.MongoClient.Disconnect(context.Background())
	}
}

// NewServiceClients builds the shared clients from config. Only a missing
// OpenAI key is fatal; a dead database is reported and tolerated.
func NewServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	oc := openai.NewClient(config.OpenAI.APIKey)

	chatModel := NewQuotaAwareChatModel(
		oc,
		config.OpenAI.ChatModel,
		config.OpenAI.MaxOutputTokens,
		config.OpenAI.Temperature,
		config.OpenAI.RateLimit,
	)

	var mc *mongo.Client
	if config.Mongo.URI != "" {
		timeout := time.Duration(config.Mongo.TimeoutInSeconds) * time.Second
		client, err := mongo.Connect(options.Client().
			ApplyURI(config.Mongo.URI).
			SetServerSelectionTimeout(timeout))
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, timeout)
			err = client.Ping(pingCtx, readpref.Primary())
			cancel()
		}
		if err != nil {
			slog.Warn("mongodb connection failed, running without persistence",
				"error", err)
		} else {
			mc = client
			slog.Info("mongodb connected", "database", config.Mongo.Database)
		}
	} else {
		slog.Warn("no mongodb uri configured, running without persistence")
	}

	return &ServiceClients{
		OpenAIClient: oc,
		ChatModel:    chatModel,
		MongoClient:  mc,
	}, nil
}

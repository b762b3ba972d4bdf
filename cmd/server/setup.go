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

// Package main contains the setup and initialization logic for the
// analyzer server's shared state: configuration, service clients, the
// video store, the analysis pipeline, batch job tracking, and the
// Patchwork API client.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/1xeno0/library/internal/cloud"
	"github.com/1xeno0/library/internal/core/services"
	"github.com/1xeno0/library/internal/core/workflow"
)

// StateManager holds the shared dependencies behind the HTTP handlers.
// One instance is built at startup; handlers only read from it.
type StateManager struct {
	config    *cloud.Config
	cloud     *cloud.ServiceClients
	store     *services.VideoStore
	analyzer  *services.Analyzer
	jobs      services.JobStore
	runner    *services.BatchRunner
	patchwork *services.PatchworkClient
	startedAt time.Time
}

var state = &StateManager{}

// SetupOS points the configuration loader at the on-disk TOML files
// when the deployment has not already set the variables.
func SetupOS() (err error) {
	if os.Getenv(cloud.EnvConfigFilePrefix) == "" {
		if err = os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if os.Getenv(cloud.EnvConfigRuntime) == "" {
		err = os.Setenv(cloud.EnvConfigRuntime, "local")
	}
	return err
}

// GetConfig loads the application configuration once and caches it.
func GetConfig() *cloud.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to set up environment: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(config)
		state.config = config
	}
	return state.config
}

// InitState builds the full application state: service clients, the
// video store (with indexes), the analysis pipeline and its
// orchestrator, the in-memory batch job store, and the Patchwork
// client.
func InitState(ctx context.Context) {
	config := GetConfig()

	clients, err := cloud.NewServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = clients

	state.store = services.NewVideoStore(clients.MongoClient, &config.Mongo)
	if err := state.store.EnsureIndexes(ctx); err != nil {
		slog.Warn("failed to ensure store indexes", "error", err)
	}

	pipeline := workflow.NewVideoAnalysisPipeline(config, clients, state.store)
	validator := services.NewURLValidator(
		config.Extraction.YtDlpPath,
		time.Duration(config.Extraction.DownloadTimeout)*time.Second)
	state.analyzer = services.NewAnalyzer(state.store, pipeline, validator)

	state.jobs = services.NewMemoryJobStore()
	state.runner = services.NewBatchRunner(state.jobs, state.analyzer.Analyze)

	state.patchwork = services.NewPatchworkClient(&config.Patchwork)
	state.startedAt = time.Now().UTC()
}

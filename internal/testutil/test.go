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

// Package testutil provides helpers shared by the test suite: loading
// the test configuration and canned model replies.
package testutil

import (
	"log"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/1xeno0/library/internal/cloud"
)

type stateManager struct {
	config *cloud.Config
}

var state = &stateManager{}

// HandleErr fails the test when err is non-nil. Reduces boilerplate in
// setup-heavy tests.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// GetConfig loads the test configuration once per test binary, pointing
// the loader at the repository's configs directory regardless of which
// package the test runs from.
func GetConfig() *cloud.Config {
	if state.config == nil {
		_, thisFile, _, _ := runtime.Caller(0)
		configDir := filepath.Join(filepath.Dir(thisFile), "..", "..", "configs")
		if err := os.Setenv(cloud.EnvConfigFilePrefix, configDir); err != nil {
			log.Fatalf("failed to set config prefix: %v\n", err)
		}
		if err := os.Setenv(cloud.EnvConfigRuntime, "test"); err != nil {
			log.Fatalf("failed to set config runtime: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(config)
		state.config = config
	}
	return state.config
}

// GetTestAnalysisReply returns a canned model reply in the exact JSON
// shape the analysis pipeline expects to parse.
func GetTestAnalysisReply() string {
	return `{
  "title": "Insane Sniper Flick on Stream",
  "description": "The streamer hits a cross-map flick shot and leaps out of the chair while chat floods with emotes.",
  "tags": ["sniper", "flick", "twitch", "gaming", "epic"],
  "upload_date": "2025-02-14",
  "streamer": "test_streamer",
  "game": "Counter-Strike 2",
  "platform": "twitch",
  "content_type": "gaming",
  "transcript_included": true
}`
}

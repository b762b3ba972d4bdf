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

// Configuration loading. Configuration is layered: a base ".env.toml" file
// is read first, then an environment-specific overlay
// (".env.<runtime>.toml") is applied on top of it. The directory holding
// the files and the runtime name are selected by environment variables so
// the same binary can run locally, under test, or in production without
// edits. After the files are merged, a handful of well-known environment
// variables override the secret fields.
package cloud

import (
	"errors"
	"log"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	ConfigFileBaseName  = ".env"
	ConfigFileExtension = ".toml"
	ConfigSeparator     = "."
	// EnvConfigFilePrefix names the directory that holds the TOML files.
	EnvConfigFilePrefix = "LIBRARY_CONFIG_PREFIX"
	// EnvConfigRuntime selects the overlay file (e.g. "local", "test", "prod").
	EnvConfigRuntime = "LIBRARY_RUNTIME"

	// Environment variables that override secrets from the TOML files.
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvMongoURI        = "MONGODB_URI"
	EnvPatchworkAPIKey = "PATCHWORK_API_KEY"
)

func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// LoadConfig populates config from the layered TOML files and then applies
// environment overrides. A missing file is not an error (the defaults from
// NewConfig stand); a file that exists but fails to parse is fatal since
// the server cannot run with a half-read configuration.
func LoadConfig(config *Config) {
	// A plain .env file, if present, seeds the process environment first
	// so that the secret overrides below see its values.
	_ = godotenv.Load()

	configurationFilePrefix := os.Getenv(EnvConfigFilePrefix)
	if len(configurationFilePrefix) > 0 && !strings.HasSuffix(configurationFilePrefix, string(os.PathSeparator)) {
		configurationFilePrefix = configurationFilePrefix + string(os.PathSeparator)
	}

	runtimeEnvironment := os.Getenv(EnvConfigRuntime)
	if runtimeEnvironment == "" {
		runtimeEnvironment = "local"
	}

	baseConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigFileExtension
	envConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigSeparator + runtimeEnvironment + ConfigFileExtension

	if fileExists(baseConfigFileName) {
		if _, err := toml.DecodeFile(baseConfigFileName, config); err != nil {
			log.Fatalf("failed to decode base configuration file %s with error: %s", baseConfigFileName, err)
		}
	}

	if fileExists(envConfigFileName) {
		if _, err := toml.DecodeFile(envConfigFileName, config); err != nil {
			log.Fatalf("failed to decode environment configuration file: %s with error: %s", envConfigFileName, err)
		}
	}

	if v := os.Getenv(EnvOpenAIAPIKey); v != "" {
		config.OpenAI.APIKey = v
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		config.Mongo.URI = v
	}
	if v := os.Getenv(EnvPatchworkAPIKey); v != "" {
		config.Patchwork.APIKey = v
	}
}

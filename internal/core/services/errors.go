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

// Package services holds the application services behind the HTTP
// surface: URL validation, the analysis orchestrator, the video store,
// batch job tracking, and the Patchwork API client.
package services

import (
	"errors"
	"fmt"
)

// ErrJobNotFound is returned when a batch job ID is unknown.
var ErrJobNotFound = errors.New("job not found")

// ErrUnrecognizedClipShape is returned when the Patchwork clips payload
// matches neither the paged envelope nor a plain array.
var ErrUnrecognizedClipShape = errors.New("unrecognized clip payload shape")

// ClientError marks a failure caused by the request itself (bad URL,
// unsupported platform, unreachable file) rather than by the service.
// The HTTP layer maps it to a 400.
type ClientError struct {
	msg string
}

func (e *ClientError) Error() string { return e.msg }

func NewClientError(format string, args ...any) error {
	return &ClientError{msg: fmt.Sprintf(format, args...)}
}

// IsClientError reports whether err (or anything it wraps) is a
// ClientError.
func IsClientError(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce)
}

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
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/1xeno0/library/internal/core/model"
)

// JobStore tracks batch analysis jobs. Readers always get snapshots, so
// a job observed mid-run never mutates under the caller.
type JobStore interface {
	// Create registers a new job covering total clips and returns its ID.
	Create(total int) string

	// Get returns a snapshot of the job, or ErrJobNotFound.
	Get(jobID string) (*model.BatchJob, error)

	// AddSuccess records one completed clip and its result.
	AddSuccess(jobID string, result *model.AnalysisResult)

	// AddFailure records one failed clip with its error message.
	AddFailure(jobID string, errMsg string)
}

// MemoryJobStore keeps jobs in process memory. Jobs are lost on restart
// and are never evicted; the job count is bounded by how many batches a
// deployment actually submits.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]*model.BatchJob
}

func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]*model.BatchJob)}
}

func (s *MemoryJobStore) Create(total int) string {
	jobID := uuid.New().String()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[jobID] = &model.BatchJob{
		JobID:     jobID,
		Status:    model.JobStatusStarted,
		Total:     total,
		Results:   []*model.AnalysisResult{},
		Errors:    []string{},
		StartedAt: time.Now().UTC(),
	}
	return jobID
}

func (s *MemoryJobStore) Get(jobID string) (*model.BatchJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job.Clone(), nil
}

func (s *MemoryJobStore) AddSuccess(jobID string, result *model.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return
	}
	job.Completed++
	job.Results = append(job.Results, result)
	s.maybeComplete(job)
}

func (s *MemoryJobStore) AddFailure(jobID string, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return
	}
	job.Failed++
	job.Errors = append(job.Errors, errMsg)
	s.maybeComplete(job)
}

// maybeComplete flips the job to completed exactly once, when every
// clip has been counted. Callers hold the write lock.
func (s *MemoryJobStore) maybeComplete(job *model.BatchJob) {
	if job.Status == model.JobStatusStarted && job.Completed+job.Failed >= job.Total {
		job.Status = model.JobStatusCompleted
		now := time.Now().UTC()
		job.CompletedAt = &now
	}
}

// AnalyzeFunc is the analysis entry point a batch runner drives, one
// call per clip.
type AnalyzeFunc func(ctx context.Context, videoURL string, streamerName string) (*model.AnalysisResult, error)

// BatchRunner processes the clips of a batch job sequentially in a
// single background goroutine, recording per-clip outcomes as it goes.
// Sequential processing keeps one batch from monopolizing the model's
// rate limit.
type BatchRunner struct {
	Jobs    JobStore
	Analyze AnalyzeFunc
}

func NewBatchRunner(jobs JobStore, analyze AnalyzeFunc) *BatchRunner {
	return &BatchRunner{Jobs: jobs, Analyze: analyze}
}

// Start registers a job for the clips and launches its worker. It
// returns the job ID immediately; progress is polled via the JobStore.
func (r *BatchRunner) Start(ctx context.Context, clips []model.ClipRequest) string {
	jobID := r.Jobs.Create(len(clips))
	go r.run(ctx, jobID, clips)
	return jobID
}

func (r *BatchRunner) run(ctx context.Context, jobID string, clips []model.ClipRequest) {
	slog.Info("batch job started", slog.String("job_id", jobID), slog.Int("clips", len(clips)))
	for i, clip := range clips {
		if clip.VideoLink == "" {
			r.Jobs.AddFailure(jobID, fmt.Sprintf("Clip %d: missing video_link", i+1))
			continue
		}
		result, err := r.Analyze(ctx, clip.VideoLink, clip.StreamerName)
		if err != nil {
			r.Jobs.AddFailure(jobID, fmt.Sprintf("Clip %d: %v", i+1, err))
			continue
		}
		r.Jobs.AddSuccess(jobID, result)
	}
	slog.Info("batch job finished", slog.String("job_id", jobID))
}

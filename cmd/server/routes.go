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

package main

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/1xeno0/library/internal/core/model"
	"github.com/1xeno0/library/internal/core/services"
)

// RegisterRoutes wires every endpoint onto the engine. Error responses
// are always {"error": message}; request problems map to 400, unknown
// resources to 404, everything else to 500.
func RegisterRoutes(r *gin.Engine) {
	r.GET("/health", healthHandler)
	r.POST("/analyse", analyseHandler)
	r.POST("/analyse/batch", analyseBatchHandler)
	r.GET("/analyse/progress/:job_id", analysisProgressHandler)
	r.POST("/find_clips", findClipsHandler)
	r.GET("/videos", listVideosHandler)
	r.GET("/stats", statsHandler)
	r.GET("/patchwork/streams", patchworkStreamsHandler)
	r.GET("/patchwork/clips", patchworkClipsHandler)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
	})
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":             "healthy",
		"service":            state.config.Application.Name,
		"database_connected": state.store.Connected(),
		"uptime_seconds":     int(time.Since(state.startedAt).Seconds()),
	})
}

func analyseHandler(c *gin.Context) {
	var req model.ClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required field 'video_link'"})
		return
	}

	result, err := state.analyzer.Analyze(c.Request.Context(), req.VideoLink, req.StreamerName)
	if err != nil {
		status := http.StatusInternalServerError
		if services.IsClientError(err) {
			status = http.StatusBadRequest
		}
		slog.Error("analysis failed",
			slog.String("video_url", req.VideoLink),
			slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func analyseBatchHandler(c *gin.Context) {
	var req struct {
		Clips []model.ClipRequest `json:"clips"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Clips == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'clips' field"})
		return
	}
	if len(req.Clips) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Clips must be a non-empty array"})
		return
	}

	// The job outlives this request, so the worker gets a fresh context
	// rather than the request's.
	jobID := state.runner.Start(context.Background(), req.Clips)
	c.JSON(http.StatusOK, gin.H{
		"job_id":      jobID,
		"total_clips": len(req.Clips),
		"status":      model.JobStatusStarted,
	})
}

func analysisProgressHandler(c *gin.Context) {
	job, err := state.jobs.Get(c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	resp := gin.H{
		"job_id":           job.JobID,
		"status":           job.Status,
		"total":            job.Total,
		"completed":        job.Completed,
		"failed":           job.Failed,
		"progress_percent": job.ProgressPercent(),
		"results":          job.Results,
		"errors":           job.Errors,
		"started_at":       job.StartedAt,
	}
	if job.CompletedAt != nil {
		resp["completed_at"] = job.CompletedAt
	}
	c.JSON(http.StatusOK, resp)
}

func findClipsHandler(c *gin.Context) {
	var req struct {
		SearchQuery string   `json:"search_query"`
		Tags        []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format"})
		return
	}
	if req.SearchQuery == "" && len(req.Tags) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "At least one of 'search_query' or 'tags' must be provided",
		})
		return
	}

	videos, err := state.store.Search(c.Request.Context(), req.SearchQuery, req.Tags)
	if err != nil {
		slog.Error("search failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed: " + err.Error()})
		return
	}
	if len(videos) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"message": "No clips found matching the search criteria",
			"count":   0,
			"videos":  []*model.AnalyzedVideo{},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(videos),
		"videos": videos,
	})
}

func listVideosHandler(c *gin.Context) {
	videos, err := state.store.All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list videos: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(videos),
		"videos": videos,
	})
}

func statsHandler(c *gin.Context) {
	ctx := c.Request.Context()

	totalVideos, err := state.store.Count(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stats: " + err.Error()})
		return
	}

	streams, err := state.patchwork.GetAllStreams(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stats: " + err.Error()})
		return
	}
	clips, err := state.patchwork.GetAllClips(ctx, 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stats: " + err.Error()})
		return
	}

	streamers := make([]string, 0, len(streams))
	seenStreamers := make(map[string]bool)
	platforms := make([]string, 0)
	seenPlatforms := make(map[string]bool)
	for _, stream := range streams {
		if !seenStreamers[stream.Username] {
			seenStreamers[stream.Username] = true
			streamers = append(streamers, stream.Username)
		}
		if !seenPlatforms[stream.Type] {
			seenPlatforms[stream.Type] = true
			platforms = append(platforms, stream.Type)
		}
	}
	sample := streamers
	if len(sample) > 10 {
		sample = sample[:10]
	}

	c.JSON(http.StatusOK, gin.H{
		"total_analyzed_videos":   totalVideos,
		"total_available_streams": len(streams),
		"total_available_clips":   len(clips),
		"unique_streamers":        len(streamers),
		"platforms":               platforms,
		"sample_streamers":        sample,
		"last_updated":            time.Now().UTC().Format(time.RFC3339),
	})
}

func patchworkStreamsHandler(c *gin.Context) {
	streams, err := state.patchwork.GetAllStreams(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch streams: " + err.Error()})
		return
	}
	resp := gin.H{
		"count":   len(streams),
		"streams": streams,
	}
	if len(streams) == 0 {
		resp["message"] = "No streams found"
	}
	c.JSON(http.StatusOK, resp)
}

func patchworkClipsHandler(c *gin.Context) {
	ctx := c.Request.Context()

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	username := c.Query("username")

	var clips []model.Clip
	if username != "" {
		streamID, err := state.patchwork.ResolveStreamID(ctx, username)
		if err != nil {
			if services.IsClientError(err) {
				clips = []model.Clip{}
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch clips: " + err.Error()})
				return
			}
		} else {
			clips, err = state.patchwork.GetClipsForStream(ctx, streamID, limit)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch clips: " + err.Error()})
				return
			}
		}
	} else {
		clips, err = state.patchwork.GetAllClips(ctx, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch clips: " + err.Error()})
			return
		}
	}

	label := username
	if label == "" {
		label = "all"
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(clips),
		"clips":    clips,
		"username": label,
	})
}

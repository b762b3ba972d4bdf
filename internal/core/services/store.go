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
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/1xeno0/library/internal/cloud"
	"github.com/1xeno0/library/internal/core/model"
)

// VideoStore persists analyzed videos in MongoDB, one document per
// distinct source URL. When constructed without a reachable database it
// runs degraded: writes are silently skipped, reads return empty, and
// Connected reports false so /health can surface the state.
type VideoStore struct {
	collection  *mongo.Collection
	connected   bool
	searchLimit int64
	timeout     time.Duration
}

func NewVideoStore(client *mongo.Client, config *cloud.Mongo) *VideoStore {
	out := &VideoStore{
		searchLimit: config.SearchLimit,
		timeout:     time.Duration(config.TimeoutInSeconds) * time.Second,
	}
	if client == nil {
		slog.Warn("video store running without a database, results will not persist")
		return out
	}
	out.collection = client.Database(config.Database).Collection(config.VideosCollection)
	out.connected = true
	return out
}

// Connected reports whether a database backs this store.
func (s *VideoStore) Connected() bool {
	return s.connected
}

// EnsureIndexes creates the indexes the store queries against. Safe to
// call on every startup.
func (s *VideoStore) EnsureIndexes(ctx context.Context) error {
	if !s.connected {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "video_url", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "analyzed_at", Value: -1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// Save upserts the analysis keyed by video URL. Re-analyzing a URL
// replaces the analysis fields and bumps updated_at; created_at is set
// only on first insert.
func (s *VideoStore) Save(ctx context.Context, videoURL string, result *model.AnalysisResult) (*model.AnalyzedVideo, error) {
	now := time.Now().UTC()
	doc := &model.AnalyzedVideo{
		VideoURL:           videoURL,
		Title:              result.Title,
		Description:        result.Description,
		Tags:               result.Tags,
		UploadDate:         result.UploadDate,
		Streamer:           result.Streamer,
		Game:               result.Game,
		Platform:           result.Platform,
		ContentType:        result.ContentType,
		TranscriptIncluded: result.TranscriptIncluded,
		TranscriptLength:   result.TranscriptLength,
		FramesAnalyzed:     result.FramesAnalyzed,
		CreatedAt:          now,
		AnalyzedAt:         now,
		UpdatedAt:          now,
	}
	if !s.connected {
		return doc, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "title", Value: doc.Title},
			{Key: "description", Value: doc.Description},
			{Key: "tags", Value: doc.Tags},
			{Key: "upload_date", Value: doc.UploadDate},
			{Key: "streamer", Value: doc.Streamer},
			{Key: "game", Value: doc.Game},
			{Key: "platform", Value: doc.Platform},
			{Key: "content_type", Value: doc.ContentType},
			{Key: "transcript_included", Value: doc.TranscriptIncluded},
			{Key: "transcript_length", Value: doc.TranscriptLength},
			{Key: "frames_analyzed", Value: doc.FramesAnalyzed},
			{Key: "analyzed_at", Value: doc.AnalyzedAt},
			{Key: "updated_at", Value: doc.UpdatedAt},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "video_url", Value: doc.VideoURL},
			{Key: "created_at", Value: doc.CreatedAt},
		}},
	}
	_, err := s.collection.UpdateOne(ctx,
		bson.D{{Key: "video_url", Value: videoURL}},
		update,
		options.UpdateOne().SetUpsert(true))
	if err != nil {
		return nil, fmt.Errorf("upsert video %q: %w", videoURL, err)
	}
	return doc, nil
}

// FindByURL returns the stored analysis for a URL, or nil when the URL
// has not been analyzed (or the store is degraded).
func (s *VideoStore) FindByURL(ctx context.Context, videoURL string) (*model.AnalyzedVideo, error) {
	if !s.connected {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	var doc model.AnalyzedVideo
	err := s.collection.FindOne(ctx, bson.D{{Key: "video_url", Value: videoURL}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find video %q: %w", videoURL, err)
	}
	return &doc, nil
}

// Search returns videos matching the query and tags, newest analysis
// first, capped at the configured limit.
func (s *VideoStore) Search(ctx context.Context, query string, tags []string) ([]*model.AnalyzedVideo, error) {
	if !s.connected {
		return []*model.AnalyzedVideo{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	cursor, err := s.collection.Find(ctx,
		BuildSearchFilter(query, tags),
		options.Find().
			SetSort(bson.D{{Key: "analyzed_at", Value: -1}}).
			SetLimit(s.searchLimit))
	if err != nil {
		return nil, fmt.Errorf("search videos: %w", err)
	}
	out := []*model.AnalyzedVideo{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}
	return out, nil
}

// All returns the most recently analyzed videos, capped at the
// configured limit.
func (s *VideoStore) All(ctx context.Context) ([]*model.AnalyzedVideo, error) {
	return s.Search(ctx, "", nil)
}

// Count returns the number of stored analyses.
func (s *VideoStore) Count(ctx context.Context) (int64, error) {
	if !s.connected {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	n, err := s.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count videos: %w", err)
	}
	return n, nil
}

// DeleteByURL removes the analysis for a URL. It reports whether a
// document was actually deleted.
func (s *VideoStore) DeleteByURL(ctx context.Context, videoURL string) (bool, error) {
	if !s.connected {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	res, err := s.collection.DeleteOne(ctx, bson.D{{Key: "video_url", Value: videoURL}})
	if err != nil {
		return false, fmt.Errorf("delete video %q: %w", videoURL, err)
	}
	return res.DeletedCount > 0, nil
}

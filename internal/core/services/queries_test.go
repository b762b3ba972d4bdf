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

package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/1xeno0/library/internal/core/services"
)

func TestBuildSearchFilterEmptyMatchesEverything(t *testing.T) {
	assert.Equal(t, bson.D{}, services.BuildSearchFilter("", nil))
	assert.Equal(t, bson.D{}, services.BuildSearchFilter("   ", []string{"", " "}))
}

func TestBuildSearchFilterSingleWord(t *testing.T) {
	filter := services.BuildSearchFilter("clutch", nil)

	// One word produces a single $or across title, description and tags.
	assert.Len(t, filter, 1)
	assert.Equal(t, "$or", filter[0].Key)
	clauses := filter[0].Value.(bson.A)
	assert.Len(t, clauses, 3)
	title := clauses[0].(bson.D)
	assert.Equal(t, "title", title[0].Key)
	regex := title[0].Value.(bson.D)
	assert.Equal(t, bson.D{
		{Key: "$regex", Value: "clutch"},
		{Key: "$options", Value: "i"},
	}, regex)
}

func TestBuildSearchFilterMultiWordIsConjunction(t *testing.T) {
	filter := services.BuildSearchFilter("epic clutch", nil)

	assert.Len(t, filter, 1)
	assert.Equal(t, "$and", filter[0].Key)
	groups := filter[0].Value.(bson.A)
	assert.Len(t, groups, 2)
}

func TestBuildSearchFilterTagsAreDisjunctive(t *testing.T) {
	filter := services.BuildSearchFilter("", []string{"valorant", "fail"})

	assert.Len(t, filter, 1)
	assert.Equal(t, "$or", filter[0].Key)
	clauses := filter[0].Value.(bson.A)
	assert.Len(t, clauses, 2)
	first := clauses[0].(bson.D)
	assert.Equal(t, "tags", first[0].Key)
}

func TestBuildSearchFilterCombinesWordsAndTags(t *testing.T) {
	filter := services.BuildSearchFilter("epic", []string{"valorant"})

	assert.Len(t, filter, 1)
	assert.Equal(t, "$and", filter[0].Key)
	groups := filter[0].Value.(bson.A)
	assert.Len(t, groups, 2)
}

func TestBuildSearchFilterEscapesRegexMetacharacters(t *testing.T) {
	filter := services.BuildSearchFilter("c++", nil)

	clauses := filter[0].Value.(bson.A)
	title := clauses[0].(bson.D)
	regex := title[0].Value.(bson.D)
	assert.Equal(t, `c\+\+`, regex[0].Value)
}

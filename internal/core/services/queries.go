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
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// BuildSearchFilter translates a free-text query and a tag list into a
// Mongo filter. Every whitespace-separated query word must match at
// least one of title, description, or tags (case-insensitive substring,
// regex metacharacters escaped). Tags are OR'd among themselves: a
// video matches if any requested tag matches. The word conditions and
// the tag condition are then AND'd. An empty query and empty tag list
// produce an empty filter that matches everything.
func BuildSearchFilter(query string, tags []string) bson.D {
	var groups []bson.D

	for _, word := range strings.Fields(query) {
		pattern := regexp.QuoteMeta(word)
		groups = append(groups, bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: caseInsensitive(pattern)}},
			bson.D{{Key: "description", Value: caseInsensitive(pattern)}},
			bson.D{{Key: "tags", Value: caseInsensitive(pattern)}},
		}}})
	}

	var tagClauses bson.A
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		tagClauses = append(tagClauses, bson.D{
			{Key: "tags", Value: caseInsensitive(regexp.QuoteMeta(tag))},
		})
	}
	if len(tagClauses) > 0 {
		groups = append(groups, bson.D{{Key: "$or", Value: tagClauses}})
	}

	switch len(groups) {
	case 0:
		return bson.D{}
	case 1:
		return groups[0]
	default:
		clauses := make(bson.A, 0, len(groups))
		for _, g := range groups {
			clauses = append(clauses, g)
		}
		return bson.D{{Key: "$and", Value: clauses}}
	}
}

func caseInsensitive(pattern string) bson.D {
	return bson.D{
		{Key: "$regex", Value: pattern},
		{Key: "$options", Value: "i"},
	}
}

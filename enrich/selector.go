// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package enrich

import (
	"sort"
	"strings"

	"github.com/observatorio/geonoticias/extract"
	"github.com/observatorio/geonoticias/geocode"
	"github.com/observatorio/geonoticias/utils/textutils"
)

// Score weights.
const (
	TitleMentionScore = 10
	AIPrimaryScore    = 5
)

// Resolved is a candidate together with its geocoding result.
type Resolved struct {
	Candidate extract.Candidate
	Result    geocode.Result
	Score     int
}

// Score rates a candidate for an article title: being named in the title
// weighs more than the model's opinion.
func Score(c extract.Candidate, title string) int {
	score := 0

	normalized := c.Normalized
	if normalized == "" {
		normalized = textutils.Normalize(c.Raw)
	}

	if c.TitleMention || (normalized != "" && strings.Contains(textutils.Normalize(title), normalized)) {
		score += TitleMentionScore
	}

	if c.AIPrimaryHint {
		score += AIPrimaryScore
	}

	return score
}

// Rank returns a scored copy of resolved, best first. Ties keep the input
// order, so the ranking is deterministic.
func Rank(resolved []Resolved, title string) []Resolved {
	ranked := make([]Resolved, len(resolved))
	for i, r := range resolved {
		r.Score = Score(r.Candidate, title)
		ranked[i] = r
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked
}

// Select returns the primary location, false when there is nothing to choose.
func Select(resolved []Resolved, title string) (Resolved, bool) {
	if len(resolved) == 0 {
		return Resolved{}, false
	}

	return Rank(resolved, title)[0], true
}

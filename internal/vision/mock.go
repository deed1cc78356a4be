package vision

import (
	"context"
	"strings"

	"pictor/internal/metadata"
)

// MockAnalyzer returns randomized metadata without touching the network.
// Used when no API key is configured.
type MockAnalyzer struct{}

func (MockAnalyzer) Analyze(_ context.Context, _ []byte, _ string) (metadata.Metadata, error) {
	return metadata.Mock(), nil
}

// MockExtractor pulls criteria out of a query with plain substring checks
// against the known vocabulary. Crude but good enough to exercise the
// whole natural-search path offline.
type MockExtractor struct{}

// Words carrying no search signal, excluded from the leftover keywords.
var stopWords = map[string]bool{
	"people": true, "person": true, "male": true, "female": true,
	"men": true, "women": true, "man": true, "woman": true,
	"group": true, "multiple": true, "with": true, "in": true, "and": true,
	"the": true, "a": true, "an": true, "of": true, "find": true,
	"show": true, "search": true, "for": true, "me": true, "images": true,
}

func (MockExtractor) ExtractCriteria(_ context.Context, query string) (Criteria, error) {
	var c Criteria
	lower := strings.ToLower(query)

	c.Medium = firstMentioned(lower, metadata.Mediums)
	c.Style = firstMentioned(lower, metadata.Styles)
	c.Mood = firstMentioned(lower, metadata.Moods)
	c.Environment = firstMentioned(lower, metadata.Environments)

	for _, color := range metadata.Colors {
		if strings.Contains(lower, strings.ToLower(color)) {
			c.Colors = append(c.Colors, color)
		}
	}

	if strings.Contains(lower, "people") || strings.Contains(lower, "person") {
		one := 1
		c.People = &CriteriaPeople{Number: &one}

		if containsAny(lower, "male", "men", "man") {
			c.People.Gender = "Male"
		}
		if containsAny(lower, "female", "women", "woman") {
			c.People.Gender = "Female"
		}
		if containsAny(lower, "group", "multiple") {
			several := 3
			c.People.Number = &several
		}
	}

	c.Actions = firstMentioned(lower, metadata.Actions)
	c.Clothes = firstMentioned(lower, metadata.Clothes)

	vocab := make(map[string]bool)
	for _, table := range [][]string{
		metadata.Mediums, metadata.Styles, metadata.Moods,
		metadata.Environments, metadata.Colors, metadata.Actions, metadata.Clothes,
	} {
		for _, v := range table {
			vocab[strings.ToLower(v)] = true
		}
	}

	for _, word := range strings.Fields(lower) {
		if len(word) > 3 && !vocab[word] && !stopWords[word] {
			c.Keywords = append(c.Keywords, word)
		}
	}

	return c, nil
}

func firstMentioned(lowerQuery string, values []string) string {
	for _, v := range values {
		if strings.Contains(lowerQuery, strings.ToLower(v)) {
			return v
		}
	}
	return ""
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

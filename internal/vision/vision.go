// Package vision talks to the analysis oracles: the vision model that
// turns image bytes into structured metadata, and the language model that
// turns a free-form sentence into search criteria. Both have local mock
// implementations for running without an API key.
package vision

import (
	"context"
	"strconv"
	"strings"

	"pictor/internal/metadata"
)

// Analyzer produces metadata for uploaded image bytes.
type Analyzer interface {
	Analyze(ctx context.Context, imageBytes []byte, mimeType string) (metadata.Metadata, error)
}

// CriteriaExtractor turns a natural-language query into structured search
// criteria. Implementations return an empty Criteria on failure rather
// than an error; a degraded search beats a failed request.
type CriteriaExtractor interface {
	ExtractCriteria(ctx context.Context, query string) (Criteria, error)
}

// CriteriaPeople mirrors the people block of extracted criteria. Number is
// a pointer so "no count mentioned" and "zero" stay distinct.
type CriteriaPeople struct {
	Number *int   `json:"number,omitempty"`
	Gender string `json:"gender,omitempty"`
}

// Criteria is what the extractor pulls out of a sentence: recognized
// filter fields, only when the sentence actually mentions them, plus the
// leftover significant keywords.
type Criteria struct {
	Medium      string          `json:"medium,omitempty"`
	People      *CriteriaPeople `json:"people,omitempty"`
	Actions     string          `json:"actions,omitempty"`
	Clothes     string          `json:"clothes,omitempty"`
	Environment string          `json:"environment,omitempty"`
	Colors      []string        `json:"colors,omitempty"`
	Style       string          `json:"style,omitempty"`
	Mood        string          `json:"mood,omitempty"`
	Keywords    []string        `json:"keywords,omitempty"`
}

// Filters flattens the criteria into the evaluator's filter map plus the
// keyword query string. People collapse to the synthetic "people" filter,
// gender winning over count; only the first extracted color is used as a
// filter since the colors field holds one value per posting anyway.
func (c Criteria) Filters() (map[string]string, string) {
	filters := make(map[string]string)

	if c.Medium != "" {
		filters[string(metadata.FieldMedium)] = c.Medium
	}
	if c.Style != "" {
		filters[string(metadata.FieldStyle)] = c.Style
	}
	if c.Mood != "" {
		filters[string(metadata.FieldMood)] = c.Mood
	}
	if c.Environment != "" {
		filters[string(metadata.FieldEnvironment)] = c.Environment
	}

	if c.People != nil {
		if c.People.Gender != "" {
			filters[string(metadata.FieldPeople)] = c.People.Gender
		} else if c.People.Number != nil {
			filters[string(metadata.FieldPeople)] = strconv.Itoa(*c.People.Number)
		}
	}

	if c.Actions != "" {
		filters[string(metadata.FieldActions)] = c.Actions
	}
	if c.Clothes != "" {
		filters[string(metadata.FieldClothes)] = c.Clothes
	}
	if len(c.Colors) > 0 {
		filters[string(metadata.FieldColors)] = c.Colors[0]
	}

	return filters, strings.Join(c.Keywords, " ")
}

// Package search evaluates gallery queries against the inverted index and
// ranks related images by metadata similarity.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"pictor/internal/database"
	"pictor/internal/metadata"
)

// Criteria is one search request: a free-text query plus a map of
// field-scoped filters. Empty filter values mean "ignore this filter".
type Criteria struct {
	Query   string            `json:"query"`
	Filters map[string]string `json:"filters"`
}

// IsEmpty reports whether the criteria constrain anything at all.
func (c Criteria) IsEmpty() bool {
	if strings.TrimSpace(c.Query) != "" {
		return false
	}
	for _, v := range c.Filters {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Evaluate runs the criteria against the index and hydrates the matching
// images, newest upload first.
//
// The boolean shape is deliberate and asymmetric: each whitespace token of
// the query matches a substring of ANY field's postings, while each filter
// is scoped to its own field. Every token and every filter must hold
// (logical AND). Empty criteria fall back to the full collection; a
// constrained query that matches nothing returns an empty list, never the
// fallback.
func Evaluate(ctx context.Context, db *gorm.DB, c Criteria) ([]database.Image, error) {
	if c.IsEmpty() {
		return database.ListImages(ctx, db)
	}

	q := db.WithContext(ctx).Model(&database.Image{})

	for _, term := range strings.Fields(strings.ToLower(strings.TrimSpace(c.Query))) {
		sub := db.Model(&database.Posting{}).Select("image_id").
			Where("value LIKE ?", "%"+term+"%")
		q = q.Where("id IN (?)", sub)
	}

	for _, field := range sortedFilterKeys(c.Filters) {
		value := strings.ToLower(strings.TrimSpace(c.Filters[field]))
		if value == "" {
			continue
		}
		pattern := "%" + value + "%"

		var sub *gorm.DB
		if metadata.Field(field) == metadata.FieldPeople {
			// The synthetic people key matches either people field.
			sub = db.Model(&database.Posting{}).Select("image_id").
				Where("field IN ? AND value LIKE ?",
					[]string{string(metadata.FieldPeopleNumber), string(metadata.FieldPeopleGender)}, pattern)
		} else {
			sub = db.Model(&database.Posting{}).Select("image_id").
				Where("field = ? AND value LIKE ?", field, pattern)
		}
		q = q.Where("id IN (?)", sub)
	}

	images := make([]database.Image, 0)
	if err := q.Order("upload_date DESC").Find(&images).Error; err != nil {
		return nil, fmt.Errorf("evaluate search: %w", err)
	}
	return images, nil
}

// Deterministic condition order keeps query plans and logs stable.
func sortedFilterKeys(filters map[string]string) []string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

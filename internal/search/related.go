package search

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"pictor/internal/database"
	"pictor/internal/metadata"
)

// DefaultRelatedLimit caps the related-images list.
const DefaultRelatedLimit = 6

// RelatedImage is a candidate with its similarity score attached.
type RelatedImage struct {
	database.Image
	Score int `json:"score"`
}

// Similarity computes the weighted metadata overlap between two images.
// Shared medium and style weigh heaviest, then environment and mood, then
// one point per shared color and per shared people attribute. A missing
// field on either side contributes nothing.
func Similarity(a, b metadata.Metadata) int {
	score := 0

	if match(a.Medium, b.Medium) {
		score += 3
	}
	if match(a.Style, b.Style) {
		score += 3
	}
	if match(a.Environment, b.Environment) {
		score += 2
	}
	if match(a.Mood, b.Mood) {
		score += 2
	}

	shared := make(map[string]bool, len(a.Colors))
	for _, c := range a.Colors {
		if c != "" {
			shared[c] = true
		}
	}
	for _, c := range b.Colors {
		if shared[c] {
			score++
			// One point per color value, even if listed twice.
			shared[c] = false
		}
	}

	if match(a.Actions, b.Actions) {
		score++
	}
	if match(a.Clothes, b.Clothes) {
		score++
	}

	return score
}

func match(a, b string) bool {
	return a != "" && a == b
}

// FindRelated scores every other image against the source and returns the
// top candidates, strongest first. Candidates with no overlap at all are
// excluded rather than ranked last. Ties order newest upload first, then
// by id, so repeated calls return the same list.
//
// This is a full scan over the collection. Fine for a personal gallery;
// revisit if collections grow past tens of thousands of images.
func FindRelated(ctx context.Context, db *gorm.DB, sourceID string, limit int) ([]RelatedImage, error) {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}

	source, err := database.GetImage(ctx, db, sourceID)
	if err != nil {
		return nil, err
	}

	var candidates []database.Image
	if err := db.WithContext(ctx).Where("id <> ?", sourceID).Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	ranked := make([]RelatedImage, 0, len(candidates))
	for _, cand := range candidates {
		score := Similarity(source.Metadata, cand.Metadata)
		if score == 0 {
			continue
		}
		ranked = append(ranked, RelatedImage{Image: cand, Score: score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if !ranked[i].UploadDate.Equal(ranked[j].UploadDate) {
			return ranked[i].UploadDate.After(ranked[j].UploadDate)
		}
		return ranked[i].ID < ranked[j].ID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// Package index persists and queries the inverted metadata index: one
// (field, token) posting row per indexed fact, substring lookups, and
// transactional coupling between an image record and its postings.
package index

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"pictor/internal/appinfo"
	"pictor/internal/database"
	"pictor/internal/metadata"
)

// Store wraps the database handle with index semantics. All writes go
// through Store so a record and its postings never diverge.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// IndexImage inserts the image record and every posting derived from its
// metadata in one transaction. A concurrent reader sees either the fully
// indexed image or nothing.
func (s *Store) IndexImage(ctx context.Context, img *database.Image) error {
	postings := metadata.Normalize(img.Metadata)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(img).Error; err != nil {
			return fmt.Errorf("create image record: %w", err)
		}
		if len(postings) == 0 {
			return nil
		}
		rows := make([]database.Posting, 0, len(postings))
		for _, p := range postings {
			rows = append(rows, database.Posting{
				ImageID: img.ID,
				Field:   string(p.Field),
				Value:   p.Value,
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("create postings: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	appinfo.AddImage(img.FileSize)
	return nil
}

// DeindexImage removes every posting for id. Idempotent: deindexing an
// unknown or already-deindexed image is a no-op, not an error.
func (s *Store) DeindexImage(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("image_id = ?", id).Delete(&database.Posting{}).Error; err != nil {
		return fmt.Errorf("deindex image: %w", err)
	}
	return nil
}

// Lookup returns the deduplicated image ids whose posting for field
// contains token as a case-insensitive substring. The synthetic "people"
// field matches people_number OR people_gender. An unknown field yields an
// empty set, not an error.
func (s *Store) Lookup(ctx context.Context, field metadata.Field, token string) ([]string, error) {
	if !metadata.IsFilterField(field) {
		return nil, nil
	}

	pattern := "%" + strings.ToLower(token) + "%"

	q := s.db.WithContext(ctx).Model(&database.Posting{}).Distinct("image_id")
	if field == metadata.FieldPeople {
		q = q.Where("field IN ? AND value LIKE ?",
			[]string{string(metadata.FieldPeopleNumber), string(metadata.FieldPeopleGender)}, pattern)
	} else {
		q = q.Where("field = ? AND value LIKE ?", string(field), pattern)
	}

	var ids []string
	if err := q.Pluck("image_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("index lookup: %w", err)
	}
	return ids, nil
}

// PostingCount reports how many postings exist for one image. Used by
// stats and tests.
func (s *Store) PostingCount(ctx context.Context, id string) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&database.Posting{}).Where("image_id = ?", id).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count postings: %w", err)
	}
	return n, nil
}

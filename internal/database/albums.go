package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateAlbum stores a new album. The name must be non-empty after
// trimming.
func CreateAlbum(ctx context.Context, db *gorm.DB, name, description string) (*Album, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: album name is required", ErrInvalidInput)
	}

	now := time.Now().UTC()
	album := &Album{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.WithContext(ctx).Create(album).Error; err != nil {
		return nil, fmt.Errorf("create album: %w", err)
	}
	return album, nil
}

// AlbumSummary is an album row plus its image count.
type AlbumSummary struct {
	Album
	ImageCount int64 `json:"image_count"`
}

// ListAlbums returns all albums with image counts, most recently updated
// first.
func ListAlbums(ctx context.Context, db *gorm.DB) ([]AlbumSummary, error) {
	var albums []Album
	if err := db.WithContext(ctx).Order("updated_at DESC").Find(&albums).Error; err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}

	out := make([]AlbumSummary, 0, len(albums))
	for _, a := range albums {
		var count int64
		if err := db.WithContext(ctx).Model(&AlbumImage{}).Where("album_id = ?", a.ID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("count album images: %w", err)
		}
		out = append(out, AlbumSummary{Album: a, ImageCount: count})
	}
	return out, nil
}

// AddImagesToAlbum links images to an album, silently skipping links that
// already exist. Returns the ids that were newly added.
func AddImagesToAlbum(ctx context.Context, db *gorm.DB, albumID string, imageIDs []string) ([]string, error) {
	var album Album
	if err := db.WithContext(ctx).Where("id = ?", albumID).First(&album).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get album: %w", err)
	}

	now := time.Now().UTC()
	var added []string
	for _, id := range imageIDs {
		result := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&AlbumImage{
			AlbumID: albumID,
			ImageID: id,
			AddedAt: now,
		})
		if result.Error != nil {
			return added, fmt.Errorf("link image %s: %w", id, result.Error)
		}
		if result.RowsAffected > 0 {
			added = append(added, id)
		}
	}

	db.WithContext(ctx).Model(&Album{}).Where("id = ?", albumID).Update("updated_at", now)
	return added, nil
}

// AlbumImages returns the images in an album, most recently added first.
func AlbumImages(ctx context.Context, db *gorm.DB, albumID string) ([]Image, error) {
	var images []Image
	err := db.WithContext(ctx).
		Joins("JOIN album_images ON album_images.image_id = images.id").
		Where("album_images.album_id = ?", albumID).
		Order("album_images.added_at DESC").
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("list album images: %w", err)
	}
	return images, nil
}

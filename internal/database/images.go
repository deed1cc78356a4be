package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pictor/internal/appinfo"
)

// ListImages returns every image, newest upload first.
func ListImages(ctx context.Context, db *gorm.DB) ([]Image, error) {
	images := make([]Image, 0)
	if err := db.WithContext(ctx).Order("upload_date DESC").Find(&images).Error; err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return images, nil
}

// GetImage returns a single image by id.
func GetImage(ctx context.Context, db *gorm.DB, id string) (*Image, error) {
	var img Image
	if err := db.WithContext(ctx).Where("id = ?", id).First(&img).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get image: %w", err)
	}
	return &img, nil
}

// DeleteImage removes an image record together with its postings and album
// links in a single transaction. Either everything goes or nothing does; a
// record without postings (or the reverse) is never observable. The file on
// disk is the caller's problem — it is outside the transaction anyway.
//
// Returns the deleted record so the caller can unlink its files.
func DeleteImage(ctx context.Context, db *gorm.DB, id string) (*Image, error) {
	var img Image

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&img).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("fetch image: %w", err)
		}

		// Children first, then the record.
		if err := tx.Where("image_id = ?", id).Delete(&Posting{}).Error; err != nil {
			return fmt.Errorf("delete postings: %w", err)
		}
		if err := tx.Where("image_id = ?", id).Delete(&AlbumImage{}).Error; err != nil {
			return fmt.Errorf("delete album links: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&Image{}).Error; err != nil {
			return fmt.Errorf("delete image: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	appinfo.RemoveImage(img.FileSize)
	return &img, nil
}

// SetImagePrivacy flips the privacy flag on an image.
func SetImagePrivacy(ctx context.Context, db *gorm.DB, id string, private bool) error {
	result := db.WithContext(ctx).Model(&Image{}).Where("id = ?", id).Update("private", private)
	if result.Error != nil {
		return fmt.Errorf("set privacy: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// StorageUsage sums image bytes and database file bytes.
type StorageUsage struct {
	ImageBytes    int64 `json:"image_bytes"`
	DatabaseBytes int64 `json:"database_bytes"`
	TotalBytes    int64 `json:"total_bytes"`
}

// ImageBytesUsed returns the total size of all stored image files
// according to the records (not the filesystem).
func ImageBytesUsed(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	row := db.WithContext(ctx).Model(&Image{}).Select("IFNULL(SUM(file_size), 0)").Row()
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("sum image sizes: %w", err)
	}
	return total, nil
}

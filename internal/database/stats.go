package database

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"
)

// ValueCount is a grouped aggregation row (a token and how many postings
// carry it).
type ValueCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// MimeTypeCount aggregates stored images by MIME type.
type MimeTypeCount struct {
	MimeType  string `json:"mimeType"`
	Count     int64  `json:"count"`
	TotalSize int64  `json:"totalSize"`
}

// GalleryStats is the aggregate view served by the stats endpoint.
type GalleryStats struct {
	TotalImages      int64           `json:"total_images"`
	PrivateImages    int64           `json:"private_images"`
	TotalPostings    int64           `json:"total_postings"`
	TotalAlbums      int64           `json:"total_albums"`
	UniqueCategories int64           `json:"unique_categories"`
	TotalPeople      int64           `json:"total_people"`
	TopStyles        []ValueCount    `json:"top_styles"`
	TopEnvironments  []ValueCount    `json:"top_environments"`
	TopMoods         []ValueCount    `json:"top_moods"`
	TopColors        []ValueCount    `json:"top_colors"`
	MimeTypes        []MimeTypeCount `json:"file_types"`
}

// CollectStats runs the aggregate queries behind the stats endpoint.
func CollectStats(ctx context.Context, db *gorm.DB) (*GalleryStats, error) {
	stats := &GalleryStats{}
	tx := db.WithContext(ctx)

	if err := tx.Model(&Image{}).Count(&stats.TotalImages).Error; err != nil {
		return nil, fmt.Errorf("count images: %w", err)
	}
	if err := tx.Model(&Image{}).Where("private = ?", true).Count(&stats.PrivateImages).Error; err != nil {
		return nil, fmt.Errorf("count private images: %w", err)
	}
	if err := tx.Model(&Posting{}).Count(&stats.TotalPostings).Error; err != nil {
		return nil, fmt.Errorf("count postings: %w", err)
	}
	if err := tx.Model(&Album{}).Count(&stats.TotalAlbums).Error; err != nil {
		return nil, fmt.Errorf("count albums: %w", err)
	}

	// Categories are the distinct tokens across the descriptive dimensions.
	err := tx.Model(&Posting{}).
		Where("field IN ?", []string{"medium", "style", "environment", "mood"}).
		Distinct("value").
		Count(&stats.UniqueCategories).Error
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}

	row := tx.Model(&Posting{}).
		Select("IFNULL(SUM(CAST(value AS INTEGER)), 0)").
		Where("field = ?", "people_number").Row()
	if err := row.Scan(&stats.TotalPeople); err != nil {
		return nil, fmt.Errorf("sum people: %w", err)
	}

	for _, top := range []struct {
		field string
		dst   *[]ValueCount
	}{
		{"style", &stats.TopStyles},
		{"environment", &stats.TopEnvironments},
		{"mood", &stats.TopMoods},
		{"colors", &stats.TopColors},
	} {
		if err := topValues(tx, top.field, top.dst); err != nil {
			return nil, err
		}
	}

	err = tx.Model(&Image{}).
		Select("mime_type, COUNT(*) as count, SUM(file_size) as total_size").
		Group("mime_type").
		Scan(&stats.MimeTypes).Error
	if err != nil {
		return nil, fmt.Errorf("mime type stats: %w", err)
	}

	return stats, nil
}

// DatabaseBytes sums the main database file plus its WAL and SHM side
// files.
func DatabaseBytes(dbPath string) int64 {
	var total int64
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if info, err := os.Stat(dbPath + suffix); err == nil {
			total += info.Size()
		}
	}
	return total
}

func topValues(tx *gorm.DB, field string, dst *[]ValueCount) error {
	err := tx.Model(&Posting{}).
		Select("value, COUNT(*) as count").
		Where("field = ?", field).
		Group("value").
		Order("count DESC").
		Limit(5).
		Scan(dst).Error
	if err != nil {
		return fmt.Errorf("top %s: %w", field, err)
	}
	return nil
}

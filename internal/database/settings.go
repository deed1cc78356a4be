package database

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Setting keys understood by the server.
const (
	SettingStorageLimit     = "storage_limit"
	SettingThumbnailQuality = "thumbnail_quality"
	SettingAutoBackup       = "auto_backup"
	SettingAppVersion       = "app_version"
)

const DefaultStorageLimit = int64(1 << 30) // 1 GB

var defaultSettings = map[string]string{
	SettingStorageLimit:     strconv.FormatInt(DefaultStorageLimit, 10),
	SettingThumbnailQuality: "80",
	SettingAutoBackup:       "false",
	SettingAppVersion:       "1.0.0",
}

func seedDefaultSettings(db *gorm.DB) {
	now := time.Now().UTC()
	for key, value := range defaultSettings {
		db.Clauses(clause.OnConflict{DoNothing: true}).Create(&Setting{
			Key:       key,
			Value:     value,
			UpdatedAt: now,
		})
	}
}

// GetSetting returns the value for key, or "" with ErrNotFound when the
// key was never stored.
func GetSetting(db *gorm.DB, key string) (string, error) {
	var s Setting
	if err := db.Where("key = ?", key).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return s.Value, nil
}

// UpdateSetting upserts a key-value pair.
func UpdateSetting(db *gorm.DB, key, value string) (Setting, error) {
	s := Setting{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&s).Error
	if err != nil {
		return Setting{}, fmt.Errorf("update setting %q: %w", key, err)
	}
	return s, nil
}

// AllSettings returns every stored setting keyed by name.
func AllSettings(db *gorm.DB) (map[string]Setting, error) {
	var rows []Setting
	if err := db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	out := make(map[string]Setting, len(rows))
	for _, s := range rows {
		out[s.Key] = s
	}
	return out, nil
}

// StorageLimit returns the configured storage limit in bytes, falling back
// to the default when the setting is missing or unparsable.
func StorageLimit(db *gorm.DB) int64 {
	raw, err := GetSetting(db, SettingStorageLimit)
	if err != nil {
		return DefaultStorageLimit
	}
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || limit <= 0 {
		return DefaultStorageLimit
	}
	return limit
}

// ThumbnailQuality returns the JPEG quality for generated thumbnails,
// clamped to a sane range.
func ThumbnailQuality(db *gorm.DB) int {
	raw, err := GetSetting(db, SettingThumbnailQuality)
	if err != nil {
		return 80
	}
	q, err := strconv.Atoi(raw)
	if err != nil || q < 1 || q > 100 {
		return 80
	}
	return q
}

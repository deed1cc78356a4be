package database

import (
	"time"

	"pictor/internal/metadata"
)

// Image is a stored gallery image. Metadata is persisted as a JSON column;
// the searchable projection of it lives in the search_index table.
type Image struct {
	ID           string `gorm:"primaryKey;type:text"`
	FileName     string `gorm:"type:text"`
	FileSize     int64
	MimeType     string            `gorm:"type:text"`
	URL          string            `gorm:"type:text"`
	FilePath     string            `gorm:"type:text"`
	ThumbnailURL string            `gorm:"type:text"`
	UploadDate   time.Time         `gorm:"index"`
	Metadata     metadata.Metadata `gorm:"serializer:json"`
	Private      bool              `gorm:"index;default:false"`

	Postings   []Posting    `gorm:"foreignKey:ImageID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	AlbumLinks []AlbumImage `gorm:"foreignKey:ImageID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// Posting is one (field, token) fact about an image in the inverted index.
// Values are stored lowercased; lookups are substring matches.
type Posting struct {
	ID      uint   `gorm:"primaryKey"`
	ImageID string `gorm:"index;type:text"`
	Field   string `gorm:"index;type:text"`
	Value   string `gorm:"index;type:text"`
}

// TableName keeps the legacy table name the stats queries refer to.
func (Posting) TableName() string { return "search_index" }

type Album struct {
	ID          string `gorm:"primaryKey;type:text"`
	Name        string `gorm:"type:text;not null"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time `gorm:"index"`

	Links []AlbumImage `gorm:"foreignKey:AlbumID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

type AlbumImage struct {
	AlbumID string `gorm:"primaryKey;type:text"`
	ImageID string `gorm:"primaryKey;type:text"`
	AddedAt time.Time
}

// Setting is one key-value application setting (storage limit, thumbnail
// quality, auto backup).
type Setting struct {
	Key       string `gorm:"primaryKey;type:text"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

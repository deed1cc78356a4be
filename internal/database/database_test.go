package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pictor/internal/metadata"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	return db
}

func storeImage(t *testing.T, db *gorm.DB, fileName string) *Image {
	t.Helper()

	img := &Image{
		ID:         uuid.New().String(),
		FileName:   fileName,
		FilePath:   filepath.Join("uploads", fileName),
		FileSize:   2048,
		MimeType:   "image/jpeg",
		UploadDate: time.Now(),
		Metadata:   metadata.Metadata{Medium: "Photography"},
	}
	if err := db.Create(img).Error; err != nil {
		t.Fatalf("create image: %v", err)
	}
	return img
}

func TestDeleteImageRemovesChildren(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	img := storeImage(t, db, "a.jpg")
	if err := db.Create(&Posting{ImageID: img.ID, Field: "medium", Value: "photography"}).Error; err != nil {
		t.Fatalf("create posting: %v", err)
	}
	album, err := CreateAlbum(ctx, db, "Holidays", "")
	if err != nil {
		t.Fatalf("create album: %v", err)
	}
	if _, err := AddImagesToAlbum(ctx, db, album.ID, []string{img.ID}); err != nil {
		t.Fatalf("link image: %v", err)
	}

	deleted, err := DeleteImage(ctx, db, img.ID)
	if err != nil {
		t.Fatalf("DeleteImage: %v", err)
	}
	if deleted.FileName != "a.jpg" {
		t.Fatalf("deleted record = %+v", deleted)
	}

	var postings, links, records int64
	db.Model(&Posting{}).Where("image_id = ?", img.ID).Count(&postings)
	db.Model(&AlbumImage{}).Where("image_id = ?", img.ID).Count(&links)
	db.Model(&Image{}).Where("id = ?", img.ID).Count(&records)
	if postings != 0 || links != 0 || records != 0 {
		t.Fatalf("leftovers after delete: postings=%d links=%d records=%d", postings, links, records)
	}
}

func TestDeleteImageNotFound(t *testing.T) {
	db := openTestDB(t)

	if _, err := DeleteImage(context.Background(), db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetImagePrivacy(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	img := storeImage(t, db, "b.jpg")
	if err := SetImagePrivacy(ctx, db, img.ID, true); err != nil {
		t.Fatalf("SetImagePrivacy: %v", err)
	}

	got, err := GetImage(ctx, db, img.ID)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if !got.Private {
		t.Fatal("privacy flag not persisted")
	}

	if err := SetImagePrivacy(ctx, db, "missing", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestCreateAlbumValidation(t *testing.T) {
	db := openTestDB(t)

	if _, err := CreateAlbum(context.Background(), db, "   ", "desc"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAddImagesToAlbumSkipsDuplicates(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	img := storeImage(t, db, "c.jpg")
	album, err := CreateAlbum(ctx, db, "Trips", "")
	if err != nil {
		t.Fatalf("create album: %v", err)
	}

	added, err := AddImagesToAlbum(ctx, db, album.ID, []string{img.ID})
	if err != nil {
		t.Fatalf("AddImagesToAlbum: %v", err)
	}
	if len(added) != 1 {
		t.Fatalf("first add = %v", added)
	}

	added, err = AddImagesToAlbum(ctx, db, album.ID, []string{img.ID})
	if err != nil {
		t.Fatalf("AddImagesToAlbum repeat: %v", err)
	}
	if len(added) != 0 {
		t.Fatalf("duplicate link reported as added: %v", added)
	}

	if _, err := AddImagesToAlbum(ctx, db, "missing", []string{img.ID}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown album, got %v", err)
	}
}

func TestAlbumImagesOrdering(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	album, err := CreateAlbum(ctx, db, "Ordered", "")
	if err != nil {
		t.Fatalf("create album: %v", err)
	}

	first := storeImage(t, db, "first.jpg")
	second := storeImage(t, db, "second.jpg")

	if err := db.Create(&AlbumImage{AlbumID: album.ID, ImageID: first.ID, AddedAt: time.Now().Add(-time.Hour)}).Error; err != nil {
		t.Fatalf("link first: %v", err)
	}
	if err := db.Create(&AlbumImage{AlbumID: album.ID, ImageID: second.ID, AddedAt: time.Now()}).Error; err != nil {
		t.Fatalf("link second: %v", err)
	}

	images, err := AlbumImages(ctx, db, album.ID)
	if err != nil {
		t.Fatalf("AlbumImages: %v", err)
	}
	if len(images) != 2 || images[0].ID != second.ID || images[1].ID != first.ID {
		t.Fatalf("album images not newest-added first: %v", images)
	}
}

func TestSettingsUpsertAndDefaults(t *testing.T) {
	db := openTestDB(t)
	seedDefaultSettings(db)

	if got := StorageLimit(db); got != DefaultStorageLimit {
		t.Fatalf("default storage limit = %d", got)
	}
	if got := ThumbnailQuality(db); got != 80 {
		t.Fatalf("default thumbnail quality = %d", got)
	}

	if _, err := UpdateSetting(db, SettingStorageLimit, "5242880"); err != nil {
		t.Fatalf("UpdateSetting: %v", err)
	}
	if got := StorageLimit(db); got != 5242880 {
		t.Fatalf("updated storage limit = %d", got)
	}

	// Unparsable values fall back to defaults instead of propagating.
	if _, err := UpdateSetting(db, SettingThumbnailQuality, "not-a-number"); err != nil {
		t.Fatalf("UpdateSetting: %v", err)
	}
	if got := ThumbnailQuality(db); got != 80 {
		t.Fatalf("fallback thumbnail quality = %d", got)
	}

	if _, err := GetSetting(db, "no_such_key"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	all, err := AllSettings(db)
	if err != nil {
		t.Fatalf("AllSettings: %v", err)
	}
	if _, ok := all[SettingAutoBackup]; !ok {
		t.Fatalf("seeded settings missing auto_backup: %v", all)
	}
}

func TestCleanupOrphanedFiles(t *testing.T) {
	db := openTestDB(t)

	prev := DB
	DB = db
	t.Cleanup(func() { DB = prev })

	dir := t.TempDir()
	img := storeImage(t, db, "keep.jpg")
	if err := db.Model(&Image{}).Where("id = ?", img.ID).Update("file_path", filepath.Join(dir, "keep.jpg")).Error; err != nil {
		t.Fatalf("update file path: %v", err)
	}

	for _, name := range []string{"keep.jpg", "thumb_keep.jpg", "orphan.jpg", "thumb_orphan.jpg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	removed, freed := CleanupOrphanedFiles(dir)
	if removed != 2 || freed != 2 {
		t.Fatalf("sweep removed %d files (%d bytes), want 2 files", removed, freed)
	}

	for _, name := range []string{"keep.jpg", "thumb_keep.jpg"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("referenced file %s was removed: %v", name, err)
		}
	}
	for _, name := range []string{"orphan.jpg", "thumb_orphan.jpg"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Fatalf("orphan %s survived the sweep", name)
		}
	}
}

func TestDatabaseBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gallery.db")

	if err := os.WriteFile(path, make([]byte, 100), 0o644); err != nil {
		t.Fatalf("write db file: %v", err)
	}
	if err := os.WriteFile(path+"-wal", make([]byte, 50), 0o644); err != nil {
		t.Fatalf("write wal file: %v", err)
	}

	if got := DatabaseBytes(path); got != 150 {
		t.Fatalf("DatabaseBytes = %d, want 150", got)
	}
	if got := DatabaseBytes(filepath.Join(dir, "missing.db")); got != 0 {
		t.Fatalf("DatabaseBytes for missing file = %d, want 0", got)
	}
}

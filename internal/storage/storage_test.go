package storage

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"pictor/internal/database"
	"pictor/internal/index"
	"pictor/internal/metadata"
)

func testStorage(t *testing.T) *Store {
	t.Helper()

	base := t.TempDir()
	s, err := New(
		filepath.Join(base, "uploads"),
		filepath.Join(base, "backups"),
		filepath.Join(base, "exports"),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestSaveOriginalNaming(t *testing.T) {
	s := testStorage(t)

	fileName, fullPath, err := s.SaveOriginal("abc123", "../../evil PHOTO.PNG", []byte("data"))
	if err != nil {
		t.Fatalf("SaveOriginal: %v", err)
	}
	if fileName != "abc123.png" {
		t.Fatalf("fileName = %q, only the extension may come from the client", fileName)
	}
	if filepath.Dir(fullPath) != s.UploadsDir {
		t.Fatalf("file escaped uploads dir: %s", fullPath)
	}

	fileName, _, err = s.SaveOriginal("noext", "bare", []byte("data"))
	if err != nil {
		t.Fatalf("SaveOriginal: %v", err)
	}
	if fileName != "noext.jpg" {
		t.Fatalf("fileName = %q, want jpg default extension", fileName)
	}
}

func TestReadServedRejectsTraversal(t *testing.T) {
	s := testStorage(t)

	if _, _, err := s.SaveOriginal("id1", "a.jpg", []byte("payload")); err != nil {
		t.Fatalf("SaveOriginal: %v", err)
	}

	data, err := s.ReadServed("id1.jpg")
	if err != nil || string(data) != "payload" {
		t.Fatalf("ReadServed = %q, %v", data, err)
	}

	for _, name := range []string{"", "../secret", "a/b.jpg", "..\\win.jpg", "a..b/../c"} {
		if _, err := s.ReadServed(name); !os.IsNotExist(err) {
			t.Fatalf("ReadServed(%q) err = %v, want not-exist", name, err)
		}
	}
}

func TestRemoveImageFilesIdempotent(t *testing.T) {
	s := testStorage(t)

	_, fullPath, err := s.SaveOriginal("id2", "a.jpg", []byte("x"))
	if err != nil {
		t.Fatalf("SaveOriginal: %v", err)
	}
	thumbPath := filepath.Join(s.UploadsDir, ThumbName("id2.jpg"))
	if err := os.WriteFile(thumbPath, []byte("t"), 0o644); err != nil {
		t.Fatalf("write thumb: %v", err)
	}

	s.RemoveImageFiles(fullPath)
	if _, err := os.Stat(fullPath); !os.IsNotExist(err) {
		t.Fatal("original not removed")
	}
	if _, err := os.Stat(thumbPath); !os.IsNotExist(err) {
		t.Fatal("thumbnail not removed")
	}

	// Second pass must not panic or log errors for missing files.
	s.RemoveImageFiles(fullPath)
	s.RemoveImageFiles("")
}

func TestCreateThumbnail(t *testing.T) {
	s := testStorage(t)

	_, fullPath, err := s.SaveOriginal("id3", "big.png", pngBytes(t, 800, 600))
	if err != nil {
		t.Fatalf("SaveOriginal: %v", err)
	}

	thumbName, err := s.CreateThumbnail(fullPath, 100, 80)
	if err != nil {
		t.Fatalf("CreateThumbnail: %v", err)
	}
	if thumbName != ThumbName("id3.png") {
		t.Fatalf("thumbName = %q", thumbName)
	}

	f, err := os.Open(filepath.Join(s.UploadsDir, thumbName))
	if err != nil {
		t.Fatalf("open thumbnail: %v", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if cfg.Width > 100 || cfg.Height > 100 {
		t.Fatalf("thumbnail %dx%d exceeds bounding box", cfg.Width, cfg.Height)
	}
}

func TestCreateThumbnailNotAnImage(t *testing.T) {
	s := testStorage(t)

	_, fullPath, err := s.SaveOriginal("id4", "fake.jpg", []byte("this is not an image"))
	if err != nil {
		t.Fatalf("SaveOriginal: %v", err)
	}
	if _, err := s.CreateThumbnail(fullPath, 100, 80); err == nil {
		t.Fatal("expected decode error for non-image bytes")
	}
}

func TestBackupLifecycle(t *testing.T) {
	s := testStorage(t)

	dbPath := filepath.Join(t.TempDir(), "gallery.db")
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	if _, _, err := s.SaveOriginal("img1", "a.jpg", []byte("image-bytes")); err != nil {
		t.Fatalf("SaveOriginal: %v", err)
	}

	info, err := s.CreateBackup(context.Background(), db, dbPath, "1.0.0", true)
	if err != nil {
		t.Fatalf("CreateBackup: %v", err)
	}
	if info.Size == 0 {
		t.Fatal("backup has zero size")
	}

	zr, err := zip.OpenReader(filepath.Join(s.BackupsDir, info.FileName))
	if err != nil {
		t.Fatalf("open backup: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	zr.Close()

	if !names["db/gallery.db"] {
		t.Fatalf("backup missing database snapshot: %v", names)
	}
	if !names["uploads/img1.jpg"] {
		t.Fatalf("backup missing uploaded file: %v", names)
	}
	if !names["backup-info.json"] {
		t.Fatalf("backup missing manifest: %v", names)
	}

	list, err := s.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups: %v", err)
	}
	if len(list) != 1 || list[0].FileName != info.FileName {
		t.Fatalf("ListBackups = %v", list)
	}

	if err := s.DeleteBackup("../" + info.FileName); !os.IsNotExist(err) {
		t.Fatalf("traversal name accepted: %v", err)
	}
	if err := s.DeleteBackup("notabackup.zip"); !os.IsNotExist(err) {
		t.Fatalf("foreign name accepted: %v", err)
	}
	if err := s.DeleteBackup(info.FileName); err != nil {
		t.Fatalf("DeleteBackup: %v", err)
	}

	list, _ = s.ListBackups()
	if len(list) != 0 {
		t.Fatalf("backup survived deletion: %v", list)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := testStorage(t)
	ctx := context.Background()

	srcDB, err := database.Open(filepath.Join(t.TempDir(), "src.db"))
	if err != nil {
		t.Fatalf("open source database: %v", err)
	}
	srcIdx := index.NewStore(srcDB)

	two := 2
	var exported []database.Image
	for i, m := range []metadata.Metadata{
		{Medium: "Photography", Style: "Vintage", People: &metadata.People{Number: &two}},
		{Medium: "Painting", Mood: "Dramatic", Colors: []string{"Red"}},
	} {
		id := uuid.New().String()
		fileName, fullPath, err := src.SaveOriginal(id, "photo.png", pngBytes(t, 40+i, 40))
		if err != nil {
			t.Fatalf("SaveOriginal: %v", err)
		}
		img := database.Image{
			ID:         id,
			FileName:   fileName,
			FilePath:   fullPath,
			FileSize:   int64(len("x")),
			MimeType:   "image/png",
			UploadDate: time.Now(),
			Metadata:   m,
		}
		if err := srcIdx.IndexImage(ctx, &img); err != nil {
			t.Fatalf("IndexImage: %v", err)
		}
		exported = append(exported, img)
	}

	result, err := src.ExportImages(exported, "1.0.0")
	if err != nil {
		t.Fatalf("ExportImages: %v", err)
	}
	if result.ImageCount != 2 {
		t.Fatalf("exported %d images, want 2", result.ImageCount)
	}

	// Import into a fresh gallery.
	dst := testStorage(t)
	dstDB, err := database.Open(filepath.Join(t.TempDir(), "dst.db"))
	if err != nil {
		t.Fatalf("open destination database: %v", err)
	}
	dstIdx := index.NewStore(dstDB)

	archivePath := filepath.Join(src.ExportsDir, result.FileName)
	imported, err := dst.ImportArchive(ctx, dstIdx, "http://localhost:9980", archivePath)
	if err != nil {
		t.Fatalf("ImportArchive: %v", err)
	}
	if len(imported.Errors) != 0 {
		t.Fatalf("import errors: %v", imported.Errors)
	}
	if len(imported.Imported) != 2 {
		t.Fatalf("imported %d images, want 2", len(imported.Imported))
	}

	for _, img := range imported.Imported {
		if img.ID == exported[0].ID || img.ID == exported[1].ID {
			t.Fatalf("imported image kept its old id: %s", img.ID)
		}
		if _, err := os.Stat(img.FilePath); err != nil {
			t.Fatalf("imported file missing: %v", err)
		}
		n, err := dstIdx.PostingCount(ctx, img.ID)
		if err != nil {
			t.Fatalf("PostingCount: %v", err)
		}
		if n == 0 {
			t.Fatalf("imported image %s was not re-indexed", img.ID)
		}
	}
}

func TestImportArchiveRejectsNonExport(t *testing.T) {
	s := testStorage(t)

	archivePath := filepath.Join(t.TempDir(), "random.zip")
	out, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	zw := zip.NewWriter(out)
	w, _ := zw.Create("readme.txt")
	w.Write([]byte("hello"))
	zw.Close()
	out.Close()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	if _, err := s.ImportArchive(context.Background(), index.NewStore(db), "http://localhost", archivePath); err == nil {
		t.Fatal("expected rejection of a non-export archive")
	}
}

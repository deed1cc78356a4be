package storage

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"pictor/internal/database"
	"pictor/internal/metadata"
	"pictor/pkg/logger"
)

// BackupInfo describes one archive on disk.
type BackupInfo struct {
	FileName  string    `json:"fileName"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

type backupManifest struct {
	CreatedAt     time.Time `json:"createdAt"`
	IncludeImages bool      `json:"includesImages"`
	AppVersion    string    `json:"appVersion"`
}

// CreateBackup packages a consistent database snapshot plus, optionally,
// every uploaded file into one zip under BackupsDir.
//
// The snapshot comes from VACUUM INTO, which copies a consistent image of
// the database without locking out live writers.
func (s *Store) CreateBackup(ctx context.Context, db *gorm.DB, dbPath, appVersion string, includeImages bool) (BackupInfo, error) {
	timestamp := time.Now().Format("2006-01-02T15-04-05")
	fileName := fmt.Sprintf("backup-%s.zip", timestamp)
	backupPath := filepath.Join(s.BackupsDir, fileName)

	snapshotPath := filepath.Join(os.TempDir(), fmt.Sprintf("pictor_snapshot_%d.db", time.Now().UnixNano()))
	query := fmt.Sprintf("VACUUM INTO '%s'", snapshotPath)
	if err := db.WithContext(ctx).Exec(query).Error; err != nil {
		return BackupInfo{}, fmt.Errorf("database snapshot failed: %w", err)
	}
	defer os.Remove(snapshotPath)

	out, err := os.Create(backupPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("create backup file: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	if err := addFileToZip(zw, snapshotPath, "db/"+filepath.Base(dbPath)); err != nil {
		zw.Close()
		os.Remove(backupPath)
		return BackupInfo{}, err
	}

	if includeImages {
		entries, err := os.ReadDir(s.UploadsDir)
		if err == nil {
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				src := filepath.Join(s.UploadsDir, entry.Name())
				if err := addFileToZip(zw, src, "uploads/"+entry.Name()); err != nil {
					logger.LogWarn("Backup skipped %s: %v", entry.Name(), err)
				}
			}
		}
	}

	manifest := backupManifest{
		CreatedAt:     time.Now(),
		IncludeImages: includeImages,
		AppVersion:    appVersion,
	}
	if err := addJSONToZip(zw, "backup-info.json", manifest); err != nil {
		zw.Close()
		os.Remove(backupPath)
		return BackupInfo{}, err
	}

	if err := zw.Close(); err != nil {
		os.Remove(backupPath)
		return BackupInfo{}, fmt.Errorf("finalize backup: %w", err)
	}

	info, err := os.Stat(backupPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("verify backup: %w", err)
	}

	return BackupInfo{FileName: fileName, Size: info.Size(), CreatedAt: info.ModTime()}, nil
}

// ListBackups returns all backup archives, newest first.
func (s *Store) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(s.BackupsDir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}

	backups := make([]BackupInfo, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "backup-") || !strings.HasSuffix(name, ".zip") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			FileName:  name,
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// DeleteBackup removes one archive by bare file name.
func (s *Store) DeleteBackup(fileName string) error {
	if fileName == "" || strings.ContainsAny(fileName, "/\\") || strings.Contains(fileName, "..") {
		return os.ErrNotExist
	}
	if !strings.HasPrefix(fileName, "backup-") || !strings.HasSuffix(fileName, ".zip") {
		return os.ErrNotExist
	}
	return os.Remove(filepath.Join(s.BackupsDir, fileName))
}

func addFileToZip(zw *zip.Writer, srcPath, name string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", srcPath, err)
	}
	defer src.Close()

	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("add %s to archive: %w", name, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("write %s to archive: %w", name, err)
	}
	return nil
}

func addJSONToZip(zw *zip.Writer, name string, v interface{}) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("add %s to archive: %w", name, err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return nil
}

// exportEntry is the per-image metadata document inside an export archive.
type exportEntry struct {
	ID         string            `json:"id"`
	FileName   string            `json:"fileName"`
	FileSize   int64             `json:"fileSize"`
	MimeType   string            `json:"mimeType"`
	UploadDate time.Time         `json:"uploadDate"`
	Metadata   metadata.Metadata `json:"metadata"`
}

type exportManifest struct {
	ExportDate time.Time `json:"exportDate"`
	ImageCount int       `json:"imageCount"`
	AppVersion string    `json:"appVersion"`
}

// ExportResult summarizes a finished export.
type ExportResult struct {
	FileName   string `json:"fileName"`
	ImageCount int    `json:"imageCount"`
	Size       int64  `json:"size"`
}

// ExportImages packages the given records and their files into a zip in
// ExportsDir: originals under images/, one JSON document per image under
// metadata/, plus an export-info.json manifest. Records whose file is
// missing on disk are skipped.
func (s *Store) ExportImages(images []database.Image, appVersion string) (ExportResult, error) {
	if len(images) == 0 {
		return ExportResult{}, fmt.Errorf("no images to export")
	}

	timestamp := time.Now().Format("2006-01-02T15-04-05")
	fileName := fmt.Sprintf("export-%s.zip", timestamp)
	exportPath := filepath.Join(s.ExportsDir, fileName)

	out, err := os.Create(exportPath)
	if err != nil {
		return ExportResult{}, fmt.Errorf("create export file: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	count := 0
	for _, img := range images {
		if _, err := os.Stat(img.FilePath); err != nil {
			logger.LogWarn("Export skipped %s: file missing on disk", img.ID)
			continue
		}
		if err := addFileToZip(zw, img.FilePath, "images/"+img.FileName); err != nil {
			zw.Close()
			os.Remove(exportPath)
			return ExportResult{}, err
		}
		entry := exportEntry{
			ID:         img.ID,
			FileName:   img.FileName,
			FileSize:   img.FileSize,
			MimeType:   img.MimeType,
			UploadDate: img.UploadDate,
			Metadata:   img.Metadata,
		}
		if err := addJSONToZip(zw, "metadata/"+img.ID+".json", entry); err != nil {
			zw.Close()
			os.Remove(exportPath)
			return ExportResult{}, err
		}
		count++
	}

	manifest := exportManifest{ExportDate: time.Now(), ImageCount: count, AppVersion: appVersion}
	if err := addJSONToZip(zw, "export-info.json", manifest); err != nil {
		zw.Close()
		os.Remove(exportPath)
		return ExportResult{}, err
	}

	if err := zw.Close(); err != nil {
		os.Remove(exportPath)
		return ExportResult{}, fmt.Errorf("finalize export: %w", err)
	}

	info, err := os.Stat(exportPath)
	if err != nil {
		return ExportResult{}, fmt.Errorf("verify export: %w", err)
	}
	return ExportResult{FileName: fileName, ImageCount: count, Size: info.Size()}, nil
}

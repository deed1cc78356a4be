package database

import (
	"os"
	"path/filepath"
	"time"

	"pictor/internal/config"
	"pictor/pkg/logger"
	"pictor/pkg/utils"
)

/*
WORKER DETAILS: Storage Maintenance Strategy
============================================

This worker keeps the gallery's disk footprint healthy without getting in
the way of uploads.

1. Orphan sweep:
   Upload or delete failures can leave files in the uploads directory that
   no image record references (e.g., a thumbnail written before analysis
   failed). The sweep removes anything not present in the records.

2. Vacuum-on-bloat:
   Deleting images frees SQLite pages but does not shrink the file. We keep
   the allocated space as a buffer for new writes, and only VACUUM when the
   file is mostly empty (>50% free), which happens after mass deletions.

3. Safety:
   - `PRAGMA wal_checkpoint(TRUNCATE)` commits pending WAL transactions
     before vacuuming.
   - The orphan sweep never touches the database file itself.
*/

// StartCleaner runs the background storage maintenance worker on the
// configured interval. Call it in a goroutine after InitDB.
func StartCleaner() {
	intervalStr := config.AppConfig.Database.CleanInterval
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		interval = 30 * time.Minute
	}

	logger.LogInfo("Storage cleaner started. Interval: %s", interval)

	ticker := time.NewTicker(interval)

	// Run once on startup to fix leftovers from a previous crash.
	go runMaintenance()

	for range ticker.C {
		runMaintenance()
	}
}

func runMaintenance() {
	removed, freed := CleanupOrphanedFiles(config.AppConfig.Storage.UploadsDir)
	if removed > 0 {
		logger.LogInfo("Orphan sweep removed %d files (%s)", removed, utils.FormatBytes(freed))
	}

	vacuumIfBloated()
}

// CleanupOrphanedFiles deletes files in dir that no image record references
// either as the original or the thumbnail. Returns the number of files
// removed and the bytes reclaimed.
func CleanupOrphanedFiles(dir string) (int, int64) {
	if DB == nil || dir == "" {
		return 0, 0
	}

	var paths []string
	if err := DB.Model(&Image{}).Pluck("file_path", &paths).Error; err != nil {
		logger.LogError("Orphan sweep failed to list file paths: %v", err)
		return 0, 0
	}

	referenced := make(map[string]bool, len(paths)*2)
	for _, p := range paths {
		referenced[filepath.Base(p)] = true
		// Thumbnails share the original's name with a prefix.
		referenced["thumb_"+filepath.Base(p)] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0
	}

	removed := 0
	var freed int64
	for _, entry := range entries {
		if entry.IsDir() || referenced[entry.Name()] {
			continue
		}
		full := filepath.Join(dir, entry.Name())
		info, err := os.Stat(full)
		if err != nil {
			continue
		}
		if err := os.Remove(full); err != nil {
			logger.LogError("Orphan sweep failed to remove %s: %v", full, err)
			continue
		}
		removed++
		freed += info.Size()
	}
	return removed, freed
}

func vacuumIfBloated() {
	dbPath := config.AppConfig.Database.Path

	fileInfo, err := os.Stat(dbPath)
	if err != nil {
		return
	}

	physicalSize := fileInfo.Size()
	// The WAL file consumes disk space too.
	if walInfo, err := os.Stat(dbPath + "-wal"); err == nil {
		physicalSize += walInfo.Size()
	}

	var logicalSize int64
	row := DB.Model(&Image{}).Select("IFNULL(SUM(file_size), 0)").Row()
	if err := row.Scan(&logicalSize); err != nil {
		logger.LogError("Failed to calculate logical size: %v", err)
		return
	}

	emptySpace := physicalSize - logicalSize
	if float64(emptySpace) <= float64(physicalSize)*0.50 {
		return
	}

	logger.LogWarn("DB is bloated (>50%% empty). Starting VACUUM to reclaim space...")

	DB.Exec("PRAGMA wal_checkpoint(TRUNCATE);")

	startTime := time.Now()
	if err := DB.Exec("VACUUM;").Error; err != nil {
		logger.LogError("VACUUM failed: %v", err)
		return
	}
	logger.LogInfo("VACUUM completed in %v. Disk space reclaimed.", time.Since(startTime))
}

// Optimize rebuilds and re-analyzes the database on demand (the manual
// maintenance endpoint).
func Optimize() error {
	DB.Exec("PRAGMA wal_checkpoint(FULL);")
	if err := DB.Exec("VACUUM;").Error; err != nil {
		return err
	}
	DB.Exec("ANALYZE;")
	return nil
}

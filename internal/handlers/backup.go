package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"pictor/internal/config"
	"pictor/internal/database"
	"pictor/pkg/logger"
	"pictor/pkg/utils"
)

var backupMutex sync.Mutex

type backupRequest struct {
	IncludeImages *bool `json:"includeImages"`
}

// BackupHandler creates a zip archive with a consistent database snapshot
// and, by default, every uploaded file.
// POST /api/backup
func BackupHandler(w http.ResponseWriter, r *http.Request) {
	if !utils.SecretKeyValid(r.Header.Get("X-Secret-Key")) {
		utils.WriteError(w, http.StatusForbidden, utils.ErrAuthInvalid, "Invalid secret key.")
		return
	}

	// Ensure only one backup runs at a time to prevent resource exhaustion.
	if !backupMutex.TryLock() {
		utils.WriteError(w, http.StatusTooManyRequests, utils.ErrBackupConcurrencyLimit, "Another backup is currently in progress.")
		return
	}
	defer backupMutex.Unlock()

	includeImages := true
	var req backupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.IncludeImages != nil {
		includeImages = *req.IncludeImages
	}

	info, err := fileStore.CreateBackup(r.Context(), database.DB,
		config.AppConfig.Database.Path, config.AppConfig.App.Version, includeImages)
	if err != nil {
		logger.LogError("Backup failed: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrBackupFailed, "Backup failed.")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"backup": info,
	})
}

// ListBackupsHandler lists stored backup archives, newest first.
// GET /api/backups
func ListBackupsHandler(w http.ResponseWriter, r *http.Request) {
	backups, err := fileStore.ListBackups()
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, "Failed to list backups.")
		return
	}
	utils.WriteJSON(w, http.StatusOK, backups)
}

// DeleteBackupHandler removes one backup archive by file name.
// DELETE /api/backups/{filename}
func DeleteBackupHandler(w http.ResponseWriter, r *http.Request) {
	if !utils.SecretKeyValid(r.Header.Get("X-Secret-Key")) {
		utils.WriteError(w, http.StatusForbidden, utils.ErrAuthInvalid, "Invalid secret key.")
		return
	}

	fileName := r.PathValue("filename")
	if err := fileStore.DeleteBackup(fileName); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			utils.WriteError(w, http.StatusNotFound, utils.ErrResourceNotFound, "Backup not found.")
		} else {
			utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, "Failed to delete backup.")
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"deleted": fileName,
	})
}

// OptimizeHandler checkpoints, vacuums, and re-analyzes the database.
// POST /api/optimize
func OptimizeHandler(w http.ResponseWriter, r *http.Request) {
	if !utils.SecretKeyValid(r.Header.Get("X-Secret-Key")) {
		utils.WriteError(w, http.StatusForbidden, utils.ErrAuthInvalid, "Invalid secret key.")
		return
	}

	start := time.Now()
	if err := database.Optimize(); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, "Optimization failed.")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"duration": time.Since(start).String(),
	})
}

// CleanupHandler removes files in the uploads directory that no image
// record references.
// POST /api/cleanup
func CleanupHandler(w http.ResponseWriter, r *http.Request) {
	if !utils.SecretKeyValid(r.Header.Get("X-Secret-Key")) {
		utils.WriteError(w, http.StatusForbidden, utils.ErrAuthInvalid, "Invalid secret key.")
		return
	}

	removed, freed := database.CleanupOrphanedFiles(fileStore.UploadsDir)

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "success",
		"removed":     removed,
		"bytes_freed": freed,
		"freed":       utils.FormatBytes(freed),
	})
}

// ExportHandler packages selected images and their metadata into a zip.
// POST /api/export
func ExportHandler(w http.ResponseWriter, r *http.Request) {
	if !utils.SecretKeyValid(r.Header.Get("X-Secret-Key")) {
		utils.WriteError(w, http.StatusForbidden, utils.ErrAuthInvalid, "Invalid secret key.")
		return
	}

	var req imageIDsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.ImageIDs) == 0 {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Valid image IDs are required.")
		return
	}

	var images []database.Image
	if err := database.DB.WithContext(r.Context()).Where("id IN ?", req.ImageIDs).Find(&images).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, "Failed to fetch images.")
		return
	}
	if len(images) == 0 {
		utils.WriteError(w, http.StatusNotFound, utils.ErrResourceNotFound, "No images found with the provided IDs.")
		return
	}

	result, err := fileStore.ExportImages(images, config.AppConfig.App.Version)
	if err != nil {
		logger.LogError("Export failed: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, "Export failed.")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"export": result,
	})
}

// ImportHandler restores images from an uploaded export archive. Every
// image gets a fresh id and is fully re-indexed; per-item failures are
// collected, not fatal.
// POST /api/import
func ImportHandler(w http.ResponseWriter, r *http.Request) {
	if !utils.SecretKeyValid(r.Header.Get("X-Secret-Key")) {
		utils.WriteError(w, http.StatusForbidden, utils.ErrAuthInvalid, "Invalid secret key.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<30)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestBodyTooLarge, "Archive exceeds size limit.")
		return
	}

	file, _, err := r.FormFile("archive")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Missing 'archive' file field.")
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "pictor_import_*.zip")
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, "Failed to stage import.")
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, "Failed to stage import.")
		return
	}
	tmp.Close()

	dbGuard <- struct{}{}
	result, err := fileStore.ImportArchive(r.Context(), idx, config.AppConfig.GetBaseUrl(), tmpPath)
	<-dbGuard

	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"imported": len(result.Imported),
		"images":   result.Imported,
		"errors":   result.Errors,
	})
}

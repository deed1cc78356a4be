package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"

	"pictor/internal/config"
	"pictor/internal/database"
	"pictor/internal/metadata"
	"pictor/pkg/logger"
	"pictor/pkg/utils"
)

const (
	DefaultMaxUploadSize = 10 << 20 // 10 MB per file
	DefaultMaxBatchCount = 10

	// MaxConcurrentDBOps limits the number of active SQLite write transactions.
	// Since SQLite allows only one writer at a time (even in WAL mode),
	// queueing requests in Go memory is more efficient than locking the DB file.
	MaxConcurrentDBOps = 10
)

// dbGuard acts as a semaphore to limit concurrent database writes.
// Buffered channel with capacity = MaxConcurrentDBOps.
var dbGuard = make(chan struct{}, MaxConcurrentDBOps)

var errStorageLimit = errors.New("storage limit reached")

// UploadItemError records one failed file of an upload batch.
type UploadItemError struct {
	FileName string `json:"fileName"`
	Error    string `json:"error"`
}

type uploadResponse struct {
	Status   string            `json:"status"`
	Uploaded []database.Image  `json:"uploaded"`
	Failed   []UploadItemError `json:"failed,omitempty"`
}

// UploadHandler processes image uploads via multipart/form-data ("images"
// field, up to the configured batch size). Each file runs through the full
// pipeline independently: sniff, storage-limit check, save, thumbnail,
// vision analysis, then a single transaction for record + index postings.
// One bad file never aborts the rest of the batch.
//
// Security: Protected by 'X-Secret-Key'.
func UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !utils.SecretKeyValid(r.Header.Get("X-Secret-Key")) {
		utils.WriteError(w, http.StatusForbidden, utils.ErrAuthInvalid, "Invalid secret key.")
		return
	}

	maxBatch := config.AppConfig.Image.MaxBatchCount
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatchCount
	}
	maxFileSize := utils.SizeToBytes(config.AppConfig.Image.MaxUploadSize, DefaultMaxUploadSize)

	r.Body = http.MaxBytesReader(w, r.Body, maxFileSize*int64(maxBatch)+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestBodyTooLarge, "Upload exceeds size limit.")
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Missing 'images' file field.")
		return
	}
	if len(files) > maxBatch {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Too many files in one batch.")
		return
	}

	quality := database.ThumbnailQuality(database.DB)
	baseURL := config.AppConfig.GetBaseUrl()

	resp := uploadResponse{Status: "success", Uploaded: []database.Image{}}

	for _, header := range files {
		img, err := processUpload(r.Context(), header, baseURL, maxFileSize, quality)
		if err != nil {
			logger.LogWarn("Upload of %s failed: %v", header.Filename, err)
			resp.Failed = append(resp.Failed, UploadItemError{
				FileName: header.Filename,
				Error:    err.Error(),
			})
			continue
		}
		resp.Uploaded = append(resp.Uploaded, *img)
	}

	if len(resp.Uploaded) == 0 {
		resp.Status = "failed"
		utils.WriteJSON(w, http.StatusBadRequest, resp)
		return
	}
	if len(resp.Failed) > 0 {
		resp.Status = "partial"
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// processUpload runs the pipeline for one file of a batch.
func processUpload(ctx context.Context, header *multipart.FileHeader, baseURL string, maxFileSize int64, quality int) (*database.Image, error) {
	if header.Size > maxFileSize {
		return nil, fmt.Errorf("file exceeds the %s limit", utils.FormatBytes(maxFileSize))
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	data, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	mimeType := utils.SniffImageType(data)
	if mimeType == "" {
		return nil, errors.New("unsupported file type")
	}

	if err := checkStorageLimit(ctx, int64(len(data))); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	fileName, fullPath, err := fileStore.SaveOriginal(id, header.Filename, data)
	if err != nil {
		return nil, err
	}

	url := baseURL + "/uploads/" + fileName
	thumbnailURL := url
	thumbSize := config.AppConfig.Image.ThumbnailSize
	if thumbName, err := fileStore.CreateThumbnail(fullPath, thumbSize, quality); err == nil {
		thumbnailURL = baseURL + "/uploads/" + thumbName
	} else {
		logger.LogWarn("Thumbnail generation failed for %s, serving original: %v", fileName, err)
	}

	meta, err := analyzer.Analyze(ctx, data, mimeType)
	if err != nil {
		if !config.AppConfig.Oracle.PlaceholderOnFailure {
			fileStore.RemoveImageFiles(fullPath)
			return nil, fmt.Errorf("image analysis failed: %w", err)
		}
		logger.LogWarn("Analysis of %s failed, storing placeholder metadata: %v", fileName, err)
		meta = metadata.Placeholder()
	}

	img := database.Image{
		ID:           id,
		FileName:     utils.SafeFileName(header.Filename),
		FileSize:     int64(len(data)),
		MimeType:     mimeType,
		URL:          url,
		FilePath:     fullPath,
		ThumbnailURL: thumbnailURL,
		UploadDate:   time.Now(),
		Metadata:     meta,
	}

	// This block prevents "database is locked" errors by queueing writers here.
	dbGuard <- struct{}{}
	err = idx.IndexImage(ctx, &img)
	<-dbGuard

	if err != nil {
		fileStore.RemoveImageFiles(fullPath)
		return nil, err
	}
	return &img, nil
}

func checkStorageLimit(ctx context.Context, incoming int64) error {
	used, err := database.ImageBytesUsed(ctx, database.DB)
	if err != nil {
		return err
	}
	used += database.DatabaseBytes(config.AppConfig.Database.Path)

	if used+incoming > database.StorageLimit(database.DB) {
		return errStorageLimit
	}
	return nil
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"

	"pictor/internal/database"
	"pictor/internal/search"
	"pictor/pkg/utils"
)

// ListImagesHandler returns every image, newest first.
// GET /api/images
func ListImagesHandler(w http.ResponseWriter, r *http.Request) {
	images, err := database.ListImages(r.Context(), database.DB)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, "Failed to fetch images.")
		return
	}
	utils.WriteJSON(w, http.StatusOK, images)
}

// GetImageHandler returns one image by id.
// GET /api/images/{id}
func GetImageHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Image ID is required.")
		return
	}

	img, err := database.GetImage(r.Context(), database.DB, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, utils.ErrResourceNotFound, "Image not found.")
		} else {
			utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, "Failed to fetch image.")
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, img)
}

// deleteOne removes the record, postings, album links, files, and cached
// bytes of a single image.
func deleteOne(r *http.Request, id string) error {
	dbGuard <- struct{}{}
	img, err := database.DeleteImage(r.Context(), database.DB, id)
	<-dbGuard
	if err != nil {
		return err
	}

	fileStore.RemoveImageFiles(img.FilePath)

	if globalCache != nil {
		name := filepath.Base(img.FilePath)
		globalCache.Delete("file:" + name)
		globalCache.Delete("file:thumb_" + name)
	}
	return nil
}

// DeleteImageHandler removes one image.
// DELETE /api/images/{id}
func DeleteImageHandler(w http.ResponseWriter, r *http.Request) {
	if !utils.SecretKeyValid(r.Header.Get("X-Secret-Key")) {
		utils.WriteError(w, http.StatusForbidden, utils.ErrAuthInvalid, "Invalid secret key.")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Image ID is required.")
		return
	}

	if err := deleteOne(r, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, utils.ErrResourceNotFound, "Image not found.")
		} else {
			utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, "Could not delete image.")
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"action": "deleted",
		"id":     id,
	})
}

type imageIDsRequest struct {
	ImageIDs []string `json:"imageIds"`
}

// DeleteMultipleHandler removes a batch of images, continuing past
// individual failures and reporting them per item.
// POST /api/images/delete-multiple
func DeleteMultipleHandler(w http.ResponseWriter, r *http.Request) {
	if !utils.SecretKeyValid(r.Header.Get("X-Secret-Key")) {
		utils.WriteError(w, http.StatusForbidden, utils.ErrAuthInvalid, "Invalid secret key.")
		return
	}

	var req imageIDsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.ImageIDs) == 0 {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Valid image IDs are required.")
		return
	}

	deleted := []string{}
	failed := []map[string]string{}
	for _, id := range req.ImageIDs {
		if err := deleteOne(r, id); err != nil {
			failed = append(failed, map[string]string{"id": id, "error": err.Error()})
			continue
		}
		deleted = append(deleted, id)
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"deleted": deleted,
		"failed":  failed,
	})
}

type privacyRequest struct {
	IsPrivate *bool `json:"isPrivate"`
}

// PrivacyHandler flips the privacy flag of an image.
// PUT /api/images/{id}/privacy
func PrivacyHandler(w http.ResponseWriter, r *http.Request) {
	if !utils.SecretKeyValid(r.Header.Get("X-Secret-Key")) {
		utils.WriteError(w, http.StatusForbidden, utils.ErrAuthInvalid, "Invalid secret key.")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Image ID is required.")
		return
	}

	var req privacyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsPrivate == nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "isPrivate must be a boolean value.")
		return
	}

	if err := database.SetImagePrivacy(r.Context(), database.DB, id, *req.IsPrivate); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, utils.ErrResourceNotFound, "Image not found.")
		} else {
			utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, "Failed to set privacy.")
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"id":      id,
		"private": *req.IsPrivate,
	})
}

// RelatedHandler returns the top similar images for one source image.
// GET /api/images/related/{id}
func RelatedHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Image ID is required.")
		return
	}

	limit := utils.ParseInt(r.URL.Query().Get("limit"), search.DefaultRelatedLimit, 1, 24)

	related, err := search.FindRelated(r.Context(), database.DB, id, limit)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, utils.ErrResourceNotFound, "Image not found.")
		} else {
			utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, "Failed to find related images.")
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, related)
}

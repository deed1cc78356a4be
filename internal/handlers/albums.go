package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"pictor/internal/database"
	"pictor/pkg/utils"
)

type createAlbumRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateAlbumHandler creates an empty album.
// POST /api/albums
func CreateAlbumHandler(w http.ResponseWriter, r *http.Request) {
	if !utils.SecretKeyValid(r.Header.Get("X-Secret-Key")) {
		utils.WriteError(w, http.StatusForbidden, utils.ErrAuthInvalid, "Invalid secret key.")
		return
	}

	var req createAlbumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Invalid JSON body.")
		return
	}

	album, err := database.CreateAlbum(r.Context(), database.DB, req.Name, req.Description)
	if err != nil {
		if errors.Is(err, database.ErrInvalidInput) {
			utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Valid album name is required.")
		} else {
			utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, "Failed to create album.")
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, album)
}

// ListAlbumsHandler returns all albums with their image counts.
// GET /api/albums
func ListAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	albums, err := database.ListAlbums(r.Context(), database.DB)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, "Failed to fetch albums.")
		return
	}
	utils.WriteJSON(w, http.StatusOK, albums)
}

// AlbumImagesHandler returns the images of one album, most recently added
// first.
// GET /api/albums/{id}/images
func AlbumImagesHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Album ID is required.")
		return
	}

	images, err := database.AlbumImages(r.Context(), database.DB, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, utils.ErrResourceNotFound, "Album not found.")
		} else {
			utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, "Failed to fetch album images.")
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, images)
}

// AddAlbumImagesHandler links images to an album. Already linked images
// are skipped silently.
// POST /api/albums/{id}/images
func AddAlbumImagesHandler(w http.ResponseWriter, r *http.Request) {
	if !utils.SecretKeyValid(r.Header.Get("X-Secret-Key")) {
		utils.WriteError(w, http.StatusForbidden, utils.ErrAuthInvalid, "Invalid secret key.")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Album ID is required.")
		return
	}

	var req imageIDsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.ImageIDs) == 0 {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Valid image IDs are required.")
		return
	}

	added, err := database.AddImagesToAlbum(r.Context(), database.DB, id, req.ImageIDs)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, utils.ErrResourceNotFound, "Album not found.")
		} else {
			utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, "Failed to add images to album.")
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"added":  added,
	})
}

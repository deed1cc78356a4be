package handlers

import (
	"net/http"
	"os"

	"pictor/pkg/utils"
)

// ServeUploadHandler streams an original or thumbnail by bare file name,
// through the byte cache. Concurrent cold reads of the same file collapse
// into one disk read via singleflight.
// GET /uploads/{name}
func ServeUploadHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "File name is missing.")
		return
	}

	cacheKey := "file:" + name

	data, ok := globalCache.Get(cacheKey)
	if !ok {
		result, err, _ := requestGroup.Do(cacheKey, func() (interface{}, error) {
			// Double-check cache inside the flight.
			if cached, ok := globalCache.Get(cacheKey); ok {
				return cached, nil
			}
			raw, err := fileStore.ReadServed(name)
			if err != nil {
				return nil, err
			}
			globalCache.Set(cacheKey, raw)
			return raw, nil
		})
		if err != nil {
			if os.IsNotExist(err) {
				utils.WriteError(w, http.StatusNotFound, utils.ErrRequestNotFound, "File not found.")
			} else {
				utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, "Failed to read file.")
			}
			return
		}
		data = result.([]byte)
	}

	contentType := utils.SniffImageType(data)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

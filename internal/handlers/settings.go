package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"pictor/internal/database"
	"pictor/pkg/utils"
)

// Settings the API accepts writes for. app_version is server-managed.
var writableSettings = map[string]bool{
	database.SettingStorageLimit:     true,
	database.SettingThumbnailQuality: true,
	database.SettingAutoBackup:       true,
}

// GetSettingsHandler returns all stored settings.
// GET /api/settings
func GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	settings, err := database.AllSettings(database.DB)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, "Failed to fetch settings.")
		return
	}

	out := make(map[string]string, len(settings))
	for key, s := range settings {
		out[key] = s.Value
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

// UpdateSettingsHandler upserts the provided settings. Unknown keys and
// invalid values reject the whole request before anything is written.
// POST /api/settings
func UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	if !utils.SecretKeyValid(r.Header.Get("X-Secret-Key")) {
		utils.WriteError(w, http.StatusForbidden, utils.ErrAuthInvalid, "Invalid secret key.")
		return
	}

	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req) == 0 {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Invalid JSON body.")
		return
	}

	for key, value := range req {
		if !writableSettings[key] {
			utils.WriteError(w, http.StatusBadRequest, utils.ErrValidationInvalidFormat, "Unknown setting: "+key)
			return
		}
		if err := validateSetting(key, value); err != "" {
			utils.WriteError(w, http.StatusBadRequest, utils.ErrValidationInvalidFormat, err)
			return
		}
	}

	for key, value := range req {
		if _, err := database.UpdateSetting(database.DB, key, value); err != nil {
			utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, "Failed to update settings.")
			return
		}
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"updated": len(req),
	})
}

func validateSetting(key, value string) string {
	switch key {
	case database.SettingStorageLimit:
		limit, err := strconv.ParseInt(value, 10, 64)
		if err != nil || limit <= 0 {
			return "storage_limit must be a positive number of bytes."
		}
	case database.SettingThumbnailQuality:
		q, err := strconv.Atoi(value)
		if err != nil || q < 1 || q > 100 {
			return "thumbnail_quality must be between 1 and 100."
		}
	case database.SettingAutoBackup:
		if value != "true" && value != "false" {
			return "auto_backup must be 'true' or 'false'."
		}
	}
	return ""
}

package handlers

import (
	"net/http"
	"runtime"
	"time"

	"pictor/internal/appinfo"
	"pictor/internal/config"
	"pictor/internal/database"
	"pictor/pkg/utils"
)

type statsResponse struct {
	*database.GalleryStats

	Storage database.StorageUsage `json:"storage"`
	Limit   int64                 `json:"storage_limit"`

	Uptime        string `json:"uptime"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	RamUsage      uint64 `json:"ram_usage"`
	NumGoroutines int    `json:"num_goroutines"`
}

// GetStatsHandler returns gallery aggregates plus storage and runtime
// health.
// GET /api/stats
func GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := database.CollectStats(r.Context(), database.DB)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, "Failed to fetch stats.")
		return
	}

	imageBytes := appinfo.TotalImagesSize.Load()
	dbBytes := database.DatabaseBytes(config.AppConfig.Database.Path)

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	utils.WriteJSON(w, http.StatusOK, statsResponse{
		GalleryStats: stats,
		Storage: database.StorageUsage{
			ImageBytes:    imageBytes,
			DatabaseBytes: dbBytes,
			TotalBytes:    imageBytes + dbBytes,
		},
		Limit:         database.StorageLimit(database.DB),
		Uptime:        time.Since(appinfo.StartTime).String(),
		UptimeSeconds: int64(time.Since(appinfo.StartTime).Seconds()),
		RamUsage:      m.Alloc,
		NumGoroutines: runtime.NumGoroutine(),
	})
}

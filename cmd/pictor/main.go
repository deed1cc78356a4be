package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"pictor/internal/appinfo"
	"pictor/internal/config"
	"pictor/internal/database"
	"pictor/internal/handlers"
	"pictor/internal/index"
	"pictor/internal/middleware"
	"pictor/internal/storage"
	"pictor/internal/vision"
	"pictor/pkg/cache"
	"pictor/pkg/logger"
	"pictor/pkg/utils"
)

func main() {

	utils.LoadEnv()

	// Load Config & Env
	config.Load()

	// Connect DB
	database.InitDB()
	go database.StartCleaner()

	// App Uptime
	appinfo.StartTime = time.Now()

	// Cache
	appCache := cache.New()
	handlers.SetCache(appCache)

	// Storage layout
	st, err := storage.New(
		config.AppConfig.Storage.UploadsDir,
		config.AppConfig.Storage.BackupsDir,
		config.AppConfig.Storage.ExportsDir,
	)
	if err != nil {
		logger.LogFatal("Storage initialization failed: %v", err)
	}

	// Vision oracles: real Gemini client, or local mocks without a key.
	var analyzer vision.Analyzer
	var extractor vision.CriteriaExtractor
	if config.AppConfig.MockOracle() {
		analyzer = vision.MockAnalyzer{}
		extractor = vision.MockExtractor{}
	} else {
		timeout, _ := time.ParseDuration(config.AppConfig.Oracle.Timeout)
		client := vision.NewGeminiClient(config.AppConfig.Oracle.GeminiAPIKey, config.AppConfig.Oracle.Model, timeout)
		analyzer = client
		extractor = client
	}

	handlers.Init(st, index.NewStore(database.DB), analyzer, extractor)

	mux := http.NewServeMux()

	// Public gallery routes
	mux.HandleFunc("GET /uploads/{name}", handlers.ServeUploadHandler)
	mux.HandleFunc("GET /api/images", handlers.ListImagesHandler)
	mux.HandleFunc("GET /api/images/related/{id}", handlers.RelatedHandler)
	mux.HandleFunc("GET /api/images/{id}", handlers.GetImageHandler)
	mux.HandleFunc("POST /api/search", handlers.SearchHandler)
	mux.HandleFunc("POST /api/natural-search", handlers.NaturalSearchHandler)
	mux.HandleFunc("GET /api/stats", handlers.GetStatsHandler)
	mux.HandleFunc("GET /api/albums", handlers.ListAlbumsHandler)
	mux.HandleFunc("GET /api/albums/{id}/images", handlers.AlbumImagesHandler)
	mux.HandleFunc("GET /api/settings", handlers.GetSettingsHandler)
	mux.HandleFunc("GET /api/backups", handlers.ListBackupsHandler)

	// Write routes (X-Secret-Key)
	mux.HandleFunc("POST /api/upload", handlers.UploadHandler)
	mux.HandleFunc("DELETE /api/images/{id}", handlers.DeleteImageHandler)
	mux.HandleFunc("POST /api/images/delete-multiple", handlers.DeleteMultipleHandler)
	mux.HandleFunc("PUT /api/images/{id}/privacy", handlers.PrivacyHandler)
	mux.HandleFunc("POST /api/albums", handlers.CreateAlbumHandler)
	mux.HandleFunc("POST /api/albums/{id}/images", handlers.AddAlbumImagesHandler)
	mux.HandleFunc("POST /api/settings", handlers.UpdateSettingsHandler)
	mux.HandleFunc("POST /api/backup", handlers.BackupHandler)
	mux.HandleFunc("DELETE /api/backups/{filename}", handlers.DeleteBackupHandler)
	mux.HandleFunc("POST /api/optimize", handlers.OptimizeHandler)
	mux.HandleFunc("POST /api/cleanup", handlers.CleanupHandler)
	mux.HandleFunc("POST /api/export", handlers.ExportHandler)
	mux.HandleFunc("POST /api/import", handlers.ImportHandler)

	finalHandler := middleware.RateLimitMiddleware(middleware.CorsMiddleware(middleware.LoggerMiddleware(mux)))

	port := config.AppConfig.Server.Port

	baseURL := config.AppConfig.GetBaseUrl()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      finalHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.LogServerStart(port, baseURL)
	log.Fatal(server.ListenAndServe())
}

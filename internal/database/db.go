package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"pictor/internal/appinfo"
	"pictor/internal/config"
	"pictor/pkg/logger"
)

var DB *gorm.DB

// InitDB initializes the SQLite connection with performance-tuned settings
// (WAL mode). It handles directory creation, connection pooling, schema
// migrations, default settings seeding, and pre-loading of gallery stats.
//
// The application will terminate if the database connection cannot be
// established.
func InitDB() {
	dbPath := config.AppConfig.Database.Path

	if err := ensureDir(dbPath); err != nil {
		log.Fatalf("[FATAL] Failed to ensure database directory: %v", err)
	}

	db, err := Open(dbPath)
	if err != nil {
		log.Fatalf("[FATAL] Database connection failed: %v", err)
	}
	DB = db

	seedDefaultSettings(DB)
	loadInitialStats(DB)

	logger.LogInfo("Database initialized successfully")
}

// Open connects to the SQLite file at path and migrates the schema. It is
// split out of InitDB so tests can run against a throwaway database without
// touching the global handle.
func Open(path string) (*gorm.DB, error) {
	// WAL mode enables concurrent readers and a single writer without
	// locking the entire file. busy_timeout makes the driver wait for the
	// lock instead of failing immediately.
	dsn := fmt.Sprintf(
		"%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_foreign_keys=ON",
		path,
	)

	gormConfig := &gorm.Config{
		Logger:                 gormLogger.Default.LogMode(gormLogger.Silent),
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %s: %w", path, err)
	}

	configurePool(db)

	if err := db.AutoMigrate(&Image{}, &Posting{}, &Album{}, &AlbumImage{}, &Setting{}); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func configurePool(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}

	// SQLite permits a single writer; a small pool keeps readers cheap
	// without piling up blocked writers.
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetMaxIdleConns(4)
}

func loadInitialStats(db *gorm.DB) {
	var count int64
	var size int64

	db.Model(&Image{}).Count(&count)
	db.Model(&Image{}).Select("IFNULL(SUM(file_size), 0)").Row().Scan(&size)

	appinfo.SetInitialStats(count, size)
}

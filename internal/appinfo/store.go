package appinfo

import (
	"sync/atomic"
	"time"
)

var (
	TotalImagesCount atomic.Int64
	TotalImagesSize  atomic.Int64

	StartTime = time.Now()
)

// AddImage: Called when a new image is stored
func AddImage(size int64) {
	TotalImagesCount.Add(1)
	TotalImagesSize.Add(size)
}

// RemoveImage: Called when an image is deleted
func RemoveImage(size int64) {
	TotalImagesCount.Add(-1)
	TotalImagesSize.Add(-size)
}

// SetInitialStats: Writes the first data received from the database when the server starts up.
func SetInitialStats(count, size int64) {
	TotalImagesCount.Store(count)
	TotalImagesSize.Store(size)
}

// Uptime returns how long the server has been running.
func Uptime() time.Duration {
	return time.Since(StartTime)
}

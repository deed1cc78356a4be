// Package handlers implements the HTTP surface of the gallery server.
package handlers

import (
	"golang.org/x/sync/singleflight"

	"pictor/internal/index"
	"pictor/internal/storage"
	"pictor/internal/vision"
	"pictor/pkg/cache"
)

var (
	// Global in-memory cache for served image bytes
	globalCache *cache.MemoryCache

	// SingleFlight group to prevent cache stampedes
	requestGroup singleflight.Group

	fileStore *storage.Store
	idx       *index.Store
	analyzer  vision.Analyzer
	extractor vision.CriteriaExtractor
)

func SetCache(c *cache.MemoryCache) {
	globalCache = c
}

// Init wires the shared collaborators the handlers use. Call once at
// startup before registering routes.
func Init(st *storage.Store, ix *index.Store, an vision.Analyzer, ex vision.CriteriaExtractor) {
	fileStore = st
	idx = ix
	analyzer = an
	extractor = ex
}

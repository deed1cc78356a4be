package storage

import (
	"fmt"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// CreateThumbnail renders a bounded JPEG thumbnail next to the original
// and returns its file name. size is the bounding box edge in pixels,
// quality the JPEG quality (1-100).
func (s *Store) CreateThumbnail(originalPath string, size, quality int) (string, error) {
	img, err := imaging.Open(originalPath, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	thumb := imaging.Fit(img, size, size, imaging.Lanczos)

	thumbName := ThumbName(filepath.Base(originalPath))
	thumbPath := filepath.Join(s.UploadsDir, thumbName)
	if err := imaging.Save(thumb, thumbPath, imaging.JPEGQuality(quality)); err != nil {
		return "", fmt.Errorf("save thumbnail: %w", err)
	}
	return thumbName, nil
}

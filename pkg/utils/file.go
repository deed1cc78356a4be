package utils

import (
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// SniffImageType returns the detected content type if buf looks like a
// supported image, or "" otherwise.
func SniffImageType(buf []byte) string {
	contentType := http.DetectContentType(buf)
	if allowedImageTypes[contentType] {
		return contentType
	}
	return ""
}

func IsImageFile(fileHeader *multipart.FileHeader) bool {
	file, err := fileHeader.Open()
	if err != nil {
		return false
	}
	defer file.Close()

	buff := make([]byte, 512)
	if _, err := file.Read(buff); err != nil {
		return false
	}

	return SniffImageType(buff) != ""
}

// SafeFileName reduces a client-provided name to its base and strips
// anything that could escape the uploads directory.
func SafeFileName(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	if name == "" || name == "." || name == "/" {
		return "file"
	}
	return name
}

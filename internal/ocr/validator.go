package ocr

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	ErrMissingExtension = errors.New("file extension missing")
	ErrUnsupportedImage = errors.New("file type not allowed")
)

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// ValidateImageName returns the lower-cased extension of an accepted label photo.
func ValidateImageName(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	if ext == "" {
		return "", ErrMissingExtension
	}

	if !allowedExt[ext] {
		return "", ErrUnsupportedImage
	}

	return ext, nil
}

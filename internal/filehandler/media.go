// Package filehandler discovers photos on disk and extracts the capture
// metadata the directory-backed photo library needs.
//
// Only still images take part in stories: the ranking engine counts
// image-only assets, so videos are recognised (to be skipped explicitly)
// but never loaded.
package filehandler

import (
	"fmt"
	"strings"
	"time"
)

// SupportedImageExtensions defines the file extensions treated as photos.
var SupportedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heif",
}

// SupportedVideoExtensions defines the file extensions recognised as videos.
// Videos are listed so scans can report them, they never become assets.
var SupportedVideoExtensions = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
}

// ImageFile is a photo found on disk together with its capture metadata.
type ImageFile struct {
	Path     string
	MIMEType string
	Size     int64
	ModTime  time.Time
	Metadata *ImageMetadata
}

// CaptureDate returns the EXIF capture date when present, otherwise the
// file modification time.
func (f *ImageFile) CaptureDate() time.Time {
	if f.Metadata != nil && f.Metadata.HasDate {
		return f.Metadata.DateTaken
	}
	return f.ModTime
}

// GetMIMEType returns the MIME type for a given file extension.
func GetMIMEType(ext string) (string, error) {
	ext = strings.ToLower(ext)

	if mimeType, ok := SupportedImageExtensions[ext]; ok {
		return mimeType, nil
	}

	if mimeType, ok := SupportedVideoExtensions[ext]; ok {
		return mimeType, nil
	}

	return "", fmt.Errorf("unsupported file extension: %s", ext)
}

// IsImage returns true if the file extension corresponds to an image.
func IsImage(ext string) bool {
	_, ok := SupportedImageExtensions[strings.ToLower(ext)]
	return ok
}

// IsVideo returns true if the file extension corresponds to a video.
func IsVideo(ext string) bool {
	_, ok := SupportedVideoExtensions[strings.ToLower(ext)]
	return ok
}

package attachment

import (
	"fmt"
	"mime"
	"path"
	"strings"

	"anoa.com/blogspace/internal/entity"
	"anoa.com/blogspace/pkg/apperror"
)

var allowedExtensions = map[string]string{
	"jpg":  entity.FileTypeImage,
	"jpeg": entity.FileTypeImage,
	"png":  entity.FileTypeImage,
	"gif":  entity.FileTypeImage,
	"webp": entity.FileTypeImage,
	"mp3":  entity.FileTypeAudio,
	"wav":  entity.FileTypeAudio,
	"ogg":  entity.FileTypeAudio,
	"mp4":  entity.FileTypeVideo,
	"mov":  entity.FileTypeVideo,
	"avi":  entity.FileTypeVideo,
	"webm": entity.FileTypeVideo,
	"pdf":  entity.FileTypeDocument,
	"txt":  entity.FileTypeDocument,
	"doc":  entity.FileTypeDocument,
	"docx": entity.FileTypeDocument,
}

var allowedMimeTypes = map[string][]string{
	entity.FileTypeImage: {"image/jpeg", "image/png", "image/gif", "image/webp"},
	entity.FileTypeAudio: {"audio/mpeg", "audio/mp3", "audio/wav", "audio/x-wav", "audio/wave", "audio/ogg"},
	entity.FileTypeVideo: {"video/mp4", "video/quicktime", "video/x-msvideo", "video/avi", "video/webm"},
	entity.FileTypeDocument: {
		"application/pdf",
		"text/plain",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	},
}

// extensionMimeTypes backs up mime.TypeByExtension, whose table depends on
// the host's mime.types files.
var extensionMimeTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
	"mp4":  "video/mp4",
	"mov":  "video/quicktime",
	"avi":  "video/x-msvideo",
	"webm": "video/webm",
	"pdf":  "application/pdf",
	"txt":  "text/plain",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Classify checks a file name and its declared content type against the
// upload allow-lists and returns the MIME type to store and the file
// category. A missing or unlisted declared type falls back to the type
// registered for the extension.
func Classify(filename, declaredType string) (mimeType string, fileType string, err error) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(strings.ReplaceAll(filename, "\\", "/")), "."))
	if ext == "" {
		return "", "", fmt.Errorf("file %q has no extension: %w", filename, apperror.ErrInvalidInput)
	}

	fileType, ok := allowedExtensions[ext]
	if !ok {
		return "", "", fmt.Errorf("file type .%s is not allowed: %w", ext, apperror.ErrInvalidInput)
	}

	candidates := []string{
		normalizeMime(declaredType),
		normalizeMime(mime.TypeByExtension("." + ext)),
		extensionMimeTypes[ext],
	}
	for _, candidate := range candidates {
		if isAllowedMime(fileType, candidate) {
			return candidate, fileType, nil
		}
	}

	return "", "", fmt.Errorf("content type %q is not allowed for .%s files: %w", declaredType, ext, apperror.ErrInvalidInput)
}

func normalizeMime(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(mediaType)
}

func isAllowedMime(fileType, mimeType string) bool {
	if mimeType == "" {
		return false
	}
	for _, allowed := range allowedMimeTypes[fileType] {
		if allowed == mimeType {
			return true
		}
	}
	return false
}

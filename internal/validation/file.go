package validation

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/campusmedia/gallery/internal/model"
)

var ErrInvalidFile = errors.New("invalid file")

// FileConstraints defines validation rules for file uploads
type FileConstraints struct {
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxSize           int64
}

var (
	ImageConstraints = FileConstraints{
		AllowedMimeTypes: map[string]bool{
			"image/jpeg": true,
			"image/png":  true,
			"image/webp": true,
			"image/gif":  true,
		},
		AllowedExtensions: map[string]bool{
			".jpg":  true,
			".jpeg": true,
			".png":  true,
			".webp": true,
			".gif":  true,
		},
		MaxSize: 20 << 20, // 20MB
	}

	VideoConstraints = FileConstraints{
		AllowedMimeTypes: map[string]bool{
			"video/mp4":  true,
			"video/webm": true,
		},
		AllowedExtensions: map[string]bool{
			".mp4":  true,
			".webm": true,
		},
		MaxSize: 500 << 20, // 500MB
	}

	// GraphicConstraints covers posters, infographics and template packs.
	GraphicConstraints = FileConstraints{
		AllowedMimeTypes: map[string]bool{
			"image/png":       true,
			"image/jpeg":      true,
			"application/pdf": true,
			"application/zip": true,
		},
		AllowedExtensions: map[string]bool{
			".png":  true,
			".jpg":  true,
			".jpeg": true,
			".pdf":  true,
			".zip":  true,
			".pptx": true,
		},
		MaxSize: 50 << 20, // 50MB
	}
)

// ConstraintsFor picks the upload rules for a resource type. Unknown
// types accept anything the three known types accept.
func ConstraintsFor(resourceType string) []FileConstraints {
	switch strings.ToLower(strings.TrimSpace(resourceType)) {
	case model.ResourceTypeImage, "photo":
		return []FileConstraints{ImageConstraints}
	case model.ResourceTypeVideo:
		return []FileConstraints{VideoConstraints}
	case model.ResourceTypeGraphic:
		return []FileConstraints{GraphicConstraints}
	default:
		return []FileConstraints{ImageConstraints, VideoConstraints, GraphicConstraints}
	}
}

// ValidateFile checks an upload against one or more constraint sets and
// returns the sniffed content type. The file must match at least one set.
func ValidateFile(header *multipart.FileHeader, constraints ...FileConstraints) (string, error) {
	if len(constraints) == 0 {
		return "", fmt.Errorf("no file constraints provided")
	}

	var lastErr error
	for _, constraint := range constraints {
		contentType, err := validateAgainstConstraint(header, constraint)
		if err == nil {
			return contentType, nil
		}
		lastErr = err
	}
	return "", lastErr
}

func validateAgainstConstraint(header *multipart.FileHeader, constraints FileConstraints) (string, error) {
	if header.Size > constraints.MaxSize {
		maxMB := constraints.MaxSize / (1 << 20)
		return "", fmt.Errorf("%w: file too large, maximum size is %d MB", ErrInvalidFile, maxMB)
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// http.DetectContentType looks at no more than 512 bytes.
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	detectedType := http.DetectContentType(buffer[:n])
	if !constraints.AllowedMimeTypes[detectedType] {
		return "", fmt.Errorf("%w: type %s not allowed", ErrInvalidFile, detectedType)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !constraints.AllowedExtensions[ext] {
		return "", fmt.Errorf("%w: extension %q not allowed", ErrInvalidFile, ext)
	}

	return detectedType, nil
}

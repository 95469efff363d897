package devstore

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder.
	_ "image/jpeg" // Register JPEG decoder.
	_ "image/png"  // Register PNG decoder.
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // Register WebP decoder.
)

// Upload limits.
const (
	MaxUploadBytes = 5 << 20
	MaxImageWidth  = 4096
	MaxImageHeight = 4096
)

var (
	errTooLarge      = errors.New("file exceeds the 5 MB limit")
	errNotAnImage    = errors.New("file is not a supported image (png, jpeg, gif, webp)")
	errTooManyPixels = errors.New("image dimensions exceed 4096x4096")
	errBadUploadName = errors.New("invalid file name")
)

var contentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// saveImage checks data and writes it to dir as <uuid>.<ext>, returning the
// generated file name.
func saveImage(dir string, data []byte) (string, error) {
	if len(data) > MaxUploadBytes {
		return "", errTooLarge
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", errNotAnImage
	}
	if cfg.Width > MaxImageWidth || cfg.Height > MaxImageHeight {
		return "", errTooManyPixels
	}

	ext := "." + format
	if format == "jpeg" {
		ext = ".jpg"
	}
	name := uuid.NewString() + ext

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}
	return name, nil
}

// uploadPath resolves a served file name inside dir, rejecting traversal.
func uploadPath(dir, name string) (string, string, error) {
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", "", errBadUploadName
	}
	ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]
	if !ok {
		ct = "application/octet-stream"
	}
	return filepath.Join(dir, name), ct, nil
}

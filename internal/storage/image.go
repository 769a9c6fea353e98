package storage

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/baharkarakas/storefront-backend/internal/apperr"
)

const DefaultMaxImageBytes = 5 << 20

var allowedImages = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// SniffLen is how many leading bytes CheckImage needs.
const SniffLen = 512

// CheckImage accepts an upload when its extension and sniffed content type
// both name the same allowed image format. It returns the normalized
// extension and content type.
func CheckImage(filename string, size, maxBytes int64, head []byte) (ext, contentType string, err error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	if size <= 0 {
		return "", "", apperr.InvalidField("image", "file is empty")
	}
	if size > maxBytes {
		return "", "", apperr.InvalidField("image", "file is too large")
	}
	ext = strings.ToLower(filepath.Ext(filename))
	want, ok := allowedImages[ext]
	if !ok {
		return "", "", apperr.InvalidField("image", "only jpeg, jpg, png and webp images are allowed")
	}
	got := http.DetectContentType(head)
	if got != want {
		return "", "", apperr.InvalidField("image", "file content does not match its extension")
	}
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	return ext, want, nil
}

// NewImageKey builds a unique object key from the product name.
func NewImageKey(productName, ext string) string {
	base := slug.Make(productName)
	if base == "" {
		base = "product"
	}
	return "products/" + base + "-" + uuid.NewString() + ext
}

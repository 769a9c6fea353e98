// Package storage holds product images. Objects are addressed by key; the
// public reference stored on a product is "/images/<key>".
package storage

import (
	"context"
	"io"
	"strings"
)

const RefPrefix = "/images/"

// Object is an opened image ready to be streamed.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Images is a blob store for uploaded product images. Open returns an
// apperr.ErrNotFound error for unknown keys.
type Images interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (Object, error)
	Delete(ctx context.Context, key string) error
}

func Ref(key string) string { return RefPrefix + key }

// KeyFromRef extracts the object key from a stored image reference. It
// reports false for references that do not point into the store, such as
// external URLs.
func KeyFromRef(ref string) (string, bool) {
	key, ok := strings.CutPrefix(ref, RefPrefix)
	if !ok || key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}

// Package objectstore persists verification images (ID card, selfie) and
// hands back URLs the marketplace back office can open.
package objectstore

import (
	"context"
)

// Object references a stored image.
type Object struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Store is implemented by the MinIO and in-memory backends.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (Object, error)
}

// Package media stores uploaded images in object storage and hands back
// public URLs for articles to reference.
package media

import (
	"context"
	"io"
)

// Store is the object-storage surface for uploaded media.
type Store interface {
	// Put uploads the object under key and returns its public URL.
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
}

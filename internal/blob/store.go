package blob

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("object not found")

// Store — узкий контракт blob-хранилища для media-вложений.
type Store interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (*ObjectInfo, error)
	Get(ctx context.Context, name string) ([]byte, *ObjectInfo, error)
	Delete(ctx context.Context, name string) error
}

type ObjectInfo struct {
	Name        string
	Size        uint64
	ContentType string
	ModTime     time.Time
}

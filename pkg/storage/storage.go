package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested document does not exist in storage.
var ErrNotFound = errors.New("not found")

// Storage provides an abstraction over keyed document storage. Writes replace
// the whole document; there are no partial or append writes.
type Storage interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
	Exists(ctx context.Context, path string) (bool, error)
}

package storage

import (
	"errors"
)

// ErrNotExist is returned by Read and Stat when no blob is stored under
// the requested id.
var ErrNotExist = errors.New("blob does not exist")

// BlobStore holds raw paste content, one blob per paste id. Metadata is
// owned by the index; a blob has no lifecycle of its own.
type BlobStore interface {
	// Write stores content under id, replacing any existing blob.
	Write(id string, content []byte) error

	// Read returns the blob for id, or ErrNotExist.
	Read(id string) ([]byte, error)

	// Delete removes the blob for id. Deleting a missing blob is not an
	// error.
	Delete(id string) error

	// Stat reports whether a blob exists for id and its size in bytes.
	Stat(id string) (exists bool, size int64, err error)

	// Close releases any backend resources.
	Close() error
}

// Package storage provides the object storage abstraction used to publish
// run artifacts. Implementations cover S3-compatible stores and a local
// filesystem directory for development and tests.
package storage

import (
	"context"
	"errors"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrUploadFailed   = errors.New("upload failed")
	ErrDeleteFailed   = errors.New("delete failed")
)

// ObjectStorage abstracts the artifact publication target.
type ObjectStorage interface {
	// Upload copies a local file to objectPath in the store.
	Upload(ctx context.Context, localPath, objectPath string) error

	// Exists reports whether an object is present.
	Exists(ctx context.Context, objectPath string) (bool, error)

	// Delete removes an object; deleting an absent object is a no-op.
	Delete(ctx context.Context, objectPath string) error

	// ListObjects returns all object paths under the given prefix, used to
	// inspect previously published runs.
	ListObjects(ctx context.Context, prefix string) ([]string, error)
}

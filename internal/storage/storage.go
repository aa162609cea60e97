package storage

import "context"

// ArtifactStore uploads opaque bytes under a named path in durable object
// storage and returns a retrievable URL.
type ArtifactStore interface {
	Upload(ctx context.Context, data []byte, destinationName, folder string) (string, error)
}

// StorageError wraps any failure to complete an upload. Uploads are treated
// as transient by the worker; the job queue's retry policy is the recovery
// path.
type StorageError struct {
	Object string
	Err    error
}

func (e *StorageError) Error() string {
	return "storage upload failed for " + e.Object + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

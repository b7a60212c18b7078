// Package mediastore is the boundary to the binary-object storage provider.
// The service treats it as a capability: upload a local file and get back a
// public URL, or delete a previously uploaded URL.
package mediastore

import "context"

// Store is the media-store capability injected into services. There is no
// ambient global client; constructors receive a Store instance.
type Store interface {
	// Upload stores the file at localPath and returns its public URL.
	// Cleaning up localPath is the caller's responsibility in all outcomes.
	Upload(ctx context.Context, localPath string) (string, error)

	// Delete removes the object behind a previously returned URL.
	Delete(ctx context.Context, url string) error
}

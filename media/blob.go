package media

import "context"

// BlobRef is the handle returned by the external blob collaborator.
type BlobRef struct {
	Url        string
	ExternalId string
}

// BlobStore is the external collaborator that holds the actual media
// bytes. The core never stores bytes itself, only references. The
// collaborator is treated as unreliable; callers classify its failures
// as upstream errors.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, folder, name string) (*BlobRef, error)
	Delete(ctx context.Context, externalId string) error
}

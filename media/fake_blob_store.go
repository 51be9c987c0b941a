package media

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

// FakeBlobStore is an in-memory blob collaborator for tests. It counts
// uploads so dedup tests can assert that identical content hits the
// external store exactly once.
type FakeBlobStore struct {
	mu      sync.Mutex
	nextId  int
	blobs   map[string][]byte
	Uploads int
	Deletes int

	// FailUploads switches every Upload into an error, simulating an
	// unreachable collaborator.
	FailUploads bool
}

func NewFakeBlobStore() *FakeBlobStore {
	return &FakeBlobStore{blobs: make(map[string][]byte)}
}

func (f *FakeBlobStore) Upload(ctx context.Context, data []byte, folder, name string) (*BlobRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailUploads {
		return nil, errors.New("blob store unavailable")
	}

	f.Uploads++
	f.nextId++
	externalId := fmt.Sprintf("%s/%s#%d", folder, name, f.nextId)
	f.blobs[externalId] = data
	return &BlobRef{
		Url:        "https://blobs.test/" + externalId,
		ExternalId: externalId,
	}, nil
}

func (f *FakeBlobStore) Delete(ctx context.Context, externalId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.blobs[externalId]; !ok {
		return errors.New("blob not found: " + externalId)
	}
	delete(f.blobs, externalId)
	f.Deletes++
	return nil
}

// Stored reports how many blobs the fake currently holds.
func (f *FakeBlobStore) Stored() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.blobs)
}

var _ BlobStore = (*FakeBlobStore)(nil)

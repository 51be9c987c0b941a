package media

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devplatform/social-backend/model"
	"github.com/devplatform/social-backend/store/inmemory"
	"github.com/devplatform/social-backend/utils"
)

func newTestDedupStore() (*DedupStore, *inmemory.Store, *FakeBlobStore) {
	entities := inmemory.New()
	blobs := NewFakeBlobStore()
	return NewDedupStore(entities, blobs, "test-folder"), entities, blobs
}

func TestPut_UploadsOnceForIdenticalContent(t *testing.T) {
	dedup, _, blobs := newTestDedupStore()
	ctx := context.Background()
	content := []byte("the same jpeg bytes")

	first, err := dedup.Put(ctx, content, "image/jpeg")
	require.NoError(t, err)

	second, err := dedup.Put(ctx, content, "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, first.ContentHash, second.ContentHash)
	assert.Equal(t, first.Url, second.Url)
	assert.Equal(t, first.ExternalId, second.ExternalId)
	assert.Equal(t, 1, blobs.Uploads)
}

func TestPut_DistinctContentDistinctRecords(t *testing.T) {
	dedup, _, blobs := newTestDedupStore()
	ctx := context.Background()

	a, err := dedup.Put(ctx, []byte("content a"), "image/png")
	require.NoError(t, err)
	b, err := dedup.Put(ctx, []byte("content b"), "image/png")
	require.NoError(t, err)

	assert.NotEqual(t, a.ContentHash, b.ContentHash)
	assert.Equal(t, 2, blobs.Uploads)
}

func TestPut_EmptyContentRejected(t *testing.T) {
	dedup, _, _ := newTestDedupStore()

	_, err := dedup.Put(context.Background(), nil, "image/jpeg")
	require.Error(t, err)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestPut_UploadFailureLeavesNoRecord(t *testing.T) {
	dedup, entities, blobs := newTestDedupStore()
	ctx := context.Background()
	content := []byte("doomed upload")
	blobs.FailUploads = true

	_, err := dedup.Put(ctx, content, "image/jpeg")
	require.Error(t, err)
	assert.Equal(t, utils.KindUpstream, utils.KindOf(err))

	_, err = entities.GetImage(ctx, ContentHash(content))
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	// Collaborator back up: same content stores cleanly.
	blobs.FailUploads = false
	image, err := dedup.Put(ctx, content, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, ContentHash(content), image.ContentHash)
}

func TestPut_ConcurrentIdenticalUploadsConverge(t *testing.T) {
	dedup, _, blobs := newTestDedupStore()
	ctx := context.Background()
	content := []byte("raced bytes")

	const writers = 8
	results := make([]*model.Image, writers)
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results[n], errs[n] = dedup.Put(ctx, content, "image/jpeg")
		}(i)
	}
	wg.Wait()

	// All writers adopted the same record; losing uploads were discarded.
	for _, err := range errs {
		require.NoError(t, err)
	}
	for _, image := range results {
		assert.Equal(t, results[0].ExternalId, image.ExternalId)
		assert.Equal(t, results[0].Url, image.Url)
	}
	assert.Equal(t, 1, blobs.Stored())
}

func TestDelete_NoOpWhileReferenced(t *testing.T) {
	dedup, entities, blobs := newTestDedupStore()
	ctx := context.Background()

	image, err := dedup.Put(ctx, []byte("referenced bytes"), "image/jpeg")
	require.NoError(t, err)

	require.NoError(t, entities.CreatePost(ctx, &model.Post{
		UserId:  "author",
		Content: "post with image",
		Images:  []model.PostImage{{Position: 0, ContentHash: image.ContentHash, Url: image.Url}},
	}))

	require.NoError(t, dedup.Delete(ctx, image.ContentHash))

	// Record and blob both survived.
	_, err = entities.GetImage(ctx, image.ContentHash)
	require.NoError(t, err)
	assert.Equal(t, 0, blobs.Deletes)
}

func TestDelete_RemovesUnreferencedImage(t *testing.T) {
	dedup, entities, blobs := newTestDedupStore()
	ctx := context.Background()

	image, err := dedup.Put(ctx, []byte("orphan bytes"), "image/jpeg")
	require.NoError(t, err)

	require.NoError(t, dedup.Delete(ctx, image.ContentHash))

	_, err = entities.GetImage(ctx, image.ContentHash)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
	assert.Equal(t, 1, blobs.Deletes)
	assert.Equal(t, 0, blobs.Stored())
}

func TestDelete_UnknownHashIsNotFound(t *testing.T) {
	dedup, _, _ := newTestDedupStore()

	err := dedup.Delete(context.Background(), "no-such-hash")
	require.Error(t, err)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/devplatform/social-backend/model"
	"github.com/devplatform/social-backend/store"
	"github.com/devplatform/social-backend/utils"
	Logger "github.com/devplatform/social-backend/utils/log"
)

// DedupStore is the content-addressed media front of the blob
// collaborator. Identical bytes always resolve to the same Image record
// and are uploaded at most once, no matter how many posts attach them.
type DedupStore struct {
	images store.ImageStore
	blobs  BlobStore
	folder string
}

func NewDedupStore(images store.ImageStore, blobs BlobStore, folder string) *DedupStore {
	return &DedupStore{images: images, blobs: blobs, folder: folder}
}

// ContentHash fingerprints media bytes. Hex SHA-256, the identity key of
// the Image collection.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Put stores media content and returns its Image record. The record is
// committed only after the blob upload was confirmed, so a timed-out
// upload never leaves an Image row pointing at bytes that were never
// stored.
//
// Two requests carrying identical bytes may both miss the lookup and
// both upload; the hash uniqueness constraint picks the winner and the
// loser discards its own upload and adopts the winner's record.
func (d *DedupStore) Put(ctx context.Context, data []byte, mimeType string) (*model.Image, error) {
	if len(data) == 0 {
		return nil, utils.ValidationError("media content is empty")
	}

	hash := ContentHash(data)

	existing, err := d.images.GetImage(ctx, hash)
	if err == nil {
		return existing, nil
	}
	if !utils.IsKind(err, utils.KindNotFound) {
		return nil, err
	}

	ref, err := d.blobs.Upload(ctx, data, d.folder, hash+extForMimeType(mimeType))
	if err != nil {
		return nil, utils.UpstreamFailure(err, "blob upload failed for %s", hash)
	}

	image := &model.Image{
		ContentHash: hash,
		Url:         ref.Url,
		ExternalId:  ref.ExternalId,
		MimeType:    mimeType,
	}
	if err := d.images.InsertImage(ctx, image); err != nil {
		if utils.IsKind(err, utils.KindConflict) {
			return d.adoptWinner(ctx, hash, ref)
		}
		return nil, err
	}
	return image, nil
}

// adoptWinner resolves a racing duplicate insert: drop our own upload
// and return the record the concurrent writer committed first.
func (d *DedupStore) adoptWinner(ctx context.Context, hash string, loserRef *BlobRef) (*model.Image, error) {
	winner, err := d.images.GetImage(ctx, hash)
	if err != nil {
		return nil, err
	}
	if winner.ExternalId != loserRef.ExternalId {
		if err := d.blobs.Delete(ctx, loserRef.ExternalId); err != nil {
			// Worst case an unreferenced blob survives at the store; the
			// Image collection stays consistent either way.
			Logger.LogV2.Errorf("failed to discard losing upload", loserRef.ExternalId, err)
		}
	}
	return winner, nil
}

// Delete physically removes an image only when no post references it
// anymore; while referenced it is a no-op.
func (d *DedupStore) Delete(ctx context.Context, contentHash string) error {
	image, err := d.images.GetImage(ctx, contentHash)
	if err != nil {
		return err
	}

	referenced, err := d.images.ImageReferenced(ctx, contentHash)
	if err != nil {
		return err
	}
	if referenced {
		return nil
	}

	if err := d.blobs.Delete(ctx, image.ExternalId); err != nil {
		return utils.UpstreamFailure(err, "blob delete failed for %s", contentHash)
	}
	return d.images.DeleteImage(ctx, contentHash)
}

func extForMimeType(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

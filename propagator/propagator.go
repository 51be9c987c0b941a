package propagator

import (
	"context"

	Logger "github.com/devplatform/social-backend/utils/log"
)

// Snapshot is the pair of identity fields denormalized into comments.
type Snapshot struct {
	Username       string
	ProfilePicture string
}

// CommentStore is the capability the propagator needs from storage.
// Depending on this interface instead of the post/comment storage type
// keeps the user-edit path free of a dependency cycle on post storage.
type CommentStore interface {
	UpdateCommentAuthorSnapshot(ctx context.Context, userId, username, profilePicture string) (int64, error)
}

// Propagator fans a profile-identity change out to every comment
// embedding the author's old username/picture.
//
// Propagation runs synchronously: it completes (or fails) before the
// profile-edit request returns. Failures are logged and swallowed; the
// committed profile edit is the source of truth and is never rolled
// back, a stale snapshot fixes itself on the next successful edit.
type Propagator struct {
	comments CommentStore
}

func New(comments CommentStore) *Propagator {
	return &Propagator{comments: comments}
}

// OnProfileIdentityChange rewrites comment snapshots for userId. No-op
// unless username or picture actually changed from the stored previous
// value.
func (p *Propagator) OnProfileIdentityChange(ctx context.Context, userId string, previous, updated Snapshot) {
	if previous == updated {
		return
	}

	updatedRows, err := p.comments.UpdateCommentAuthorSnapshot(ctx, userId, updated.Username, updated.ProfilePicture)
	if err != nil {
		Logger.LogV2.Errorf("comment snapshot propagation failed for user", userId, err)
		return
	}
	Logger.LogV2.Infof("propagated profile identity change", userId, updatedRows)
}

package engagement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devplatform/social-backend/model"
	"github.com/devplatform/social-backend/store/inmemory"
	"github.com/devplatform/social-backend/utils"
)

func newTestLedger(t *testing.T) (*Ledger, *inmemory.Store) {
	entities := inmemory.New()
	ctx := context.Background()

	for _, u := range []*model.User{
		{Id: "alice", Username: "alice", Email: "alice@example.com", ProfilePicture: "alice.png"},
		{Id: "bob", Username: "bob", Email: "bob@example.com"},
	} {
		require.NoError(t, entities.CreateUser(ctx, u))
	}
	require.NoError(t, entities.CreatePost(ctx, &model.Post{Id: "post-1", UserId: "alice", Content: "hello"}))

	return New(entities, entities, entities, entities), entities
}

// === Likes ===

func TestLike_Idempotent(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, ledger.Like(ctx, "post-1", "bob"))
	}

	likes, err := ledger.Likes(ctx, "post-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, likes)
}

func TestUnlike_NeverLikedIsNoOp(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.Unlike(ctx, "post-1", "bob"))

	likes, err := ledger.Likes(ctx, "post-1")
	require.NoError(t, err)
	assert.Empty(t, likes)
}

func TestLike_UnknownPost(t *testing.T) {
	ledger, _ := newTestLedger(t)

	err := ledger.Like(context.Background(), "no-such-post", "bob")
	require.Error(t, err)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

// === Comments ===

func TestAddComment_SnapshotsCurrentProfile(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	comment, err := ledger.AddComment(ctx, "post-1", "alice", "first!")
	require.NoError(t, err)
	assert.Equal(t, "alice", comment.Username)
	assert.Equal(t, "alice.png", comment.ProfilePicture)
	assert.NotEmpty(t, comment.Id)
}

func TestAddComment_Validation(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := ledger.AddComment(ctx, "post-1", "alice", "   ")
	require.Error(t, err)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestComments_AppendOrder(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	first, err := ledger.AddComment(ctx, "post-1", "alice", "one")
	require.NoError(t, err)
	second, err := ledger.AddComment(ctx, "post-1", "bob", "two")
	require.NoError(t, err)
	third, err := ledger.AddComment(ctx, "post-1", "alice", "three")
	require.NoError(t, err)

	comments, err := ledger.Comments(ctx, "post-1")
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, first.Id, comments[0].Id)
	assert.Equal(t, second.Id, comments[1].Id)
	assert.Equal(t, third.Id, comments[2].Id)
}

func TestRemoveComment_OwnershipEnforced(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	comment, err := ledger.AddComment(ctx, "post-1", "alice", "mine")
	require.NoError(t, err)

	err = ledger.RemoveComment(ctx, "post-1", comment.Id, "bob")
	require.Error(t, err)
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err))

	// Comment is still there.
	comments, err := ledger.Comments(ctx, "post-1")
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestRemoveComment_RepeatByAuthorSucceeds(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	comment, err := ledger.AddComment(ctx, "post-1", "alice", "mine")
	require.NoError(t, err)

	require.NoError(t, ledger.RemoveComment(ctx, "post-1", comment.Id, "alice"))
	// Retry of the author's own successful delete is idempotent.
	require.NoError(t, ledger.RemoveComment(ctx, "post-1", comment.Id, "alice"))
}

func TestRemoveComment_RemovedCommentIsNotFoundForOthers(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	comment, err := ledger.AddComment(ctx, "post-1", "alice", "mine")
	require.NoError(t, err)
	require.NoError(t, ledger.RemoveComment(ctx, "post-1", comment.Id, "alice"))

	err = ledger.RemoveComment(ctx, "post-1", comment.Id, "bob")
	require.Error(t, err)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestRemoveComment_NeverExisted(t *testing.T) {
	ledger, _ := newTestLedger(t)

	err := ledger.RemoveComment(context.Background(), "post-1", "no-such-comment", "alice")
	require.Error(t, err)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

// === Saves ===

func TestToggleSave_FlipsMembership(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	saved, err := ledger.ToggleSave(ctx, "bob", "post-1")
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = ledger.ToggleSave(ctx, "bob", "post-1")
	require.NoError(t, err)
	assert.False(t, saved)

	ids, err := ledger.SavedPostIds(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestToggleSave_UnknownPostRejectedForSave(t *testing.T) {
	ledger, _ := newTestLedger(t)

	_, err := ledger.ToggleSave(context.Background(), "bob", "no-such-post")
	require.Error(t, err)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestSavedPosts_DanglingReferencesFiltered(t *testing.T) {
	ledger, entities := newTestLedger(t)
	ctx := context.Background()
	require.NoError(t, entities.CreatePost(ctx, &model.Post{Id: "post-2", UserId: "alice", Content: "short lived"}))

	for _, postId := range []string{"post-1", "post-2"} {
		saved, err := ledger.ToggleSave(ctx, "bob", postId)
		require.NoError(t, err)
		require.True(t, saved)
	}

	require.NoError(t, entities.DeletePost(ctx, "post-2"))

	// The stale id stays in the set, resolution filters it.
	ids, err := ledger.SavedPostIds(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	posts, err := ledger.SavedPosts(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "post-1", posts[0].Id)
}

func TestToggleSave_CanClearDanglingReference(t *testing.T) {
	ledger, entities := newTestLedger(t)
	ctx := context.Background()

	saved, err := ledger.ToggleSave(ctx, "bob", "post-1")
	require.NoError(t, err)
	require.True(t, saved)

	require.NoError(t, entities.DeletePost(ctx, "post-1"))

	saved, err = ledger.ToggleSave(ctx, "bob", "post-1")
	require.NoError(t, err)
	assert.False(t, saved)
}

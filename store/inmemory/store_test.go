package inmemory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devplatform/social-backend/model"
	"github.com/devplatform/social-backend/store"
	"github.com/devplatform/social-backend/utils"
)

func TestCreateUser_DuplicateEmailConflicts(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &model.User{Id: "u1", Username: "a", Email: "a@example.com"}))

	err := s.CreateUser(ctx, &model.User{Id: "u2", Username: "b", Email: "a@example.com"})
	require.Error(t, err)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
}

func TestUpdateUserProfile_ReturnsPreviousValues(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, &model.User{
		Id: "u1", Username: "before", Email: "u1@example.com", ProfilePicture: "old.png",
	}))

	newName := "after"
	previous, err := s.UpdateUserProfile(ctx, "u1", store.UserProfileUpdate{Username: &newName})
	require.NoError(t, err)
	assert.Equal(t, "before", previous.Username)
	assert.Equal(t, "old.png", previous.ProfilePicture)

	current, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "after", current.Username)
}

func TestUpdateUserProfile_PartialUpdateLeavesOtherFields(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, &model.User{
		Id: "u1", Username: "name", Email: "u1@example.com", Bio: "old bio", IsPrivate: true,
	}))

	bio := "new bio"
	_, err := s.UpdateUserProfile(ctx, "u1", store.UserProfileUpdate{Bio: &bio})
	require.NoError(t, err)

	current, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "new bio", current.Bio)
	assert.Equal(t, "name", current.Username)
	assert.True(t, current.IsPrivate)
}

func TestListPosts_OrderAndPartitionQueries(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	posts := []*model.Post{
		{Id: "a1", UserId: "alice", Content: "x", CreatedAt: base.Add(-time.Hour)},
		{Id: "a2", UserId: "alice", Content: "x", CreatedAt: base},
		{Id: "b1", UserId: "bob", Content: "x", CreatedAt: base.Add(-30 * time.Minute)},
	}
	for _, p := range posts {
		require.NoError(t, s.CreatePost(ctx, p))
	}

	byAlice, err := s.ListPostsByAuthors(ctx, []string{"alice"})
	require.NoError(t, err)
	require.Len(t, byAlice, 2)
	assert.Equal(t, "a2", byAlice[0].Id)
	assert.Equal(t, "a1", byAlice[1].Id)

	others, err := s.ListPostsExcludingAuthors(ctx, []string{"alice"})
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, "b1", others[0].Id)
}

func TestListPostsByIds_SkipsDeleted(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.CreatePost(ctx, &model.Post{Id: "p1", UserId: "alice", Content: "x"}))
	require.NoError(t, s.CreatePost(ctx, &model.Post{Id: "p2", UserId: "alice", Content: "x"}))
	require.NoError(t, s.DeletePost(ctx, "p2"))

	posts, err := s.ListPostsByIds(ctx, []string{"p1", "p2", "p3"})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "p1", posts[0].Id)
}

func TestComments_TombstonesSurviveDeletion(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.AddComment(ctx, &model.Comment{
		Id: "c1", PostId: "p1", UserId: "alice", Text: "hi",
	}))

	require.NoError(t, s.DeleteComment(ctx, "p1", "c1"))

	_, err := s.GetComment(ctx, "p1", "c1")
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	tombstone, deleted, err := s.GetCommentAny(ctx, "p1", "c1")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, "alice", tombstone.UserId)

	// Deleted comments don't come back in listings or snapshot updates.
	comments, err := s.ListComments(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, comments)

	updated, err := s.UpdateCommentAuthorSnapshot(ctx, "alice", "alice2", "new.png")
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestInsertImage_HashUniqueness(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.InsertImage(ctx, &model.Image{ContentHash: "h1", Url: "u1", ExternalId: "e1"}))

	err := s.InsertImage(ctx, &model.Image{ContentHash: "h1", Url: "u2", ExternalId: "e2"})
	require.Error(t, err)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))

	// Winner's record is untouched.
	image, err := s.GetImage(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, "e1", image.ExternalId)
}

func TestAddLike_ConcurrentDuplicatesStaySet(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.AddLike(ctx, "p1", "alice")
		}()
	}
	wg.Wait()

	likes, err := s.ListLikes(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, likes)
}

func TestFollowEdge_BothDirectionsConsistent(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.AddFollow(ctx, "a", "b"))
	require.NoError(t, s.AddFollow(ctx, "a", "b"))

	following, err := s.ListFollowing(ctx, "a")
	require.NoError(t, err)
	followers, err := s.ListFollowers(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, following)
	assert.Equal(t, []string{"a"}, followers)

	ok, err := s.IsFollowing(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.RemoveFollow(ctx, "a", "b"))
	ok, err = s.IsFollowing(ctx, "a", "b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestToggleSave_AtomicFlip(t *testing.T) {
	s := New()
	ctx := context.Background()

	saved, err := s.ToggleSave(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = s.ToggleSave(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.False(t, saved)

	// An odd number of flips ends saved.
	for i := 0; i < 3; i++ {
		saved, err = s.ToggleSave(ctx, "u1", "p1")
		require.NoError(t, err)
	}
	assert.True(t, saved)

	ids, err := s.ListSavedPostIds(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids)
}

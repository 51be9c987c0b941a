package engagement

import (
	"context"
	"strings"

	"github.com/devplatform/social-backend/model"
	"github.com/devplatform/social-backend/store"
	"github.com/devplatform/social-backend/utils"
)

const maxCommentLength = 2000

// Ledger owns the engagement sets of a post: likes, comments and saved
// bookmarks. Every operation is safe under retries and concurrent
// duplicates; set mutations resolve at the storage layer, not by
// read-modify-write.
type Ledger struct {
	posts    store.PostStore
	comments store.CommentStore
	sets     store.EngagementStore
	users    store.UserStore
}

func New(posts store.PostStore, comments store.CommentStore, sets store.EngagementStore, users store.UserStore) *Ledger {
	return &Ledger{posts: posts, comments: comments, sets: sets, users: users}
}

// Like adds userId to the post's like set. Liking twice has the same
// effect as liking once.
func (l *Ledger) Like(ctx context.Context, postId, userId string) error {
	if _, err := l.posts.GetPost(ctx, postId); err != nil {
		return err
	}
	if _, err := l.users.GetUser(ctx, userId); err != nil {
		return err
	}
	return l.sets.AddLike(ctx, postId, userId)
}

// Unlike removes userId from the like set. Unliking a never-liked post
// is a no-op, not an error.
func (l *Ledger) Unlike(ctx context.Context, postId, userId string) error {
	if _, err := l.posts.GetPost(ctx, postId); err != nil {
		return err
	}
	return l.sets.RemoveLike(ctx, postId, userId)
}

// Likes returns the post's like set.
func (l *Ledger) Likes(ctx context.Context, postId string) ([]string, error) {
	if _, err := l.posts.GetPost(ctx, postId); err != nil {
		return nil, err
	}
	return l.sets.ListLikes(ctx, postId)
}

// AddComment appends a comment carrying a snapshot of the author's
// profile as it is right now. Past edits are already folded in; future
// edits reach the snapshot through the propagator.
func (l *Ledger) AddComment(ctx context.Context, postId, userId, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, utils.ValidationError("comment text is required")
	}
	if len(text) > maxCommentLength {
		return nil, utils.ValidationError("comment text exceeds %d characters", maxCommentLength)
	}
	if _, err := l.posts.GetPost(ctx, postId); err != nil {
		return nil, err
	}
	author, err := l.users.GetUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostId:         postId,
		UserId:         userId,
		Text:           text,
		Username:       author.Username,
		ProfilePicture: author.ProfilePicture,
	}
	if err := l.comments.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// RemoveComment deletes a comment. Only the comment's author may delete
// it; the check compares the requester against the comment's own userId
// field. A repeated delete by the author of an already-removed comment
// succeeds idempotently, anyone else racing against that removal gets a
// NotFound.
func (l *Ledger) RemoveComment(ctx context.Context, postId, commentId, requesterId string) error {
	comment, deleted, err := l.comments.GetCommentAny(ctx, postId, commentId)
	if err != nil {
		return err
	}
	if deleted {
		if comment.UserId == requesterId {
			return nil
		}
		return utils.NotFound("comment %s not found on post %s", commentId, postId)
	}
	if comment.UserId != requesterId {
		return utils.Unauthorized("only the comment author may delete it")
	}
	return l.comments.DeleteComment(ctx, postId, commentId)
}

// Comments returns the post's live comments in append order.
func (l *Ledger) Comments(ctx context.Context, postId string) ([]*model.Comment, error) {
	if _, err := l.posts.GetPost(ctx, postId); err != nil {
		return nil, err
	}
	return l.comments.ListComments(ctx, postId)
}

// ToggleSave flips (userId, postId) bookmark membership in one atomic
// step and reports the resulting state. Saving requires the post to
// exist; unsaving tolerates a dangling reference so stale bookmarks can
// always be cleared.
func (l *Ledger) ToggleSave(ctx context.Context, userId, postId string) (bool, error) {
	if _, err := l.users.GetUser(ctx, userId); err != nil {
		return false, err
	}

	if _, err := l.posts.GetPost(ctx, postId); err != nil {
		if !utils.IsKind(err, utils.KindNotFound) {
			return false, err
		}
		// Post is gone. Allow the toggle only when it clears a stale
		// bookmark.
		saved, serr := l.savedContains(ctx, userId, postId)
		if serr != nil {
			return false, serr
		}
		if !saved {
			return false, err
		}
	}

	return l.sets.ToggleSave(ctx, userId, postId)
}

// SavedPostIds returns the user's bookmark set in save order, including
// ids whose posts were deleted since; readers filter those when
// resolving.
func (l *Ledger) SavedPostIds(ctx context.Context, userId string) ([]string, error) {
	if _, err := l.users.GetUser(ctx, userId); err != nil {
		return nil, err
	}
	return l.sets.ListSavedPostIds(ctx, userId)
}

// SavedPosts resolves the user's bookmarks to posts, silently dropping
// references to deleted posts.
func (l *Ledger) SavedPosts(ctx context.Context, userId string) ([]*model.Post, error) {
	ids, err := l.SavedPostIds(ctx, userId)
	if err != nil {
		return nil, err
	}
	return l.posts.ListPostsByIds(ctx, ids)
}

func (l *Ledger) savedContains(ctx context.Context, userId, postId string) (bool, error) {
	ids, err := l.sets.ListSavedPostIds(ctx, userId)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == postId {
			return true, nil
		}
	}
	return false, nil
}

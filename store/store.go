package store

import (
	"context"

	"gorm.io/datatypes"

	"github.com/devplatform/social-backend/model"
)

// EntityStore is the sole writer of all durable state. Business
// components depend on the narrow slice they need; both the Postgres and
// the in-memory implementation satisfy the whole interface.
//
// Every set-valued relation (likes, saves, follows) is mutated with the
// storage layer's atomic set-add/set-remove primitives, never with
// read-modify-write round trips.
type EntityStore interface {
	UserStore
	PostStore
	CommentStore
	ImageStore
	EngagementStore
	GraphStore
}

// UserProfileUpdate carries the profile fields a user may edit. Nil
// pointers leave the stored value untouched.
type UserProfileUpdate struct {
	Username       *string
	ProfilePicture *string
	IsPrivate      *bool
	Bio            *string
	Links          datatypes.JSON
	Skills         datatypes.JSON
}

type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	// UpdateUserProfile applies the non-nil fields and returns the user
	// as stored before the update, so callers can detect identity changes.
	UpdateUserProfile(ctx context.Context, id string, update UserProfileUpdate) (previous *model.User, err error)
}

type PostStore interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, id string) (*model.Post, error)
	DeletePost(ctx context.Context, id string) error
	// ListPostsByAuthors returns posts by any of the given authors,
	// newest first (created_at desc, id desc).
	ListPostsByAuthors(ctx context.Context, authorIds []string) ([]*model.Post, error)
	// ListPostsExcludingAuthors returns posts by everyone else, same order.
	ListPostsExcludingAuthors(ctx context.Context, authorIds []string) ([]*model.Post, error)
	// ListPostsByIds fetches the given posts, silently skipping ids that
	// no longer resolve. Order follows created_at desc, id desc.
	ListPostsByIds(ctx context.Context, ids []string) ([]*model.Post, error)
}

type CommentStore interface {
	AddComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, postId, commentId string) (*model.Comment, error)
	// GetCommentAny also resolves soft-deleted comments, reporting
	// whether the comment is a tombstone.
	GetCommentAny(ctx context.Context, postId, commentId string) (comment *model.Comment, deleted bool, err error)
	DeleteComment(ctx context.Context, postId, commentId string) error
	// ListComments returns the post's live comments in append order.
	ListComments(ctx context.Context, postId string) ([]*model.Comment, error)
	// UpdateCommentAuthorSnapshot rewrites the denormalized identity
	// fields of every live comment authored by userId and returns how
	// many rows changed.
	UpdateCommentAuthorSnapshot(ctx context.Context, userId, username, profilePicture string) (int64, error)
}

type ImageStore interface {
	GetImage(ctx context.Context, contentHash string) (*model.Image, error)
	// InsertImage fails with a Conflict kind when a record with the same
	// content hash already exists. Callers resolve the race by adopting
	// the existing record.
	InsertImage(ctx context.Context, image *model.Image) error
	DeleteImage(ctx context.Context, contentHash string) error
	// ImageReferenced reports whether any post still references the hash.
	ImageReferenced(ctx context.Context, contentHash string) (bool, error)
}

type EngagementStore interface {
	AddLike(ctx context.Context, postId, userId string) error
	RemoveLike(ctx context.Context, postId, userId string) error
	ListLikes(ctx context.Context, postId string) ([]string, error)
	// ToggleSave flips (userId, postId) membership in one atomic step and
	// reports the resulting membership.
	ToggleSave(ctx context.Context, userId, postId string) (saved bool, err error)
	ListSavedPostIds(ctx context.Context, userId string) ([]string, error)
}

type GraphStore interface {
	// AddFollow establishes the edge follower->followee; both directions
	// become visible together or not at all.
	AddFollow(ctx context.Context, followerId, followeeId string) error
	RemoveFollow(ctx context.Context, followerId, followeeId string) error
	IsFollowing(ctx context.Context, followerId, followeeId string) (bool, error)
	ListFollowing(ctx context.Context, userId string) ([]string, error)
	ListFollowers(ctx context.Context, userId string) ([]string, error)
}

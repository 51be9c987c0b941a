package model

import (
	"time"

	"gorm.io/gorm"
)

/*

Post is a data model for a user-authored post

Id: primary key, use to identify a post
CreatedAt: immutable creation time, the feed sort key
DeletedAt: time when entity is deleted

UserId: author of this post, "belongs-to" relation
Content: post body in plain text
Images: ordered references to deduplicated Image records, "has-many"
	relation ordered by Position. A post never owns image bytes.

Likes and comments are stored in their own tables (relation.go,
comment.go); the computed counters below are filled at query time.

*/

type Post struct {
	Id        string    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"<-:create;index"`
	DeletedAt gorm.DeletedAt

	UserId  string      `gorm:"index;not null"`
	Content string      `gorm:"not null"`
	Images  []PostImage `gorm:"foreignKey:PostId;constraint:OnDelete:CASCADE;"`

	// Computed at query time, never persisted.
	LikeCount    int `gorm:"-" json:"like_count"`
	CommentCount int `gorm:"-" json:"comment_count"`
}

/*

PostImage is an ordered reference from a post to a deduplicated image

PostId / Position: composite primary key, Position is the 0-based index
	of the image within the post
ContentHash: content-derived key of the Image record being referenced
Url: external URL of the stored blob, denormalized from Image for
	read-path convenience; the Image record stays the source of truth

*/

type PostImage struct {
	PostId      string `gorm:"primaryKey"`
	Position    int    `gorm:"primaryKey"`
	ContentHash string `gorm:"index;not null"`
	Url         string
}

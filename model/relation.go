package model

import (
	"time"
)

/*

PostLike is a "many-to-many" relation of user likes a post

PostId: post id
UserId: user id
CreatedAt: time when relation is created

True set semantics: the composite primary key makes duplicate likes a
storage-level no-op, there is no duplicate filtering in application code.

*/

type PostLike struct {
	PostId    string `gorm:"primaryKey"`
	UserId    string `gorm:"primaryKey"`
	CreatedAt time.Time
}

/*

SavedPost is a "many-to-many" relation of user bookmarks a post

UserId: user id
PostId: post id
CreatedAt: time when relation is created

A SavedPost row may outlive its post; readers filter dangling references
instead of treating them as corruption.

*/

type SavedPost struct {
	UserId    string `gorm:"primaryKey"`
	PostId    string `gorm:"primaryKey"`
	CreatedAt time.Time
}

/*

UserFollow is the directed follow edge of the social graph

FollowerId: the user who follows
FolloweeId: the user being followed
CreatedAt: time when relation is created

One row represents both directions of the edge: "a follows b" and "b is
followed by a" are reads of the same row, so the two views can never
disagree.

*/

type UserFollow struct {
	FollowerId string `gorm:"primaryKey"`
	FolloweeId string `gorm:"primaryKey"`
	CreatedAt  time.Time
}

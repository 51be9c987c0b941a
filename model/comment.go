package model

import (
	"time"

	"gorm.io/gorm"
)

/*

Comment is a data model for a comment on a post

Id: primary key, unique within the whole comments table (and therefore
	within its post)
CreatedAt: insertion time, comments are rendered in append order
DeletedAt: soft-delete marker. Deleted comments are kept as tombstones so
	that a repeated delete by the same author can be told apart from a
	delete attempt against somebody else's removed comment.

PostId: post this comment belongs to
UserId: author of the comment, back-reference used for snapshot fan-out

Username / ProfilePicture: denormalized snapshot of the author's identity
	taken at insertion time. Feed reads render these directly without a
	join against User; a profile edit rewrites them through the
	propagator, so they may lag the author's profile for at most one
	propagation cycle.

*/

type Comment struct {
	Id        string    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"<-:create;index"`
	DeletedAt gorm.DeletedAt

	PostId string `gorm:"index;not null"`
	UserId string `gorm:"index;not null"`
	Text   string `gorm:"not null"`

	Username       string
	ProfilePicture string
}

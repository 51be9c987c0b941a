package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/*

User is a data model for a platform user

Id: primary key, use to identify a user
CreatedAt: time when entity is created
DeletedAt: time when entity is deleted

Username: display name, can be changed, doesn't need to be unique
Email: login identity, unique system-wide, duplicate signups are rejected
	by the storage layer
PasswordHash: opaque credential digest written by the excluded auth glue,
	never interpreted here
ProfilePicture: URL of the user's current avatar
IsPrivate: when true, only followers (and the user) can view this user's posts
Bio / Links / Skills: profile fields owned by this entity

Follower/following edges, saved posts and likes live in their own
relation tables, see relation.go.

*/

type User struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt

	Username       string `gorm:"not null"`
	Email          string `gorm:"uniqueIndex;not null"`
	PasswordHash   string `json:"-"`
	ProfilePicture string
	IsPrivate      bool
	Bio            string
	Links          datatypes.JSON
	Skills         datatypes.JSON
}

func (u User) GetID() string        { return u.Id }
func (u User) GetName() string      { return u.Username }
func (u User) GetAvatarURL() string { return u.ProfilePicture }

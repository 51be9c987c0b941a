package model

import (
	"time"
)

/*

Image is a data model for a deduplicated media record

ContentHash: primary key, hex SHA-256 digest of the raw bytes. At most
	one Image record exists per distinct content system-wide; concurrent
	inserts of the same hash are resolved by the storage layer's
	uniqueness constraint.
CreatedAt: time when the record is committed, which happens only after
	the blob upload was confirmed
Url: public URL at the external blob store
ExternalId: blob-store handle used for physical deletion
MimeType: content type reported at upload time

*/

type Image struct {
	ContentHash string    `gorm:"primaryKey"`
	CreatedAt   time.Time `gorm:"<-:create"`

	Url        string `gorm:"not null"`
	ExternalId string `gorm:"not null"`
	MimeType   string
}

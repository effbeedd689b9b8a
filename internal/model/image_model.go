package model

import (
	"time"
)

type Image struct {
	Id        string    `gorm:"type:varchar(64);primaryKey"`
	NoteId    string    `gorm:"type:varchar(64);not null;index"`
	BlobKey   string    `gorm:"type:varchar(160);not null;uniqueIndex"`
	Alt       string    `gorm:"type:text;not null;default:''"`
	Width     int       `gorm:"not null;default:0"`
	Height    int       `gorm:"not null;default:0"`
	Data      []byte    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
}

func (Image) TableName() string {
	return "images"
}

// ImageMetadataColumns lists every column except the blob itself.
var ImageMetadataColumns = []string{"id", "note_id", "blob_key", "alt", "width", "height", "created_at"}

package specification

import (
	"simple-notes-be/internal/model"

	"gorm.io/gorm"
)

// PinnedFirst orders notes the way every listing returns them:
// pinned notes first, then most recently updated.
type PinnedFirst struct{}

func (s PinnedFirst) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("is_pinned DESC").Order("updated_at DESC").Order("id ASC")
}

// WithImageMetadata preloads image references without their blobs.
type WithImageMetadata struct{}

func (s WithImageMetadata) Apply(db *gorm.DB) *gorm.DB {
	return db.Preload("Images", func(tx *gorm.DB) *gorm.DB {
		return tx.Select(model.ImageMetadataColumns).Order("created_at ASC").Order("id ASC")
	})
}

type ByNoteID struct {
	NoteID string
}

func (s ByNoteID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("note_id = ?", s.NoteID)
}

type ByBlobKey struct {
	BlobKey string
}

func (s ByBlobKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("blob_key = ?", s.BlobKey)
}

// MetadataOnly skips the blob column of images.
type MetadataOnly struct{}

func (s MetadataOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Select(model.ImageMetadataColumns)
}

package entity

import (
	"time"
)

const DefaultNoteTitle = "Untitled Note"

type Note struct {
	Id        string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
	IsPinned  bool
	Images    []ImageReference
}

// ImageReference is the metadata a note carries about an attached image.
// The bytes live in the backend under BlobKey.
type ImageReference struct {
	Id      string
	BlobKey string
	Alt     string
	Width   int
	Height  int
}

type Image struct {
	ImageReference
	NoteId    string
	Data      []byte
	CreatedAt time.Time
}

type StorageStats struct {
	NoteCount      int64
	ImageCount     int64
	TotalSizeBytes int64
}

// BlobKeyFor derives the storage key of an image owned by a note.
func BlobKeyFor(noteId, imageId string) string {
	return noteId + "_" + imageId
}

// Now returns the current time at millisecond precision, which is what
// the wire format carries.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// Touch returns a modification time that never precedes prev.
func Touch(prev time.Time) time.Time {
	now := Now()
	if now.Before(prev) {
		return prev
	}
	return now
}

// Clone returns a deep copy so callers can mutate it freely.
func (n *Note) Clone() *Note {
	if n == nil {
		return nil
	}
	c := *n
	if n.Images != nil {
		c.Images = make([]ImageReference, len(n.Images))
		copy(c.Images, n.Images)
	}
	return &c
}

func (n *Note) HasImage(blobKey string) bool {
	for _, img := range n.Images {
		if img.BlobKey == blobKey {
			return true
		}
	}
	return false
}

func (n *Note) RemoveImage(blobKey string) bool {
	for i, img := range n.Images {
		if img.BlobKey == blobKey {
			n.Images = append(n.Images[:i], n.Images[i+1:]...)
			return true
		}
	}
	return false
}

package memory

import (
	"simple-notes-be/internal/entity"
)

func toDocument(n *entity.Note) noteDocument {
	images := make([]imageDocument, len(n.Images))
	for i, img := range n.Images {
		images[i] = imageDocument{
			Id:      img.Id,
			BlobKey: img.BlobKey,
			Alt:     img.Alt,
			Width:   img.Width,
			Height:  img.Height,
		}
	}
	return noteDocument{
		Id:        n.Id,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		IsPinned:  n.IsPinned,
		Images:    images,
	}
}

func toEntity(d *noteDocument) *entity.Note {
	images := make([]entity.ImageReference, len(d.Images))
	for i, img := range d.Images {
		images[i] = entity.ImageReference{
			Id:      img.Id,
			BlobKey: img.BlobKey,
			Alt:     img.Alt,
			Width:   img.Width,
			Height:  img.Height,
		}
	}
	return &entity.Note{
		Id:        d.Id,
		Title:     d.Title,
		Content:   d.Content,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
		IsPinned:  d.IsPinned,
		Images:    images,
	}
}

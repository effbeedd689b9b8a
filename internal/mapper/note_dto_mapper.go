package mapper

import (
	"simple-notes-be/internal/dto"
	"simple-notes-be/internal/entity"
)

func NoteToDTO(n *entity.Note) dto.Note {
	images := make([]dto.ImageReference, len(n.Images))
	for i, img := range n.Images {
		images[i] = ImageReferenceToDTO(img)
	}
	return dto.Note{
		Id:        n.Id,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		IsPinned:  n.IsPinned,
		Images:    images,
	}
}

func NotesToDTO(notes []*entity.Note) []dto.Note {
	out := make([]dto.Note, len(notes))
	for i, n := range notes {
		out[i] = NoteToDTO(n)
	}
	return out
}

func NoteFromDTO(n dto.Note) *entity.Note {
	images := make([]entity.ImageReference, len(n.Images))
	for i, img := range n.Images {
		images[i] = ImageReferenceFromDTO(img)
	}
	return &entity.Note{
		Id:        n.Id,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		IsPinned:  n.IsPinned,
		Images:    images,
	}
}

func ImageReferenceToDTO(r entity.ImageReference) dto.ImageReference {
	return dto.ImageReference{
		Id:      r.Id,
		BlobKey: r.BlobKey,
		Alt:     r.Alt,
		Width:   r.Width,
		Height:  r.Height,
	}
}

func ImageReferenceFromDTO(r dto.ImageReference) entity.ImageReference {
	return entity.ImageReference{
		Id:      r.Id,
		BlobKey: r.BlobKey,
		Alt:     r.Alt,
		Width:   r.Width,
		Height:  r.Height,
	}
}

func StatsToDTO(s *entity.StorageStats) dto.StorageStats {
	return dto.StorageStats{
		NoteCount:  s.NoteCount,
		ImageCount: s.ImageCount,
		TotalSize:  s.TotalSizeBytes,
	}
}

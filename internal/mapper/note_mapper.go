package mapper

import (
	"simple-notes-be/internal/entity"
	"simple-notes-be/internal/model"
)

type NoteMapper struct{}

func NewNoteMapper() *NoteMapper {
	return &NoteMapper{}
}

func (m *NoteMapper) ToEntity(n *model.Note) *entity.Note {
	if n == nil {
		return nil
	}

	images := make([]entity.ImageReference, 0, len(n.Images))
	for i := range n.Images {
		images = append(images, m.ToImageReference(&n.Images[i]))
	}

	return &entity.Note{
		Id:        n.Id,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt.UTC(),
		UpdatedAt: n.UpdatedAt.UTC(),
		IsPinned:  n.IsPinned,
		Images:    images,
	}
}

// ToModel maps the note columns only. Image rows are never written
// through a note.
func (m *NoteMapper) ToModel(n *entity.Note) *model.Note {
	if n == nil {
		return nil
	}

	return &model.Note{
		Id:        n.Id,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		IsPinned:  n.IsPinned,
	}
}

func (m *NoteMapper) ToEntities(notes []*model.Note) []*entity.Note {
	entities := make([]*entity.Note, len(notes))
	for i, n := range notes {
		entities[i] = m.ToEntity(n)
	}
	return entities
}

func (m *NoteMapper) ToImageReference(img *model.Image) entity.ImageReference {
	return entity.ImageReference{
		Id:      img.Id,
		BlobKey: img.BlobKey,
		Alt:     img.Alt,
		Width:   img.Width,
		Height:  img.Height,
	}
}

func (m *NoteMapper) ToImageModel(img *entity.Image) *model.Image {
	if img == nil {
		return nil
	}

	return &model.Image{
		Id:        img.Id,
		NoteId:    img.NoteId,
		BlobKey:   img.BlobKey,
		Alt:       img.Alt,
		Width:     img.Width,
		Height:    img.Height,
		Data:      img.Data,
		CreatedAt: img.CreatedAt,
	}
}

func (m *NoteMapper) ToImageEntity(img *model.Image) *entity.Image {
	if img == nil {
		return nil
	}

	return &entity.Image{
		ImageReference: m.ToImageReference(img),
		NoteId:         img.NoteId,
		Data:           img.Data,
		CreatedAt:      img.CreatedAt.UTC(),
	}
}

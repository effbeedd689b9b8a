// Package backendtest holds the behavior every StorageBackend must share.
package backendtest

import (
	"context"
	"testing"
	"time"

	"simple-notes-be/internal/apperror"
	"simple-notes-be/internal/entity"
	"simple-notes-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type BackendSuite struct {
	suite.Suite

	NewBackend func(t *testing.T) contract.StorageBackend
	// DeleteMissingFails is set for backends that report deleting an
	// absent note as NotFoundError instead of succeeding silently.
	DeleteMissingFails bool

	backend contract.StorageBackend
	ctx     context.Context
}

func (s *BackendSuite) SetupTest() {
	s.ctx = context.Background()
	s.backend = s.NewBackend(s.T())
}

func (s *BackendSuite) TearDownTest() {
	if s.backend != nil {
		_ = s.backend.Close()
	}
}

var base = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func newNote(id, title, content string, offset time.Duration) *entity.Note {
	return &entity.Note{
		Id:        id,
		Title:     title,
		Content:   content,
		CreatedAt: base,
		UpdatedAt: base.Add(offset),
	}
}

func (s *BackendSuite) mustSave(n *entity.Note) {
	s.Require().NoError(s.backend.SaveNote(s.ctx, n))
}

func (s *BackendSuite) ids(notes []*entity.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Id
	}
	return out
}

func (s *BackendSuite) TestSaveAndFetchRoundTrip() {
	n := newNote("n1", "Groceries", "<p>milk</p>", time.Minute)
	n.IsPinned = true
	s.mustSave(n)

	got, err := s.backend.GetNoteById(s.ctx, "n1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal("Groceries", got.Title)
	s.Equal("<p>milk</p>", got.Content)
	s.True(got.IsPinned)
	s.True(got.CreatedAt.Equal(n.CreatedAt), "createdAt %v != %v", got.CreatedAt, n.CreatedAt)
	s.True(got.UpdatedAt.Equal(n.UpdatedAt), "updatedAt %v != %v", got.UpdatedAt, n.UpdatedAt)
	s.Empty(got.Images)
}

func (s *BackendSuite) TestGetMissingNoteReturnsNil() {
	got, err := s.backend.GetNoteById(s.ctx, "nope")
	s.NoError(err)
	s.Nil(got)

	_, err = s.backend.GetNoteById(s.ctx, "")
	s.ErrorIs(err, apperror.ErrValidation)
}

func (s *BackendSuite) TestSaveRequiresIdAndTitle() {
	for _, blank := range []string{"", "   ", " \t", "\n"} {
		s.ErrorIs(s.backend.SaveNote(s.ctx, newNote(blank, "t", "", 0)), apperror.ErrValidation, "id %q", blank)
		s.ErrorIs(s.backend.SaveNote(s.ctx, newNote("n1", blank, "", 0)), apperror.ErrValidation, "title %q", blank)
	}
	s.ErrorIs(s.backend.SaveNote(s.ctx, nil), apperror.ErrValidation)

	all, err := s.backend.GetAllNotes(s.ctx)
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *BackendSuite) TestUpdateRejectsBlankTitle() {
	s.mustSave(newNote("n1", "Kept", "", 0))

	_, err := s.backend.UpdateNote(s.ctx, "n1", func(n *entity.Note) error {
		n.Title = " \t "
		return nil
	})
	s.ErrorIs(err, apperror.ErrValidation)

	got, err := s.backend.GetNoteById(s.ctx, "n1")
	s.Require().NoError(err)
	s.Equal("Kept", got.Title)
}

func (s *BackendSuite) TestSaveKeepsCreatedAtOfExistingNote() {
	s.mustSave(newNote("n1", "First", "", 0))

	again := newNote("n1", "Second", "body", time.Hour)
	again.CreatedAt = base.Add(30 * time.Minute)
	s.mustSave(again)

	got, err := s.backend.GetNoteById(s.ctx, "n1")
	s.Require().NoError(err)
	s.Equal("Second", got.Title)
	s.True(got.CreatedAt.Equal(base))
	s.True(got.UpdatedAt.Equal(base.Add(time.Hour)))

	all, err := s.backend.GetAllNotes(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *BackendSuite) TestUpdatedAtNeverPrecedesCreatedAt() {
	n := newNote("n1", "Clock skew", "", -time.Hour)
	s.mustSave(n)

	got, err := s.backend.GetNoteById(s.ctx, "n1")
	s.Require().NoError(err)
	s.False(got.UpdatedAt.Before(got.CreatedAt))
}

func (s *BackendSuite) TestListingOrder() {
	s.mustSave(newNote("old", "Old", "", time.Minute))
	s.mustSave(newNote("new", "New", "", 3*time.Minute))
	pinned := newNote("pinned", "Pinned", "", 0)
	pinned.IsPinned = true
	s.mustSave(pinned)

	all, err := s.backend.GetAllNotes(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"pinned", "new", "old"}, s.ids(all))

	for _, blank := range []string{"", "  ", "\t \n"} {
		searched, err := s.backend.SearchNotes(s.ctx, blank)
		s.Require().NoError(err)
		s.Equal(s.ids(all), s.ids(searched), "query %q", blank)
	}
}

func (s *BackendSuite) TestSearchMatchesTitleOrContentCaseInsensitive() {
	s.mustSave(newNote("a", "Alpha", "", time.Minute))
	s.mustSave(newNote("b", "Beta", "contains ALPHA inside", 2*time.Minute))
	s.mustSave(newNote("c", "Gamma", "nothing", 3*time.Minute))

	got, err := s.backend.SearchNotes(s.ctx, "alpha")
	s.Require().NoError(err)
	s.ElementsMatch([]string{"a", "b"}, s.ids(got))

	got, err = s.backend.SearchNotes(s.ctx, "zzz")
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *BackendSuite) TestSearchFoldsNonASCIICase() {
	s.mustSave(newNote("fr", "École notes", "", time.Minute))
	s.mustSave(newNote("de", "Einkauf", "ÄPFEL und Birnen", 2*time.Minute))
	s.mustSave(newNote("en", "School", "", 3*time.Minute))

	got, err := s.backend.SearchNotes(s.ctx, "école")
	s.Require().NoError(err)
	s.Equal([]string{"fr"}, s.ids(got))

	got, err = s.backend.SearchNotes(s.ctx, "ÉCOLE")
	s.Require().NoError(err)
	s.Equal([]string{"fr"}, s.ids(got))

	got, err = s.backend.SearchNotes(s.ctx, "äpfel")
	s.Require().NoError(err)
	s.Equal([]string{"de"}, s.ids(got))
}

func (s *BackendSuite) TestSearchTreatsWildcardsLiterally() {
	s.mustSave(newNote("pct", "100% done", "", time.Minute))
	s.mustSave(newNote("plain", "1000 done", "", 2*time.Minute))

	got, err := s.backend.SearchNotes(s.ctx, "0%")
	s.Require().NoError(err)
	s.Equal([]string{"pct"}, s.ids(got))

	got, err = s.backend.SearchNotes(s.ctx, "_")
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *BackendSuite) TestUpdateNoteAppliesMutation() {
	s.mustSave(newNote("n1", "Draft", "", 0))

	updated, err := s.backend.UpdateNote(s.ctx, "n1", func(n *entity.Note) error {
		n.Title = "Final"
		n.IsPinned = true
		n.CreatedAt = base.Add(48 * time.Hour)
		n.UpdatedAt = base.Add(time.Hour)
		return nil
	})
	s.Require().NoError(err)
	s.Equal("Final", updated.Title)
	s.True(updated.CreatedAt.Equal(base))

	got, err := s.backend.GetNoteById(s.ctx, "n1")
	s.Require().NoError(err)
	s.Equal("Final", got.Title)
	s.True(got.IsPinned)
	s.True(got.CreatedAt.Equal(base))
	s.True(got.UpdatedAt.Equal(base.Add(time.Hour)))
}

func (s *BackendSuite) TestUpdateNoteNeverInserts() {
	_, err := s.backend.UpdateNote(s.ctx, "ghost", func(n *entity.Note) error {
		n.Title = "Resurrected"
		return nil
	})
	s.ErrorIs(err, apperror.ErrNotFound)

	got, err := s.backend.GetNoteById(s.ctx, "ghost")
	s.NoError(err)
	s.Nil(got)
}

func (s *BackendSuite) TestUpdateNoteRejectsEmptyTitle() {
	s.mustSave(newNote("n1", "Keep", "", 0))

	_, err := s.backend.UpdateNote(s.ctx, "n1", func(n *entity.Note) error {
		n.Title = ""
		return nil
	})
	s.ErrorIs(err, apperror.ErrValidation)

	got, _ := s.backend.GetNoteById(s.ctx, "n1")
	s.Equal("Keep", got.Title)
}

func (s *BackendSuite) TestDeleteNoteRemovesImages() {
	s.mustSave(newNote("n1", "With image", "", 0))
	s.Require().NoError(s.backend.SaveImage(s.ctx, "n1", entity.ImageReference{Id: "i1", Alt: "cat"}, []byte{1, 2, 3}))

	blob, err := s.backend.GetImage(s.ctx, "n1_i1")
	s.Require().NoError(err)
	s.Equal([]byte{1, 2, 3}, blob)

	s.Require().NoError(s.backend.DeleteNote(s.ctx, "n1"))

	got, err := s.backend.GetNoteById(s.ctx, "n1")
	s.NoError(err)
	s.Nil(got)

	blob, err = s.backend.GetImage(s.ctx, "n1_i1")
	s.NoError(err)
	s.Nil(blob)

	stats, err := s.backend.GetStorageStats(s.ctx)
	s.Require().NoError(err)
	s.Zero(stats.ImageCount)
}

func (s *BackendSuite) TestDeleteMissingNote() {
	err := s.backend.DeleteNote(s.ctx, "missing")
	if s.DeleteMissingFails {
		s.ErrorIs(err, apperror.ErrNotFound)
	} else {
		s.NoError(err)
	}
	s.ErrorIs(s.backend.DeleteNote(s.ctx, ""), apperror.ErrValidation)
}

func (s *BackendSuite) TestSaveImageValidation() {
	s.mustSave(newNote("n1", "Owner", "", 0))

	err := s.backend.SaveImage(s.ctx, "unknown", entity.ImageReference{Id: "i1"}, []byte{1})
	s.ErrorIs(err, apperror.ErrNotFound)

	s.ErrorIs(s.backend.SaveImage(s.ctx, "", entity.ImageReference{Id: "i1"}, []byte{1}), apperror.ErrValidation)
	s.ErrorIs(s.backend.SaveImage(s.ctx, "n1", entity.ImageReference{}, []byte{1}), apperror.ErrValidation)
	s.ErrorIs(s.backend.SaveImage(s.ctx, "n1", entity.ImageReference{Id: "i1"}, nil), apperror.ErrValidation)

	s.Require().NoError(s.backend.SaveImage(s.ctx, "n1", entity.ImageReference{Id: "i1"}, []byte{1}))
	err = s.backend.SaveImage(s.ctx, "n1", entity.ImageReference{Id: "i1"}, []byte{2})
	s.ErrorIs(err, apperror.ErrValidation)

	blob, err := s.backend.GetImage(s.ctx, "n1_i1")
	s.Require().NoError(err)
	s.Equal([]byte{1}, blob)
}

func (s *BackendSuite) TestImagesAppearOnNote() {
	s.mustSave(newNote("n1", "Gallery", "", 0))
	ref := entity.ImageReference{Id: "i1", BlobKey: "n1_i1", Alt: "sunset", Width: 640, Height: 480}
	s.Require().NoError(s.backend.SaveImage(s.ctx, "n1", ref, []byte("png")))

	got, err := s.backend.GetNoteById(s.ctx, "n1")
	s.Require().NoError(err)
	s.Equal([]entity.ImageReference{ref}, got.Images)

	// Saving the note again without images keeps the stored ones.
	again := newNote("n1", "Gallery renamed", "", time.Minute)
	s.mustSave(again)

	got, err = s.backend.GetNoteById(s.ctx, "n1")
	s.Require().NoError(err)
	s.Equal("Gallery renamed", got.Title)
	s.Equal([]entity.ImageReference{ref}, got.Images)
}

func (s *BackendSuite) TestDeleteImage() {
	s.mustSave(newNote("n1", "Gallery", "", 0))
	s.Require().NoError(s.backend.SaveImage(s.ctx, "n1", entity.ImageReference{Id: "i1"}, []byte("a")))
	s.Require().NoError(s.backend.SaveImage(s.ctx, "n1", entity.ImageReference{Id: "i2"}, []byte("b")))

	s.Require().NoError(s.backend.DeleteImage(s.ctx, "n1_i1"))

	blob, err := s.backend.GetImage(s.ctx, "n1_i1")
	s.NoError(err)
	s.Nil(blob)

	got, err := s.backend.GetNoteById(s.ctx, "n1")
	s.Require().NoError(err)
	s.Require().Len(got.Images, 1)
	s.Equal("n1_i2", got.Images[0].BlobKey)

	s.NoError(s.backend.DeleteImage(s.ctx, "never-existed"))
	s.ErrorIs(s.backend.DeleteImage(s.ctx, ""), apperror.ErrValidation)
	_, err = s.backend.GetImage(s.ctx, "")
	s.ErrorIs(err, apperror.ErrValidation)
}

func (s *BackendSuite) TestStorageStatsAndClear() {
	stats, err := s.backend.GetStorageStats(s.ctx)
	s.Require().NoError(err)
	s.Zero(stats.NoteCount)
	s.Zero(stats.ImageCount)

	s.mustSave(newNote("n1", "One", "", 0))
	s.mustSave(newNote("n2", "Two", "", 0))
	s.Require().NoError(s.backend.SaveImage(s.ctx, "n1", entity.ImageReference{Id: "i1"}, make([]byte, 1024)))

	stats, err = s.backend.GetStorageStats(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(2, stats.NoteCount)
	s.EqualValues(1, stats.ImageCount)
	s.GreaterOrEqual(stats.TotalSizeBytes, int64(1024))

	s.Require().NoError(s.backend.ClearAllData(s.ctx))

	stats, err = s.backend.GetStorageStats(s.ctx)
	s.Require().NoError(err)
	s.Zero(stats.NoteCount)
	s.Zero(stats.ImageCount)

	all, err := s.backend.GetAllNotes(s.ctx)
	s.Require().NoError(err)
	s.Empty(all)
	blob, err := s.backend.GetImage(s.ctx, "n1_i1")
	s.NoError(err)
	s.Nil(blob)
}

func (s *BackendSuite) TestPing() {
	s.NoError(s.backend.Ping(s.ctx))
	s.NotEmpty(s.backend.Name())
}

// UniqueName returns a name safe for per-test databases and namespaces.
func UniqueName(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

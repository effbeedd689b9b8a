package notestore

import (
	"sort"
	"strings"

	"simple-notes-be/internal/entity"
)

// FilterNotes keeps the notes whose title or content contains query,
// ignoring case. A blank query keeps everything.
func FilterNotes(notes []*entity.Note, query string) []*entity.Note {
	if strings.TrimSpace(query) == "" {
		return notes
	}
	term := strings.ToLower(query)
	out := make([]*entity.Note, 0, len(notes))
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), term) || strings.Contains(strings.ToLower(n.Content), term) {
			out = append(out, n)
		}
	}
	return out
}

// SortNotes returns a sorted copy. Pinned notes always come first; within
// each group notes are ordered by the field and direction given. Unknown
// fields sort by title.
func SortNotes(notes []*entity.Note, by SortBy, order SortOrder) []*entity.Note {
	out := make([]*entity.Note, len(notes))
	copy(out, notes)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		c := compareBy(a, b, by)
		if order == SortAsc {
			return c < 0
		}
		return c > 0
	})
	return out
}

func compareBy(a, b *entity.Note, by SortBy) int {
	switch by {
	case SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	}
}

// Filtered applies the snapshot's search query and sort preferences.
func (s Snapshot) Filtered() []*entity.Note {
	return SortNotes(FilterNotes(s.Notes, s.SearchQuery), s.SortBy, s.SortOrder)
}

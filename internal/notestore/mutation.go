package notestore

import (
	"time"

	"simple-notes-be/internal/dto"
	"simple-notes-be/internal/entity"
)

// pendingMutation is an optimistic change that has been shown locally but
// not yet confirmed by the repository. previous is the value it was applied
// on top of; next is the value it produced.
type pendingMutation struct {
	seq      uint64
	id       string
	patch    NotePatch
	stamp    time.Time
	previous *entity.Note
	next     *entity.Note
}

func (p NotePatch) apply(n *entity.Note, stamp time.Time) *entity.Note {
	out := n.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Content != nil {
		out.Content = *p.Content
	}
	if p.IsPinned != nil {
		out.IsPinned = *p.IsPinned
	}
	if stamp.After(out.UpdatedAt) {
		out.UpdatedAt = stamp
	}
	return out
}

func (p NotePatch) request(id string) dto.UpdateNoteRequest {
	return dto.UpdateNoteRequest{
		Id:       id,
		Title:    p.Title,
		Content:  p.Content,
		IsPinned: p.IsPinned,
	}
}

func indexOf(notes []*entity.Note, id string) int {
	for i, n := range notes {
		if n.Id == id {
			return i
		}
	}
	return -1
}

// replaceNote returns a copy of notes with the entry for n.Id swapped for
// n. Notes without that id are returned unchanged.
func replaceNote(notes []*entity.Note, n *entity.Note) []*entity.Note {
	i := indexOf(notes, n.Id)
	if i < 0 {
		return notes
	}
	out := make([]*entity.Note, len(notes))
	copy(out, notes)
	out[i] = n
	return out
}

func upsertNote(notes []*entity.Note, n *entity.Note) []*entity.Note {
	if indexOf(notes, n.Id) >= 0 {
		return replaceNote(notes, n)
	}
	out := make([]*entity.Note, len(notes), len(notes)+1)
	copy(out, notes)
	return append(out, n)
}

func removeNote(notes []*entity.Note, id string) []*entity.Note {
	i := indexOf(notes, id)
	if i < 0 {
		return notes
	}
	out := make([]*entity.Note, 0, len(notes)-1)
	out = append(out, notes[:i]...)
	return append(out, notes[i+1:]...)
}

// restack rebuilds the entry for id as base with every pending mutation for
// that id applied in order, refreshing each mutation's previous/next.
func restack(notes []*entity.Note, pending []*pendingMutation, id string, base *entity.Note) []*entity.Note {
	if indexOf(notes, id) < 0 {
		return notes
	}
	cur := base
	for _, m := range pending {
		if m.id != id {
			continue
		}
		m.previous = cur
		m.next = m.patch.apply(cur, m.stamp)
		cur = m.next
	}
	return replaceNote(notes, cur)
}

// revert drops m from the entry for its id. rest is the pending list
// without m; mutations queued after m stay applied.
func revert(notes []*entity.Note, m *pendingMutation, rest []*pendingMutation) []*entity.Note {
	return restack(notes, rest, m.id, m.previous)
}

// settle replaces the optimistic value with the confirmed one and keeps
// later mutations on top of it.
func settle(notes []*entity.Note, m *pendingMutation, confirmed *entity.Note, rest []*pendingMutation) []*entity.Note {
	if confirmed == nil {
		confirmed = m.next
	}
	return restack(notes, rest, m.id, confirmed)
}

func withoutMutation(pending []*pendingMutation, m *pendingMutation) []*pendingMutation {
	out := make([]*pendingMutation, 0, len(pending))
	for _, p := range pending {
		if p != m {
			out = append(out, p)
		}
	}
	return out
}

// confirmation records the repository's view of a note after a mutation
// settled. note is nil for deletions.
type confirmation struct {
	epoch uint64
	id    string
	note  *entity.Note
}

// overlay applies confirmations that settled after a load started, since
// the load may have been answered before they reached the repository.
func overlay(notes []*entity.Note, confirmed []confirmation, since uint64) []*entity.Note {
	for _, c := range confirmed {
		if c.epoch <= since {
			continue
		}
		if c.note == nil {
			notes = removeNote(notes, c.id)
		} else {
			notes = upsertNote(notes, c.note)
		}
	}
	return notes
}

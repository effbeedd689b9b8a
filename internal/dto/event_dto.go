package dto

// NoteEventMessage travels on the in-process note event topic.
type NoteEventMessage struct {
	Type    string `json:"type"`
	NoteId  string `json:"note_id,omitempty"`
	BlobKey string `json:"blob_key,omitempty"`
}

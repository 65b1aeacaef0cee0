package models

import "time"

// Note is a private text note. Owner references the owning user's username;
// only a session authenticated as Owner may read or modify the note.
type Note struct {
	ID        int64
	Title     string
	Content   string
	Owner     string
	CreatedAt time.Time
}

package models

import "time"

// Session is a server-tracked browser session. Username is empty while the
// session is anonymous. Flash holds a one-shot notice that is cleared when
// the next page renders it.
type Session struct {
	ID        string
	Username  string
	Flash     string
	CreatedAt time.Time
}

// Authenticated reports whether the session carries a logged-in identity.
func (s *Session) Authenticated() bool {
	return s.Username != ""
}

package sessions

import "time"

// Session binds an opaque bearer token to a user. Tokens do not expire and
// are never rotated; they live until an explicit logout or account deletion.
// That is a known weakness of the historical contract, preserved on purpose:
// clients (ShareX configs in particular) embed the token once and reuse it
// indefinitely.
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
}

package users

import "time"

// User is a registered account. UsernameLower and EmailLower are the
// normalized uniqueness keys; they are maintained by the service, never
// set by callers directly.
//
// Quota is the maximum aggregate byte size of the account's stored images;
// -1 means unlimited. The value is compared against raw byte counts.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	UsernameLower string    `json:"-"`
	Email         string    `json:"email"`
	EmailLower    string    `json:"-"`
	PasswordHash  string    `json:"-"`
	Admin         bool      `json:"admin"`
	Quota         int64     `json:"quota"`
	CreatedAt     time.Time `json:"created_at"`
}

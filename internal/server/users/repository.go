package users

import "context"

// Update describes a field-level account update. Nil fields are left
// untouched; the record is never overwritten wholesale.
type Update struct {
	Username     *string
	Email        *string
	PasswordHash *string
	Quota        *int64
}

// Repository persists user records. Lookups by login key expect the
// normalized (lowercase) form. Create returns common.ErrDuplicate when a
// normalized username or email is already taken; the unique indexes on the
// normalized columns are the real guarantee, any pre-check by callers is an
// early exit only.
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByLogin(ctx context.Context, login string) (*User, error)
	GetByUsername(ctx context.Context, usernameLower string) (*User, error)
	GetByEmail(ctx context.Context, emailLower string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, upd Update) error
	Delete(ctx context.Context, id string) error
}

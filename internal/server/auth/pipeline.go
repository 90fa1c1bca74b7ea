// Package auth implements the request authorization pipeline shared by every
// protected endpoint: token presence, session validity, user existence, then
// the optional role/ownership and quota checks.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/image-cloud/api/internal/common"
	"github.com/image-cloud/api/internal/server/sessions"
	"github.com/image-cloud/api/internal/server/users"
)

// MaxUploadSize is the absolute per-upload ceiling in bytes. It applies
// before and independently of any per-user quota, including quota -1.
const MaxUploadSize = 50_000_000

// UnlimitedQuota marks an account whose storage is not capped.
const UnlimitedQuota = -1

// Pipeline resolves bearer tokens to users. It holds no state of its own;
// every call is a pure function of the token and the stores.
type Pipeline struct {
	users    users.Repository
	sessions sessions.Repository
}

func NewPipeline(u users.Repository, s sessions.Repository) *Pipeline {
	return &Pipeline{users: u, sessions: s}
}

// Authenticate resolves a bearer token to its user.
//
// The checks run in a fixed order and short-circuit on the first failure,
// because the order decides the HTTP status the caller reports:
//
//	empty token            -> common.ErrNoToken      (401)
//	no matching session    -> common.ErrInvalidToken (403)
//	session user is gone   -> common.ErrInvalidToken (403)
//
// Any other error is a store failure and surfaces as-is.
func (p *Pipeline) Authenticate(ctx context.Context, token string) (*users.User, error) {
	if token == "" {
		return nil, common.ErrNoToken
	}

	session, err := p.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("session lookup error: %w", err)
	}

	user, err := p.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// stale session left behind by an account deletion
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("user lookup error: %w", err)
	}

	return user, nil
}

// RequireAdmin passes only admin accounts.
func RequireAdmin(user *users.User) error {
	if !user.Admin {
		return common.ErrNotAdmin
	}
	return nil
}

// RequireOwnerOrAdmin passes the owner of a resource and any admin.
func RequireOwnerOrAdmin(user *users.User, ownerID string) error {
	if user.ID == ownerID || user.Admin {
		return nil
	}
	return common.ErrNotOwner
}

// QuotaDecision is the outcome of the upload admission check.
type QuotaDecision int

const (
	Allowed QuotaDecision = iota
	QuotaExceeded
	OversizedUpload
)

// CheckQuota decides whether an upload of incomingBytes may proceed for the
// given user with usageBytes already stored.
//
// The hard cap is evaluated first and wins even for unlimited accounts. The
// per-user comparison is byte-for-byte: user quotas have historically been
// described in megabytes while the stored value is compared against byte
// counts; that mismatch is part of the observed contract and is not
// reinterpreted here.
func CheckQuota(user *users.User, usageBytes, incomingBytes int64) QuotaDecision {
	if incomingBytes > MaxUploadSize {
		return OversizedUpload
	}
	if user.Quota != UnlimitedQuota && incomingBytes+usageBytes > user.Quota {
		return QuotaExceeded
	}
	return Allowed
}

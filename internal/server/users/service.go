package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/image-cloud/api/internal/common"
	"github.com/image-cloud/api/internal/logging"
	"github.com/image-cloud/api/internal/server/config"
	"github.com/image-cloud/api/internal/server/hash"
	"github.com/image-cloud/api/internal/server/sessions"
)

const sessionTokenBytes = 16 // 128-bit tokens, rendered as 32 hex chars

// UpdateRequest is a partial account update as submitted by a client.
// Quota is honored only when the caller is an admin.
type UpdateRequest struct {
	Username *string
	Email    *string
	Password *string
	Quota    *int64
}

// Service implements account lifecycle: signup, login/logout, listing,
// field updates, deletion and the empty-store admin bootstrap.
type Service struct {
	repo         Repository
	sessionRepo  sessions.Repository
	logger       logging.Logger
	defaultQuota int64
}

func NewService(repo Repository, sessionRepo sessions.Repository, cfg *config.Config, logger logging.Logger) *Service {
	return &Service{
		repo:         repo,
		sessionRepo:  sessionRepo,
		logger:       logger.With("module", "users"),
		defaultQuota: cfg.DefaultQuota,
	}
}

// Register creates an account. The normalized-duplicate pre-checks give the
// caller a precise error; the unique indexes behind Create close the race
// the pre-checks leave open.
func (s *Service) Register(ctx context.Context, username, email, password string) (*User, error) {

	if _, err := s.repo.GetByUsername(ctx, strings.ToLower(username)); err == nil {
		return nil, common.ErrUsernameTaken
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("username check error: %w", err)
	}

	if _, err := s.repo.GetByEmail(ctx, strings.ToLower(email)); err == nil {
		return nil, common.ErrEmailTaken
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("email check error: %w", err)
	}

	return s.create(ctx, username, email, password, false, s.defaultQuota)
}

func (s *Service) create(ctx context.Context, username, email, password string, admin bool, quota int64) (*User, error) {
	digest, err := hash.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("password hash error: %w", err)
	}

	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: digest,
		Admin:        admin,
		Quota:        quota,
	}

	user, err = s.repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user created", "user_id", user.ID, "admin", admin)

	return user, nil
}

// Login resolves username-or-email plus password to a fresh session token.
// An unknown login yields common.ErrNotFound, a wrong password
// common.ErrBadCredentials; the two produce different client messages.
func (s *Service) Login(ctx context.Context, login, password string) (string, *User, error) {

	user, err := s.repo.GetByLogin(ctx, strings.ToLower(login))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", nil, common.ErrNotFound
		}
		return "", nil, fmt.Errorf("login lookup error: %w", err)
	}

	if !hash.Verify(user.PasswordHash, password) {
		return "", nil, common.ErrBadCredentials
	}

	token, err := common.MakeRandHexString(sessionTokenBytes)
	if err != nil {
		return "", nil, fmt.Errorf("token generation error: %w", err)
	}

	if err := s.sessionRepo.Create(ctx, &sessions.Session{Token: token, UserID: user.ID}); err != nil {
		return "", nil, fmt.Errorf("session create error: %w", err)
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)

	return token, user, nil
}

// Logout deletes the session behind the token. The token is assumed to have
// already passed authentication.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.sessionRepo.Delete(ctx, token); err != nil {
		return fmt.Errorf("session delete error: %w", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

// Update applies a partial account update for user. Username and email
// changes run the same normalized pre-check as signup. The quota field is
// silently dropped unless the account is an admin.
func (s *Service) Update(ctx context.Context, user *User, req UpdateRequest) (*User, error) {

	var upd Update

	if req.Username != nil {
		if _, err := s.repo.GetByUsername(ctx, strings.ToLower(*req.Username)); err == nil {
			return nil, common.ErrUsernameTaken
		} else if !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("username check error: %w", err)
		}
		upd.Username = req.Username
	}

	if req.Email != nil {
		if _, err := s.repo.GetByEmail(ctx, strings.ToLower(*req.Email)); err == nil {
			return nil, common.ErrEmailTaken
		} else if !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("email check error: %w", err)
		}
		upd.Email = req.Email
	}

	if req.Password != nil {
		digest, err := hash.Hash(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("password hash error: %w", err)
		}
		upd.PasswordHash = &digest
	}

	if req.Quota != nil && user.Admin {
		upd.Quota = req.Quota
	}

	if err := s.repo.Update(ctx, user.ID, upd); err != nil {
		return nil, fmt.Errorf("account update error: %w", err)
	}

	updated, err := s.repo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("account reload error: %w", err)
	}

	return updated, nil
}

// Delete removes the account and every session bound to it, so any token the
// account still holds turns invalid immediately.
func (s *Service) Delete(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("account delete error: %w", err)
	}
	if err := s.sessionRepo.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("session cleanup error: %w", err)
	}

	s.logger.Info(ctx, "user deleted", "user_id", userID)

	return nil
}

// DeleteByLogin is the admin removal path: exactly the given username or,
// failing that, the given email selects the target. Neither given is a
// client error.
func (s *Service) DeleteByLogin(ctx context.Context, username, email string) error {

	var (
		user *User
		err  error
	)

	switch {
	case username != "":
		user, err = s.repo.GetByUsername(ctx, strings.ToLower(username))
	case email != "":
		user, err = s.repo.GetByEmail(ctx, strings.ToLower(email))
	default:
		return common.ErrMissingArgument
	}

	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("account lookup error: %w", err)
	}

	return s.Delete(ctx, user.ID)
}

// Bootstrap creates the initial admin account when the store is empty and
// returns it together with the generated one-time password. The password is
// persisted nowhere; the caller surfaces it to the operator exactly once.
// A non-empty store returns (nil, "", nil).
func (s *Service) Bootstrap(ctx context.Context) (*User, string, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("user count error: %w", err)
	}
	if count > 0 {
		return nil, "", nil
	}

	password, err := common.MakeRandHexString(sessionTokenBytes)
	if err != nil {
		return nil, "", fmt.Errorf("password generation error: %w", err)
	}

	user, err := s.create(ctx, "admin", "admin@localhost", password, true, -1)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info(ctx, "admin account bootstrapped", "user_id", user.ID)

	return user, password, nil
}

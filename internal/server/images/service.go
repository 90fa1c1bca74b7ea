package images

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/image-cloud/api/internal/common"
	"github.com/image-cloud/api/internal/logging"
	"github.com/image-cloud/api/internal/server/auth"
	"github.com/image-cloud/api/internal/server/blob"
	"github.com/image-cloud/api/internal/server/users"
)

// allowedExtensions is the upload whitelist; anything else is rejected
// before content is even considered.
var allowedExtensions = []string{".png", ".jpg", ".jpeg", ".gif"}

// Service implements image upload, retrieval and deletion. When blobs is
// nil the content column in Postgres carries the bytes; otherwise the bytes
// go to object storage and only metadata stays in the database.
type Service struct {
	repo   Repository
	blobs  blob.Store
	logger logging.Logger
}

func NewService(repo Repository, blobs blob.Store, logger logging.Logger) *Service {
	return &Service{
		repo:   repo,
		blobs:  blobs,
		logger: logger.With("module", "images"),
	}
}

func validExtension(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range allowedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Upload validates and stores a new image for user.
//
// Order of checks: file presence, extension, content type, then the quota
// pipeline (hard cap first, per-user quota second). A rejected upload leaves
// no record behind. Two concurrent uploads can both pass the quota check
// against the same usage total; the stores give no cross-request guarantee.
func (s *Service) Upload(ctx context.Context, user *users.User, filename, contentType string, data []byte) (*Image, error) {

	if filename == "" || len(data) == 0 {
		return nil, common.ErrNoFile
	}
	if !validExtension(filename) {
		return nil, common.ErrBadExtension
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, common.ErrBadContentType
	}

	usage, err := s.repo.TotalSizeByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("usage aggregation error: %w", err)
	}

	switch auth.CheckQuota(user, usage, int64(len(data))) {
	case auth.OversizedUpload:
		return nil, common.ErrContentTooLarge
	case auth.QuotaExceeded:
		return nil, common.ErrQuotaExceeded
	}

	image := &Image{
		ID:       uuid.NewString(),
		Filename: filename,
		OwnerID:  user.ID,
		Size:     int64(len(data)),
	}

	if s.blobs != nil {
		image.StorageKey = blob.RandomStorageKey()
		if err := s.blobs.Put(ctx, image.StorageKey, data); err != nil {
			return nil, fmt.Errorf("content store error: %w", err)
		}
	} else {
		image.Content = data
	}

	if err := s.repo.Create(ctx, image); err != nil {
		// best effort: do not leave an orphan object behind
		if s.blobs != nil {
			if derr := s.blobs.Delete(ctx, image.StorageKey); derr != nil {
				s.logger.Warn(ctx, "orphan object left in blob store", "key", image.StorageKey, "error", derr)
			}
		}
		return nil, fmt.Errorf("image create error: %w", err)
	}

	s.logger.Info(ctx, "image uploaded", "image_id", image.ID, "owner_id", user.ID, "size", image.Size)

	image.Content = nil
	return image, nil
}

// Get returns image metadata.
func (s *Service) Get(ctx context.Context, id string) (*Image, error) {
	return s.repo.GetByID(ctx, id)
}

// Content returns the raw bytes of an image, wherever they live.
func (s *Service) Content(ctx context.Context, id string) (*Image, []byte, error) {
	image, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var data []byte
	if image.StorageKey != "" {
		if s.blobs == nil {
			// record written in object-storage mode, server running without one
			return nil, nil, fmt.Errorf("content fetch error: no blob store configured for key %q", image.StorageKey)
		}
		data, err = s.blobs.Get(ctx, image.StorageKey)
	} else {
		data, err = s.repo.ContentByID(ctx, id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("content fetch error: %w", err)
	}

	return image, data, nil
}

// Delete removes an image on behalf of user. Missing image reports
// common.ErrNotFound before any ownership consideration; a non-owner,
// non-admin caller gets common.ErrNotOwner and the image stays.
func (s *Service) Delete(ctx context.Context, user *users.User, id string) error {
	image, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("image lookup error: %w", err)
	}

	if err := auth.RequireOwnerOrAdmin(user, image.OwnerID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("image delete error: %w", err)
	}

	if image.StorageKey != "" {
		if s.blobs == nil {
			s.logger.Warn(ctx, "orphan object left in blob store", "key", image.StorageKey, "reason", "no blob store configured")
		} else if err := s.blobs.Delete(ctx, image.StorageKey); err != nil {
			s.logger.Warn(ctx, "orphan object left in blob store", "key", image.StorageKey, "error", err)
		}
	}

	s.logger.Info(ctx, "image deleted", "image_id", id, "by", user.ID)

	return nil
}

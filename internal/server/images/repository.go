package images

import "context"

// Repository persists image records. GetByID returns metadata only;
// ContentByID fetches the inline bytes separately so that list and delete
// paths never drag content across the wire. TotalSizeByOwner is the quota
// aggregate: the sum of Size over all images owned by a user, zero when the
// user owns none.
type Repository interface {
	Create(ctx context.Context, image *Image) error
	GetByID(ctx context.Context, id string) (*Image, error)
	ContentByID(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
	TotalSizeByOwner(ctx context.Context, ownerID string) (int64, error)
}

package images

import (
	"context"
	"sync"
	"time"

	"github.com/image-cloud/api/internal/common"
)

type InMemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]*Image
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byID: make(map[string]*Image)}
}

func (r *InMemoryRepository) Create(_ context.Context, image *Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if image.CreatedAt.IsZero() {
		image.CreatedAt = time.Now()
	}
	c := *image
	r.byID[image.ID] = &c
	return nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Image, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	img, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *img
	c.Content = nil
	return &c, nil
}

func (r *InMemoryRepository) ContentByID(_ context.Context, id string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	img, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return append([]byte(nil), img.Content...), nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *InMemoryRepository) TotalSizeByOwner(_ context.Context, ownerID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total int64
	for _, img := range r.byID {
		if img.OwnerID == ownerID {
			total += img.Size
		}
	}
	return total, nil
}

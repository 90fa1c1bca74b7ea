package images

import "time"

// Image is a stored image: metadata plus content. Content is carried inline
// only when the inline Postgres backend is in use; with an object-storage
// backend the bytes live under StorageKey and Content stays nil. Size is
// always the content length in bytes and is what quota aggregation sums,
// so both backends account identically.
//
// Images are immutable: created on upload, removed on delete, never edited.
type Image struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	OwnerID    string    `json:"owner_id"`
	Size       int64     `json:"size"`
	StorageKey string    `json:"-"`
	Content    []byte    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

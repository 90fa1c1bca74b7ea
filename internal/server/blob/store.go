// Package blob abstracts where image bytes live. The server runs either
// with content inline in Postgres (no Store configured) or with an
// S3-compatible backend holding the bytes while Postgres keeps the metadata.
package blob

import "context"

type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

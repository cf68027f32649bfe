package metadata

import (
	"context"
)

// Repository is a small key/value store for locally cached session state:
// the signed-in owner identity and API tokens reused while offline.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}

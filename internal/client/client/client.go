package client

import (
	"context"

	"github.com/trailfield/trailfield/internal/client/models"
)

// UploadTarget describes where a photo blob should be PUT and the public
// URL that replaces the inline content afterwards.
type UploadTarget struct {
	Key       string
	PutURL    string
	PublicURL string
}

// Client is the narrow contract the offline core consumes: identity, the
// remote document store, and presigned blob access. Implementations map
// transport failures onto the package sentinels so callers can classify
// retryable vs non-retryable outcomes with errors.Is.
type Client interface {
	Close() error
	Register(ctx context.Context, username, password, email, displayName string) error
	Login(ctx context.Context, username, password string) (models.Owner, error)
	Ping(ctx context.Context) error

	// SetTokens restores a cached session; Tokens exposes the current one
	// so the session can be persisted for offline reuse.
	SetTokens(access, refresh string)
	Tokens() (access, refresh string)

	// WriteRecord writes one document into the named collection and
	// returns the remote id. The store enforces a hard per-record size
	// ceiling; violations surface as common.ErrPayloadTooLarge.
	WriteRecord(ctx context.Context, collection string, body []byte) (string, error)

	// PresignUpload reserves a blob slot namespaced to the current owner.
	PresignUpload(ctx context.Context) (*UploadTarget, error)
}

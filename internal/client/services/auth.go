// Package services contains the application services of the field client:
// session handling, the upload orchestrator, the sync engine, and the
// email backup channel.
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/trailfield/trailfield/internal/client/client"
	"github.com/trailfield/trailfield/internal/client/models"
	"github.com/trailfield/trailfield/internal/client/repositories/metadata"
	"github.com/trailfield/trailfield/internal/logging"
)

// Metadata keys for the cached session.
const (
	metaOwner        = "owner"
	metaAccessToken  = "access_token"
	metaRefreshToken = "refresh_token"
)

// AuthService manages the signed-in identity. Login happens online; the
// resulting owner and tokens are cached locally so a restarted client can
// keep attributing saves to the same owner while offline.
type AuthService interface {
	Login(ctx context.Context, username, password string) (models.Owner, error)
	Register(ctx context.Context, username, password, email, displayName string) error

	// CurrentOwner returns the cached identity, restoring API tokens into
	// the client. Returns the anonymous owner when nobody is signed in.
	CurrentOwner(ctx context.Context) (models.Owner, error)

	Ping(ctx context.Context) error
	Logout(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client       client.Client
	metadataRepo metadata.Repository
	logger       logging.Logger
}

func NewAuthService(c client.Client, metadataRepo metadata.Repository, logger logging.Logger) AuthService {
	return &authService{client: c, metadataRepo: metadataRepo, logger: logger.With("component", "auth")}
}

// Login authenticates against the server and caches owner + tokens for
// offline reuse.
func (a *authService) Login(ctx context.Context, username, password string) (models.Owner, error) {
	owner, err := a.client.Login(ctx, username, password)
	if err != nil {
		return models.Anonymous, fmt.Errorf("login error: %w", err)
	}

	if err := a.saveSession(ctx, owner); err != nil {
		// login itself succeeded; a failed cache write only costs offline reuse
		a.logger.Warn(ctx, "session cache write failed", "error", err)
	}
	return owner, nil
}

func (a *authService) saveSession(ctx context.Context, owner models.Owner) error {
	b, err := json.Marshal(owner)
	if err != nil {
		return err
	}
	if err := a.metadataRepo.Set(ctx, metaOwner, b); err != nil {
		return err
	}
	access, refresh := a.client.Tokens()
	if err := a.metadataRepo.Set(ctx, metaAccessToken, []byte(access)); err != nil {
		return err
	}
	return a.metadataRepo.Set(ctx, metaRefreshToken, []byte(refresh))
}

func (a *authService) Register(ctx context.Context, username, password, email, displayName string) error {
	if err := a.client.Register(ctx, username, password, email, displayName); err != nil {
		return fmt.Errorf("register error: %w", err)
	}
	return nil
}

func (a *authService) CurrentOwner(ctx context.Context) (models.Owner, error) {
	b, err := a.metadataRepo.Get(ctx, metaOwner)
	if err != nil {
		return models.Anonymous, err
	}
	if b == nil {
		return models.Anonymous, nil
	}

	var owner models.Owner
	if err := json.Unmarshal(b, &owner); err != nil {
		return models.Anonymous, fmt.Errorf("corrupt cached owner: %w", err)
	}

	access, _ := a.metadataRepo.Get(ctx, metaAccessToken)
	refresh, _ := a.metadataRepo.Get(ctx, metaRefreshToken)
	if len(access) > 0 || len(refresh) > 0 {
		a.client.SetTokens(string(access), string(refresh))
	}
	return owner, nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Logout drops the cached session. Queued artifacts are untouched.
func (a *authService) Logout(ctx context.Context) error {
	a.client.SetTokens("", "")
	return a.metadataRepo.Clear(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}

package refreshtokens

import (
	"context"
	"sync"
	"time"

	"github.com/trailfield/trailfield/internal/common"
	"github.com/trailfield/trailfield/internal/server/models"
)

// InMemoryRepository keeps refresh tokens in a map keyed by token string.
type InMemoryRepository struct {
	mu     sync.RWMutex
	tokens map[string]*models.RefreshToken
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{tokens: make(map[string]*models.RefreshToken)}
}

func (r *InMemoryRepository) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[token] = &models.RefreshToken{
		UserID:    userID,
		Token:     token,
		Expires:   time.Now().Add(validity),
		CreatedAt: time.Now(),
	}
	return nil
}

func (r *InMemoryRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, token)
	return nil
}

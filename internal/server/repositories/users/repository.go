// Package users declares the server-side repository contract for user accounts.
package users

import (
	"context"

	"github.com/trailfield/trailfield/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

package userRepo

import (
	"context"

	"autocare/database/store"
	"autocare/models"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetAll retrieves all users.
	GetAll(ctx context.Context) ([]models.User, error)
	// GetByEmail retrieves a user by email; a missing user is a NotFoundError.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Create inserts a new user record.
	Create(ctx context.Context, user models.User) (*models.User, error)
	// Update patches an existing user record.
	Update(ctx context.Context, id string, patch store.Patch) (*models.User, error)
	// Delete removes a user record by its ID.
	Delete(ctx context.Context, id string) error
}

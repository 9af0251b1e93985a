package user

import (
	"context"

	"nature-animaux/internal/domain"
)

type CreateUserInput struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
}

type Repository interface {
	// Create inserts a new user. A duplicate email fails with
	// domain.ErrConflict.
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

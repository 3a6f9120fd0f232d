package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")

// User is the minimal identity the bidding engine needs: enough to verify
// that a bidder exists. Profiles, sessions and roles live elsewhere.
type User struct {
	ID        uuid.UUID
	Username  string
	Email     string
	CreatedAt time.Time
}

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

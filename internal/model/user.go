package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	// GetByLogin looks a user up by username or email.
	GetByLogin(ctx context.Context, login string) (User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
	MarkEmailVerified(ctx context.Context, id uuid.UUID, email string) error
	RefreshTokenStore
}

// RefreshTokenStore keeps the single currently valid refresh token digest of a user.
type RefreshTokenStore interface {
	SetRefreshTokenHash(ctx context.Context, userID uuid.UUID, tokenHash string) error
	// SwapRefreshTokenHash replaces current with next only if current is still stored.
	// It reports whether the swap happened.
	SwapRefreshTokenHash(ctx context.Context, userID uuid.UUID, current, next string) (bool, error)
	ClearRefreshTokenHash(ctx context.Context, userID uuid.UUID) error
}

// User represents a registered principal.
type User struct {
	ID               uuid.UUID
	Username         string
	Email            string
	FullName         string
	PasswordHash     string
	RefreshTokenHash string
	EmailVerified    bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Principal is the authenticated caller resolved from an access token.
type Principal struct {
	ID       uuid.UUID
	Email    string
	Username string
	FullName string
}

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// RegisterParams contains fields needed to register a user.
type RegisterParams struct {
	Username string
	Email    string
	FullName string
	Password string
}

// LoginParams contains user credentials. Login is a username or an email.
type LoginParams struct {
	Login    string
	Password string
}

// Session is returned on successful login.
type Session struct {
	User   User
	Tokens TokenPair
}

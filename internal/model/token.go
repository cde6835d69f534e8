package model

import "github.com/google/uuid"

// TokenManager generates and validates signed tokens.
type TokenManager interface {
	GenerateAccessToken(claims AccessClaims) (string, error)
	GenerateRefreshToken(userID uuid.UUID) (string, error)
	GenerateVerificationToken(userID uuid.UUID, email string) (string, error)
	ParseAccessToken(token string) (AccessClaims, error)
	ParseRefreshToken(token string) (uuid.UUID, error)
	ParseVerificationToken(token string) (userID uuid.UUID, email string, err error)
}

// AccessClaims are embedded into access tokens.
type AccessClaims struct {
	UserID   uuid.UUID
	Email    string
	Username string
	FullName string
}

// TokenPair is an access token with its refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

package model

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already taken")
	ErrMembershipExists   = errors.New("membership already exists")
	ErrMembershipAccepted = errors.New("membership already accepted")
)

var (
	ErrTokenRevoked  = errors.New("refresh token revoked")
	ErrTokenMismatch = errors.New("refresh token mismatch")
	ErrTokenReused   = errors.New("refresh token already rotated")
)

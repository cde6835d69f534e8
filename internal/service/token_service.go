package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/gymkeeper-server/internal/apierror"
	"github.com/dtroode/gymkeeper-server/internal/logger"
	"github.com/dtroode/gymkeeper-server/internal/model"
)

// TokenService issues, rotates and revokes token pairs. A user has at most one
// valid refresh token: the one whose digest is stored on the user record.
type TokenService struct {
	manager model.TokenManager
	users   model.UserStore
	logger  *logger.Logger
}

func NewTokenService(manager model.TokenManager, users model.UserStore, logger *logger.Logger) *TokenService {
	return &TokenService{manager: manager, users: users, logger: logger}
}

// Issue mints a new pair for user and makes its refresh token the only valid one.
func (s *TokenService) Issue(ctx context.Context, user model.User) (model.TokenPair, error) {
	pair, err := s.mint(user)
	if err != nil {
		return model.TokenPair{}, err
	}

	if err := s.users.SetRefreshTokenHash(ctx, user.ID, hashRefresh(pair.RefreshToken)); err != nil {
		return model.TokenPair{}, fmt.Errorf("persist refresh: %w", err)
	}

	return pair, nil
}

// Refresh exchanges the presented refresh token for a new pair. The presented
// token stops being valid; replaying it fails.
func (s *TokenService) Refresh(ctx context.Context, presentedRefresh string) (model.TokenPair, error) {
	userID, err := s.manager.ParseRefreshToken(presentedRefresh)
	if err != nil {
		return model.TokenPair{}, apierror.NewErrInvalidRefreshToken(err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.TokenPair{}, apierror.NewErrInvalidRefreshToken(err)
	}
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	presentedHash := hashRefresh(presentedRefresh)
	if err := validateStored(user.RefreshTokenHash, presentedHash); err != nil {
		s.logger.Info("Token service: rejected refresh token",
			"user_id", userID,
			"reason", err.Error())
		return model.TokenPair{}, apierror.NewErrInvalidRefreshToken(err)
	}

	pair, err := s.mint(user)
	if err != nil {
		return model.TokenPair{}, err
	}

	swapped, err := s.users.SwapRefreshTokenHash(ctx, userID, presentedHash, hashRefresh(pair.RefreshToken))
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("rotate refresh: %w", err)
	}
	if !swapped {
		s.logger.Info("Token service: refresh token rotated concurrently",
			"user_id", userID)
		return model.TokenPair{}, apierror.NewErrInvalidRefreshToken(model.ErrTokenReused)
	}

	return pair, nil
}

// Revoke invalidates the user's refresh token until the next login.
func (s *TokenService) Revoke(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.ClearRefreshTokenHash(ctx, userID); err != nil {
		return fmt.Errorf("revoke refresh: %w", err)
	}
	return nil
}

func (s *TokenService) mint(user model.User) (model.TokenPair, error) {
	access, err := s.manager.GenerateAccessToken(model.AccessClaims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		FullName: user.FullName,
	})
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue access: %w", err)
	}

	refresh, err := s.manager.GenerateRefreshToken(user.ID)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue refresh: %w", err)
	}

	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func hashRefresh(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func validateStored(storedHash, presentedHash string) error {
	if storedHash == "" {
		return model.ErrTokenRevoked
	}
	if subtle.ConstantTimeCompare([]byte(storedHash), []byte(presentedHash)) != 1 {
		return model.ErrTokenMismatch
	}
	return nil
}
